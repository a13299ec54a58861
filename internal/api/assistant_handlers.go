package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/billfold-io/billfold/internal/assistant"
	"github.com/billfold-io/billfold/internal/auth"
)

type assistantRequest struct {
	Input string `json:"input"`
}

// AssistantHandler asks the language model to turn free text into a draft
// expense scoped to the caller's categories. The draft is returned for
// confirmation, nothing is persisted.
func (api *Api) AssistantHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}
	if api.drafter == nil {
		http.Error(w, "assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		http.Error(w, "input is required", http.StatusBadRequest)
		return
	}

	categories, err := api.store.ListAvailableCategories(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	draft, err := api.drafter.DraftExpense(r.Context(), req.Input, categories)
	if err != nil {
		if errors.Is(err, assistant.ErrNoExpense) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "assistant request failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}
