package api

import (
	"encoding/json"
	"net/http"

	"github.com/billfold-io/billfold/internal/auth"
	"github.com/shopspring/decimal"
)

// accountResponse omits everything not meant for the client; the hash in
// particular never leaves the server.
type accountResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	SpendingLimit decimal.Decimal `json:"spending_limit"`
}

func (api *Api) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	user, err := api.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		SpendingLimit: user.SpendingLimit,
	})
}

type updateAccountRequest struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Password      string          `json:"password"`
	OldPassword   string          `json:"old_password"`
	SpendingLimit decimal.Decimal `json:"spending_limit"`
}

func (api *Api) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := api.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	user.Name = req.Name
	user.Email = req.Email
	user.SpendingLimit = req.SpendingLimit

	// Changing the password requires proving the old one.
	if req.Password != "" {
		if !auth.CheckPassword(user.Password, req.OldPassword) {
			http.Error(w, auth.ErrWrongPassword.Error(), http.StatusForbidden)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		user.Password = hash
	}

	if err := api.store.UpdateUser(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}
