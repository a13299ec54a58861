package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/billfold-io/billfold/internal/auth"
	"github.com/go-chi/chi/v5"
)

type categoryRequest struct {
	IconID int64  `json:"icon_id"`
	Name   string `json:"category"`
	Active bool   `json:"active"`
}

func (api *Api) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "category name is required", http.StatusBadRequest)
		return
	}

	category, err := api.store.CreateCategory(r.Context(), claims.UserID, req.IconID, req.Name, req.Active)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (api *Api) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := api.store.UpdateCategory(r.Context(), claims.UserID, id, req.IconID, req.Name, req.Active); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

func (api *Api) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	category, err := api.store.GetCategory(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

func (api *Api) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	categories, err := api.store.ListCategories(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (api *Api) ListAvailableCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	categories, err := api.store.ListAvailableCategories(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (api *Api) ListAvailableIconsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	icons, err := api.store.ListAvailableIcons(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, icons)
}
