package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/billfold-io/billfold/internal/auth"
	"github.com/billfold-io/billfold/internal/database"
	"github.com/shopspring/decimal"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user, err := api.store.CreateUser(r.Context(), req.Name, req.Email, hash, decimal.Zero)
	if err != nil {
		// Duplicate email included: the insert is rolled back in full and
		// surfaced as a server error, mirroring the registration contract.
		log.Printf("[API] registration failed: %v", err)
		http.Error(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	api.writeToken(w, user.Email, user.ID)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := api.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		// Unknown account and bad password are indistinguishable here.
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
		return
	}

	api.writeToken(w, user.Email, user.ID)
}

type socialLoginRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

func (api *Api) SocialLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req socialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Provider == "" || req.Token == "" {
		http.Error(w, "provider and token are required", http.StatusBadRequest)
		return
	}

	user, err := api.social.Resolve(r.Context(), req.Provider, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	api.writeToken(w, user.Email, user.ID)
}

type recoverMailRequest struct {
	Email string `json:"email"`
}

func (api *Api) RecoverMailHandler(w http.ResponseWriter, r *http.Request) {
	var req recoverMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := api.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := api.tokens.GenerateResetToken(user.Email, user.ID)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resetLink := fmt.Sprintf("%s?token=%s", api.Config.Auth.ResetURL, token)
	if err := api.mailer.SendPasswordReset(user.Email, user.Name, resetLink); err != nil {
		log.Printf("[API] failed to send reset email: %v", err)
		http.Error(w, "failed to send recovery email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{})
}

type recoverPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (api *Api) RecoverPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req recoverPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	claims, err := api.tokens.ValidateResetToken(req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := api.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := api.store.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, err)
		return
	}

	api.writeToken(w, user.Email, user.ID)
}
