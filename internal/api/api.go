// Package api is the transport boundary: chi routes, JSON shaping and
// the HTTP status mapping for domain errors.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/billfold-io/billfold/internal/assistant"
	"github.com/billfold-io/billfold/internal/auth"
	"github.com/billfold-io/billfold/internal/config"
	"github.com/billfold-io/billfold/internal/database"
	"github.com/billfold-io/billfold/internal/mail"
	"github.com/billfold-io/billfold/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Api struct {
	Config   config.Config
	Router   *chi.Mux
	store    *database.Store
	tokens   *auth.TokenManager
	social   *auth.SocialLogin
	mailer   mail.Sender
	drafter  assistant.Drafter
	exporter storage.Exporter
}

// NewApi wires the route handlers to their collaborators. mailer,
// drafter and exporter may be nil in deployments (and tests) that do not
// use the corresponding endpoints.
func NewApi(cfg config.Config, store *database.Store, tokens *auth.TokenManager,
	social *auth.SocialLogin, mailer mail.Sender, drafter assistant.Drafter,
	exporter storage.Exporter) *Api {

	api := &Api{
		Config:   cfg,
		Router:   chi.NewRouter(),
		store:    store,
		tokens:   tokens,
		social:   social,
		mailer:   mailer,
		drafter:  drafter,
		exporter: exporter,
	}
	api.setupRoutes()
	return api
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	// Public routes
	r.Post("/auth/register", api.RegisterHandler)
	r.Post("/auth/login", api.LoginHandler)
	r.Post("/auth/social", api.SocialLoginHandler)
	r.Post("/auth/recover/mail", api.RecoverMailHandler)
	r.Post("/auth/recover/password", api.RecoverPasswordHandler)

	// Bearer-protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(api.tokens))

		r.Get("/account", api.GetAccountHandler)
		r.Put("/account", api.UpdateAccountHandler)

		r.Post("/categories", api.CreateCategoryHandler)
		r.Get("/categories", api.ListCategoriesHandler)
		r.Get("/categories/available", api.ListAvailableCategoriesHandler)
		r.Get("/categories/{categoryID}", api.GetCategoryHandler)
		r.Put("/categories/{categoryID}", api.UpdateCategoryHandler)

		r.Get("/icons/available", api.ListAvailableIconsHandler)

		r.Post("/expenses", api.CreateExpenseHandler)
		r.Post("/expenses/installments", api.CreateInstallmentsHandler)
		r.Post("/expenses/export", api.ExportExpensesHandler)
		r.Get("/expenses", api.ListExpensesHandler)
		r.Get("/expenses/expense/{expenseID}", api.GetExpenseHandler)
		r.Put("/expenses/{expenseID}", api.UpdateExpenseHandler)
		r.Patch("/expenses/payment/{expenseID}", api.SetExpensePaymentHandler)
		r.Delete("/expenses/{expenseID}", api.DeleteExpenseHandler)

		r.Get("/dashboard/cards", api.DashboardCardsHandler)
		r.Get("/dashboard/line_year", api.DashboardLineYearHandler)
		r.Get("/dashboard/pie_month", api.DashboardPieMonthHandler)
		r.Get("/dashboard/pie_year", api.DashboardPieYearHandler)

		r.Post("/assistant", api.AssistantHandler)
	})
}

// Serve blocks running the HTTP server.
func (api *Api) Serve() error {
	addr := fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort)
	log.Printf("[API] starting server on %s", addr)
	return http.ListenAndServe(addr, api.Router)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto the HTTP status taxonomy: credential
// failures → 401 (generic message only), unknown rows → 404, provider
// failures → 500, bad input → 400.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrExpiredToken):
		http.Error(w, auth.ErrInvalidCredential.Error(), http.StatusUnauthorized)
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, auth.ErrUnknownProvider):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrExternalProvider):
		http.Error(w, "identity provider error", http.StatusInternalServerError)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// tokenResponse is the body returned by every operation that issues an
// access token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (api *Api) writeToken(w http.ResponseWriter, email string, userID int64) {
	token, err := api.tokens.GenerateAccessToken(email, userID)
	if err != nil {
		log.Printf("[API] failed to sign token: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
