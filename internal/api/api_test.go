package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/billfold-io/billfold/internal/assistant"
	"github.com/billfold-io/billfold/internal/auth"
	"github.com/billfold-io/billfold/internal/config"
	"github.com/billfold-io/billfold/internal/database"
	"github.com/billfold-io/billfold/internal/models"
	"github.com/stretchr/testify/require"
)

// stubProvider verifies any token as a fixed identity, or fails.
type stubProvider struct {
	identity *auth.Identity
	err      error
}

func (p *stubProvider) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.identity, nil
}

// stubSender records the last reset mail instead of speaking SMTP.
type stubSender struct {
	to, name, resetLink string
	err                 error
}

func (s *stubSender) SendPasswordReset(to, name, resetLink string) error {
	if s.err != nil {
		return s.err
	}
	s.to, s.name, s.resetLink = to, name, resetLink
	return nil
}

// stubDrafter returns a canned draft.
type stubDrafter struct {
	draft *assistant.Draft
	err   error
}

func (d *stubDrafter) DraftExpense(ctx context.Context, input string, categories []*models.Category) (*assistant.Draft, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.draft, nil
}

// stubExporter captures the uploaded object and hands back a fixed URL.
type stubExporter struct {
	key  string
	body []byte
	err  error
}

func (e *stubExporter) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if e.err != nil {
		return e.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	e.key, e.body = key, body
	return nil
}

func (e *stubExporter) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://exports.example.com/" + key, nil
}

type testEnv struct {
	api      *Api
	store    *database.Store
	sender   *stubSender
	drafter  *stubDrafter
	exporter *stubExporter
	provider *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, "sqlite"))
	store := database.NewWithDB(db, "sqlite")

	tokens, err := auth.NewTokenManager("test-secret", "HS256")
	require.NoError(t, err)

	provider := &stubProvider{identity: &auth.Identity{Email: "social@example.com", Name: "Social User"}}
	social := auth.NewSocialLogin(store, map[string]auth.Provider{"google": provider})

	sender := &stubSender{}
	drafter := &stubDrafter{}
	exporter := &stubExporter{}

	var cfg config.Config
	cfg.APIPort = 0
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.JWTAlgorithm = "HS256"
	cfg.Auth.ResetURL = "https://app.example.com/reset"

	return &testEnv{
		api:      NewApi(cfg, store, tokens, social, sender, drafter, exporter),
		store:    store,
		sender:   sender,
		drafter:  drafter,
		exporter: exporter,
		provider: provider,
	}
}

// do runs a request through the full router, middleware included.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	env.api.Router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// register creates a user through the API and returns its bearer token.
func (env *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp tokenResponse
	decodeJSON(t, rec, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// seedCategory creates a category through the API.
func (env *testEnv) seedCategory(t *testing.T, token, name string) int64 {
	t.Helper()

	icon, err := env.store.CreateIcon(context.Background(), "icon-"+name)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/categories", token, map[string]interface{}{
		"icon_id": icon.ID, "category": name, "active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var category models.Category
	decodeJSON(t, rec, &category)
	return category.ID
}
