package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/billfold-io/billfold/internal/database"
	"github.com/billfold-io/billfold/internal/models"
)

// Identity is what a provider asserts about the holder of a token.
type Identity struct {
	Email string
	Name  string
}

// Provider verifies a third-party access token and returns the identity
// it belongs to. Implementations make a single outbound call, no retry.
type Provider interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleProvider verifies tokens against Google's tokeninfo endpoint.
type GoogleProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewGoogleProvider creates a Google verifier. baseURL overrides the
// endpoint for tests; empty means production.
func NewGoogleProvider(baseURL string) *GoogleProvider {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/oauth2/v3"
	}
	return &GoogleProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

func (p *GoogleProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	endpoint := fmt.Sprintf("%s/tokeninfo?access_token=%s", p.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google returned status %d", ErrExternalProvider, resp.StatusCode)
	}

	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalProvider, err)
	}
	if body.Email == "" {
		return nil, fmt.Errorf("%w: google response carried no email", ErrExternalProvider)
	}
	return &Identity{Email: body.Email, Name: body.Name}, nil
}

// FacebookProvider verifies tokens against the Graph profile endpoint.
type FacebookProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewFacebookProvider creates a Facebook verifier. baseURL overrides the
// endpoint for tests; empty means production.
func NewFacebookProvider(baseURL string) *FacebookProvider {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com"
	}
	return &FacebookProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

func (p *FacebookProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	endpoint := fmt.Sprintf("%s/me?fields=name,email&access_token=%s", p.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: facebook returned status %d", ErrExternalProvider, resp.StatusCode)
	}

	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalProvider, err)
	}
	if body.Email == "" {
		return nil, fmt.Errorf("%w: facebook response carried no email", ErrExternalProvider)
	}
	return &Identity{Email: body.Email, Name: body.Name}, nil
}

// SocialStore is the slice of the persistence layer social login needs.
// A missing link is signalled with database.ErrNotFound; any other error
// is a store failure.
type SocialStore interface {
	GetSocialAccountByToken(ctx context.Context, provider, token string) (*models.SocialAccount, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// ReconcileSocialUser finds or creates the user for the verified
	// identity and upserts the (user, provider) link, atomically.
	ReconcileSocialUser(ctx context.Context, email, name, provider, token string) (*models.User, error)
}

// SocialLogin resolves a provider token to a local user.
type SocialLogin struct {
	store     SocialStore
	providers map[string]Provider
}

// NewSocialLogin wires the closed set of supported providers. Keys are
// lower-cased provider names.
func NewSocialLogin(store SocialStore, providers map[string]Provider) *SocialLogin {
	return &SocialLogin{store: store, providers: providers}
}

// Resolve runs the three reconciliation branches in order:
//  1. a stored link matching the exact token returns its user with no
//     outbound call;
//  2. otherwise the named provider verifies the token — any failure there
//     aborts, it never silently authenticates;
//  3. the user is looked up by provider email, created if absent, and the
//     link is upserted; user and link commit together.
func (s *SocialLogin) Resolve(ctx context.Context, providerName, token string) (*models.User, error) {
	providerName = strings.ToLower(providerName)
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, ErrUnknownProvider
	}

	account, err := s.store.GetSocialAccountByToken(ctx, providerName, token)
	switch {
	case err == nil:
		return s.store.GetUserByID(ctx, account.UserID)
	case !errors.Is(err, database.ErrNotFound):
		// A store failure is not "no link"; surface it instead of making
		// a pointless outbound call.
		return nil, err
	}

	identity, err := provider.Verify(ctx, token)
	if err != nil {
		log.Printf("[AUTH] provider %s verification failed: %v", providerName, err)
		return nil, err
	}

	return s.store.ReconcileSocialUser(ctx, identity.Email, identity.Name, providerName, token)
}
