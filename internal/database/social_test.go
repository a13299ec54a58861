package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSocialUserCreatesAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.ReconcileSocialUser(ctx, "new@example.com", "New User", "google", "tok-1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)

	// Password login is disabled for accounts born from social login.
	stored, err := store.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)

	account, err := store.GetSocialAccountByToken(ctx, "google", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, account.UserID)
}

func TestReconcileSocialUserLinksExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	existing := seedUser(t, store, "alice@example.com")

	user, err := store.ReconcileSocialUser(ctx, "alice@example.com", "Alice From Google", "google", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	// The existing profile wins over the provider's name.
	assert.Equal(t, existing.Name, user.Name)

	account, err := store.GetSocialAccountByToken(ctx, "google", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, account.UserID)
}

func TestReconcileSocialUserRefreshesToken(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ReconcileSocialUser(ctx, "alice@example.com", "Alice", "google", "old-token")
	require.NoError(t, err)

	user, err := store.ReconcileSocialUser(ctx, "alice@example.com", "Alice", "google", "new-token")
	require.NoError(t, err)

	// The link is upserted: one row per (user, provider), latest token.
	_, err = store.GetSocialAccountByToken(ctx, "google", "old-token")
	assert.ErrorIs(t, err, ErrNotFound)

	account, err := store.GetSocialAccountByToken(ctx, "google", "new-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, account.UserID)
}

func TestReconcileSocialUserSeparateProviders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	google, err := store.ReconcileSocialUser(ctx, "alice@example.com", "Alice", "google", "g-token")
	require.NoError(t, err)
	facebook, err := store.ReconcileSocialUser(ctx, "alice@example.com", "Alice", "facebook", "f-token")
	require.NoError(t, err)

	// Same email, same local account, two independent links.
	assert.Equal(t, google.ID, facebook.ID)

	gAccount, err := store.GetSocialAccountByToken(ctx, "google", "g-token")
	require.NoError(t, err)
	fAccount, err := store.GetSocialAccountByToken(ctx, "facebook", "f-token")
	require.NoError(t, err)
	assert.Equal(t, gAccount.UserID, fAccount.UserID)
}

func TestGetSocialAccountByTokenExactMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ReconcileSocialUser(ctx, "alice@example.com", "Alice", "google", "tok-1")
	require.NoError(t, err)

	// Token match is provider-scoped and exact.
	_, err = store.GetSocialAccountByToken(ctx, "facebook", "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetSocialAccountByToken(ctx, "google", "tok-")
	assert.ErrorIs(t, err, ErrNotFound)
}
