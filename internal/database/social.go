package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/billfold-io/billfold/internal/models"
	"github.com/shopspring/decimal"
)

// GetSocialAccountByToken returns the stored link matching the presented
// provider token exactly, or ErrNotFound.
func (s *Store) GetSocialAccountByToken(ctx context.Context, provider, token string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, user_id, provider, token FROM social_accounts WHERE provider = ? AND token = ?"),
		provider, token,
	).Scan(&account.ID, &account.UserID, &account.Provider, &account.Token)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ReconcileSocialUser finds the user owning the verified email, creating
// one with a disabled password when absent, and upserts the
// (user, provider) link. User and link commit in the same transaction so
// a partially linked account can never become visible.
func (s *Store) ReconcileSocialUser(ctx context.Context, email, name, provider, token string) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := &models.User{}
	err = tx.QueryRowContext(ctx, s.rebind(
		"SELECT id, name, email, password_hash, spending_limit, active, created_at FROM users WHERE email = ?"), email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password,
		&user.SpendingLimit, &user.Active, &user.CreatedAt)

	switch {
	case err == sql.ErrNoRows:
		// Empty password hash disables password login for this account.
		user = &models.User{
			Name:          name,
			Email:         email,
			Password:      "",
			SpendingLimit: decimal.Zero,
			Active:        true,
			CreatedAt:     time.Now().UTC(),
		}
		id, err := insertRow(ctx, tx, s.driver, s.rebind(
			"INSERT INTO users (name, email, password_hash, spending_limit, active, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
			user.Name, user.Email, user.Password, user.SpendingLimit, user.Active, user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		user.ID = id
	case err != nil:
		return nil, err
	}

	// Upsert: refresh the token when this (user, provider) pair already
	// has a row, insert otherwise.
	res, err := tx.ExecContext(ctx, s.rebind(
		"UPDATE social_accounts SET token = ? WHERE user_id = ? AND provider = ?"),
		token, user.ID, provider,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO social_accounts (user_id, provider, token) VALUES (?, ?, ?)"),
			user.ID, provider, token,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}
