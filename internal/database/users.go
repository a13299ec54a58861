package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/billfold-io/billfold/internal/models"
	"github.com/shopspring/decimal"
)

// CreateUser inserts a new user. A duplicate email surfaces as
// ErrEmailTaken with nothing written.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string, limit decimal.Decimal) (*models.User, error) {
	user := &models.User{
		Name:          name,
		Email:         email,
		Password:      passwordHash,
		SpendingLimit: limit,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := insertRow(ctx, s.db, s.driver, s.rebind(
		"INSERT INTO users (name, email, password_hash, spending_limit, active, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
		user.Name, user.Email, user.Password, user.SpendingLimit, user.Active, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, name, email, password_hash, spending_limit, active, created_at FROM users WHERE id = ?"), id))
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, name, email, password_hash, spending_limit, active, created_at FROM users WHERE email = ?"), email))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password,
		&user.SpendingLimit, &user.Active, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser persists name, email, spending limit and password hash.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE users SET name = ?, email = ?, spending_limit = ?, password_hash = ? WHERE id = ?"),
		user.Name, user.Email, user.SpendingLimit, user.Password, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces only the password hash, used by reset flows.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE users SET password_hash = ? WHERE id = ?"), passwordHash, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
