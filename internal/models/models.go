// Package models holds the persisted entities and their JSON shapes.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. Password is the bcrypt hash; an empty hash
// means the account was created through social login and password login
// is disabled.
type User struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Password      string          `json:"-"`
	SpendingLimit decimal.Decimal `json:"spending_limit"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Icon is a display glyph selectable for categories.
type Icon struct {
	ID   int64  `json:"id"`
	Icon string `json:"icon"`
}

// Category groups expenses. UserID is nil for global categories visible
// to every account.
type Category struct {
	ID     int64  `json:"id"`
	UserID *int64 `json:"user_id"`
	IconID int64  `json:"icon_id"`
	Name   string `json:"category"`
	Active bool   `json:"active"`
	Icon   *Icon  `json:"icon,omitempty"`
}

// Expense is a single payable item. PaidAt is nil while unpaid; there is
// no sentinel date value anywhere in the schema.
type Expense struct {
	ID         int64           `json:"id"`
	UserID     *int64          `json:"user_id"`
	CategoryID int64           `json:"category_id"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	PaidAt     *time.Time      `json:"paid_at"`
	Category   *Category       `json:"category,omitempty"`
}

// SocialAccount links a user to a third-party identity provider.
// Provider is stored lower-cased; one row per (user, provider) pair.
type SocialAccount struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Provider string `json:"provider"`
	Token    string `json:"-"`
}

// CategorySum is one slice of the dashboard pie charts.
type CategorySum struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
