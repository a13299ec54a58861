package database

import (
	"context"
	"database/sql"

	"github.com/billfold-io/billfold/internal/models"
)

// CreateCategory inserts a category owned by userID.
func (s *Store) CreateCategory(ctx context.Context, userID, iconID int64, name string, active bool) (*models.Category, error) {
	category := &models.Category{
		UserID: &userID,
		IconID: iconID,
		Name:   name,
		Active: active,
	}
	id, err := insertRow(ctx, s.db, s.driver, s.rebind(
		"INSERT INTO categories (user_id, icon_id, category, active) VALUES (?, ?, ?, ?)"),
		userID, iconID, name, active,
	)
	if err != nil {
		return nil, err
	}
	category.ID = id
	return category, nil
}

// UpdateCategory edits a category the user owns; global categories and
// other users' categories are not reachable.
func (s *Store) UpdateCategory(ctx context.Context, userID, id, iconID int64, name string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE categories SET icon_id = ?, category = ?, active = ? WHERE id = ? AND user_id = ?"),
		iconID, name, active, id, userID,
	)
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

const categorySelect = `SELECT c.id, c.user_id, c.icon_id, c.category, c.active, i.id, i.icon
	FROM categories c JOIN icons i ON i.id = c.icon_id`

// GetCategory returns one category the user owns, icon included.
func (s *Store) GetCategory(ctx context.Context, userID, id int64) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		categorySelect+" WHERE c.id = ? AND c.user_id = ?"), id, userID)
	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns the user's categories plus the global ones.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]*models.Category, error) {
	return s.queryCategories(ctx, s.rebind(
		categorySelect+" WHERE c.user_id = ? OR c.user_id IS NULL ORDER BY c.id"), userID)
}

// ListAvailableCategories returns only the active visible categories,
// the set offered when creating an expense.
func (s *Store) ListAvailableCategories(ctx context.Context, userID int64) ([]*models.Category, error) {
	return s.queryCategories(ctx, s.rebind(
		categorySelect+" WHERE (c.user_id = ? OR c.user_id IS NULL) AND c.active ORDER BY c.id"), userID)
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...interface{}) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var (
		category models.Category
		icon     models.Icon
	)
	err := row.Scan(&category.ID, &category.UserID, &category.IconID,
		&category.Name, &category.Active, &icon.ID, &icon.Icon)
	if err != nil {
		return nil, err
	}
	category.Icon = &icon
	return &category, nil
}
