package database

import (
	"context"

	"github.com/billfold-io/billfold/internal/models"
)

// ListAvailableIcons returns the icons not yet taken by a category the
// user can see (their own or a global one).
func (s *Store) ListAvailableIcons(ctx context.Context, userID int64) ([]*models.Icon, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, icon FROM icons
		 WHERE id NOT IN (
			SELECT icon_id FROM categories WHERE user_id = ? OR user_id IS NULL
		 )
		 ORDER BY id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icons []*models.Icon
	for rows.Next() {
		var icon models.Icon
		if err := rows.Scan(&icon.ID, &icon.Icon); err != nil {
			return nil, err
		}
		icons = append(icons, &icon)
	}
	return icons, rows.Err()
}

// CreateIcon inserts a new icon; used by seeding and tests.
func (s *Store) CreateIcon(ctx context.Context, name string) (*models.Icon, error) {
	id, err := insertRow(ctx, s.db, s.driver, s.rebind(
		"INSERT INTO icons (icon) VALUES (?)"), name)
	if err != nil {
		return nil, err
	}
	return &models.Icon{ID: id, Icon: name}, nil
}
