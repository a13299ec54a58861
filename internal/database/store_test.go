package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/billfold-io/billfold/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a throwaway SQLite database with the full schema.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db, "sqlite"))
	return NewWithDB(db, "sqlite")
}

func seedUser(t *testing.T, store *Store, email string) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), "Test User", email, "hash", decimal.Zero)
	require.NoError(t, err)
	return user
}

func seedCategory(t *testing.T, store *Store, userID int64, name string) *models.Category {
	t.Helper()
	icon, err := store.CreateIcon(context.Background(), "icon-"+name)
	require.NoError(t, err)
	category, err := store.CreateCategory(context.Background(), userID, icon.ID, name, true)
	require.NoError(t, err)
	return category
}
