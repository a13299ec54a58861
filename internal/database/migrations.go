package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all migrations for the given driver.
func GetMigrations(driver string) []Migration {
	if driver == "postgres" {
		return postgresMigrations()
	}
	return sqliteMigrations()
}

func postgresMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(256) NOT NULL,
				email VARCHAR(256) UNIQUE NOT NULL,
				password_hash VARCHAR(2048) NOT NULL,
				spending_limit NUMERIC(10,2) NOT NULL DEFAULT 0,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`,
		},
		{
			Version:     2,
			Description: "Create icons table",
			SQL: `CREATE TABLE IF NOT EXISTS icons (
				id BIGSERIAL PRIMARY KEY,
				icon VARCHAR(256) NOT NULL
			)`,
		},
		{
			Version:     3,
			Description: "Create categories table",
			SQL: `CREATE TABLE IF NOT EXISTS categories (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT REFERENCES users(id),
				icon_id BIGINT NOT NULL REFERENCES icons(id),
				category VARCHAR(256) NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
		},
		{
			Version:     4,
			Description: "Create expenses table",
			SQL: `CREATE TABLE IF NOT EXISTS expenses (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT REFERENCES users(id),
				category_id BIGINT NOT NULL REFERENCES categories(id),
				label VARCHAR(256) NOT NULL,
				amount NUMERIC(10,2) NOT NULL,
				due_date TIMESTAMP WITH TIME ZONE NOT NULL,
				paid_at TIMESTAMP WITH TIME ZONE
			)`,
		},
		{
			Version:     5,
			Description: "Create social accounts table",
			SQL: `CREATE TABLE IF NOT EXISTS social_accounts (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				provider VARCHAR(64) NOT NULL,
				token TEXT NOT NULL,
				UNIQUE (user_id, provider)
			)`,
		},
		{
			Version:     6,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_expenses_user_due ON expenses(user_id, due_date);
				CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id);
				CREATE INDEX IF NOT EXISTS idx_social_accounts_token ON social_accounts(provider, token)`,
		},
	}
}

func sqliteMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				spending_limit NUMERIC NOT NULL DEFAULT 0,
				active BOOLEAN NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		{
			Version:     2,
			Description: "Create icons table",
			SQL: `CREATE TABLE IF NOT EXISTS icons (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				icon TEXT NOT NULL
			)`,
		},
		{
			Version:     3,
			Description: "Create categories table",
			SQL: `CREATE TABLE IF NOT EXISTS categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER REFERENCES users(id),
				icon_id INTEGER NOT NULL REFERENCES icons(id),
				category TEXT NOT NULL,
				active BOOLEAN NOT NULL DEFAULT 1
			)`,
		},
		{
			Version:     4,
			Description: "Create expenses table",
			SQL: `CREATE TABLE IF NOT EXISTS expenses (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER REFERENCES users(id),
				category_id INTEGER NOT NULL REFERENCES categories(id),
				label TEXT NOT NULL,
				amount NUMERIC NOT NULL,
				due_date DATETIME NOT NULL,
				paid_at DATETIME
			)`,
		},
		{
			Version:     5,
			Description: "Create social accounts table",
			SQL: `CREATE TABLE IF NOT EXISTS social_accounts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				provider TEXT NOT NULL,
				token TEXT NOT NULL,
				UNIQUE (user_id, provider)
			)`,
		},
		{
			Version:     6,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_expenses_user_due ON expenses(user_id, due_date);
				CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id);
				CREATE INDEX IF NOT EXISTS idx_social_accounts_token ON social_accounts(provider, token)`,
		},
	}
}

// RunMigrations applies all pending migrations in version order.
func RunMigrations(db *sql.DB, driver string) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %v", err)
	}

	for _, m := range GetMigrations(driver) {
		if applied[m.Version] {
			continue
		}

		log.Printf("[DB] applying migration %d: %s", m.Version, m.Description)
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d failed: %v", m.Version, err)
		}

		if _, err := db.Exec(markAppliedQuery(driver), m.Version, m.Description); err != nil {
			return fmt.Errorf("failed to record migration %d: %v", m.Version, err)
		}
	}
	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func markAppliedQuery(driver string) string {
	if driver == "postgres" {
		return "INSERT INTO schema_migrations (version, description) VALUES ($1, $2)"
	}
	return "INSERT INTO schema_migrations (version, description) VALUES (?, ?)"
}
