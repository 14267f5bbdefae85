package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed migrations/sqlite.sql
	sqliteSchema string
	//go:embed migrations/postgres.sql
	postgresSchema string
)

// Migrate creates the annotation tables if they do not exist yet.
func Migrate(ctx context.Context, db *DB) error {
	schema := sqliteSchema
	if db.Dialect == DialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// SeedUser inserts a user unless the username already exists.
func SeedUser(ctx context.Context, db *DB, username string, projectLead bool) error {
	const q = `INSERT INTO users (username, is_project_lead, requested_lead_status) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET is_project_lead = excluded.is_project_lead`
	if _, err := db.ExecContext(ctx, db.Rebind(q), username, projectLead, false); err != nil {
		return fmt.Errorf("seed user %s: %w", username, err)
	}
	return nil
}
