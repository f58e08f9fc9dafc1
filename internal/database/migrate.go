package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the schema for the given dialect.  Every statement is
// idempotent (CREATE ... IF NOT EXISTS) so it is safe to run on each start.
// Statements are executed one by one because the MySQL driver rejects
// multi-statement strings unless multiStatements is enabled.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	raw, err := schemaFS.ReadFile("schema/" + dialect + ".sql")
	if err != nil {
		return fmt.Errorf("unknown dialect %q: %w", dialect, err)
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
