package main

import (
	"database/sql"
	"fmt"

	"github.com/iliyamo/telehealth-core/internal/config"
	"github.com/iliyamo/telehealth-core/internal/database"
)

// openStore connects to the database selected by DB_DRIVER and returns
// the handle with its dialect.
func openStore(cfg config.Config) (*sql.DB, string, error) {
	switch cfg.DBDriver {
	case database.DialectSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return db, database.DialectSQLite, nil
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, "", fmt.Errorf("open mysql %s:%s/%s: %w", cfg.DBHost, cfg.DBPort, cfg.DBName, err)
		}
		return db, database.DialectMySQL, nil
	}
}
