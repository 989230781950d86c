package database

import (
	"database/sql"
	"fmt"
)

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS api_response_cache (
		cache_key    TEXT PRIMARY KEY,
		json_body    TEXT NOT NULL,
		content_hash VARCHAR(64) NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL,
		version      BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS substitution_plan_documents (
		id           BIGSERIAL PRIMARY KEY,
		plan_uuid    VARCHAR(36) NOT NULL,
		group_name   TEXT NOT NULL DEFAULT '',
		plan_date    TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL DEFAULT '',
		source_date  TEXT NOT NULL DEFAULT '',
		source_title TEXT NOT NULL DEFAULT '',
		detail_url   TEXT NOT NULL UNIQUE,
		raw_html     TEXT NOT NULL,
		content_hash VARCHAR(64) NOT NULL,
		page_number  INTEGER,
		page_count   INTEGER,
		fetched_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_documents_plan_uuid ON substitution_plan_documents (plan_uuid)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id         BIGSERIAL PRIMARY KEY,
		chat_id    BIGINT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		grade      INTEGER NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS api_response_cache (
		cache_key    TEXT PRIMARY KEY,
		json_body    TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		updated_at   TIMESTAMP NOT NULL,
		version      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS substitution_plan_documents (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_uuid    TEXT NOT NULL,
		group_name   TEXT NOT NULL DEFAULT '',
		plan_date    TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL DEFAULT '',
		source_date  TEXT NOT NULL DEFAULT '',
		source_title TEXT NOT NULL DEFAULT '',
		detail_url   TEXT NOT NULL UNIQUE,
		raw_html     TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		page_number  INTEGER,
		page_count   INTEGER,
		fetched_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_documents_plan_uuid ON substitution_plan_documents (plan_uuid)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id    INTEGER NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		grade      INTEGER NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the schema. Statements are idempotent and run on every start.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverPostgres:
		stmts = postgresMigrations
	case DriverSQLite:
		stmts = sqliteMigrations
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
