package testutil

import (
	"database/sql"
	"testing"

	"school_dashboard/internal/infra/database"
)

// NewTestDB returns a migrated in-memory SQLite database closed at test end.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
