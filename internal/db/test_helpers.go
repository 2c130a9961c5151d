package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns a migrated in-memory database that is closed when
// the test ends. Tests never touch a database file, so a mistyped path
// cannot overwrite a real project snapshot.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	// Every connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate test database: %v", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	t.Cleanup(func() { d.Close() })
	return d
}
