// Package db holds the sqlite file that backs gtadmin: connection setup,
// schema migrations and the keyed snapshot slots.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is where the database lives unless configured otherwise.
const DefaultDBPath = "~/.gtadmin/gtadmin.db"

// DB is an open gtadmin database.
type DB struct {
	*sql.DB
	path string
}

// ResolvePath returns path with ~ expanded, or the default path when
// path is empty.
func ResolvePath(path string) string {
	if path == "" {
		path = DefaultDBPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// dsn enables WAL so the API server and CLI commands can read while a
// snapshot is written.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)
}

// Open opens the database at path, creating its directory if needed.
func Open(path string) (*DB, error) {
	path = ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; every snapshot save is a single statement.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the resolved file path of the database.
func (d *DB) Path() string {
	return d.path
}

// Close closes the connection. Closing a DB twice is harmless.
func (d *DB) Close() error {
	if d.DB == nil {
		return nil
	}
	err := d.DB.Close()
	d.DB = nil
	return err
}

// Exists reports whether a database file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(ResolvePath(path))
	return err == nil
}

// RemoveSidecars removes the -wal and -shm files next to the database.
// Leftovers would be replayed over a database file replaced on disk.
func RemoveSidecars(path string) {
	path = ResolvePath(path)
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(path + suffix)
	}
}

// Delete removes the database file and its sidecars.
func Delete(path string) error {
	RemoveSidecars(path)
	return os.Remove(ResolvePath(path))
}

// FormatTime formats t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
