package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// newProvider builds a goose provider over the embedded migrations. The
// provider does not own db; callers must not Close it.
func newProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, nil
}

// Migrate applies pending schema migrations.
func (d *DB) Migrate() error {
	return Migrate(d.DB)
}

// Migrate applies pending schema migrations to db.
func Migrate(db *sql.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return err
	}
	if _, err := p.Up(context.Background()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationStatus returns the schema version of the database.
func (d *DB) MigrationStatus() (int64, error) {
	p, err := newProvider(d.DB)
	if err != nil {
		return 0, err
	}
	version, err := p.GetDBVersion(context.Background())
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}
