package db

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
)

// Snapshot is a stored slot value.
type Snapshot struct {
	Key       string
	Data      []byte
	Digest    string
	Size      int
	UpdatedAt time.Time
}

// SnapshotRepo provides keyed snapshot slots backed by the snapshots table.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get retrieves the slot with the given key. Returns nil, nil if the slot is empty.
func (r *SnapshotRepo) Get(key string) (*Snapshot, error) {
	query := `SELECT key, data, digest, size, updated_at FROM snapshots WHERE key = ?`
	return r.scanOne(r.db.QueryRow(query, key))
}

// Put replaces the slot value, creating the slot if needed.
func (r *SnapshotRepo) Put(key string, data []byte) (*Snapshot, error) {
	if key == "" {
		return nil, fmt.Errorf("snapshot key cannot be empty")
	}

	now := time.Now()
	s := &Snapshot{
		Key:       key,
		Data:      data,
		Digest:    Digest(data),
		Size:      len(data),
		UpdatedAt: now,
	}

	query := `
		INSERT INTO snapshots (key, data, digest, size, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			digest = excluded.digest,
			size = excluded.size,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, s.Key, s.Data, s.Digest, s.Size, FormatTime(now)); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return s, nil
}

// Delete removes the slot with the given key.
func (r *SnapshotRepo) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found")
	}
	return nil
}

// List returns slot metadata ordered by key. Data is not loaded.
func (r *SnapshotRepo) List() ([]*Snapshot, error) {
	rows, err := r.db.Query(`SELECT key, digest, size, updated_at FROM snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		var s Snapshot
		var updatedAt string
		if err := rows.Scan(&s.Key, &s.Digest, &s.Size, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if s.UpdatedAt, err = ParseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}

func (r *SnapshotRepo) scanOne(row *sql.Row) (*Snapshot, error) {
	var s Snapshot
	var updatedAt string
	err := row.Scan(&s.Key, &s.Data, &s.Digest, &s.Size, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	if s.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &s, nil
}
