// Package persist saves and restores the project store snapshot in a
// versioned key-value slot.
package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/diogenes-ai-code/gtadmin/internal/db"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
	"github.com/diogenes-ai-code/gtadmin/internal/seed"
)

// Slot is a key-value store holding serialized snapshots.
// Get returns nil, nil when the key has no value.
type Slot interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
}

// Adapter loads and saves snapshots under a single versioned key.
// Snapshots stored under other keys are ignored.
type Adapter struct {
	slot   Slot
	key    string
	logger *slog.Logger
}

// New creates an Adapter. A nil logger uses slog.Default().
func New(slot Slot, key string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{slot: slot, key: key, logger: logger}
}

// Key returns the storage key of the adapter.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the saved snapshot, or a fresh copy of the seed when the
// slot is empty, unreadable or holds a document that does not parse or
// has null entries. The second return value reports whether the snapshot
// came from the slot.
func (a *Adapter) Load() (*models.Snapshot, bool, error) {
	data, err := a.slot.Get(a.key)
	if err != nil {
		a.logger.Warn("failed to read snapshot, using seed data", "key", a.key, "error", err)
		return a.seed()
	}
	if data == nil {
		a.logger.Debug("no snapshot stored, using seed data", "key", a.key)
		return a.seed()
	}

	var s models.Snapshot
	err = json.Unmarshal(data, &s)
	if err == nil {
		err = s.CheckEntries()
	}
	if err != nil {
		a.logger.Warn("failed to parse snapshot, using seed data", "key", a.key, "error", err)
		return a.seed()
	}
	return &s, true, nil
}

func (a *Adapter) seed() (*models.Snapshot, bool, error) {
	s, err := seed.Dataset()
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}

// Save serializes the snapshot and replaces the slot value.
func (a *Adapter) Save(s *models.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := a.slot.Put(a.key, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// SQLiteSlot adapts a db.SnapshotRepo to the Slot interface.
type SQLiteSlot struct {
	repo *db.SnapshotRepo
}

// NewSQLiteSlot creates a slot backed by the snapshots table.
func NewSQLiteSlot(repo *db.SnapshotRepo) *SQLiteSlot {
	return &SQLiteSlot{repo: repo}
}

// Get implements Slot.
func (s *SQLiteSlot) Get(key string) ([]byte, error) {
	snap, err := s.repo.Get(key)
	if err != nil || snap == nil {
		return nil, err
	}
	return snap.Data, nil
}

// Put implements Slot.
func (s *SQLiteSlot) Put(key string, data []byte) error {
	_, err := s.repo.Put(key, data)
	return err
}

// MemorySlot is an in-process Slot. It is safe for concurrent use.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
	puts   int
}

// NewMemorySlot creates an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Get implements Slot.
func (m *MemorySlot) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Put implements Slot.
func (m *MemorySlot) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), data...)
	m.puts++
	return nil
}

// Puts returns how many times Put has been called.
func (m *MemorySlot) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
