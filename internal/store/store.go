// Package store provides the in-memory project store: phases, tickets,
// labels and the ticket-number counter, persisted after every mutation.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// DefaultTicketPrefix is the prefix of generated ticket numbers.
const DefaultTicketPrefix = "GT"

// Persister loads and saves store snapshots.
// Load reports whether the snapshot came from storage or from seed data.
type Persister interface {
	Load() (*models.Snapshot, bool, error)
	Save(*models.Snapshot) error
}

// Options configures a Store.
type Options struct {
	// TicketPrefix is prepended to generated ticket numbers. Default: GT
	TicketPrefix string
	// Logger receives store diagnostics. Default: slog.Default()
	Logger *slog.Logger
	// Now returns the current time. Default: time.Now
	Now func() time.Time
}

// Store is the single source of truth for project state. All reads go
// through query methods that return copies, and all writes go through
// mutation methods that persist synchronously before returning.
//
// A Store is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	persister Persister
	prefix    string
	logger    *slog.Logger
	now       func() time.Time

	state  *models.Snapshot
	lastID int64
}

// Open loads the persisted snapshot (or the seed), runs the migration
// pipeline and returns the store. The snapshot is re-persisted only if a
// migration step changed it.
func Open(p Persister, opts Options) (*Store, error) {
	s := &Store{
		persister: p,
		prefix:    opts.TicketPrefix,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.prefix == "" {
		s.prefix = DefaultTicketPrefix
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	snap, fromStorage, err := p.Load()
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to load snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied := s.migrate(snap)
	s.replaceLocked(snap)

	if len(applied) > 0 {
		s.logger.Info("migrated snapshot", "steps", applied, "from_storage", fromStorage)
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// replaceLocked swaps in a new state and raises the id high-water mark
// past every id it contains. The mark never decreases.
func (s *Store) replaceLocked(snap *models.Snapshot) {
	s.state = snap
	for _, t := range snap.Tickets {
		s.lastID = max(s.lastID, t.ID)
		for _, c := range t.Comments {
			s.lastID = max(s.lastID, c.ID)
		}
	}
	for _, p := range snap.Phases {
		for _, pu := range p.Purchases {
			s.lastID = max(s.lastID, pu.ID)
		}
	}
}

// persistLocked saves the current state. The in-memory change is kept
// even when saving fails.
func (s *Store) persistLocked() error {
	if err := s.persister.Save(s.state); err != nil {
		s.logger.Error("failed to persist snapshot", "error", err)
		return errors.WrapInternal(err, "failed to persist snapshot")
	}
	return nil
}

// nextIDLocked returns a time-derived id, bumped past the last issued id
// so ids stay unique within the same millisecond.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// TicketPrefix returns the prefix of generated ticket numbers.
func (s *Store) TicketPrefix() string {
	return s.prefix
}

// Project returns a copy of the project metadata.
func (s *Store) Project() *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.state.Project
	return &p
}

// Snapshot returns a deep copy of the whole store state.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
