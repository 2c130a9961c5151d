package cli

import (
	"github.com/diogenes-ai-code/gtadmin/internal/db"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/persist"
	"github.com/diogenes-ai-code/gtadmin/internal/store"
)

// app is an open database with the project store loaded from it.
type app struct {
	db    *db.DB
	store *store.Store
}

func (a *app) Close() error {
	return a.db.Close()
}

// openStore opens the database, applies pending schema migrations and
// loads the project store from the configured snapshot slot.
func openStore() (*app, error) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to open database").WithSuggestion(SuggestRunInit)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, errors.WrapInternal(err, "failed to migrate database")
	}

	cfg := GetConfig()
	slot := persist.NewSQLiteSlot(db.NewSnapshotRepo(database.DB))
	st, err := store.Open(persist.New(slot, cfg.StorageKey, logger), store.Options{
		TicketPrefix: cfg.TicketPrefix,
		Logger:       logger,
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	return &app{db: database, store: st}, nil
}
