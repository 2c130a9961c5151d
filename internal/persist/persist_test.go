package persist

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogenes-ai-code/gtadmin/internal/db"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

const testKey = "gerustthuis-admin-v2"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingSlot struct{}

func (failingSlot) Get(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingSlot) Put(string, []byte) error   { return errors.New("disk on fire") }

func TestLoad_EmptySlotUsesSeed(t *testing.T) {
	a := New(NewMemorySlot(), testKey, quietLogger())

	s, fromSlot, err := a.Load()
	require.NoError(t, err)
	assert.False(t, fromSlot)
	assert.Equal(t, "GerustThuis", s.Project.Name)
	assert.Equal(t, 62, s.NextTicketNumber)
}

func TestLoad_ParseFailureUsesSeed(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Put(testKey, []byte("{not json")))

	s, fromSlot, err := New(slot, testKey, quietLogger()).Load()
	require.NoError(t, err)
	assert.False(t, fromSlot)
	assert.Len(t, s.Phases, 4)
}

func TestLoad_MissingProjectUsesSeed(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Put(testKey, []byte(`{"phases":[]}`)))

	s, fromSlot, err := New(slot, testKey, quietLogger()).Load()
	require.NoError(t, err)
	assert.False(t, fromSlot)
	assert.NotNil(t, s.Project)
}

func TestLoad_NullEntriesUseSeed(t *testing.T) {
	for name, doc := range map[string]string{
		"phase":    `{"project":{"name":"X"},"phases":[null]}`,
		"ticket":   `{"project":{"name":"X"},"phases":[],"tickets":[null]}`,
		"purchase": `{"project":{"name":"X"},"phases":[{"id":1,"name":"P","status":"active","purchases":[null]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			slot := NewMemorySlot()
			require.NoError(t, slot.Put(testKey, []byte(doc)))

			s, fromSlot, err := New(slot, testKey, quietLogger()).Load()
			require.NoError(t, err)
			assert.False(t, fromSlot)
			assert.Len(t, s.Phases, 4)
		})
	}
}

func TestLoad_ReadFailureUsesSeed(t *testing.T) {
	s, fromSlot, err := New(failingSlot{}, testKey, quietLogger()).Load()
	require.NoError(t, err)
	assert.False(t, fromSlot)
	assert.NotNil(t, s)
}

func TestSaveAndLoad(t *testing.T) {
	slot := NewMemorySlot()
	a := New(slot, testKey, quietLogger())

	snap := &models.Snapshot{
		Project:          &models.Project{Name: "Other", Currency: "EUR"},
		Phases:           []*models.Phase{},
		Tickets:          []*models.Ticket{},
		Labels:           []*models.Label{},
		NextTicketNumber: 7,
	}
	require.NoError(t, a.Save(snap))
	assert.Equal(t, 1, slot.Puts())

	got, fromSlot, err := a.Load()
	require.NoError(t, err)
	assert.True(t, fromSlot)
	assert.Equal(t, snap, got)
}

func TestLoad_IgnoresOtherKeys(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Put("gerustthuis-admin-v1", []byte(`{"project":{"name":"Old"}}`)))

	s, fromSlot, err := New(slot, testKey, quietLogger()).Load()
	require.NoError(t, err)
	assert.False(t, fromSlot)
	assert.Equal(t, "GerustThuis", s.Project.Name)
}

func TestSave_Failure(t *testing.T) {
	err := New(failingSlot{}, testKey, quietLogger()).Save(&models.Snapshot{Project: &models.Project{}})
	assert.ErrorContains(t, err, "disk on fire")
}

func TestSQLiteSlot(t *testing.T) {
	database := db.NewTestDB(t)

	slot := NewSQLiteSlot(db.NewSnapshotRepo(database.DB))

	data, err := slot.Get(testKey)
	require.NoError(t, err)
	assert.Nil(t, data)

	a := New(slot, testKey, quietLogger())
	seedSnap, _, err := a.Load()
	require.NoError(t, err)
	require.NoError(t, a.Save(seedSnap))

	got, fromSlot, err := a.Load()
	require.NoError(t, err)
	assert.True(t, fromSlot)
	assert.Equal(t, seedSnap.NextTicketNumber, got.NextTicketNumber)
	assert.Len(t, got.Tickets, len(seedSnap.Tickets))
}
