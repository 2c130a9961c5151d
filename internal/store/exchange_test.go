package store

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gterrors "github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// busyFixtureStore is the fixture with a little of everything recorded.
func busyFixtureStore(t *testing.T) *Store {
	t.Helper()
	s, _ := newFixtureStore(t)
	_, err := s.AddDependency(103, 102)
	require.NoError(t, err)
	_, err = s.AddComment(102, "Offerte opgevraagd")
	require.NoError(t, err)
	_, err = s.ToggleTicketLabel(102, "waiting")
	require.NoError(t, err)
	_, err = s.AddPurchase(1, models.PurchaseInput{Description: "Domeinnaam", Amount: 12.5})
	require.NoError(t, err)
	_, err = s.RecordGoNoGoDecision(1, models.VerdictGo, "door")
	require.NoError(t, err)
	return s
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := busyFixtureStore(t)
	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst, slot := newSeedStore(t)
	ok, err := dst.Import(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, slot.Puts())

	assert.Equal(t, src.Snapshot(), dst.Snapshot())
}

func TestExport_IsIndentedJSON(t *testing.T) {
	s, _ := newFixtureStore(t)

	data, err := s.ExportBytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"project\"")))

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 4, snap.NextTicketNumber)
}

func TestExportImport_Compressed(t *testing.T) {
	src := busyFixtureStore(t)
	var buf bytes.Buffer
	require.NoError(t, src.ExportCompressed(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), zstdMagic))

	dst, _ := newSeedStore(t)
	ok, err := dst.Import(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, src.Snapshot(), dst.Snapshot())
}

func TestImport_JSONC(t *testing.T) {
	s, _ := newSeedStore(t)

	doc := `{
  // hand-edited backup
  "project": {"name": "Proef", "currency": "EUR",},
  "phases": [
    {"id": 1, "name": "Eerste fase", "status": "actief",},
  ],
  "tickets": [],
}`
	ok, err := s.Import([]byte(doc))
	require.NoError(t, err)
	require.True(t, ok)

	snap := s.Snapshot()
	assert.Equal(t, "Proef", snap.Project.Name)
	require.Len(t, snap.Phases, 1)
	assert.Equal(t, models.PhaseActive, snap.Phases[0].Status)
	assert.Empty(t, snap.Tickets)
	assert.Len(t, snap.Labels, 5, "default labels are added")
	assert.Equal(t, 1, snap.NextTicketNumber)
}

func TestImport_MissingFieldsIsIgnored(t *testing.T) {
	for name, doc := range map[string]string{
		"no project":  `{"phases": [], "tickets": []}`,
		"null phases": `{"project": {"name": "X"}, "phases": null}`,
		"empty":       `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			s, slot := newFixtureStore(t)
			before := s.Snapshot()

			ok, err := s.Import([]byte(doc))
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, before, s.Snapshot())
			assert.Equal(t, 1, slot.Puts())
		})
	}
}

func TestImport_Rejected(t *testing.T) {
	for name, doc := range map[string]string{
		"malformed":      `{"project": `,
		"not an object":  `[1, 2, 3]`,
		"invalid status": `{"project": {"name": "X"}, "phases": [], "tickets": [{"id": 1, "title": "T", "phaseId": 1, "status": "blocked", "priority": "must"}]}`,
		"bad phase":      `{"project": {"name": "X"}, "phases": [{"id": 0, "name": "P", "status": "active"}]}`,
		"bad zstd":       string(append(append([]byte{}, zstdMagic...), 0x00, 0x01)),
		"null phase":     `{"project": {"name": "X"}, "phases": [null]}`,
		"null ticket":    `{"project": {"name": "X"}, "phases": [], "tickets": [null]}`,
		"null purchase":  `{"project": {"name": "X"}, "phases": [{"id": 1, "name": "P", "status": "active", "purchases": [null]}]}`,
		"null comment":   `{"project": {"name": "X"}, "phases": [], "tickets": [{"id": 1, "title": "T", "phaseId": 1, "status": "todo", "priority": "must", "comments": [null]}]}`,
		"null label":     `{"project": {"name": "X"}, "phases": [], "labels": [null]}`,
	} {
		t.Run(name, func(t *testing.T) {
			s, slot := newFixtureStore(t)
			before := s.Snapshot()

			ok, err := s.Import([]byte(doc))
			assert.False(t, ok)
			assert.True(t, gterrors.Is(err, gterrors.KindInvalidArgs), "got %v", err)
			assert.Equal(t, before, s.Snapshot())
			assert.Equal(t, 1, slot.Puts())
		})
	}
}

func TestReset(t *testing.T) {
	s := busyFixtureStore(t)

	require.NoError(t, s.Reset())

	snap := s.Snapshot()
	assert.Len(t, snap.Tickets, 92)
	assert.Len(t, snap.Phases, 4)
	assert.Equal(t, 62, snap.NextTicketNumber)

	tk, err := s.AddTicket(models.TicketInput{Title: "Na reset", PhaseID: 1})
	require.NoError(t, err)
	assert.Equal(t, "GT-062", tk.TicketNumber)
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2026, time.March, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "gerustthuis-admin-2026-03-07.json", ExportFileName(at, false))
	assert.Equal(t, "gerustthuis-admin-2026-03-07.json.zst", ExportFileName(at, true))
}
