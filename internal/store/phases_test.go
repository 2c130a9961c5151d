package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gterrors "github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

func phaseStatuses(s *Store) []models.PhaseStatus {
	var out []models.PhaseStatus
	for _, p := range s.Phases() {
		out = append(out, p.Status)
	}
	return out
}

func TestRecordGoNoGoDecision_Go(t *testing.T) {
	s, _ := newFixtureStore(t)

	p, err := s.RecordGoNoGoDecision(1, models.VerdictGo, "Genoeg aanmeldingen")
	require.NoError(t, err)
	require.NotNil(t, p.GoNoGoDecision)
	assert.Equal(t, models.VerdictGo, p.GoNoGoDecision.Decision)
	assert.Equal(t, "Genoeg aanmeldingen", p.GoNoGoDecision.Notes)
	assert.Equal(t, testNow, p.GoNoGoDecision.Date)

	assert.Equal(t, []models.PhaseStatus{models.PhaseDone, models.PhaseActive, models.PhaseNotStarted}, phaseStatuses(s))
}

func TestRecordGoNoGoDecision_GoOnlyActivatesNotStarted(t *testing.T) {
	s, _ := newFixtureStore(t)
	done := models.PhaseDone
	_, err := s.UpdatePhase(2, models.PhasePatch{Status: &done})
	require.NoError(t, err)

	_, err = s.RecordGoNoGoDecision(1, models.VerdictGo, "")
	require.NoError(t, err)

	assert.Equal(t, []models.PhaseStatus{models.PhaseDone, models.PhaseDone, models.PhaseNotStarted}, phaseStatuses(s))
}

func TestRecordGoNoGoDecision_LastPhase(t *testing.T) {
	s, _ := newFixtureStore(t)

	_, err := s.RecordGoNoGoDecision(3, models.VerdictGo, "")
	require.NoError(t, err)
	assert.Equal(t, []models.PhaseStatus{models.PhaseActive, models.PhaseNotStarted, models.PhaseDone}, phaseStatuses(s))
}

func TestRecordGoNoGoDecision_NoGo(t *testing.T) {
	s, _ := newFixtureStore(t)
	before := phaseStatuses(s)

	p, err := s.RecordGoNoGoDecision(1, models.VerdictNoGo, "Propositie aanpassen")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictNoGo, p.GoNoGoDecision.Decision)
	assert.Equal(t, before, phaseStatuses(s), "no-go changes no status")
}

func TestRecordGoNoGoDecision_Invalid(t *testing.T) {
	s, slot := newFixtureStore(t)

	_, err := s.RecordGoNoGoDecision(1, "maybe", "")
	assert.True(t, gterrors.Is(err, gterrors.KindInvalidArgs))

	p, err := s.RecordGoNoGoDecision(9, models.VerdictGo, "")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1, slot.Puts())
}

func TestUpdatePhase(t *testing.T) {
	s, _ := newFixtureStore(t)

	goal := "Valideer marktvraag"
	p, err := s.UpdatePhase(1, models.PhasePatch{Goal: &goal, Budget: models.Some(750.0)})
	require.NoError(t, err)
	assert.Equal(t, goal, p.Goal)
	assert.Equal(t, 750.0, *p.Budget)
	assert.Equal(t, "Test the Market", p.Name)
	assert.Equal(t, 750.0, s.TotalBudget())

	p, err = s.UpdatePhase(99, models.PhasePatch{Goal: &goal})
	require.NoError(t, err)
	assert.Nil(t, p)

	bad := models.PhaseStatus("paused")
	_, err = s.UpdatePhase(1, models.PhasePatch{Status: &bad})
	assert.True(t, gterrors.Is(err, gterrors.KindInvalidArgs))
}

func TestToggleCriterion(t *testing.T) {
	s, _ := newFixtureStore(t)

	c, err := s.ToggleCriterion(1, "1-1")
	require.NoError(t, err)
	assert.True(t, c.Completed)
	assert.Equal(t, 50, s.CriteriaProgress(1))

	c, err = s.ToggleCriterion(1, "1-1")
	require.NoError(t, err)
	assert.False(t, c.Completed)
	assert.Equal(t, 0, s.CriteriaProgress(1))

	c, err = s.ToggleCriterion(1, "9-9")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = s.ToggleCriterion(9, "1-1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestPhaseProgress(t *testing.T) {
	s, _ := newFixtureStore(t)

	assert.Equal(t, 33, s.PhaseProgress(1), "1 of 3 done")
	assert.Equal(t, 0, s.PhaseProgress(2), "no tickets")

	done := models.StatusDone
	for _, id := range []int64{102, 103} {
		_, err := s.UpdateTicket(id, models.TicketPatch{Status: &done})
		require.NoError(t, err)
	}
	assert.Equal(t, 100, s.PhaseProgress(1))
}

func TestPurchases(t *testing.T) {
	s, _ := newFixtureStore(t)

	pu, err := s.AddPurchase(1, models.PurchaseInput{Description: "Domeinnaam", Amount: 12.5})
	require.NoError(t, err)
	require.NotNil(t, pu)
	assert.Equal(t, "2026-10-15", pu.Date)

	_, err = s.AddPurchase(1, models.PurchaseInput{Description: "Ads", Amount: 30, Date: "2026-09-01"})
	require.NoError(t, err)
	_, err = s.AddPurchase(2, models.PurchaseInput{Description: "Sensoren", Amount: 7.5})
	require.NoError(t, err)

	assert.Equal(t, 42.5, s.PhaseSpent(1))
	assert.Equal(t, 50.0, s.TotalSpent())

	ok, err := s.DeletePurchase(1, pu.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30.0, s.PhaseSpent(1))

	ok, err = s.DeletePurchase(1, pu.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddPurchase_Invalid(t *testing.T) {
	s, _ := newFixtureStore(t)

	_, err := s.AddPurchase(1, models.PurchaseInput{Description: "", Amount: 1})
	assert.True(t, gterrors.Is(err, gterrors.KindInvalidArgs))

	_, err = s.AddPurchase(1, models.PurchaseInput{Description: "x", Amount: 1, Date: "gisteren"})
	assert.True(t, gterrors.Is(err, gterrors.KindInvalidArgs))

	pu, err := s.AddPurchase(9, models.PurchaseInput{Description: "x", Amount: 1})
	require.NoError(t, err)
	assert.Nil(t, pu)
}

func TestSummary(t *testing.T) {
	s, _ := newFixtureStore(t)

	sum := s.Summary()
	assert.Equal(t, 3, sum.TotalTickets)
	assert.Equal(t, 1, sum.ActivePhaseID)
	require.Len(t, sum.Phases, 3)
	assert.Equal(t, 33, sum.Phases[0].Progress)
}
