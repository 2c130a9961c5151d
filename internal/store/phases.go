package store

import (
	"slices"
	"strings"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// Phases returns copies of all phases in id order.
func (s *Store) Phases() []*models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Phase, 0, len(s.state.Phases))
	for _, p := range s.state.Phases {
		out = append(out, p.Clone())
	}
	slices.SortStableFunc(out, func(a, b *models.Phase) int { return a.ID - b.ID })
	return out
}

// Phase returns a copy of the phase with the given id, or nil.
func (s *Store) Phase(id int) *models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked(id).Clone()
}

// UpdatePhase merges a validated patch into the phase. Returns nil, nil if
// the phase does not exist.
func (s *Store) UpdatePhase(id int, patch models.PhasePatch) (*models.Phase, error) {
	if err := patch.Validate(); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.phaseLocked(id)
	if p == nil {
		return nil, nil
	}
	patch.Apply(p)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// ToggleCriterion flips the completed flag of a go/no-go criterion and
// returns the updated criterion, or nil if the phase or criterion does not
// exist.
func (s *Store) ToggleCriterion(phaseID int, criterionID string) (*models.Criterion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.phaseLocked(phaseID)
	if p == nil {
		return nil, nil
	}
	c := p.Criterion(criterionID)
	if c == nil {
		return nil, nil
	}
	c.Completed = !c.Completed

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	cc := *c
	return &cc, nil
}

// RecordGoNoGoDecision stamps the phase gate with the decision and the
// current time. A go closes the phase and activates the phase with the
// next id if it has not been started. A no-go touches no other phase.
// Returns nil, nil if the phase does not exist.
func (s *Store) RecordGoNoGoDecision(phaseID int, decision models.Verdict, notes string) (*models.Phase, error) {
	if !decision.IsValid() {
		return nil, errors.InvalidArgs("invalid decision: %s", decision).
			WithSuggestion("Use go or no-go")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.phaseLocked(phaseID)
	if p == nil {
		return nil, nil
	}
	p.GoNoGoDecision = &models.GoNoGoDecision{
		Decision: decision,
		Date:     s.now().UTC(),
		Notes:    notes,
	}

	if decision == models.VerdictGo {
		p.Status = models.PhaseDone
		if next := s.phaseLocked(phaseID + 1); next != nil && next.IsNotStarted() {
			next.Status = models.PhaseActive
			s.logger.Info("phase activated", "phase", next.ID, "name", next.Name)
		}
	}

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// AddPurchase books an expense against a phase. An empty date defaults to
// today. Returns nil, nil if the phase does not exist.
func (s *Store) AddPurchase(phaseID int, in models.PurchaseInput) (*models.Purchase, error) {
	if err := in.Validate(); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}
	if in.Date != "" {
		if _, err := common.ParseDate(in.Date); err != nil {
			return nil, errors.InvalidArgs("invalid purchase date %q", in.Date).
				WithSuggestion("Use YYYY-MM-DD")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.phaseLocked(phaseID)
	if p == nil {
		return nil, nil
	}

	pu := &models.Purchase{
		ID:          s.nextIDLocked(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date,
	}
	if pu.Date == "" {
		pu.Date = common.Today(s.now())
	}
	p.Purchases = append(p.Purchases, pu)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	c := *pu
	return &c, nil
}

// DeletePurchase removes a purchase. Returns false if the phase or
// purchase does not exist.
func (s *Store) DeletePurchase(phaseID int, purchaseID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.phaseLocked(phaseID)
	if p == nil {
		return false, nil
	}
	idx := slices.IndexFunc(p.Purchases, func(pu *models.Purchase) bool { return pu.ID == purchaseID })
	if idx < 0 {
		return false, nil
	}
	p.Purchases = slices.Delete(p.Purchases, idx, idx+1)

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}
