package store

import "github.com/diogenes-ai-code/gtadmin/internal/metrics"

// PhaseProgress returns the done percentage of the phase's tickets.
func (s *Store) PhaseProgress(phaseID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.PhaseProgress(s.state.Tickets, phaseID)
}

// CriteriaProgress returns the completed percentage of the phase's
// go/no-go criteria, or 0 if the phase does not exist.
func (s *Store) CriteriaProgress(phaseID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.phaseLocked(phaseID); p != nil {
		return metrics.CriteriaProgress(p)
	}
	return 0
}

// PhaseSpent returns the purchases total of a phase.
func (s *Store) PhaseSpent(phaseID int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.phaseLocked(phaseID); p != nil {
		return metrics.PhaseSpent(p)
	}
	return 0
}

// TotalSpent returns the purchases total across phases.
func (s *Store) TotalSpent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.TotalSpent(s.state.Phases)
}

// TotalBudget returns the sum of the phase budgets that are set.
func (s *Store) TotalBudget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.TotalBudget(s.state.Phases)
}

// Summary returns the dashboard roll-up of the current state.
func (s *Store) Summary() *metrics.Summary {
	return metrics.Summarize(s.Snapshot())
}

// Planning returns the tickets matching f bucketed by planned week.
func (s *Store) Planning(f TicketFilter) []metrics.WeekPlan {
	return metrics.Planning(s.ListTickets(f))
}
