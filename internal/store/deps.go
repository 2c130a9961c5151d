package store

import (
	"slices"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// AddDependency records that ticketID depends on dependsOnID, keeping
// dependsOn and blockedBy symmetric. Both tickets must exist. Self links
// and cycles are not rejected. Returns false if either ticket is missing.
func (s *Store) AddDependency(ticketID, dependsOnID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(ticketID)
	dep := s.ticketLocked(dependsOnID)
	if t == nil || dep == nil {
		return false, nil
	}

	if !slices.Contains(t.DependsOn, dependsOnID) {
		t.DependsOn = append(t.DependsOn, dependsOnID)
	}
	if !slices.Contains(dep.BlockedBy, ticketID) {
		dep.BlockedBy = append(dep.BlockedBy, ticketID)
	}

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveDependency removes the link from both sides. Whichever side still
// exists is edited, so links to deleted tickets can be cleaned up. Returns
// false if neither ticket exists.
func (s *Store) RemoveDependency(ticketID, dependsOnID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(ticketID)
	dep := s.ticketLocked(dependsOnID)
	if t == nil && dep == nil {
		return false, nil
	}

	if t != nil {
		t.DependsOn = slices.DeleteFunc(t.DependsOn, func(id int64) bool { return id == dependsOnID })
	}
	if dep != nil {
		dep.BlockedBy = slices.DeleteFunc(dep.BlockedBy, func(id int64) bool { return id == ticketID })
	}

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// DependencyTickets returns the tickets id directly depends on. Dangling
// references are skipped.
func (s *Store) DependencyTickets(id int64) []*models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(id)
	if t == nil {
		return []*models.Ticket{}
	}
	return s.resolveLocked(t.DependsOn)
}

// BlockedTickets returns the tickets waiting on id.
func (s *Store) BlockedTickets(id int64) []*models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(id)
	if t == nil {
		return []*models.Ticket{}
	}
	return s.resolveLocked(t.BlockedBy)
}

func (s *Store) resolveLocked(ids []int64) []*models.Ticket {
	out := []*models.Ticket{}
	for _, id := range ids {
		if t := s.ticketLocked(id); t != nil {
			out = append(out, t.Clone())
		}
	}
	return out
}

// TicketChain returns id and its transitive prerequisites, every
// prerequisite ahead of the tickets depending on it. Each ticket appears
// once. Cycles are cut at the first revisit, so the order is only
// meaningful for acyclic graphs.
func (s *Store) TicketChain(id int64) []*models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, _ := s.chainLocked(id, false)
	return chain
}

// TicketChainStrict is TicketChain but fails with a StateError when the
// dependency graph reachable from id contains a cycle.
func (s *Store) TicketChainStrict(id int64) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chainLocked(id, true)
}

func (s *Store) chainLocked(id int64, strict bool) ([]*models.Ticket, error) {
	chain := []*models.Ticket{}
	visited := make(map[int64]bool)
	onPath := make(map[int64]bool)
	var cycleAt *models.Ticket

	var walk func(id int64)
	walk = func(id int64) {
		if visited[id] {
			if onPath[id] && cycleAt == nil {
				cycleAt = s.ticketLocked(id)
			}
			return
		}
		visited[id] = true

		t := s.ticketLocked(id)
		if t == nil {
			return
		}
		onPath[id] = true
		for _, depID := range t.DependsOn {
			walk(depID)
		}
		delete(onPath, id)
		chain = append(chain, t.Clone())
	}
	walk(id)

	if strict && cycleAt != nil {
		return nil, errors.StateError("dependency cycle through ticket %s", cycleAt.TicketNumber).
			WithDetails("ticket_id", cycleAt.ID)
	}
	return chain, nil
}
