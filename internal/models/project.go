package models

import "fmt"

// Project holds the static metadata of the tracked project.
type Project struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TotalBudget float64 `json:"totalBudget"`
	Currency    string  `json:"currency"`
}

// Snapshot is the full serialized state of the project store. The same
// document is persisted locally, exported and imported.
type Snapshot struct {
	Project          *Project  `json:"project"`
	Phases           []*Phase  `json:"phases"`
	Tickets          []*Ticket `json:"tickets"`
	Labels           []*Label  `json:"labels"`
	NextTicketNumber int       `json:"nextTicketNumber"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{NextTicketNumber: s.NextTicketNumber}
	if s.Project != nil {
		p := *s.Project
		out.Project = &p
	}
	if s.Phases != nil {
		out.Phases = make([]*Phase, len(s.Phases))
		for i, p := range s.Phases {
			out.Phases[i] = p.Clone()
		}
	}
	if s.Tickets != nil {
		out.Tickets = make([]*Ticket, len(s.Tickets))
		for i, t := range s.Tickets {
			out.Tickets[i] = t.Clone()
		}
	}
	if s.Labels != nil {
		out.Labels = make([]*Label, len(s.Labels))
		for i, l := range s.Labels {
			c := *l
			out.Labels[i] = &c
		}
	}
	return out
}

// CheckEntries rejects a missing project and null entries in any list
// of the snapshot. Migration walks every entry, so this runs before it.
func (s *Snapshot) CheckEntries() error {
	if s.Project == nil {
		return fmt.Errorf("project is required")
	}
	for i, p := range s.Phases {
		if p == nil {
			return fmt.Errorf("phase entry %d cannot be null", i)
		}
		for j, pu := range p.Purchases {
			if pu == nil {
				return fmt.Errorf("phase %d: purchase entry %d cannot be null", p.ID, j)
			}
		}
		for j, c := range p.GoNoGoCriteria {
			if c == nil {
				return fmt.Errorf("phase %d: criterion entry %d cannot be null", p.ID, j)
			}
		}
	}
	for i, t := range s.Tickets {
		if t == nil {
			return fmt.Errorf("ticket entry %d cannot be null", i)
		}
		for j, c := range t.Comments {
			if c == nil {
				return fmt.Errorf("ticket %d: comment entry %d cannot be null", t.ID, j)
			}
		}
	}
	for i, l := range s.Labels {
		if l == nil {
			return fmt.Errorf("label entry %d cannot be null", i)
		}
	}
	return nil
}

// Validate checks enum membership and id uniqueness across the snapshot.
// It expects legacy shapes to have been migrated already.
func (s *Snapshot) Validate() error {
	if err := s.CheckEntries(); err != nil {
		return err
	}

	phaseIDs := make(map[int]bool, len(s.Phases))
	for _, p := range s.Phases {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("phase %d: %w", p.ID, err)
		}
		if phaseIDs[p.ID] {
			return fmt.Errorf("duplicate phase id: %d", p.ID)
		}
		phaseIDs[p.ID] = true
	}

	ticketIDs := make(map[int64]bool, len(s.Tickets))
	for _, t := range s.Tickets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("ticket %d: %w", t.ID, err)
		}
		if ticketIDs[t.ID] {
			return fmt.Errorf("duplicate ticket id: %d", t.ID)
		}
		ticketIDs[t.ID] = true
	}

	labelIDs := make(map[string]bool, len(s.Labels))
	for _, l := range s.Labels {
		if err := l.Validate(); err != nil {
			return err
		}
		if labelIDs[l.ID] {
			return fmt.Errorf("duplicate label id: %s", l.ID)
		}
		labelIDs[l.ID] = true
	}
	return nil
}
