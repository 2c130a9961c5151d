package store

import (
	"slices"
	"strings"

	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// TicketFilter selects tickets. Zero-valued fields match everything.
type TicketFilter struct {
	PhaseID int
	Status  models.TicketStatus
	Epic    string
	Label   string
}

func (f TicketFilter) matches(t *models.Ticket) bool {
	if f.PhaseID != 0 && t.PhaseID != f.PhaseID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Epic != "" && t.Epic != f.Epic {
		return false
	}
	if f.Label != "" && !t.HasLabel(f.Label) {
		return false
	}
	return true
}

// ListTickets returns copies of the tickets matching the filter, in
// insertion order.
func (s *Store) ListTickets(f TicketFilter) []*models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Ticket{}
	for _, t := range s.state.Tickets {
		if f.matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// TicketsByPhase returns the tickets of a phase.
func (s *Store) TicketsByPhase(phaseID int) []*models.Ticket {
	return s.ListTickets(TicketFilter{PhaseID: phaseID})
}

// TicketsByStatus returns the tickets with the given status.
func (s *Store) TicketsByStatus(status models.TicketStatus) []*models.Ticket {
	return s.ListTickets(TicketFilter{Status: status})
}

// TicketsByEpic returns the tickets of one epic within a phase.
func (s *Store) TicketsByEpic(phaseID int, epic string) []*models.Ticket {
	return s.ListTickets(TicketFilter{PhaseID: phaseID, Epic: epic})
}

// Epics returns the distinct epics of a phase in order of first appearance.
// Tickets without an epic are skipped.
func (s *Store) Epics(phaseID int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	epics := []string{}
	for _, t := range s.state.Tickets {
		if t.PhaseID == phaseID && t.Epic != "" && !slices.Contains(epics, t.Epic) {
			epics = append(epics, t.Epic)
		}
	}
	return epics
}

// Ticket returns a copy of the ticket with the given id, or nil.
func (s *Store) Ticket(id int64) *models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticketLocked(id).Clone()
}

// TicketByNumber returns a copy of the ticket with the given number, or nil.
// The comparison ignores case.
func (s *Store) TicketByNumber(number string) *models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.state.Tickets {
		if strings.EqualFold(t.TicketNumber, number) {
			return t.Clone()
		}
	}
	return nil
}

// ResolveTicket looks a ticket up by id or ticket number, as typed by a user.
func (s *Store) ResolveTicket(ref string) (*models.Ticket, error) {
	id, number, err := common.ParseTicketRef(ref)
	if err != nil {
		return nil, errors.InvalidArgs("invalid ticket reference %q", ref).
			WithSuggestion("Use a ticket id (101) or a ticket number (TM-01)")
	}
	var t *models.Ticket
	if number != "" {
		t = s.TicketByNumber(number)
	} else {
		t = s.Ticket(id)
	}
	if t == nil {
		return nil, errors.NotFound("ticket %s not found", ref)
	}
	return t, nil
}

// NextTicketNumber returns the number the next ticket will get, without
// consuming it.
func (s *Store) NextTicketNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.FormatTicketNumber(s.prefix, s.state.NextTicketNumber)
}

func (s *Store) ticketLocked(id int64) *models.Ticket {
	for _, t := range s.state.Tickets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) phaseLocked(id int) *models.Phase {
	for _, p := range s.state.Phases {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) labelLocked(id string) *models.Label {
	for _, l := range s.state.Labels {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (s *Store) checkLabelsLocked(ids []string) error {
	for _, id := range ids {
		if s.labelLocked(id) == nil {
			return errors.InvalidArgs("unknown label %q", id)
		}
	}
	return nil
}

// AddTicket creates a ticket. It gets a time-derived id and the next
// ticket number; the counter advances exactly once.
func (s *Store) AddTicket(in models.TicketInput) (*models.Ticket, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phaseLocked(in.PhaseID) == nil {
		return nil, errors.InvalidArgs("phase %d does not exist", in.PhaseID)
	}
	if err := s.checkLabelsLocked(in.Labels); err != nil {
		return nil, err
	}

	now := s.now()
	t := &models.Ticket{
		ID:                 s.nextIDLocked(),
		TicketNumber:       common.FormatTicketNumber(s.prefix, s.state.NextTicketNumber),
		Title:              in.Title,
		Description:        in.Description,
		PhaseID:            in.PhaseID,
		Epic:               in.Epic,
		Status:             in.Status,
		Priority:           in.Priority,
		Value:              in.Value,
		AcceptanceCriteria: in.AcceptanceCriteria,
		EstimatedHours:     copyPtr(in.EstimatedHours),
		PlannedWeek:        copyPtr(in.PlannedWeek),
		Labels:             slices.Clone(in.Labels),
		Comments:           []*models.Comment{},
		DependsOn:          []int64{},
		BlockedBy:          []int64{},
		CreatedAt:          &now,
	}
	s.state.Tickets = append(s.state.Tickets, t)
	s.state.NextTicketNumber++

	s.logger.Debug("ticket added", "ticket", t.TicketNumber, "id", t.ID)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// UpdateTicket merges a validated patch into the ticket. Returns nil, nil
// if the ticket does not exist.
func (s *Store) UpdateTicket(id int64, patch models.TicketPatch) (*models.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, errors.InvalidArgs("%s", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(id)
	if t == nil {
		return nil, nil
	}
	if patch.PhaseID != nil && s.phaseLocked(*patch.PhaseID) == nil {
		return nil, errors.InvalidArgs("phase %d does not exist", *patch.PhaseID)
	}
	if patch.Labels != nil {
		if err := s.checkLabelsLocked(*patch.Labels); err != nil {
			return nil, err
		}
	}

	patch.Apply(t)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// DeleteTicket removes a ticket. Other tickets keep any dependency links
// pointing at it. Returns false if the ticket does not exist.
func (s *Store) DeleteTicket(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.state.Tickets, func(t *models.Ticket) bool { return t.ID == id })
	if idx < 0 {
		return false, nil
	}
	s.state.Tickets = slices.Delete(s.state.Tickets, idx, idx+1)

	dangling := 0
	for _, t := range s.state.Tickets {
		if slices.Contains(t.DependsOn, id) || slices.Contains(t.BlockedBy, id) {
			dangling++
		}
	}
	s.logger.Debug("ticket deleted", "id", id, "dangling_references", dangling)

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// AddComment appends a comment to a ticket. Returns nil, nil if the ticket
// does not exist.
func (s *Store) AddComment(ticketID int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.InvalidArgs("comment text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(ticketID)
	if t == nil {
		return nil, nil
	}
	c := &models.Comment{ID: s.nextIDLocked(), Text: text, CreatedAt: s.now()}
	t.Comments = append(t.Comments, c)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	cc := *c
	return &cc, nil
}

// DeleteComment removes a comment from a ticket. Returns false if either
// does not exist.
func (s *Store) DeleteComment(ticketID, commentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked(ticketID)
	if t == nil {
		return false, nil
	}
	idx := slices.IndexFunc(t.Comments, func(c *models.Comment) bool { return c.ID == commentID })
	if idx < 0 {
		return false, nil
	}
	t.Comments = slices.Delete(t.Comments, idx, idx+1)

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
