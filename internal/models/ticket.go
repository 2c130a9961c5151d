package models

import (
	"fmt"
	"slices"
	"time"
)

// Ticket represents a unit of work belonging to a phase.
type Ticket struct {
	ID                 int64        `json:"id"`
	TicketNumber       string       `json:"ticketNumber,omitempty"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	PhaseID            int          `json:"phaseId"`
	Epic               string       `json:"epic,omitempty"`
	Status             TicketStatus `json:"status"`
	Priority           Priority     `json:"priority"`
	Value              string       `json:"value"`
	AcceptanceCriteria string       `json:"acceptanceCriteria"`
	EstimatedHours     *float64     `json:"estimatedHours"`
	PlannedWeek        *int         `json:"plannedWeek"`
	Labels             []string     `json:"labels"`
	Comments           []*Comment   `json:"comments"`

	// DependsOn lists tickets that must be done before this one;
	// BlockedBy lists tickets waiting on this one. Kept symmetric.
	DependsOn []int64 `json:"dependsOn"`
	BlockedBy []int64 `json:"blockedBy"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`

	// Deadline is the absolute due date of older snapshots, replaced by
	// PlannedWeek during migration.
	Deadline string `json:"deadline,omitempty"`
}

// Comment is a note attached to a ticket.
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate validates the ticket fields.
func (t *Ticket) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours cannot be negative")
	}
	if t.PlannedWeek != nil && !ValidWeek(*t.PlannedWeek) {
		return fmt.Errorf("planned week must be between 1 and 53, got %d", *t.PlannedWeek)
	}
	return nil
}

// IsDone returns true if the ticket is done.
func (t *Ticket) IsDone() bool {
	return t.Status.IsDone()
}

// HasLabel returns true if the label id is in the ticket's label set.
func (t *Ticket) HasLabel(id string) bool {
	return slices.Contains(t.Labels, id)
}

// DependsOnTicket returns true if the ticket directly depends on id.
func (t *Ticket) DependsOnTicket(id int64) bool {
	return slices.Contains(t.DependsOn, id)
}

// Clone returns a deep copy of the ticket.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	if t.EstimatedHours != nil {
		h := *t.EstimatedHours
		out.EstimatedHours = &h
	}
	if t.PlannedWeek != nil {
		w := *t.PlannedWeek
		out.PlannedWeek = &w
	}
	if t.CreatedAt != nil {
		c := *t.CreatedAt
		out.CreatedAt = &c
	}
	out.Labels = slices.Clone(t.Labels)
	out.DependsOn = slices.Clone(t.DependsOn)
	out.BlockedBy = slices.Clone(t.BlockedBy)
	if t.Comments != nil {
		out.Comments = make([]*Comment, len(t.Comments))
		for i, c := range t.Comments {
			cc := *c
			out.Comments[i] = &cc
		}
	}
	return &out
}

// ValidWeek returns true if w is a usable week-of-year number.
func ValidWeek(w int) bool {
	return w >= 1 && w <= 53
}
