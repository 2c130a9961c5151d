package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Nullable is a patch field that distinguishes "absent" from "set to null".
// Absent leaves the target untouched; null clears it.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a Nullable that clears the target field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the
// key is present, which is what marks the field as Set.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// apply writes the patch value into dst when the field is set.
func (n Nullable[T]) apply(dst **T) {
	if !n.Set {
		return
	}
	if !n.Valid {
		*dst = nil
		return
	}
	v := n.Value
	*dst = &v
}

// TicketInput holds the fields accepted when creating a ticket. Omitted
// optional fields get the documented defaults.
type TicketInput struct {
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	PhaseID            int          `json:"phaseId"`
	Epic               string       `json:"epic"`
	Status             TicketStatus `json:"status"`
	Priority           Priority     `json:"priority"`
	Value              string       `json:"value"`
	AcceptanceCriteria string       `json:"acceptanceCriteria"`
	EstimatedHours     *float64     `json:"estimatedHours"`
	PlannedWeek        *int         `json:"plannedWeek"`
	Labels             []string     `json:"labels"`
}

// Normalize applies defaults for omitted optional fields.
func (in *TicketInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityShould
	}
	if in.Labels == nil {
		in.Labels = []string{}
	}
}

// Validate validates the input after normalization.
func (in *TicketInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if in.PhaseID <= 0 {
		return fmt.Errorf("phaseId is required")
	}
	if !in.Status.IsValid() {
		return fmt.Errorf("invalid status: %s (must be todo, in-progress, or done)", in.Status)
	}
	if !in.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s (must be must, should, or nice)", in.Priority)
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours cannot be negative")
	}
	if in.PlannedWeek != nil && !ValidWeek(*in.PlannedWeek) {
		return fmt.Errorf("planned week must be between 1 and 53, got %d", *in.PlannedWeek)
	}
	return nil
}

// TicketPatch is a partial ticket update. Nil pointers and unset Nullables
// leave the field untouched. Dependency links are not patchable; they are
// managed through the dependency operations so they stay symmetric.
type TicketPatch struct {
	Title              *string           `json:"title,omitempty"`
	Description        *string           `json:"description,omitempty"`
	PhaseID            *int              `json:"phaseId,omitempty"`
	Epic               *string           `json:"epic,omitempty"`
	Status             *TicketStatus     `json:"status,omitempty"`
	Priority           *Priority         `json:"priority,omitempty"`
	Value              *string           `json:"value,omitempty"`
	AcceptanceCriteria *string           `json:"acceptanceCriteria,omitempty"`
	EstimatedHours     Nullable[float64] `json:"estimatedHours"`
	PlannedWeek        Nullable[int]     `json:"plannedWeek"`
	Labels             *[]string         `json:"labels,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p *TicketPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.PhaseID == nil && p.Epic == nil &&
		p.Status == nil && p.Priority == nil && p.Value == nil && p.AcceptanceCriteria == nil &&
		!p.EstimatedHours.Set && !p.PlannedWeek.Set && p.Labels == nil
}

// Validate validates the fields present in the patch.
func (p *TicketPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if p.PhaseID != nil && *p.PhaseID <= 0 {
		return fmt.Errorf("phaseId must be positive")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("invalid status: %s (must be todo, in-progress, or done)", *p.Status)
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s (must be must, should, or nice)", *p.Priority)
	}
	if p.EstimatedHours.Valid && p.EstimatedHours.Value < 0 {
		return fmt.Errorf("estimated hours cannot be negative")
	}
	if p.PlannedWeek.Valid && !ValidWeek(p.PlannedWeek.Value) {
		return fmt.Errorf("planned week must be between 1 and 53, got %d", p.PlannedWeek.Value)
	}
	return nil
}

// Apply shallow-merges the patch into t. Call Validate first.
func (p *TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.PhaseID != nil {
		t.PhaseID = *p.PhaseID
	}
	if p.Epic != nil {
		t.Epic = *p.Epic
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Value != nil {
		t.Value = *p.Value
	}
	if p.AcceptanceCriteria != nil {
		t.AcceptanceCriteria = *p.AcceptanceCriteria
	}
	p.EstimatedHours.apply(&t.EstimatedHours)
	p.PlannedWeek.apply(&t.PlannedWeek)
	if p.Labels != nil {
		t.Labels = append([]string{}, (*p.Labels)...)
	}
}

// PhasePatch is a partial phase update.
type PhasePatch struct {
	Name           *string           `json:"name,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Goal           *string           `json:"goal,omitempty"`
	TargetDate     *string           `json:"targetDate,omitempty"`
	Measurement    *string           `json:"measurement,omitempty"`
	Status         *PhaseStatus      `json:"status,omitempty"`
	Budget         Nullable[float64] `json:"budget"`
	NoGoAction     *string           `json:"noGoAction,omitempty"`
	GoNoGoCriteria *[]*Criterion     `json:"goNoGoCriteria,omitempty"`
}

// Validate validates the fields present in the patch.
func (p *PhasePatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("phase name cannot be empty")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("invalid phase status: %s (must be not-started, active, or done)", *p.Status)
	}
	if p.Budget.Valid && p.Budget.Value < 0 {
		return fmt.Errorf("budget cannot be negative")
	}
	if p.GoNoGoCriteria != nil {
		seen := make(map[string]bool)
		for _, c := range *p.GoNoGoCriteria {
			if c == nil || c.ID == "" {
				return fmt.Errorf("criterion id is required")
			}
			if seen[c.ID] {
				return fmt.Errorf("duplicate criterion id: %s", c.ID)
			}
			seen[c.ID] = true
		}
	}
	return nil
}

// Apply shallow-merges the patch into ph. Call Validate first.
func (p *PhasePatch) Apply(ph *Phase) {
	if p.Name != nil {
		ph.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		ph.Description = *p.Description
	}
	if p.Goal != nil {
		ph.Goal = *p.Goal
	}
	if p.TargetDate != nil {
		ph.TargetDate = *p.TargetDate
	}
	if p.Measurement != nil {
		ph.Measurement = *p.Measurement
	}
	if p.Status != nil {
		ph.Status = *p.Status
	}
	p.Budget.apply(&ph.Budget)
	if p.NoGoAction != nil {
		ph.NoGoAction = *p.NoGoAction
	}
	if p.GoNoGoCriteria != nil {
		criteria := make([]*Criterion, len(*p.GoNoGoCriteria))
		for i, c := range *p.GoNoGoCriteria {
			cc := *c
			criteria[i] = &cc
		}
		ph.GoNoGoCriteria = criteria
	}
}

// PurchaseInput holds the fields of a new purchase. An empty Date
// defaults to today.
type PurchaseInput struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// Validate validates the purchase input.
func (in *PurchaseInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("purchase description cannot be empty")
	}
	if in.Amount < 0 {
		return fmt.Errorf("purchase amount cannot be negative")
	}
	return nil
}

// LabelPatch is a partial label update.
type LabelPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Validate validates the fields present in the patch.
func (p *LabelPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("label name cannot be empty")
	}
	if p.Color != nil {
		return ValidateColor(*p.Color)
	}
	return nil
}

// Apply merges the patch into l. Call Validate first.
func (p *LabelPatch) Apply(l *Label) {
	if p.Name != nil {
		l.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		l.Color = strings.ToLower(*p.Color)
	}
}
