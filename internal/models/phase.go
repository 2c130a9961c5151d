package models

import (
	"fmt"
	"time"
)

// Phase is a stage of the project with its own go/no-go gate.
type Phase struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Goal           string          `json:"goal,omitempty"`
	TargetDate     string          `json:"targetDate,omitempty"`
	Measurement    string          `json:"measurement,omitempty"`
	Status         PhaseStatus     `json:"status"`
	Budget         *float64        `json:"budget"`
	Purchases      []*Purchase     `json:"purchases"`
	GoNoGoCriteria []*Criterion    `json:"goNoGoCriteria"`
	GoNoGoDecision *GoNoGoDecision `json:"goNoGoDecision,omitempty"`
	NoGoAction     string          `json:"noGoAction,omitempty"`

	// Spent is the per-phase total kept by older snapshots. The migration
	// pipeline folds it into Purchases.
	Spent *float64 `json:"spent,omitempty"`
}

// Criterion is a checklist item of a phase's go/no-go gate.
type Criterion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// GoNoGoDecision records the outcome of a phase gate.
type GoNoGoDecision struct {
	Decision Verdict   `json:"decision"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes"`
}

// Purchase is an itemized expense booked against a phase.
type Purchase struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// Validate validates the phase fields.
func (p *Phase) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("phase id must be positive")
	}
	if p.Name == "" {
		return fmt.Errorf("phase name cannot be empty")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid phase status: %s", p.Status)
	}
	if p.Budget != nil && *p.Budget < 0 {
		return fmt.Errorf("budget cannot be negative")
	}
	if p.GoNoGoDecision != nil && !p.GoNoGoDecision.Decision.IsValid() {
		return fmt.Errorf("invalid go/no-go decision: %s", p.GoNoGoDecision.Decision)
	}
	return nil
}

// IsActive returns true if the phase is currently being worked on.
func (p *Phase) IsActive() bool {
	return p.Status == PhaseActive
}

// IsNotStarted returns true if the phase has not been started.
func (p *Phase) IsNotStarted() bool {
	return p.Status == PhaseNotStarted
}

// IsDone returns true if the phase passed its gate.
func (p *Phase) IsDone() bool {
	return p.Status == PhaseDone
}

// Criterion returns the criterion with the given id, or nil.
func (p *Phase) Criterion(id string) *Criterion {
	for _, c := range p.GoNoGoCriteria {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of the phase.
func (p *Phase) Clone() *Phase {
	if p == nil {
		return nil
	}
	out := *p
	if p.Budget != nil {
		b := *p.Budget
		out.Budget = &b
	}
	if p.Spent != nil {
		s := *p.Spent
		out.Spent = &s
	}
	if p.Purchases != nil {
		out.Purchases = make([]*Purchase, len(p.Purchases))
		for i, pu := range p.Purchases {
			c := *pu
			out.Purchases[i] = &c
		}
	}
	if p.GoNoGoCriteria != nil {
		out.GoNoGoCriteria = make([]*Criterion, len(p.GoNoGoCriteria))
		for i, c := range p.GoNoGoCriteria {
			cc := *c
			out.GoNoGoCriteria[i] = &cc
		}
	}
	if p.GoNoGoDecision != nil {
		d := *p.GoNoGoDecision
		out.GoNoGoDecision = &d
	}
	return &out
}
