// Package models defines the domain models for gtadmin.
package models

import (
	"fmt"
	"strings"
)

// TicketStatus represents where a ticket is in its lifecycle.
type TicketStatus string

const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in-progress"
	StatusDone       TicketStatus = "done"
)

// IsValid returns true if the status is a valid ticket status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// IsDone returns true if the ticket counts towards phase progress.
func (s TicketStatus) IsDone() bool {
	return s == StatusDone
}

// TicketStatuses lists all ticket statuses in board order.
var TicketStatuses = []TicketStatus{StatusTodo, StatusInProgress, StatusDone}

// Priority represents MoSCoW-style importance of a ticket.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
	PriorityNice   Priority = "nice"
)

// IsValid returns true if the priority is a valid ticket priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityMust, PriorityShould, PriorityNice:
		return true
	}
	return false
}

// Order returns the sort order for the priority (lower is more important).
func (p Priority) Order() int {
	switch p {
	case PriorityMust:
		return 1
	case PriorityShould:
		return 2
	case PriorityNice:
		return 3
	default:
		return 99
	}
}

// PhaseStatus represents the state of a project phase.
type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not-started"
	PhaseActive     PhaseStatus = "active"
	PhaseDone       PhaseStatus = "done"
)

// IsValid returns true if the phase status is valid.
func (s PhaseStatus) IsValid() bool {
	switch s {
	case PhaseNotStarted, PhaseActive, PhaseDone:
		return true
	}
	return false
}

// legacyPhaseStatuses maps the status words stored by older snapshots.
var legacyPhaseStatuses = map[string]PhaseStatus{
	"niet gestart": PhaseNotStarted,
	"actief":       PhaseActive,
	"afgerond":     PhaseDone,
	"closed":       PhaseDone,
}

// CanonicalPhaseStatus maps a legacy phase status to its current value.
// The second return value is false when the status is unknown.
func CanonicalPhaseStatus(s PhaseStatus) (PhaseStatus, bool) {
	if s.IsValid() {
		return s, true
	}
	if c, ok := legacyPhaseStatuses[string(s)]; ok {
		return c, true
	}
	return s, false
}

// Verdict is the outcome of a go/no-go gate.
type Verdict string

const (
	VerdictGo   Verdict = "go"
	VerdictNoGo Verdict = "no-go"
)

// IsValid returns true if the verdict is go or no-go.
func (v Verdict) IsValid() bool {
	return v == VerdictGo || v == VerdictNoGo
}

// ParseTicketStatus parses a user-supplied ticket status. Case and
// surrounding whitespace are ignored, and "in_progress" is accepted.
func ParseTicketStatus(s string) (TicketStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	status := TicketStatus(norm)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status %q (valid: todo, in-progress, done)", s)
	}
	return status, nil
}

// ParsePriority parses a user-supplied priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q (valid: must, should, nice)", s)
	}
	return p, nil
}

// ParsePhaseStatus parses a phase status, accepting the legacy Dutch words.
func ParsePhaseStatus(s string) (PhaseStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if status, ok := CanonicalPhaseStatus(PhaseStatus(norm)); ok {
		return status, nil
	}
	return "", fmt.Errorf("invalid phase status %q (valid: not-started, active, done)", s)
}

// ParseVerdict parses a go/no-go verdict. "nogo" and "no_go" are accepted.
func ParseVerdict(s string) (Verdict, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "nogo", "no_go":
		norm = string(VerdictNoGo)
	}
	v := Verdict(norm)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid decision %q (valid: go, no-go)", s)
	}
	return v, nil
}
