// Package metrics derives progress and budget figures from project state.
// Every function is pure and recomputes from its arguments.
package metrics

import (
	"math"
	"slices"

	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// Percent returns part/total as a whole percentage, rounded half up.
// It returns 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// PhaseProgress returns the share of done tickets among the tickets of
// the phase.
func PhaseProgress(tickets []*models.Ticket, phaseID int) int {
	total, done := 0, 0
	for _, t := range tickets {
		if t.PhaseID != phaseID {
			continue
		}
		total++
		if t.IsDone() {
			done++
		}
	}
	return Percent(done, total)
}

// CriteriaProgress returns the share of completed go/no-go criteria.
func CriteriaProgress(p *models.Phase) int {
	done := 0
	for _, c := range p.GoNoGoCriteria {
		if c.Completed {
			done++
		}
	}
	return Percent(done, len(p.GoNoGoCriteria))
}

// PhaseSpent returns the sum of the phase's purchases.
func PhaseSpent(p *models.Phase) float64 {
	var sum float64
	for _, pu := range p.Purchases {
		sum += pu.Amount
	}
	return sum
}

// TotalSpent returns the sum of all purchases across phases.
func TotalSpent(phases []*models.Phase) float64 {
	var sum float64
	for _, p := range phases {
		sum += PhaseSpent(p)
	}
	return sum
}

// TotalBudget returns the sum of the phase budgets that are set.
func TotalBudget(phases []*models.Phase) float64 {
	var sum float64
	for _, p := range phases {
		if p.Budget != nil {
			sum += *p.Budget
		}
	}
	return sum
}

// PhaseSummary is the dashboard row of one phase.
type PhaseSummary struct {
	ID               int                `json:"id"`
	Name             string             `json:"name"`
	Status           models.PhaseStatus `json:"status"`
	Tickets          int                `json:"tickets"`
	DoneTickets      int                `json:"doneTickets"`
	Progress         int                `json:"progress"`
	CriteriaDone     int                `json:"criteriaDone"`
	CriteriaTotal    int                `json:"criteriaTotal"`
	CriteriaProgress int                `json:"criteriaProgress"`
	Budget           *float64           `json:"budget"`
	Spent            float64            `json:"spent"`
	Decision         *models.Verdict    `json:"decision,omitempty"`
}

// Summary is the dashboard roll-up of a snapshot.
type Summary struct {
	Project         *models.Project             `json:"project"`
	Phases          []PhaseSummary              `json:"phases"`
	ActivePhaseID   int                         `json:"activePhaseId,omitempty"`
	TotalTickets    int                         `json:"totalTickets"`
	TicketsByStatus map[models.TicketStatus]int `json:"ticketsByStatus"`
	TotalBudget     float64                     `json:"totalBudget"`
	TotalSpent      float64                     `json:"totalSpent"`
}

// Summarize builds the dashboard roll-up.
func Summarize(snap *models.Snapshot) *Summary {
	sum := &Summary{
		Project:         snap.Project,
		Phases:          make([]PhaseSummary, 0, len(snap.Phases)),
		TotalTickets:    len(snap.Tickets),
		TicketsByStatus: make(map[models.TicketStatus]int, len(models.TicketStatuses)),
		TotalBudget:     TotalBudget(snap.Phases),
		TotalSpent:      TotalSpent(snap.Phases),
	}
	for _, st := range models.TicketStatuses {
		sum.TicketsByStatus[st] = 0
	}
	for _, t := range snap.Tickets {
		sum.TicketsByStatus[t.Status]++
	}

	for _, p := range snap.Phases {
		ps := PhaseSummary{
			ID:               p.ID,
			Name:             p.Name,
			Status:           p.Status,
			Progress:         PhaseProgress(snap.Tickets, p.ID),
			CriteriaTotal:    len(p.GoNoGoCriteria),
			CriteriaProgress: CriteriaProgress(p),
			Budget:           p.Budget,
			Spent:            PhaseSpent(p),
		}
		for _, t := range snap.Tickets {
			if t.PhaseID == p.ID {
				ps.Tickets++
				if t.IsDone() {
					ps.DoneTickets++
				}
			}
		}
		for _, c := range p.GoNoGoCriteria {
			if c.Completed {
				ps.CriteriaDone++
			}
		}
		if p.GoNoGoDecision != nil {
			d := p.GoNoGoDecision.Decision
			ps.Decision = &d
		}
		if p.IsActive() && sum.ActivePhaseID == 0 {
			sum.ActivePhaseID = p.ID
		}
		sum.Phases = append(sum.Phases, ps)
	}
	slices.SortStableFunc(sum.Phases, func(a, b PhaseSummary) int { return a.ID - b.ID })
	return sum
}

// WeekPlan groups the tickets planned for one week. Week is 0 for
// tickets without a planned week.
type WeekPlan struct {
	Week           int              `json:"week"`
	Tickets        []*models.Ticket `json:"tickets"`
	EstimatedHours float64          `json:"estimatedHours"`
	Done           int              `json:"done"`
}

// Planning buckets tickets by planned week in ascending order, with the
// unplanned bucket last. Empty weeks are omitted.
func Planning(tickets []*models.Ticket) []WeekPlan {
	byWeek := make(map[int]*WeekPlan)
	for _, t := range tickets {
		week := 0
		if t.PlannedWeek != nil {
			week = *t.PlannedWeek
		}
		wp, ok := byWeek[week]
		if !ok {
			wp = &WeekPlan{Week: week, Tickets: []*models.Ticket{}}
			byWeek[week] = wp
		}
		wp.Tickets = append(wp.Tickets, t)
		if t.EstimatedHours != nil {
			wp.EstimatedHours += *t.EstimatedHours
		}
		if t.IsDone() {
			wp.Done++
		}
	}

	plans := make([]WeekPlan, 0, len(byWeek))
	for _, wp := range byWeek {
		plans = append(plans, *wp)
	}
	slices.SortFunc(plans, func(a, b WeekPlan) int {
		switch {
		case a.Week == 0:
			return 1
		case b.Week == 0:
			return -1
		default:
			return a.Week - b.Week
		}
	})
	return plans
}
