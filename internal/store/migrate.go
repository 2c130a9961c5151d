package store

import (
	"github.com/diogenes-ai-code/gtadmin/internal/common"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
)

// migrationStep upgrades one aspect of an older snapshot shape. Steps are
// idempotent: once transform has run, needed reports false.
type migrationStep struct {
	name      string
	needed    func(s *Store, snap *models.Snapshot) bool
	transform func(s *Store, snap *models.Snapshot)
}

// migrations run in order on every snapshot entering the store.
var migrations = []migrationStep{
	{"counter-floor", counterFloorNeeded, counterFloor},
	{"ticket-numbers", ticketNumbersNeeded, assignTicketNumbers},
	{"deadline-to-week", deadlinesNeeded, deadlinesToWeeks},
	{"ticket-defaults", ticketDefaultsNeeded, ticketDefaults},
	{"phase-status", phaseStatusNeeded, canonicalPhaseStatus},
	{"purchases", purchasesNeeded, legacySpentToPurchases},
	{"default-labels", defaultLabelsNeeded, defaultLabels},
}

// migrate runs the pipeline and returns the names of the steps applied.
func (s *Store) migrate(snap *models.Snapshot) []string {
	var applied []string
	for _, step := range migrations {
		if !step.needed(s, snap) {
			continue
		}
		step.transform(s, snap)
		applied = append(applied, step.name)
	}
	return applied
}

// highestNumber returns the largest counter value used by tickets carrying
// the store's prefix.
func (s *Store) highestNumber(snap *models.Snapshot) int {
	highest := 0
	for _, t := range snap.Tickets {
		prefix, n, err := common.ParseTicketNumber(t.TicketNumber)
		if err == nil && prefix == s.prefix {
			highest = max(highest, n)
		}
	}
	return highest
}

// The counter must be positive and past every number already handed out,
// otherwise new tickets would reuse a number.
func counterFloorNeeded(s *Store, snap *models.Snapshot) bool {
	return snap.NextTicketNumber < 1 || snap.NextTicketNumber <= s.highestNumber(snap)
}

func counterFloor(s *Store, snap *models.Snapshot) {
	snap.NextTicketNumber = max(1, s.highestNumber(snap)+1)
}

func ticketNumbersNeeded(_ *Store, snap *models.Snapshot) bool {
	for _, t := range snap.Tickets {
		if t.TicketNumber == "" {
			return true
		}
	}
	return false
}

func assignTicketNumbers(s *Store, snap *models.Snapshot) {
	for _, t := range snap.Tickets {
		if t.TicketNumber == "" {
			t.TicketNumber = common.FormatTicketNumber(s.prefix, snap.NextTicketNumber)
			snap.NextTicketNumber++
		}
	}
}

func deadlinesNeeded(_ *Store, snap *models.Snapshot) bool {
	for _, t := range snap.Tickets {
		if t.Deadline != "" {
			return true
		}
	}
	return false
}

// deadlinesToWeeks converts legacy due dates into planned weeks. An
// existing planned week wins; the deadline is always dropped.
func deadlinesToWeeks(s *Store, snap *models.Snapshot) {
	for _, t := range snap.Tickets {
		if t.Deadline == "" {
			continue
		}
		if t.PlannedWeek == nil {
			d, err := common.ParseDate(t.Deadline)
			if err != nil {
				s.logger.Warn("dropping unparseable deadline", "ticket", t.TicketNumber, "deadline", t.Deadline)
			} else {
				week := common.WeekOfYear(d)
				t.PlannedWeek = &week
			}
		}
		t.Deadline = ""
	}
}

func ticketDefaultsNeeded(_ *Store, snap *models.Snapshot) bool {
	if snap.Tickets == nil {
		return true
	}
	for _, t := range snap.Tickets {
		if t.DependsOn == nil || t.BlockedBy == nil || t.Labels == nil || t.Comments == nil {
			return true
		}
	}
	return false
}

func ticketDefaults(_ *Store, snap *models.Snapshot) {
	if snap.Tickets == nil {
		snap.Tickets = []*models.Ticket{}
	}
	for _, t := range snap.Tickets {
		if t.DependsOn == nil {
			t.DependsOn = []int64{}
		}
		if t.BlockedBy == nil {
			t.BlockedBy = []int64{}
		}
		if t.Labels == nil {
			t.Labels = []string{}
		}
		if t.Comments == nil {
			t.Comments = []*models.Comment{}
		}
	}
}

func phaseStatusNeeded(_ *Store, snap *models.Snapshot) bool {
	for _, p := range snap.Phases {
		if !p.Status.IsValid() {
			if _, ok := models.CanonicalPhaseStatus(p.Status); ok {
				return true
			}
		}
	}
	return false
}

func canonicalPhaseStatus(_ *Store, snap *models.Snapshot) {
	for _, p := range snap.Phases {
		if status, ok := models.CanonicalPhaseStatus(p.Status); ok {
			p.Status = status
		}
	}
}

func purchasesNeeded(_ *Store, snap *models.Snapshot) bool {
	for _, p := range snap.Phases {
		if p.Spent != nil || p.Purchases == nil || p.GoNoGoCriteria == nil {
			return true
		}
	}
	return false
}

// legacySpentToPurchases folds the per-phase spent total of older
// snapshots into a single purchase, so totals derive from purchases only.
func legacySpentToPurchases(s *Store, snap *models.Snapshot) {
	for _, p := range snap.Phases {
		if p.Purchases == nil {
			p.Purchases = []*models.Purchase{}
		}
		if p.GoNoGoCriteria == nil {
			p.GoNoGoCriteria = []*models.Criterion{}
		}
		if p.Spent == nil {
			continue
		}
		if *p.Spent > 0 {
			p.Purchases = append(p.Purchases, &models.Purchase{
				ID:          s.legacyIDLocked(snap),
				Description: "Legacy spent total",
				Amount:      *p.Spent,
				Date:        common.Today(s.now()),
			})
		}
		p.Spent = nil
	}
}

// legacyIDLocked issues an id during migration, before lastID reflects
// the incoming snapshot.
func (s *Store) legacyIDLocked(snap *models.Snapshot) int64 {
	for _, t := range snap.Tickets {
		s.lastID = max(s.lastID, t.ID)
	}
	for _, p := range snap.Phases {
		for _, pu := range p.Purchases {
			s.lastID = max(s.lastID, pu.ID)
		}
	}
	return s.nextIDLocked()
}

func defaultLabelsNeeded(_ *Store, snap *models.Snapshot) bool {
	return snap.Labels == nil
}

func defaultLabels(_ *Store, snap *models.Snapshot) {
	snap.Labels = models.DefaultLabels()
}
