package scheduler

import "github.com/rpggio/foreman/internal/domain/project"

// MultiLevelGate keeps the levels of one leveled facility progressing one at
// a time, in ascending order.
type MultiLevelGate struct{}

// Front returns the sibling that must progress first: the smallest
// DurationTicks, then the earliest enqueued.
func (MultiLevelGate) Front(l *ledger, facility string) *project.Project {
	var front *project.Project
	for _, rec := range l.siblings(facility) {
		if front == nil ||
			rec.DurationTicks < front.DurationTicks ||
			(rec.DurationTicks == front.DurationTicks && rec.Seq < front.Seq) ||
			(rec.DurationTicks == front.DurationTicks && rec.Seq == front.Seq && rec.ID < front.ID) {
			front = rec
		}
	}
	return front
}

// CanActivate reports whether rec may become active. One-shot families are
// never gated.
func (g MultiLevelGate) CanActivate(l *ledger, rec *project.Project) bool {
	return g.allows(l, rec, "")
}

// CanReplace reports whether rec may take the slot that leaving is about to
// give up.
func (g MultiLevelGate) CanReplace(l *ledger, rec, leaving *project.Project) bool {
	return g.allows(l, rec, leaving.ID)
}

func (g MultiLevelGate) allows(l *ledger, rec *project.Project, ignore string) bool {
	if !rec.Family.Leveled() {
		return true
	}
	if front := g.Front(l, rec.Facility); front != nil && front.ID != rec.ID {
		return false
	}
	for _, sib := range l.siblings(rec.Facility) {
		if sib.ID != rec.ID && sib.ID != ignore && sib.Active() {
			return false
		}
	}
	return true
}
