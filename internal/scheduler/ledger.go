package scheduler

import (
	"fmt"
	"sort"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

// ledger is one player's scheduling arena: records keyed by id and priority
// lists holding ids only. Operations run against a clone and the clone
// replaces the committed ledger once the store accepts its change set.
type ledger struct {
	player  *player.Player
	records map[string]*project.Project
	lists   map[project.Track]*PriorityList

	upserts     map[string]struct{}
	deletes     map[string]struct{}
	reordered   map[project.Track]struct{}
	playerDirty bool
	events      []Event
}

func newLedger(p *player.Player) *ledger {
	l := &ledger{
		player:  p,
		records: make(map[string]*project.Project),
		lists:   make(map[project.Track]*PriorityList, len(project.Tracks)),
	}
	for _, track := range project.Tracks {
		l.lists[track] = NewPriorityList()
	}
	l.reset()
	return l
}

func (l *ledger) reset() {
	l.upserts = make(map[string]struct{})
	l.deletes = make(map[string]struct{})
	l.reordered = make(map[project.Track]struct{})
	l.playerDirty = false
	l.events = nil
}

func (l *ledger) clone() *ledger {
	c := &ledger{
		player:  l.player.Clone(),
		records: make(map[string]*project.Project, len(l.records)),
		lists:   make(map[project.Track]*PriorityList, len(l.lists)),
	}
	for id, rec := range l.records {
		c.records[id] = rec.Clone()
	}
	for track, list := range l.lists {
		c.lists[track] = list.Clone()
	}
	c.reset()
	return c
}

func (l *ledger) list(track project.Track) *PriorityList {
	return l.lists[track]
}

func (l *ledger) get(id string) (*project.Project, error) {
	rec, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// at resolves the record at position i of track.
func (l *ledger) at(track project.Track, i int) (*project.Project, error) {
	id := l.list(track).At(i)
	rec, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s list references missing project %s", ErrInternalInconsistency, track, id)
	}
	return rec, nil
}

func (l *ledger) add(rec *project.Project) {
	l.records[rec.ID] = rec
	l.list(rec.Track).Append(rec.ID)
	l.touch(rec)
	l.reorder(rec.Track)
}

func (l *ledger) remove(rec *project.Project) {
	delete(l.records, rec.ID)
	delete(l.upserts, rec.ID)
	l.deletes[rec.ID] = struct{}{}
	l.list(rec.Track).Remove(rec.ID)
	l.reorder(rec.Track)
}

func (l *ledger) touch(rec *project.Project) {
	l.upserts[rec.ID] = struct{}{}
}

func (l *ledger) reorder(track project.Track) {
	l.reordered[track] = struct{}{}
}

func (l *ledger) emit(ev Event) {
	ev.PlayerID = l.player.ID
	l.events = append(l.events, ev)
}

func (l *ledger) emitFor(typ EventType, rec *project.Project, tick int64, detail string) {
	l.emit(Event{
		Type:      typ,
		ProjectID: rec.ID,
		Facility:  rec.Facility,
		Track:     rec.Track,
		Tick:      tick,
		Detail:    detail,
	})
}

// siblings returns the records sharing rec's facility, rec included.
func (l *ledger) siblings(facility string) []*project.Project {
	var out []*project.Project
	for _, rec := range l.records {
		if rec.Facility == facility {
			out = append(out, rec)
		}
	}
	return out
}

// pending counts queued records of facility.
func (l *ledger) pending(facility string) int {
	return len(l.siblings(facility))
}

func (l *ledger) nextSeq() int64 {
	var max int64
	for _, rec := range l.records {
		if rec.Seq > max {
			max = rec.Seq
		}
	}
	return max + 1
}

// active returns the active records of track in priority order.
func (l *ledger) active(track project.Track) []*project.Project {
	var out []*project.Project
	for _, id := range l.list(track).ids {
		if rec, ok := l.records[id]; ok && rec.Active() {
			out = append(out, rec)
		}
	}
	return out
}

func (l *ledger) dirty() bool {
	return len(l.upserts) > 0 || len(l.deletes) > 0 || len(l.reordered) > 0 || l.playerDirty
}

// change builds the store write set.
func (l *ledger) change() Change {
	ch := Change{PlayerID: l.player.ID}
	if l.playerDirty {
		ch.Player = l.player.Clone()
	}
	ids := make([]string, 0, len(l.upserts))
	for id := range l.upserts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ch.Upserts = append(ch.Upserts, *l.records[id].Clone())
	}
	for id := range l.deletes {
		ch.Deletes = append(ch.Deletes, id)
	}
	sort.Strings(ch.Deletes)
	if len(l.reordered) > 0 {
		ch.Orders = make(map[project.Track][]string, len(l.reordered))
		for track := range l.reordered {
			ch.Orders[track] = l.list(track).IDs()
		}
	}
	return ch
}

// commit returns the pending events and clears change tracking.
func (l *ledger) commit() []Event {
	events := l.events
	l.reset()
	return events
}
