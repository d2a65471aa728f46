package scheduler

import (
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

// WorkerAllocator answers how many projects of a track may run at once.
type WorkerAllocator struct{}

// Capacity returns the player's workers on track.
func (WorkerAllocator) Capacity(p *player.Player, track project.Track) int {
	if w := p.Workers(track); w > 0 {
		return w
	}
	return 0
}

// ActiveCount returns the number of active records on track.
func (WorkerAllocator) ActiveCount(l *ledger, track project.Track) int {
	return len(l.active(track))
}

// Available returns the free slots on track, floored at zero.
func (a WorkerAllocator) Available(l *ledger, track project.Track) int {
	free := a.Capacity(l.player, track) - a.ActiveCount(l, track)
	if free < 0 {
		return 0
	}
	return free
}
