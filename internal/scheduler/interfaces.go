package scheduler

import (
	"context"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

// Clock reports the current simulation tick.
type Clock interface {
	Now() int64
}

// Pricer prices a facility for a player. pending counts queued levels of
// the same facility.
type Pricer interface {
	Quote(p *player.Player, facility string, pending int) (project.Quote, error)
}

// CompletionHook applies facility and technology effects to the player when
// a project completes. It runs inside the scheduling transaction and must
// leave p untouched when it returns an error.
type CompletionHook interface {
	OnComplete(ctx context.Context, p *player.Player, rec project.Project) error
}

// Notifier is told about committed changes to player-visible scheduling state.
type Notifier interface {
	Notify(ctx context.Context, events []Event)
}

// Store persists scheduling state. Apply must be atomic.
type Store interface {
	project.Repository
	Player(ctx context.Context, id string) (*player.Player, error)
	PlayerIDs(ctx context.Context) ([]string, error)
	Apply(ctx context.Context, change Change) error
}

// Change is the write set of one scheduling operation for one player.
type Change struct {
	PlayerID string
	// Player is set when funds or facility counters changed.
	Player  *player.Player
	Upserts []project.Project
	Deletes []string
	// Orders holds the full priority list of each reordered track.
	Orders map[project.Track][]string
}
