package player

import "context"

// Repository provides persistence for players.
type Repository interface {
	Create(ctx context.Context, p *Player) error
	Get(ctx context.Context, id string) (*Player, error)
	List(ctx context.Context) ([]Player, error)
}
