package project

import "context"

// Repository provides read access to persisted project records.
type Repository interface {
	ListByPlayer(ctx context.Context, playerID string) ([]Project, error)
	Order(ctx context.Context, playerID string, track Track) ([]string, error)
}
