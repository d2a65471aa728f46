package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/foreman/internal/repository"
)

// Service handles player operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new player service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines player creation inputs.
type CreateRequest struct {
	ID                  string
	Name                string
	Money               float64
	ConstructionWorkers int
}

// Create registers a new player. Construction workers default to one.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Player, error) {
	if strings.TrimSpace(req.Name) == "" || req.Money < 0 || req.ConstructionWorkers < 0 {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	workers := req.ConstructionWorkers
	if workers == 0 {
		workers = 1
	}

	p := &Player{
		ID:                  id,
		Name:                req.Name,
		Money:               req.Money,
		ConstructionWorkers: workers,
		Levels:              map[string]int{},
		Installed:           map[string]int{},
		CreatedAt:           time.Now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}

	s.logger.Info("player created", "player_id", p.ID, "name", p.Name)
	return p, nil
}

// Get fetches a player by ID.
func (s *Service) Get(ctx context.Context, id string) (*Player, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return p, nil
}

// List returns all players.
func (s *Service) List(ctx context.Context) ([]Player, error) {
	return s.repo.List(ctx)
}
