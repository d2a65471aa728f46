package mocks

import (
	"context"

	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/stretchr/testify/mock"
)

// PlayerRepository is a mock for player.Repository.
type PlayerRepository struct {
	mock.Mock
}

func (m *PlayerRepository) Create(ctx context.Context, p *player.Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PlayerRepository) Get(ctx context.Context, id string) (*player.Player, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*player.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]player.Player); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, playerID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, playerID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, playerID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, playerID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for the activity sink used by effects.ActivityNotifier.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, playerID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, playerID, entry)
	return args.Error(0)
}
