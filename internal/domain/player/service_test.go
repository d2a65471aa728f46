package player_test

import (
	"context"
	"testing"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/repository"
	"github.com/rpggio/foreman/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlayerService_CreateDefaults(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PlayerRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*player.Player")).Return(nil)

	svc := player.NewService(repo, nil)
	p, err := svc.Create(ctx, player.CreateRequest{Name: "alice", Money: 1000})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, 1, p.ConstructionWorkers)
	require.Equal(t, 1000.0, p.Money)
	repo.AssertExpectations(t)
}

func TestPlayerService_CreateValidation(t *testing.T) {
	svc := player.NewService(&mocks.PlayerRepository{}, nil)

	_, err := svc.Create(context.Background(), player.CreateRequest{Name: " "})
	require.ErrorIs(t, err, player.ErrInvalidInput)

	_, err = svc.Create(context.Background(), player.CreateRequest{Name: "bob", Money: -1})
	require.ErrorIs(t, err, player.ErrInvalidInput)
}

func TestPlayerService_GetNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PlayerRepository{}
	repo.On("Get", ctx, "missing").Return((*player.Player)(nil), repository.ErrNotFound)

	svc := player.NewService(repo, nil)
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, player.ErrPlayerNotFound)
}

func TestPlayer_Workers(t *testing.T) {
	tests := []struct {
		labLevel int
		want     int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{7, 3},
	}
	for _, tt := range tests {
		p := &player.Player{ConstructionWorkers: 2, Levels: map[string]int{player.Laboratory: tt.labLevel}}
		require.Equal(t, tt.want, p.Workers(project.TrackResearch), "lab level %d", tt.labLevel)
		require.Equal(t, 2, p.Workers(project.TrackConstruction))
	}
}

func TestPlayer_CloneIsDeep(t *testing.T) {
	p := &player.Player{ID: "p1"}
	p.Upgrade("laboratory")

	c := p.Clone()
	c.Upgrade("laboratory")
	c.Install("windmill")

	require.Equal(t, 1, p.Level("laboratory"))
	require.Equal(t, 2, c.Level("laboratory"))
	require.Zero(t, p.Installed["windmill"])
}
