package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	p := &player.Player{
		ID:                  "p1",
		Name:                "Ada",
		Money:               2500.5,
		ConstructionWorkers: 2,
		Levels:              map[string]int{"laboratory": 3},
		Installed:           map[string]int{"windmill": 4},
		CreatedAt:           time.Now(),
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Ada", got.Name)
	require.Equal(t, 2500.5, got.Money)
	require.Equal(t, 2, got.ConstructionWorkers)
	require.Equal(t, 3, got.Level("laboratory"))
	require.Equal(t, 4, got.Installed["windmill"])
}

func TestPlayerRepository_Errors(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	insertPlayer(t, db, "p1")
	err = repo.Create(ctx, &player.Player{ID: "p1", Name: "again"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestPlayerRepository_ListAndIDs(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	insertPlayer(t, db, "b")
	insertPlayer(t, db, "a")

	players, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)

	ids, err := repo.IDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
}
