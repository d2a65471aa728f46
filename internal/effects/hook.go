// Package effects applies what finished projects give a player and records
// scheduler events in the activity log.
package effects

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/foreman/internal/catalog"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

// Hook applies completion effects. Leveled families raise the facility level,
// everything else adds a built copy.
type Hook struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewHook creates a completion hook backed by the facility catalog.
func NewHook(c *catalog.Catalog, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hook{catalog: c, logger: logger}
}

// OnComplete mutates p for the finished project rec.
func (h *Hook) OnComplete(_ context.Context, p *player.Player, rec project.Project) error {
	f, err := h.catalog.Get(rec.Facility)
	if err != nil {
		return err
	}
	if f.Family != rec.Family {
		return fmt.Errorf("%w: %s is a %s, project says %s", project.ErrInvalidProject, rec.Facility, f.Family, rec.Family)
	}

	if rec.Family.Leveled() {
		lvl := p.Upgrade(rec.Facility)
		h.logger.Info("facility upgraded", "player_id", p.ID, "facility", rec.Facility, "level", lvl)
		return nil
	}
	n := p.Install(rec.Facility)
	h.logger.Info("facility installed", "player_id", p.ID, "facility", rec.Facility, "count", n)
	return nil
}
