package scheduler

import (
	"errors"

	"github.com/rpggio/foreman/internal/domain/project"
)

var (
	// ErrInsufficientFunds indicates the player cannot pay the quoted price.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrLocked indicates unmet facility requirements.
	ErrLocked = errors.New("facility locked")
	// ErrParallelizationDenied indicates another level of the same facility
	// must progress first.
	ErrParallelizationDenied = errors.New("parallelization not allowed")
	// ErrNotFound indicates an unknown player, or a project the player doesn't own.
	ErrNotFound = errors.New("not found")
	// ErrNoWorkers indicates the track has no worker capacity at all.
	ErrNoWorkers = errors.New("no workers available")
	// ErrInternalInconsistency indicates scheduling state that violates its invariants.
	ErrInternalInconsistency = errors.New("internal inconsistency")
	// ErrUnknownFacility indicates a facility name outside the catalog.
	ErrUnknownFacility = project.ErrUnknownFacility
)
