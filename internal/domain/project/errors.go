package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrUnknownFacility indicates a facility name outside the catalog.
	ErrUnknownFacility = errors.New("unknown facility")
	// ErrInvalidProject indicates a record that cannot be scheduled.
	ErrInvalidProject = errors.New("invalid project")
)
