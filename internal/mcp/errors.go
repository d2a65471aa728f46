package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/foreman/internal/scheduler"
)

// Outcome codes reported by every player-facing tool.
const (
	OutcomeSuccess               = "success"
	OutcomeInsufficientFunds     = "insufficient_funds"
	OutcomeLocked                = "locked"
	OutcomeParallelizationDenied = "parallelization_denied"
	OutcomeNotFound              = "not_found"
	OutcomeNoWorkers             = "no_workers"
	OutcomeUnknownFacility       = "unknown_facility"
	OutcomeInternalInconsistency = "internal_inconsistency"
	OutcomeRateLimited           = "rate_limited"
	OutcomeInvalidInput          = "invalid_input"
)

var (
	errRateLimited  = errors.New("too many requests")
	errInvalidInput = errors.New("invalid input")
)

// APIError represents a rejected tool call.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to outcome codes. Unknown errors map to nil
// and surface as tool errors.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, scheduler.ErrInsufficientFunds):
		return &APIError{Code: OutcomeInsufficientFunds, Message: err.Error(), RecoveryHint: "Wait for income or cancel a queued project"}
	case errors.Is(err, scheduler.ErrLocked):
		return &APIError{Code: OutcomeLocked, Message: err.Error(), RecoveryHint: "Check requirements with list_facilities"}
	case errors.Is(err, scheduler.ErrParallelizationDenied):
		return &APIError{Code: OutcomeParallelizationDenied, Message: err.Error(), RecoveryHint: "Let the lower level of this facility finish first"}
	case errors.Is(err, scheduler.ErrUnknownFacility):
		return &APIError{Code: OutcomeUnknownFacility, Message: err.Error(), RecoveryHint: "Use a key from list_facilities"}
	case errors.Is(err, scheduler.ErrNotFound):
		return &APIError{Code: OutcomeNotFound, Message: err.Error(), RecoveryHint: "Check the project id with get_projects"}
	case errors.Is(err, scheduler.ErrNoWorkers):
		return &APIError{Code: OutcomeNoWorkers, Message: err.Error(), RecoveryHint: "Upgrade the laboratory to unlock research workers"}
	case errors.Is(err, scheduler.ErrInternalInconsistency):
		return &APIError{Code: OutcomeInternalInconsistency, Message: err.Error()}
	case errors.Is(err, errRateLimited):
		return &APIError{Code: OutcomeRateLimited, Message: err.Error(), RecoveryHint: "Retry in a moment"}
	case errors.Is(err, errInvalidInput):
		return &APIError{Code: OutcomeInvalidInput, Message: err.Error()}
	default:
		return nil
	}
}
