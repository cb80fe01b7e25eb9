package pitchcontrol

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvalidFrame  = errors.New("invalid frame")
	ErrConfiguration = errors.New("invalid configuration")
)

// Reasons reported by InvalidFrameError. They double as metric labels.
const (
	ReasonEmptyTeam       = "empty_team"
	ReasonNonFinite       = "non_finite"
	ReasonOutOfBounds     = "out_of_bounds"
	ReasonTeamMismatch    = "team_mismatch"
	ReasonDuplicatePlayer = "duplicate_player"
	ReasonMissingFrame    = "missing_frame"
)

// InvalidFrameError rejects a malformed frame. It is never retried; the
// caller must supply corrected data.
type InvalidFrameError struct {
	Field  string // e.g. "away[3].velocity"
	Reason string
	Detail string
}

func (e *InvalidFrameError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid frame: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid frame: %s: %s (%s)", e.Field, e.Reason, e.Detail)
}

func (e *InvalidFrameError) Unwrap() error { return ErrInvalidFrame }

// ConfigurationError reports an unusable parameter. Without a Detail the
// parameter is non-positive or not finite.
type ConfigurationError struct {
	Param  string
	Value  float64
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid configuration: %s=%g: %s", e.Param, e.Value, e.Detail)
	}
	return fmt.Sprintf("invalid configuration: %s must be positive and finite, got %g", e.Param, e.Value)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
