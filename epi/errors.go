package epi

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy in the package contract. Callers match
// with errors.Is; sites that need extra context wrap these with fmt.Errorf
// and %w.
var (
	// ErrUnknownParameter is returned by ParameterSet lookups for a name that
	// is neither a canonical group name nor a registered alias.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidParameterValue is returned when a Set would violate a
	// parameter's declared domain or make a dependent quantity undefined.
	ErrInvalidParameterValue = errors.New("invalid parameter value")

	// ErrMissingParameter is returned at model construction when a required
	// parameter group is absent and has no default.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrUnknownRegion is returned by demography lookups for a region key
	// that the source does not know about.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrDivergedSimulation is the sentinel wrapped by DivergedError.
	ErrDivergedSimulation = errors.New("simulation diverged")

	// ErrInvalidDuration is returned by Advance for duration <= 0 or
	// step <= 0.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrUnknownCompartment is returned by run queries for a selector that
	// matches no compartment code, full name, or derived column.
	ErrUnknownCompartment = errors.New("unknown compartment")

	// ErrUnknownTransform is returned for an unrecognized transform suffix.
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrBadSelector is returned for malformed query strings (empty
	// selector, more than one colon).
	ErrBadSelector = errors.New("bad selector")
)

// DivergedError reports a non-finite compartment value during integration.
// It carries the last valid time and state so a caller can diagnose where
// divergence began instead of receiving a silently truncated series.
type DivergedError struct {
	Time      float64   // last time with a finite state
	LastState []float64 // state vector at Time
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("simulation diverged after t=%g: non-finite compartment value", e.Time)
}

// Unwrap lets errors.Is(err, ErrDivergedSimulation) match.
func (e *DivergedError) Unwrap() error {
	return ErrDivergedSimulation
}
