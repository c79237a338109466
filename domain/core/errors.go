package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: bad lookups or malformed parameters at the
	// call boundary.
	ErrConfiguration   = errors.New("configuration error")
	ErrUnknownCellLine = fmt.Errorf("%w: unknown cell line", ErrConfiguration)
	ErrUnknownCompound = fmt.Errorf("%w: unknown compound", ErrConfiguration)
	ErrInvalidParam    = fmt.Errorf("%w: invalid parameter", ErrConfiguration)

	// ErrUnknownHazardCause is raised immediately on an invalid propose
	// call. Failing fast here prevents silent ledger corruption.
	ErrUnknownHazardCause = errors.New("unknown hazard cause")

	// ErrInvariantViolation means conservation, bounds, or monotonicity
	// broke. Fatal: downstream data is untrustworthy, never retry.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrUnknownVessel is returned by mutating operations for vessels
	// that were never seeded. Read operations degrade to a neutral
	// observation instead.
	ErrUnknownVessel = errors.New("unknown vessel")

	// ErrContractViolation means a measurement function read a field the
	// causal contract forbids (treatment identity, dose).
	ErrContractViolation = errors.New("causal contract violation")

	// ErrUnderpowered marks a measurement request below the assay's
	// minimum input. Soft: surfaced as an observation flag, not returned
	// from read paths.
	ErrUnderpowered = errors.New("underpowered request")
)

// Error constructors with context

func NewConfigurationError(kind string, id string) error {
	return fmt.Errorf("%w: %s %q", ErrConfiguration, kind, id)
}

func NewUnknownCauseError(cause string) error {
	return fmt.Errorf("%w: %q", ErrUnknownHazardCause, cause)
}

func NewInvariantError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

func NewContractError(field string) error {
	return fmt.Errorf("%w: measurement read forbidden field %q", ErrContractViolation, field)
}

// Error checking helpers

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
