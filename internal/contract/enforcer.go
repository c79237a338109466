// Package contract implements the causal-contract enforcer: a
// cross-cutting guard (dev/test mode) proving that measurement functions
// depend only on latent state and elapsed time, never on treatment
// identity. Two different compounds producing the same latent stress
// must produce statistically similar measurements; this guard is how the
// suite demonstrates it.
package contract

import (
	"fmt"

	"cellvm/domain/core"
	"cellvm/ports"
)

// Mode selects enforcement behavior.
type Mode int

const (
	// ModeOff records nothing and permits every read.
	ModeOff Mode = iota
	// ModeObserve records forbidden reads without failing them.
	ModeObserve
	// ModeStrict fails forbidden reads with an error naming the field.
	ModeStrict
)

// Violation records one forbidden field read.
type Violation struct {
	Field string `json:"field"`
}

// Enforcer is attached to vessel snapshots as their field guard.
type Enforcer struct {
	mode       Mode
	violations []Violation
}

// NewEnforcer creates an enforcer in the given mode.
func NewEnforcer(mode Mode) *Enforcer {
	return &Enforcer{mode: mode}
}

// Strict reports whether forbidden reads fail.
func (e *Enforcer) Strict() bool { return e.mode == ModeStrict }

// Observe implements vessel.FieldGuard. In strict mode it returns an
// error naming the violating field; in observe mode it records and
// permits; off mode is free.
func (e *Enforcer) Observe(field string) error {
	if e.mode == ModeOff {
		return nil
	}
	e.violations = append(e.violations, Violation{Field: field})
	if e.mode == ModeStrict {
		return core.NewContractError(field)
	}
	return nil
}

// Violations returns recorded forbidden reads since the last reset.
func (e *Enforcer) Violations() []Violation {
	return append([]Violation(nil), e.violations...)
}

// Reset clears recorded violations.
func (e *Enforcer) Reset() {
	e.violations = e.violations[:0]
}

// VerifyAssayIsolation compares RNG audits captured before and after a
// measurement and fails if any non-assay stream advanced. This is the
// runtime proof that an assay call only touched the assay stream.
func VerifyAssayIsolation(before, after map[ports.StreamKind]uint64) error {
	for _, kind := range ports.StreamKinds() {
		if kind == ports.StreamAssay {
			continue
		}
		if after[kind] != before[kind] {
			return fmt.Errorf("%w: stream %q advanced by %d draws during a measurement",
				core.ErrContractViolation, kind, after[kind]-before[kind])
		}
	}
	return nil
}
