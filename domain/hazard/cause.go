// Package hazard implements multi-cause death bookkeeping for vessels.
//
// Death is allocated through a two-phase mechanism: during a step every
// active process proposes an instantaneous rate against a named cause,
// then a single commit realizes the aggregate kill and splits it across
// the proposing causes. The closed cause set and the fail-fast propose
// path exist to keep the ledger from drifting silently.
package hazard

import (
	"fmt"

	"cellvm/domain/core"
)

// Cause identifies one tracked death cause. The set is closed: proposals
// against anything else fail immediately.
type Cause int

const (
	// CauseCompound covers direct pharmacological toxicity.
	CauseCompound Cause = iota
	// CauseStress covers death driven by accumulated latent stress.
	CauseStress
	// CauseConfluence covers over-confluence death beyond vessel capacity.
	CauseConfluence
	// CauseContamination covers death during a contamination DYING phase.
	CauseContamination
	// CauseStarvation covers media exhaustion.
	CauseStarvation
	// CauseMitoticCatastrophe covers division failure under anti-mitotics.
	CauseMitoticCatastrophe

	numCauses
)

var causeNames = [numCauses]string{
	CauseCompound:           "compound",
	CauseStress:             "stress",
	CauseConfluence:         "confluence",
	CauseContamination:      "contamination",
	CauseStarvation:         "starvation",
	CauseMitoticCatastrophe: "mitotic_catastrophe",
}

// String returns the stable wire name of the cause.
func (c Cause) String() string {
	if !c.Valid() {
		return fmt.Sprintf("cause(%d)", int(c))
	}
	return causeNames[c]
}

// Valid reports whether c is a member of the tracked cause set.
func (c Cause) Valid() bool {
	return c >= 0 && c < numCauses
}

// MarshalText implements encoding.TextMarshaler.
func (c Cause) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, core.NewUnknownCauseError(c.String())
	}
	return []byte(causeNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cause) UnmarshalText(b []byte) error {
	parsed, err := ParseCause(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCause maps a wire name back to a Cause. The reserved name
// "unattributed" is rejected alongside unknown names: residual death is
// an audit quantity, never an allocation target.
func ParseCause(s string) (Cause, error) {
	for c, name := range causeNames {
		if name == s {
			return Cause(c), nil
		}
	}
	return 0, core.NewUnknownCauseError(s)
}

// Causes returns every tracked cause in declaration order.
func Causes() []Cause {
	out := make([]Cause, numCauses)
	for i := range out {
		out[i] = Cause(i)
	}
	return out
}
