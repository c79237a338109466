package vessel

import (
	"cellvm/domain/contamination"
	"cellvm/domain/core"
)

// FieldGuard intercepts reads of causally-forbidden snapshot fields.
// The strict-mode enforcer returns an error naming the field; a nil
// guard permits everything (trusted engine-side use).
type FieldGuard interface {
	Observe(field string) error
}

// Snapshot is the read-only view of a vessel handed to measurement
// functions. Exported fields are exactly the observables the causal
// contract allows: latent numeric state and elapsed time since the last
// perturbation. Treatment identity and dose live behind guarded
// accessors so that strict mode can prove assays never read them.
type Snapshot struct {
	VesselID      core.VesselID   `json:"vessel_id"`
	CellLine      core.CellLineID `json:"cell_line"`
	Exists        bool            `json:"exists"`
	CellCount     float64         `json:"cell_count"`
	Viability     float64         `json:"viability"`
	Confluence    float64         `json:"confluence"`
	PassageNumber int             `json:"passage_number"`
	Stress        StressState     `json:"stress"`
	// DeathTotal is 1 - viability: what a cytotoxicity reader can see.
	DeathTotal float64 `json:"death_total"`
	// Shift is the contamination morphology signature, pre-resolved from
	// latent state so the assay applies it without any branching on a
	// contamination flag.
	Shift contamination.ChannelShift `json:"shift"`
	// SincePerturbation is the elapsed simulated time since the last
	// treat/passage/feed event.
	SincePerturbation core.Hours `json:"since_perturbation"`
	SinceSeed         core.Hours `json:"since_seed"`

	treatments []Treatment
	guard      FieldGuard
}

// Snapshot builds the measurement view of the vessel at simulation time
// now. The contamination config is needed only to resolve the latent
// morphology signature.
func (v *Vessel) Snapshot(now core.Hours, contam contamination.Config, guard FieldGuard) Snapshot {
	treatments := make([]Treatment, 0, len(v.Treatments))
	for _, t := range v.Treatments {
		treatments = append(treatments, t)
	}
	return Snapshot{
		VesselID:          v.ID,
		CellLine:          v.CellLine,
		Exists:            true,
		CellCount:         v.CellCount,
		Viability:         v.Viability,
		Confluence:        v.Confluence(),
		PassageNumber:     v.PassageNumber,
		Stress:            v.Stress,
		DeathTotal:        1 - v.Viability,
		Shift:             v.Contamination.Signature(contam),
		SincePerturbation: now.Sub(v.LastPerturbedAt),
		SinceSeed:         now.Sub(v.SeededAt),
		treatments:        treatments,
		guard:             guard,
	}
}

// NeutralSnapshot is the zero-status view returned for read operations
// on vessels that were never seeded. Robust-to-orchestration-mistakes:
// callers get flags, not errors.
func NeutralSnapshot(id core.VesselID) Snapshot {
	return Snapshot{VesselID: id, Exists: false, Shift: contamination.NoShift()}
}

// Treatments exposes the active treatment list through the guard. In
// strict contract mode any measurement code calling this fails with an
// error naming the field.
func (s Snapshot) Treatments() ([]Treatment, error) {
	if s.guard != nil {
		if err := s.guard.Observe("treatments"); err != nil {
			return nil, err
		}
	}
	return append([]Treatment(nil), s.treatments...), nil
}

// Doses exposes compound doses through the guard, like Treatments.
func (s Snapshot) Doses() (map[core.CompoundID]float64, error) {
	if s.guard != nil {
		if err := s.guard.Observe("treatments.dose"); err != nil {
			return nil, err
		}
	}
	out := make(map[core.CompoundID]float64, len(s.treatments))
	for _, t := range s.treatments {
		out[t.Compound] = t.DoseUM
	}
	return out, nil
}
