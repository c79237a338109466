// Package vessel defines the culture-container aggregate: biological
// state, latent stress, the death ledger, active treatments, persistent
// random effects, and the contamination record.
package vessel

import (
	"math"

	"cellvm/domain/contamination"
	"cellvm/domain/core"
	"cellvm/domain/effects"
	"cellvm/domain/hazard"
)

// StressState holds the latent stress variables, each in [0,1]. These
// drive both dynamics and (indirectly) measurements; no assay may see
// anything upstream of them.
type StressState struct {
	ERStress             float64 `json:"er_stress"`
	MitoDysfunction      float64 `json:"mito_dysfunction"`
	TransportDysfunction float64 `json:"transport_dysfunction"`
}

// Clamp forces every latent into [0,1].
func (s *StressState) Clamp() {
	s.ERStress = clamp01(s.ERStress)
	s.MitoDysfunction = clamp01(s.MitoDysfunction)
	s.TransportDysfunction = clamp01(s.TransportDysfunction)
}

// Max returns the largest latent, the driver of stress-induced hazard.
func (s StressState) Max() float64 {
	return math.Max(s.ERStress, math.Max(s.MitoDysfunction, s.TransportDysfunction))
}

// Treatment records one active compound with its resolved
// pharmacodynamic parameters. EC50 arrives already adjusted for the
// cell line and the vessel's hazard-scale multiplier.
type Treatment struct {
	Compound      core.CompoundID `json:"compound"`
	DoseUM        float64         `json:"dose_um"`
	StartAt       core.Hours      `json:"start_at"`
	EC50UM        float64         `json:"ec50_um"`
	HillSlope     float64         `json:"hill_slope"`
	Potency       float64         `json:"potency"`
	ToxicityScale float64         `json:"toxicity_scale"`
	StressER      float64         `json:"stress_er"`
	StressMito    float64         `json:"stress_mito"`
	StressTrans   float64         `json:"stress_transport"`
	MitoticWeight float64         `json:"mitotic_weight"`
}

// Effect evaluates the Hill occupancy of the treatment at its dose:
// dose^h / (dose^h + ec50^h), in [0,1).
func (t Treatment) Effect() float64 {
	if t.DoseUM <= 0 || t.EC50UM <= 0 {
		return 0
	}
	dh := math.Pow(t.DoseUM, t.HillSlope)
	eh := math.Pow(t.EC50UM, t.HillSlope)
	return dh / (dh + eh)
}

// Vessel is the simulated culture container.
// INVARIANTS:
// - Viability in [0,1]
// - CellCount >= 0
// - Ledger fields monotone non-decreasing, each in [0,1]
// - 1 - Viability - Ledger.Total() (unattributed death) stays >= -1e-6
type Vessel struct {
	ID            core.VesselID                   `json:"id"`
	Plate         core.PlateID                    `json:"plate"`
	CellLine      core.CellLineID                 `json:"cell_line"`
	CellCount     float64                         `json:"cell_count"`
	Viability     float64                         `json:"viability"`
	Capacity      float64                         `json:"capacity"`
	PassageNumber int                             `json:"passage_number"`
	Stress        StressState                     `json:"stress"`
	Ledger        hazard.Ledger                   `json:"death_ledger"`
	Treatments    map[core.CompoundID]Treatment   `json:"treatments"`
	Effects       effects.Record                  `json:"random_effects"`
	Contamination contamination.Record            `json:"contamination"`

	// SeededAt and LastPerturbedAt are simulation-clock stamps. A
	// perturbation is any treat/passage/feed event; assays may observe
	// only the elapsed time since the last one.
	SeededAt        core.Hours `json:"seeded_at"`
	LastPerturbedAt core.Hours `json:"last_perturbed_at"`
	// MediaAge accumulates since the last feed and drives starvation.
	MediaAge core.Hours `json:"media_age"`

	CreatedAt core.Timestamp `json:"created_at"`
	UpdatedAt core.Timestamp `json:"updated_at"`
}

// New creates a vessel at the given simulation time with full viability
// and an empty ledger.
func New(id core.VesselID, plate core.PlateID, line core.CellLineID, count, capacity float64, now core.Hours, rec effects.Record) *Vessel {
	return &Vessel{
		ID:              id,
		Plate:           plate,
		CellLine:        line,
		CellCount:       count,
		Viability:       1.0,
		Capacity:        capacity,
		PassageNumber:   0,
		Ledger:          hazard.NewLedger(),
		Treatments:      make(map[core.CompoundID]Treatment),
		Effects:         rec,
		SeededAt:        now,
		LastPerturbedAt: now,
		CreatedAt:       core.Now(),
		UpdatedAt:       core.Now(),
	}
}

// Confluence returns cell count relative to capacity.
func (v *Vessel) Confluence() float64 {
	if v.Capacity <= 0 {
		return 0
	}
	return v.CellCount / v.Capacity
}

// ApplyKill decrements viability by a committed allocation and enforces
// the vessel-level invariants. Any failure is fatal to the run.
func (v *Vessel) ApplyKill(alloc hazard.Allocation) error {
	next := v.Viability - alloc.Kill
	if next < -1e-9 {
		return core.NewInvariantError("vessel %s viability would go negative: %g", v.ID, next)
	}
	if next < 0 {
		next = 0
	}
	v.Viability = next

	if total := v.Ledger.Total(); total > 1+1e-6 {
		return core.NewInvariantError("vessel %s ledger total exceeds 1: %g", v.ID, total)
	}
	if res := v.Ledger.Unattributed(v.Viability); res < -1e-6 {
		return core.NewInvariantError("vessel %s attributed more death than occurred: residual %g", v.ID, res)
	}
	return nil
}

// MarkPerturbed stamps a treat/passage/feed event on the sim clock.
func (v *Vessel) MarkPerturbed(now core.Hours) {
	v.LastPerturbedAt = now
	v.UpdatedAt = core.Now()
}

// Clone returns a deep copy, used for passage and state reads.
func (v *Vessel) Clone() *Vessel {
	cp := *v
	cp.Ledger = v.Ledger.Clone()
	cp.Treatments = make(map[core.CompoundID]Treatment, len(v.Treatments))
	for k, t := range v.Treatments {
		cp.Treatments[k] = t
	}
	return &cp
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
