// Package contamination models microbial contamination of vessels as a
// per-vessel Poisson-arrival state machine: CLEAN -> LATENT -> ARRESTED
// -> DYING (terminal). Event identity (kind, onset, severity) is fully
// determined by the seeded stream once sampled.
package contamination

import (
	"fmt"

	"cellvm/domain/core"
)

// Phase is the contamination lifecycle stage.
type Phase int

const (
	PhaseClean Phase = iota
	PhaseLatent
	PhaseArrested
	PhaseDying
)

var phaseNames = map[Phase]string{
	PhaseClean:    "clean",
	PhaseLatent:   "latent",
	PhaseArrested: "arrested",
	PhaseDying:    "dying",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Kind is the contaminant class.
type Kind int

const (
	KindBacterial Kind = iota
	KindFungal
	KindMycoplasma

	numKinds
)

var kindNames = [numKinds]string{
	KindBacterial:  "bacterial",
	KindFungal:     "fungal",
	KindMycoplasma: "mycoplasma",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every contaminant class in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Profile carries the per-kind phase durations and kill rate.
type Profile struct {
	LatentHours     float64 `json:"latent_hours"`
	ArrestedHours   float64 `json:"arrested_hours"`
	DeathRatePerH   float64 `json:"death_rate_per_h"`
	SignatureWeight float64 `json:"signature_weight"` // morphology shift strength
}

// Config is the per-run contamination model configuration.
type Config struct {
	Enabled          bool             `json:"enabled"`
	RatePerVesselDay float64          `json:"rate_per_vessel_day"`
	KindWeights      [numKinds]float64 `json:"kind_weights"`
	SeverityCV       float64          `json:"severity_cv"`
	Profiles         [numKinds]Profile `json:"profiles"`
}

// DefaultConfig returns a conservative baseline: roughly one event per
// two hundred vessel-days.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		RatePerVesselDay: 0.005,
		KindWeights:      [numKinds]float64{0.6, 0.25, 0.15},
		SeverityCV:       0.4,
		Profiles: [numKinds]Profile{
			KindBacterial:  {LatentHours: 12, ArrestedHours: 10, DeathRatePerH: 0.08, SignatureWeight: 1.0},
			KindFungal:     {LatentHours: 24, ArrestedHours: 18, DeathRatePerH: 0.05, SignatureWeight: 0.8},
			KindMycoplasma: {LatentHours: 96, ArrestedHours: 72, DeathRatePerH: 0.01, SignatureWeight: 0.35},
		},
	}
}

// Validate checks the config at the call boundary.
func (c Config) Validate() error {
	if c.RatePerVesselDay < 0 {
		return core.NewConfigurationError("contamination config", "negative arrival rate")
	}
	if c.SeverityCV < 0 {
		return core.NewConfigurationError("contamination config", "negative severity CV")
	}
	var sum float64
	for _, w := range c.KindWeights {
		if w < 0 {
			return core.NewConfigurationError("contamination config", "negative kind weight")
		}
		sum += w
	}
	if c.Enabled && sum <= 0 {
		return core.NewConfigurationError("contamination config", "kind weights sum to zero")
	}
	return nil
}

// Record is one vessel's contamination state. The zero value is CLEAN.
type Record struct {
	Phase    Phase      `json:"phase"`
	Kind     Kind       `json:"kind"`
	OnsetAt  core.Hours `json:"onset_at"`
	Severity float64    `json:"severity"`
}

// Contaminated reports whether an event has occurred.
func (r Record) Contaminated() bool {
	return r.Phase != PhaseClean
}

// GrowthFactor damps growth during the arrest and death phases. The
// assays never see this directly; it acts only through cell counts.
func (r Record) GrowthFactor() float64 {
	switch r.Phase {
	case PhaseArrested, PhaseDying:
		return 0.05
	default:
		return 1.0
	}
}

// ChannelShift is the deterministic morphology signature a contaminant
// imprints on imaging channels. All-ones means no shift. Assays apply
// the multipliers blindly; the decision logic stays in latent state.
type ChannelShift struct {
	ER      float64 `json:"er"`
	Mito    float64 `json:"mito"`
	Nucleus float64 `json:"nucleus"`
	Actin   float64 `json:"actin"`
	RNA     float64 `json:"rna"`
}

// NoShift is the identity signature.
func NoShift() ChannelShift {
	return ChannelShift{ER: 1, Mito: 1, Nucleus: 1, Actin: 1, RNA: 1}
}

// kindSignatures are the per-kind relative channel responses, calibrated
// so bacterial events dominate nucleus/RNA (extra DNA-stain punctae),
// fungal events distort actin, and mycoplasma shifts stay subtle.
var kindSignatures = [numKinds]ChannelShift{
	KindBacterial:  {ER: 0.05, Mito: 0.10, Nucleus: 0.60, Actin: 0.15, RNA: 0.45},
	KindFungal:     {ER: 0.10, Mito: 0.15, Nucleus: 0.25, Actin: 0.55, RNA: 0.20},
	KindMycoplasma: {ER: 0.08, Mito: 0.12, Nucleus: 0.15, Actin: 0.05, RNA: 0.25},
}

// phaseProgress scales the signature as the event matures.
func phaseProgress(p Phase) float64 {
	switch p {
	case PhaseLatent:
		return 0.25
	case PhaseArrested:
		return 0.7
	case PhaseDying:
		return 1.0
	default:
		return 0
	}
}

// Signature returns the channel multipliers for the record's current
// phase under the given config. Clean records return the identity.
func (r Record) Signature(cfg Config) ChannelShift {
	progress := phaseProgress(r.Phase)
	if progress == 0 {
		return NoShift()
	}
	sig := kindSignatures[r.Kind]
	strength := progress * r.Severity * cfg.Profiles[r.Kind].SignatureWeight
	return ChannelShift{
		ER:      1 + sig.ER*strength,
		Mito:    1 + sig.Mito*strength,
		Nucleus: 1 + sig.Nucleus*strength,
		Actin:   1 + sig.Actin*strength,
		RNA:     1 + sig.RNA*strength,
	}
}
