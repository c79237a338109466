// Package kinetics advances simulated time for every vessel: logistic
// growth, compound pharmacodynamics, stress-latent updates, hazard
// proposals, contamination, passage, and seeding. All mutation of
// vessel state flows through this engine.
package kinetics

import (
	"math"

	"cellvm/domain/contamination"
	"cellvm/domain/core"
	"cellvm/domain/effects"
	"cellvm/domain/hazard"
	"cellvm/domain/vessel"
	"cellvm/internal/config"
	"cellvm/internal/rng"
	"cellvm/ports"
)

// Engine owns the vessel registry and the simulation clock. It is
// single-threaded and step-discrete; AdvanceTime applies to all vessels
// before returning.
type Engine struct {
	cfg     *config.Config
	streams *rng.Manager
	sampler *effects.Sampler

	clock   core.Hours
	vessels map[core.VesselID]*vessel.Vessel
	order   []core.VesselID
}

// New creates an engine for one run.
func New(cfg *config.Config, streams *rng.Manager) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sampler, err := effects.NewSampler(cfg.BioNoise)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		streams: streams,
		sampler: sampler,
		vessels: make(map[core.VesselID]*vessel.Vessel),
	}, nil
}

// Clock returns the current simulated time.
func (e *Engine) Clock() core.Hours { return e.clock }

// Vessel returns the live vessel, if seeded.
func (e *Engine) Vessel(id core.VesselID) (*vessel.Vessel, bool) {
	v, ok := e.vessels[id]
	return v, ok
}

// VesselIDs returns the seeded vessel ids in seeding order.
func (e *Engine) VesselIDs() []core.VesselID {
	return append([]core.VesselID(nil), e.order...)
}

// PreparePlate draws the shared plate-level random-effect components
// before any per-vessel work on the plate. Seed calls this implicitly;
// callers that parallelize per-vessel work must call it up front.
func (e *Engine) PreparePlate(plate core.PlateID) error {
	stream, err := e.streams.Stream(ports.StreamGrowth, "plate/"+plate.String())
	if err != nil {
		return err
	}
	e.sampler.PreparePlate(plate, stream)
	return nil
}

// Seed creates a vessel with cell-line defaults and a fresh
// random-effects record. Unknown cell lines fail with a configuration
// error, as do duplicate vessel ids.
func (e *Engine) Seed(id core.VesselID, plate core.PlateID, line core.CellLineID, initialCount, capacity float64) (*vessel.Vessel, error) {
	if _, exists := e.vessels[id]; exists {
		return nil, core.NewConfigurationError("vessel already seeded", id.String())
	}
	params, err := e.cfg.CellLine(line)
	if err != nil {
		return nil, err
	}
	if initialCount <= 0 || capacity <= 0 {
		return nil, core.NewConfigurationError("seed", "count and capacity must be positive")
	}

	if err := e.PreparePlate(plate); err != nil {
		return nil, err
	}
	// Random-effect draws come from a dedicated stream id, never from
	// the vessel's own growth stream: sharing would let enabled-but-zero
	// noise configs shift the contamination uniforms and break the
	// disabled/all-ones trajectory equality.
	effectsStream, err := e.streams.Stream(ports.StreamGrowth, "effects/"+id.String())
	if err != nil {
		return nil, err
	}
	rec := e.sampler.Sample(plate, effectsStream.(effects.NormSource))

	v := vessel.New(id, plate, line, initialCount*params.SeedingEfficiency, capacity, e.clock, rec)
	e.vessels[id] = v
	e.order = append(e.order, id)
	return v, nil
}

// Treat records a compound on a vessel and applies the instantaneous
// pharmacodynamic viability effect. The effect at dose == EC50 is ~50%
// within a lognormal pharmacodynamic-noise band drawn from the
// treatment stream. The realized instantaneous kill is committed to the
// ledger under the compound cause, so conservation holds globally.
func (e *Engine) Treat(id core.VesselID, compound core.CompoundID, doseUM float64) error {
	v, ok := e.vessels[id]
	if !ok {
		return core.ErrUnknownVessel
	}
	if doseUM < 0 {
		return core.NewConfigurationError("dose", "must be non-negative")
	}
	params, ec50, err := e.cfg.CompoundFor(compound, v.CellLine)
	if err != nil {
		return err
	}

	// EC50 adjusted per cell line (table lookup above) and per-vessel
	// hazard scale: fragile vessels respond at lower doses.
	adjEC50 := ec50 / v.Effects.HazardScale

	t := vessel.Treatment{
		Compound:      compound,
		DoseUM:        doseUM,
		StartAt:       e.clock,
		EC50UM:        adjEC50,
		HillSlope:     params.HillSlope,
		Potency:       params.Potency,
		ToxicityScale: params.ToxicityScale,
		StressER:      params.StressER,
		StressMito:    params.StressMito,
		StressTrans:   params.StressTrans,
		MitoticWeight: params.MitoticWeight,
	}
	v.Treatments[compound] = t

	if doseUM >= params.DetectionFloorUM {
		if err := e.applyInstantEffect(v, t); err != nil {
			return err
		}
	}
	v.MarkPerturbed(e.clock)
	return nil
}

// applyInstantEffect commits the treat-time viability hit through the
// ledger so the kill stays cause-attributed.
func (e *Engine) applyInstantEffect(v *vessel.Vessel, t vessel.Treatment) error {
	stream, err := e.streams.Stream(ports.StreamTreatment, v.ID.String())
	if err != nil {
		return err
	}

	noise := pharmacodynamicNoise(stream.NormFloat64())
	frac := t.Potency * t.Effect() * noise
	if frac <= 0 {
		return nil
	}
	if frac > maxInstantKill {
		frac = maxInstantKill
	}

	// Invert the survival form so the committed kill is exactly
	// viability*frac over a unit pseudo-step.
	rate := -math.Log(1 - frac)
	proposals := hazard.NewProposals()
	if err := proposals.Propose(hazard.CauseCompound, rate); err != nil {
		return err
	}
	alloc, err := proposals.Commit(v.Ledger, v.Viability, 1, 1)
	if err != nil {
		return err
	}
	return v.ApplyKill(alloc)
}

// Passage splits a vessel into a new one: scaled cell count, carried
// latents and multipliers, incremented passage number, and a
// passage-stress viability penalty on the destination.
func (e *Engine) Passage(srcID, destID core.VesselID, splitRatio float64) (*vessel.Vessel, error) {
	src, ok := e.vessels[srcID]
	if !ok {
		return nil, core.ErrUnknownVessel
	}
	if _, exists := e.vessels[destID]; exists {
		return nil, core.NewConfigurationError("destination vessel already seeded", destID.String())
	}
	if splitRatio <= 0 || splitRatio > 1 {
		return nil, core.NewConfigurationError("split ratio", "must be in (0,1]")
	}
	params, err := e.cfg.CellLine(src.CellLine)
	if err != nil {
		return nil, err
	}

	dest := vessel.New(destID, src.Plate, src.CellLine,
		src.CellCount*splitRatio*params.SeedingEfficiency, src.Capacity, e.clock, src.Effects)
	dest.PassageNumber = src.PassageNumber + 1
	dest.Stress = src.Stress
	dest.Viability = src.Viability
	dest.Contamination = src.Contamination

	// Passage stress: a small viability penalty with operational noise.
	opStream, err := e.streams.Stream(ports.StreamOperations, destID.String())
	if err != nil {
		return nil, err
	}
	penalty := passageStressPenalty * (1 + passageNoiseCV*opStream.NormFloat64())
	if penalty < 0 {
		penalty = 0
	}
	proposals := hazard.NewProposals()
	if err := proposals.Propose(hazard.CauseStress, -math.Log(1-clampFrac(penalty))); err != nil {
		return nil, err
	}
	alloc, err := proposals.Commit(dest.Ledger, dest.Viability, 1, 1)
	if err != nil {
		return nil, err
	}
	if err := dest.ApplyKill(alloc); err != nil {
		return nil, err
	}

	src.CellCount *= 1 - splitRatio
	src.MediaAge = 0
	src.MarkPerturbed(e.clock)
	dest.MarkPerturbed(e.clock)

	e.vessels[destID] = dest
	e.order = append(e.order, destID)
	return dest, nil
}

// Feed replaces the media, resetting starvation pressure.
func (e *Engine) Feed(id core.VesselID) error {
	v, ok := e.vessels[id]
	if !ok {
		return core.ErrUnknownVessel
	}
	v.MediaAge = 0
	v.MarkPerturbed(e.clock)
	return nil
}

// Snapshot builds the measurement view for a vessel, or the neutral
// view when the vessel was never seeded.
func (e *Engine) Snapshot(id core.VesselID, guard vessel.FieldGuard) vessel.Snapshot {
	v, ok := e.vessels[id]
	if !ok {
		return vessel.NeutralSnapshot(id)
	}
	return v.Snapshot(e.clock, e.cfg.Contamination, guard)
}

// State returns a deep copy of a vessel for external inspection.
func (e *Engine) State(id core.VesselID) (*vessel.Vessel, error) {
	v, ok := e.vessels[id]
	if !ok {
		return nil, core.ErrUnknownVessel
	}
	return v.Clone(), nil
}

// growthStream returns the vessel's biology-side stream.
func (e *Engine) growthStream(v *vessel.Vessel) (contamination.Source, error) {
	s, err := e.streams.Stream(ports.StreamGrowth, v.ID.String())
	if err != nil {
		return nil, err
	}
	return s, nil
}

func clampFrac(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > maxInstantKill {
		return maxInstantKill
	}
	return f
}
