package kinetics

import (
	"math"
	"sort"

	"cellvm/domain/contamination"
	"cellvm/domain/core"
	"cellvm/domain/hazard"
	"cellvm/domain/vessel"
	"cellvm/internal/config"
)

// Model constants. These are part of the virtual biology, not tunables:
// the injected tables parameterize lines and compounds, while these fix
// the shared dynamic laws they plug into.
const (
	// maxInstantKill caps any single instantaneous viability fraction.
	maxInstantKill = 0.995

	// Pharmacodynamic noise on the instantaneous treat effect.
	pdNoiseCV  = 0.15
	pdNoiseMin = 0.6
	pdNoiseMax = 1.4

	// Passage stress penalty and its operational noise.
	passageStressPenalty = 0.05
	passageNoiseCV       = 0.2

	// Stress latents rise fast under drive and decay slowly without it.
	stressRiseTauHours  = 6.0
	stressDecayTauHours = 48.0

	// Stress-induced death engages above this latent level.
	stressHazardThreshold = 0.5
	stressHazardRatePerH  = 0.02

	// Over-confluence death rate per unit of excess confluence.
	confluenceHazardRatePerH = 0.05

	// Starvation engages once media age passes the onset and grows
	// linearly per day of excess.
	starvationOnsetHours  = 72.0
	starvationRatePerDayH = 0.002

	// Mitotic catastrophe rate per unit of anti-mitotic occupancy.
	mitoticHazardRatePerH = 0.03
)

// pharmacodynamicNoise maps a standard normal draw to a mean-1
// lognormal multiplier, clamped to keep the EC50 effect inside the
// documented 0.3-0.7 band.
func pharmacodynamicNoise(z float64) float64 {
	sigma2 := math.Log(1 + pdNoiseCV*pdNoiseCV)
	m := math.Exp(-sigma2/2 + math.Sqrt(sigma2)*z)
	if m < pdNoiseMin {
		return pdNoiseMin
	}
	if m > pdNoiseMax {
		return pdNoiseMax
	}
	return m
}

// AdvanceTime integrates every vessel forward by the given duration in
// fixed sub-steps. Hazard commit for a vessel happens once per sub-step,
// after all proposals for that sub-step are collected.
func (e *Engine) AdvanceTime(hours float64) error {
	if hours < 0 {
		return core.NewConfigurationError("advance_time", "duration must be non-negative")
	}
	remaining := hours
	for remaining > 1e-12 {
		dt := e.cfg.Run.StepHours
		if dt > remaining {
			dt = remaining
		}
		for _, id := range e.order {
			if err := e.stepVessel(e.vessels[id], dt); err != nil {
				return err
			}
		}
		e.clock += core.Hours(dt)
		remaining -= dt
	}
	return nil
}

// stepVessel runs one sub-step for one vessel: contamination, growth,
// stress, then the two-phase hazard propose/commit.
func (e *Engine) stepVessel(v *vessel.Vessel, dt float64) error {
	src, err := e.growthStream(v)
	if err != nil {
		return err
	}

	contamination.Check(&v.Contamination, e.cfg.Contamination, src, e.clock, core.Hours(dt))
	contamRate := contamination.Advance(&v.Contamination, e.cfg.Contamination, e.clock+core.Hours(dt))

	params, err := e.cfg.CellLine(v.CellLine)
	if err != nil {
		return err
	}

	e.grow(v, params, dt)
	e.updateStress(v, dt)
	if err := e.proposeAndCommit(v, params, dt, contamRate); err != nil {
		return err
	}

	v.MediaAge += core.Hours(dt)
	return nil
}

// grow integrates logistic growth over one sub-step. Only viable cells
// divide; a contamination arrest damps the rate to 5%; confluence above
// the effective carrying capacity stops growth (death is the ledger's
// job, not a count rollback).
func (e *Engine) grow(v *vessel.Vessel, params config.CellLineParams, dt float64) {
	kEff := v.Capacity * params.MaxConfluence
	if kEff <= 0 || v.CellCount <= 0 {
		return
	}

	age := float64(e.clock - v.SeededAt)
	lagFactor := 1.0
	if params.LagHours > 0 {
		lagFactor = 1 - math.Exp(-age/params.LagHours)
	}
	senescenceFactor := 1 / (1 + params.SenescenceRate*float64(v.PassageNumber))

	r := math.Ln2 / params.DoublingTimeHours *
		v.Effects.GrowthRate * lagFactor * senescenceFactor * v.Contamination.GrowthFactor()

	logistic := 1 - v.CellCount/kEff
	if logistic < 0 {
		logistic = 0
	}
	v.CellCount += r * v.CellCount * v.Viability * logistic * dt
}

// updateStress relaxes each latent toward the drive implied by active
// treatments: fast rise under occupancy, slow decay without it.
func (e *Engine) updateStress(v *vessel.Vessel, dt float64) {
	var targetER, targetMito, targetTrans float64
	for _, t := range e.activeTreatments(v) {
		occ := t.Effect()
		targetER += occ * t.StressER
		targetMito += occ * t.StressMito
		targetTrans += occ * t.StressTrans
	}
	sens := v.Effects.StressSensitivity
	targetER = clamp01(targetER * sens)
	targetMito = clamp01(targetMito * sens)
	targetTrans = clamp01(targetTrans * sens)

	v.Stress.ERStress = relax(v.Stress.ERStress, targetER, dt)
	v.Stress.MitoDysfunction = relax(v.Stress.MitoDysfunction, targetMito, dt)
	v.Stress.TransportDysfunction = relax(v.Stress.TransportDysfunction, targetTrans, dt)
	v.Stress.Clamp()
}

// relax moves a latent toward target with asymmetric time constants.
func relax(current, target, dt float64) float64 {
	tau := stressDecayTauHours
	if target > current {
		tau = stressRiseTauHours
	}
	return current + (target-current)*(1-math.Exp(-dt/tau))
}

// proposeAndCommit collects every active hazard for the sub-step and
// commits once. The per-vessel hazard-scale multiplier applies at
// commit time.
func (e *Engine) proposeAndCommit(v *vessel.Vessel, params config.CellLineParams, dt float64, contamRate float64) error {
	p := hazard.NewProposals()

	// Background death plus latent-stress pressure.
	stressRate := params.BaselineDeathRatePerH
	if excess := v.Stress.Max() - stressHazardThreshold; excess > 0 {
		stressRate += stressHazardRatePerH * excess
	}
	if err := p.Propose(hazard.CauseStress, stressRate); err != nil {
		return err
	}

	for _, t := range e.activeTreatments(v) {
		occ := t.Effect()
		if err := p.Propose(hazard.CauseCompound, t.ToxicityScale*occ); err != nil {
			return err
		}
		if t.MitoticWeight > 0 {
			if err := p.Propose(hazard.CauseMitoticCatastrophe, mitoticHazardRatePerH*t.MitoticWeight*occ); err != nil {
				return err
			}
		}
	}

	// Over-confluence hazard grows monotonically with excess.
	kEff := v.Capacity * params.MaxConfluence
	if kEff > 0 {
		if excess := v.CellCount/kEff - 1; excess > 0 {
			if err := p.Propose(hazard.CauseConfluence, confluenceHazardRatePerH*excess); err != nil {
				return err
			}
		}
	}

	// Starvation ramps with media age past onset.
	if age := float64(v.MediaAge); age > starvationOnsetHours {
		rate := starvationRatePerDayH * (age - starvationOnsetHours) / 24
		if err := p.Propose(hazard.CauseStarvation, rate); err != nil {
			return err
		}
	}

	if contamRate > 0 {
		if err := p.Propose(hazard.CauseContamination, contamRate); err != nil {
			return err
		}
	}

	alloc, err := p.Commit(v.Ledger, v.Viability, dt, v.Effects.HazardScale)
	if err != nil {
		return err
	}
	return v.ApplyKill(alloc)
}

// activeTreatments returns treatments above their detection floor, in
// deterministic compound order. Doses below the floor contribute zero
// incremental hazard and zero stress drive.
func (e *Engine) activeTreatments(v *vessel.Vessel) []vessel.Treatment {
	if len(v.Treatments) == 0 {
		return nil
	}
	compounds := make([]string, 0, len(v.Treatments))
	for c := range v.Treatments {
		compounds = append(compounds, c.String())
	}
	sort.Strings(compounds)

	out := make([]vessel.Treatment, 0, len(compounds))
	for _, c := range compounds {
		t := v.Treatments[core.CompoundID(c)]
		if params, ok := e.cfg.Compounds[t.Compound]; ok && t.DoseUM < params.DetectionFloorUM {
			continue
		}
		out = append(out, t)
	}
	return out
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
