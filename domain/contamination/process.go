package contamination

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"cellvm/domain/core"
)

// Source is the minimal uniform-draw interface the process needs. Draws
// come from the vessel's growth stream so event identity is decided by
// biology-side randomness, never by assay draws.
type Source interface {
	Float64() float64
}

// Check thins the Poisson arrival process over elapsed simulated time.
// While CLEAN and enabled it consumes exactly one uniform draw per call;
// on an arrival it consumes two more (kind, severity), samples the event
// identity, and transitions to LATENT. Disabled configs consume nothing,
// which keeps disabled runs bit-identical to never having the process.
func Check(rec *Record, cfg Config, src Source, now core.Hours, elapsed core.Hours) {
	if !cfg.Enabled || rec.Phase != PhaseClean || elapsed <= 0 {
		return
	}

	pEvent := 1 - math.Exp(-cfg.RatePerVesselDay*elapsed.Days())
	if src.Float64() >= pEvent {
		return
	}

	rec.Phase = PhaseLatent
	rec.Kind = sampleKind(cfg.KindWeights, src.Float64())
	rec.OnsetAt = now
	rec.Severity = sampleSeverity(cfg.SeverityCV, src.Float64())
}

// Advance transitions the phase machine based on elapsed time since
// onset and returns the death rate (per hour) the process proposes for
// the current step: zero except in the DYING phase.
func Advance(rec *Record, cfg Config, now core.Hours) float64 {
	if rec.Phase == PhaseClean {
		return 0
	}
	profile := cfg.Profiles[rec.Kind]
	sinceOnset := float64(now.Sub(rec.OnsetAt))

	switch rec.Phase {
	case PhaseLatent:
		if sinceOnset >= profile.LatentHours {
			rec.Phase = PhaseArrested
		}
	case PhaseArrested:
		if sinceOnset >= profile.LatentHours+profile.ArrestedHours {
			rec.Phase = PhaseDying
		}
	}

	if rec.Phase == PhaseDying {
		return profile.DeathRatePerH * rec.Severity
	}
	return 0
}

// sampleKind inverts the normalized kind-weight CDF at u.
func sampleKind(weights [numKinds]float64, u float64) Kind {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return KindBacterial
	}
	var cum float64
	for k, w := range weights {
		cum += w / total
		if u < cum {
			return Kind(k)
		}
	}
	return Kind(numKinds - 1)
}

// sampleSeverity draws a mean-1 lognormal severity via the inverse CDF,
// so the draw costs exactly one uniform on the stream.
func sampleSeverity(cv, u float64) float64 {
	if cv <= 0 {
		return 1
	}
	// Clamp away from the open interval edges; Quantile(0) is -Inf.
	if u < 1e-12 {
		u = 1e-12
	} else if u > 1-1e-12 {
		u = 1 - 1e-12
	}
	sigma2 := math.Log(1 + cv*cv)
	dist := distuv.LogNormal{Mu: -sigma2 / 2, Sigma: math.Sqrt(sigma2)}
	return dist.Quantile(u)
}
