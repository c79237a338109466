// Package effects implements persistent per-vessel biological
// heterogeneity as lognormal random-effect multipliers.
//
// Each vessel carries one Record sampled at seed time and never
// resampled. Variance is split between a vessel-level component and a
// plate-level component shared by every vessel on the same plate; the
// plate component must be drawn before any per-vessel work so results
// stay reproducible if per-vessel work is ever parallelized.
package effects

import (
	"math"

	"cellvm/domain/core"
)

// NormSource is the minimal draw interface the sampler needs. The RNG
// stream manager's growth stream satisfies it.
type NormSource interface {
	NormFloat64() float64
}

// Config controls the biological-noise model.
type Config struct {
	// Enabled gates the whole model. When false every multiplier is
	// exactly 1.0 and the sampler consumes zero draws, so trajectories
	// are bit-identical to a run without random effects.
	Enabled bool `json:"enabled"`

	// Coefficients of variation per multiplier.
	GrowthRateCV        float64 `json:"growth_rate_cv"`
	StressSensitivityCV float64 `json:"stress_sensitivity_cv"`
	HazardScaleCV       float64 `json:"hazard_scale_cv"`

	// PlateVarianceFraction is the share of total variance carried by
	// the shared plate-level component, in [0,1].
	PlateVarianceFraction float64 `json:"plate_variance_fraction"`
}

// DefaultConfig returns the calibration used by the stock scenarios.
func DefaultConfig() Config {
	return Config{
		Enabled:               true,
		GrowthRateCV:          0.12,
		StressSensitivityCV:   0.18,
		HazardScaleCV:         0.15,
		PlateVarianceFraction: 0.3,
	}
}

// Validate checks the config at the call boundary.
func (c Config) Validate() error {
	if c.GrowthRateCV < 0 || c.StressSensitivityCV < 0 || c.HazardScaleCV < 0 {
		return core.NewConfigurationError("bio-noise config", "negative CV")
	}
	if c.PlateVarianceFraction < 0 || c.PlateVarianceFraction > 1 {
		return core.NewConfigurationError("bio-noise config", "plate variance fraction outside [0,1]")
	}
	return nil
}

// Record holds one vessel's persistent multipliers. Mean of each
// multiplier over the population is ~1.0 by construction.
type Record struct {
	GrowthRate        float64 `json:"growth_rate"`
	StressSensitivity float64 `json:"stress_sensitivity"`
	HazardScale       float64 `json:"hazard_scale"`
}

// Ones is the identity record used when the model is disabled.
func Ones() Record {
	return Record{GrowthRate: 1, StressSensitivity: 1, HazardScale: 1}
}

// lognormal maps a CV and two standard-normal draws (plate, vessel) to a
// bias-free multiplier: sigma^2 = ln(1+cv^2), mu = -sigma^2/2 gives
// E[exp(mu + sigma*z)] == 1 exactly.
func lognormal(cv, plateFraction, zPlate, zVessel float64) float64 {
	if cv <= 0 {
		return 1
	}
	sigma2 := math.Log(1 + cv*cv)
	sigmaPlate := math.Sqrt(plateFraction * sigma2)
	sigmaVessel := math.Sqrt((1 - plateFraction) * sigma2)
	return math.Exp(-sigma2/2 + sigmaPlate*zPlate + sigmaVessel*zVessel)
}
