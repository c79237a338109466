package effects

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"cellvm/domain/core"
)

// plateDraw caches the shared standard-normal components for one plate.
type plateDraw struct {
	zGrowth float64
	zStress float64
	zHazard float64
}

// Sampler draws Records. It owns the per-plate component cache; one
// sampler instance lives for the duration of a run.
type Sampler struct {
	cfg    Config
	plates map[core.PlateID]plateDraw
}

// NewSampler creates a sampler for the given config.
func NewSampler(cfg Config) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{cfg: cfg, plates: make(map[core.PlateID]plateDraw)}, nil
}

// Config returns the sampler's configuration.
func (s *Sampler) Config() Config { return s.cfg }

// PreparePlate draws the shared plate-level components if they have not
// been drawn yet. Call this before any per-vessel work on the plate; the
// Sample path calls it implicitly for single-threaded use.
func (s *Sampler) PreparePlate(plateID core.PlateID, src NormSource) {
	if !s.cfg.Enabled {
		return
	}
	if _, ok := s.plates[plateID]; ok {
		return
	}
	s.plates[plateID] = plateDraw{
		zGrowth: src.NormFloat64(),
		zStress: src.NormFloat64(),
		zHazard: src.NormFloat64(),
	}
}

// Sample draws one vessel's persistent multipliers. Disabled mode
// returns exact ones and consumes no draws, which keeps disabled
// trajectories bit-identical to a baseline run with the same seed.
func (s *Sampler) Sample(plateID core.PlateID, src NormSource) Record {
	if !s.cfg.Enabled {
		return Ones()
	}
	s.PreparePlate(plateID, src)
	plate := s.plates[plateID]
	f := s.cfg.PlateVarianceFraction
	return Record{
		GrowthRate:        lognormal(s.cfg.GrowthRateCV, f, plate.zGrowth, src.NormFloat64()),
		StressSensitivity: lognormal(s.cfg.StressSensitivityCV, f, plate.zStress, src.NormFloat64()),
		HazardScale:       lognormal(s.cfg.HazardScaleCV, f, plate.zHazard, src.NormFloat64()),
	}
}

// ValidateCalibration checks a population of sampled multipliers against
// the configured CV: empirical CV within relTol relative error and
// empirical mean within 1% of 1.0. Used by calibration tests and the
// config self-check tooling.
func ValidateCalibration(samples []float64, wantCV, relTol float64) error {
	if len(samples) < 2 {
		return core.NewConfigurationError("calibration", "need at least 2 samples")
	}
	mean, err := stats.Mean(samples)
	if err != nil {
		return err
	}
	sd, err := stats.StandardDeviationSample(samples)
	if err != nil {
		return err
	}
	if mean < 0.99 || mean > 1.01 {
		return fmt.Errorf("empirical mean %.4f outside 1%% of 1.0", mean)
	}
	gotCV := sd / mean
	if wantCV > 0 {
		rel := (gotCV - wantCV) / wantCV
		if rel < -relTol || rel > relTol {
			return fmt.Errorf("empirical CV %.4f vs configured %.4f exceeds %.0f%% relative error",
				gotCV, wantCV, relTol*100)
		}
	}
	return nil
}
