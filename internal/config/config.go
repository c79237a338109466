// Package config holds the immutable tables the simulation consumes:
// cell-line kinetics, compound sensitivities, bio-noise, contamination,
// and the realism (technical-noise) profile. Tables are injected as
// structs; loading them from YAML or a database is the job of external
// collaborators. The env layer here only covers run-level switches.
package config

import (
	"cellvm/domain/assay"
	"cellvm/domain/contamination"
	"cellvm/domain/core"
	"cellvm/domain/effects"
)

// CellLineParams is one row of the cell-line kinetic table.
type CellLineParams struct {
	DoublingTimeHours float64 `json:"doubling_time_hours"`
	// MaxConfluence scales vessel capacity into an effective carrying
	// capacity: lines differ in how densely they pack.
	MaxConfluence float64 `json:"max_confluence"`
	// SenescenceRate slows growth per accumulated passage.
	SenescenceRate float64 `json:"senescence_rate"`
	// SeedingEfficiency is the fraction of cells that attach on seed.
	SeedingEfficiency float64 `json:"seeding_efficiency"`
	// LagHours is the post-seed lag before exponential growth resumes.
	LagHours float64 `json:"lag_hours"`
	// BaselineDeathRatePerH is spontaneous background death.
	BaselineDeathRatePerH float64 `json:"baseline_death_rate_per_h"`
}

// CompoundParams is one row of the compound sensitivity table.
type CompoundParams struct {
	// EC50UM maps cell line to the half-effect concentration. A missing
	// entry means the pair is untested and treat() must fail.
	EC50UM    map[core.CellLineID]float64 `json:"ec50_um"`
	HillSlope float64                     `json:"hill_slope"`
	// Potency scales the instantaneous viability effect at treat time.
	Potency float64 `json:"potency"`
	// ToxicityScale converts Hill occupancy into an ongoing death rate.
	ToxicityScale float64 `json:"toxicity_scale"`
	// Stress loadings: how occupancy drives each latent axis.
	StressER    float64 `json:"stress_er"`
	StressMito  float64 `json:"stress_mito"`
	StressTrans float64 `json:"stress_transport"`
	// MitoticWeight drives the mitotic-catastrophe hazard for
	// anti-mitotic compounds.
	MitoticWeight float64 `json:"mitotic_weight"`
	// DetectionFloorUM: doses below this contribute zero incremental
	// hazard and zero stress.
	DetectionFloorUM float64 `json:"detection_floor_um"`
}

// RealismConfig is the technical-noise profile for measurements.
type RealismConfig struct {
	// AdditiveFloorSigma is the per-channel Gaussian floor noise sigma.
	// Clamping the draw at zero creates a positive bias at low true
	// signal, matching real imagers.
	AdditiveFloorSigma map[assay.Channel]float64 `json:"additive_floor_sigma"`
	// GainDriftPerHour drifts multiplicative gain with elapsed time
	// since the last perturbation.
	GainDriftPerHour float64 `json:"gain_drift_per_hour"`
	// EdgeEffectMagnitude attenuates edge wells (evaporation).
	EdgeEffectMagnitude float64 `json:"edge_effect_magnitude"`
	// BatchEffectCV is the lognormal CV of the per-plate batch factor.
	BatchEffectCV float64 `json:"batch_effect_cv"`
	// OutlierRate injects gross outliers at this per-observation rate;
	// OutlierScale is their multiplicative magnitude.
	OutlierRate  float64 `json:"outlier_rate"`
	OutlierScale float64 `json:"outlier_scale"`
	// DeadSignalRetention is the floor fraction of structural signal
	// retained by dead cells.
	DeadSignalRetention float64 `json:"dead_signal_retention"`
	// CountingCV is the technical CV of the cell-counting assay.
	CountingCV float64 `json:"counting_cv"`
	// ReaderCV is the technical CV of plate-reader assays (LDH/ATP).
	ReaderCV float64 `json:"reader_cv"`
}

// ScRNAConfig parameterizes the sequencing simulacrum.
type ScRNAConfig struct {
	// MinCells below which the observation is flagged underpowered.
	MinCells float64 `json:"min_cells"`
	// MeanDepth is the expected total counts per cell.
	MeanDepth float64 `json:"mean_depth"`
	// CellCycleFraction of cells are cycling; cycling subpopulations
	// suppress stress-marker expression (the classic confounder).
	CellCycleFraction float64 `json:"cell_cycle_fraction"`
	// CycleSuppression is the stress-program attenuation in cycling
	// cells, in [0,1].
	CycleSuppression float64 `json:"cycle_suppression"`
	// SampledCells is how many cells one observation profiles.
	SampledCells int `json:"sampled_cells"`
}

// RunContext carries per-run identity and seeds.
type RunContext struct {
	RunID      core.RunID `json:"run_id"`
	MasterSeed int64      `json:"master_seed"`
	// StrictContract enables the causal-contract enforcer for every
	// measurement in this run.
	StrictContract bool `json:"strict_contract"`
	// StepHours is the internal integration step for advance_time.
	StepHours float64 `json:"step_hours"`
}

// Config is the complete injected configuration for one run.
type Config struct {
	Run           RunContext                         `json:"run"`
	CellLines     map[core.CellLineID]CellLineParams `json:"cell_lines"`
	Compounds     map[core.CompoundID]CompoundParams `json:"compounds"`
	BioNoise      effects.Config                     `json:"bio_noise"`
	Contamination contamination.Config               `json:"contamination"`
	Realism       RealismConfig                      `json:"realism"`
	ScRNA         ScRNAConfig                        `json:"scrna"`
}

// CellLine resolves a cell line or fails with a configuration error.
func (c *Config) CellLine(id core.CellLineID) (CellLineParams, error) {
	p, ok := c.CellLines[id]
	if !ok {
		return CellLineParams{}, core.NewConfigurationError("cell line", id.String())
	}
	return p, nil
}

// CompoundFor resolves a compound/cell-line pair or fails.
func (c *Config) CompoundFor(compound core.CompoundID, line core.CellLineID) (CompoundParams, float64, error) {
	p, ok := c.Compounds[compound]
	if !ok {
		return CompoundParams{}, 0, core.NewConfigurationError("compound", compound.String())
	}
	ec50, ok := p.EC50UM[line]
	if !ok {
		return CompoundParams{}, 0, core.NewConfigurationError("compound/cell-line pair",
			compound.String()+"/"+line.String())
	}
	return p, ec50, nil
}

// Validate checks the whole config at the injection boundary.
func (c *Config) Validate() error {
	if c.Run.StepHours <= 0 {
		return core.NewConfigurationError("run", "step_hours must be positive")
	}
	for id, p := range c.CellLines {
		if p.DoublingTimeHours <= 0 {
			return core.NewConfigurationError("cell line doubling time", id.String())
		}
		if p.SeedingEfficiency <= 0 || p.SeedingEfficiency > 1 {
			return core.NewConfigurationError("cell line seeding efficiency", id.String())
		}
		if p.MaxConfluence <= 0 {
			return core.NewConfigurationError("cell line max confluence", id.String())
		}
	}
	for id, p := range c.Compounds {
		if p.HillSlope <= 0 {
			return core.NewConfigurationError("compound hill slope", id.String())
		}
		for line, ec50 := range p.EC50UM {
			if ec50 <= 0 {
				return core.NewConfigurationError("compound EC50",
					id.String()+"/"+line.String())
			}
		}
	}
	if err := c.BioNoise.Validate(); err != nil {
		return err
	}
	if err := c.Contamination.Validate(); err != nil {
		return err
	}
	if c.Realism.DeadSignalRetention < 0 || c.Realism.DeadSignalRetention > 1 {
		return core.NewConfigurationError("realism", "dead signal retention outside [0,1]")
	}
	if c.ScRNA.SampledCells <= 0 {
		return core.NewConfigurationError("scrna", "sampled_cells must be positive")
	}
	return nil
}
