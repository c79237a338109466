package config

import (
	"cellvm/domain/assay"
	"cellvm/domain/contamination"
	"cellvm/domain/core"
	"cellvm/domain/effects"
)

// Stock cell lines.
const (
	LineHEK293 core.CellLineID = "HEK293"
	LineHeLa   core.CellLineID = "HeLa"
	LineA549   core.CellLineID = "A549"
	LineU2OS   core.CellLineID = "U2OS"
)

// Stock compounds.
const (
	CompoundTunicamycin   core.CompoundID = "tunicamycin"
	CompoundRotenone      core.CompoundID = "rotenone"
	CompoundBrefeldinA    core.CompoundID = "brefeldin_a"
	CompoundNocodazole    core.CompoundID = "nocodazole"
	CompoundStaurosporine core.CompoundID = "staurosporine"
)

// Default returns the stock configuration used by the scenario suites.
// Orchestration collaborators usually start from this and override.
func Default(masterSeed int64) *Config {
	return &Config{
		Run: RunContext{
			RunID:      core.RunID(core.NewID()),
			MasterSeed: masterSeed,
			StepHours:  0.5,
		},
		CellLines: map[core.CellLineID]CellLineParams{
			LineHEK293: {
				DoublingTimeHours: 24, MaxConfluence: 0.95, SenescenceRate: 0.015,
				SeedingEfficiency: 0.9, LagHours: 6, BaselineDeathRatePerH: 1e-4,
			},
			LineHeLa: {
				DoublingTimeHours: 22, MaxConfluence: 1.0, SenescenceRate: 0.008,
				SeedingEfficiency: 0.92, LagHours: 5, BaselineDeathRatePerH: 8e-5,
			},
			LineA549: {
				DoublingTimeHours: 26, MaxConfluence: 0.9, SenescenceRate: 0.012,
				SeedingEfficiency: 0.88, LagHours: 7, BaselineDeathRatePerH: 1e-4,
			},
			LineU2OS: {
				DoublingTimeHours: 28, MaxConfluence: 0.92, SenescenceRate: 0.01,
				SeedingEfficiency: 0.85, LagHours: 8, BaselineDeathRatePerH: 1.2e-4,
			},
		},
		Compounds: map[core.CompoundID]CompoundParams{
			CompoundTunicamycin: {
				EC50UM: map[core.CellLineID]float64{
					LineHEK293: 1.2, LineHeLa: 0.8, LineA549: 2.0, LineU2OS: 1.5,
				},
				HillSlope: 1.4, Potency: 1.0, ToxicityScale: 0.015,
				StressER: 1.0, StressMito: 0.15, StressTrans: 0.25,
				DetectionFloorUM: 0.01,
			},
			CompoundRotenone: {
				EC50UM: map[core.CellLineID]float64{
					LineHEK293: 0.5, LineHeLa: 0.3, LineA549: 0.9, LineU2OS: 0.6,
				},
				HillSlope: 1.8, Potency: 1.0, ToxicityScale: 0.02,
				StressER: 0.1, StressMito: 1.0, StressTrans: 0.1,
				DetectionFloorUM: 0.005,
			},
			CompoundBrefeldinA: {
				EC50UM: map[core.CellLineID]float64{
					LineHEK293: 0.15, LineHeLa: 0.1, LineA549: 0.25, LineU2OS: 0.2,
				},
				HillSlope: 1.2, Potency: 1.0, ToxicityScale: 0.018,
				StressER: 0.45, StressMito: 0.1, StressTrans: 1.0,
				DetectionFloorUM: 0.002,
			},
			CompoundNocodazole: {
				EC50UM: map[core.CellLineID]float64{
					LineHEK293: 0.4, LineHeLa: 0.25, LineA549: 0.7, LineU2OS: 0.45,
				},
				HillSlope: 2.0, Potency: 0.9, ToxicityScale: 0.01,
				StressER: 0.05, StressMito: 0.2, StressTrans: 0.1,
				MitoticWeight: 1.0, DetectionFloorUM: 0.01,
			},
			CompoundStaurosporine: {
				EC50UM: map[core.CellLineID]float64{
					LineHEK293: 0.05, LineHeLa: 0.03, LineA549: 0.08, LineU2OS: 0.06,
				},
				HillSlope: 1.6, Potency: 1.0, ToxicityScale: 0.05,
				StressER: 0.4, StressMito: 0.5, StressTrans: 0.3,
				DetectionFloorUM: 0.001,
			},
		},
		BioNoise:      effects.DefaultConfig(),
		Contamination: contamination.DefaultConfig(),
		Realism: RealismConfig{
			AdditiveFloorSigma: map[assay.Channel]float64{
				assay.ChannelER: 0.02, assay.ChannelMito: 0.02, assay.ChannelNucleus: 0.015,
				assay.ChannelActin: 0.025, assay.ChannelRNA: 0.03,
			},
			GainDriftPerHour:    0.002,
			EdgeEffectMagnitude: 0.06,
			BatchEffectCV:       0.05,
			OutlierRate:         0.01,
			OutlierScale:        3.0,
			DeadSignalRetention: 0.3,
			CountingCV:          0.05,
			ReaderCV:            0.04,
		},
		ScRNA: ScRNAConfig{
			MinCells:          5000,
			MeanDepth:         20000,
			CellCycleFraction: 0.25,
			CycleSuppression:  0.6,
			SampledCells:      64,
		},
	}
}
