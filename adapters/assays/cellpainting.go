// Package assays implements the measurement instruments. Every
// instrument is pure with respect to simulation state: it reads the
// latent snapshot plus a well reference, draws randomness only from the
// supplied assay stream, and returns an Observation owned by the
// caller. Instruments never branch on treatment identity; everything
// they report is reconstructed from latent stress, viability, and
// elapsed time.
package assays

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/domain/vessel"
	"cellvm/internal/config"
	"cellvm/ports"
)

// channelLoading maps the latent stress axes into one imaging channel's
// structural intensity. Baselines and loadings are in arbitrary
// normalized units; a healthy untreated well sits near its baseline.
type channelLoading struct {
	baseline   float64
	er         float64
	mito       float64
	transport  float64
	confluence float64
}

// channelLoadings is fixed: iteration follows assay.Channels() order so
// the draw sequence is identical for every observation.
var channelLoadings = map[assay.Channel]channelLoading{
	assay.ChannelER:      {baseline: 0.50, er: 1.20, mito: 0.10, transport: 0.25},
	assay.ChannelMito:    {baseline: 0.50, er: 0.10, mito: 1.10, transport: 0.10},
	assay.ChannelNucleus: {baseline: 0.60, er: 0.05, mito: 0.15, confluence: 0.30},
	assay.ChannelActin:   {baseline: 0.55, er: 0.10, transport: 0.85, confluence: 0.15},
	assay.ChannelRNA:     {baseline: 0.45, er: 0.35, mito: 0.25, transport: 0.30},
}

// CellPainting renders latent stress as five-channel structural
// intensities with the full technical-noise stack: viability-dependent
// signal retention, gain drift, edge attenuation, per-plate batch
// factors, additive floor noise, and outlier injection.
type CellPainting struct {
	realism    config.RealismConfig
	masterSeed int64
}

// NewCellPainting binds the instrument to one run's realism profile.
func NewCellPainting(cfg *config.Config) *CellPainting {
	return &CellPainting{realism: cfg.Realism, masterSeed: cfg.Run.MasterSeed}
}

func (a *CellPainting) Type() assay.Type { return assay.TypeCellPainting }

// Measure images one well. The draw budget is fixed per call (five
// channel-noise normals plus one outlier uniform) so observation order
// never perturbs later draws.
func (a *CellPainting) Measure(snap vessel.Snapshot, well assay.WellRef, stream ports.RNGStream) (assay.Observation, error) {
	if !snap.Exists {
		return assay.Neutral(a.Type(), snap.VesselID), nil
	}

	// Dead cells keep a floor of the structural signal; the live
	// fraction contributes the rest.
	retention := a.realism.DeadSignalRetention + (1-a.realism.DeadSignalRetention)*snap.Viability

	gain := 1 + a.realism.GainDriftPerHour*snap.SincePerturbation.Float()
	edge := 1.0
	if well.IsEdge() {
		edge = 1 - a.realism.EdgeEffectMagnitude
	}
	batch := batchFactor(a.masterSeed, well.Plate, a.realism.BatchEffectCV)

	channels := make(map[assay.Channel]float64, len(channelLoadings))
	for _, ch := range assay.Channels() {
		l := channelLoadings[ch]
		structural := l.baseline +
			l.er*snap.Stress.ERStress +
			l.mito*snap.Stress.MitoDysfunction +
			l.transport*snap.Stress.TransportDysfunction +
			l.confluence*snap.Confluence
		value := structural * retention * gain * edge * batch * shiftFor(snap, ch)

		// Clamping the noisy readout at zero biases low-signal wells
		// upward, matching real imagers.
		value += stream.NormFloat64() * a.realism.AdditiveFloorSigma[ch]
		if value < 0 {
			value = 0
		}
		channels[ch] = value
	}

	obs := assay.Observation{
		ID:       core.NewObservationID(),
		Assay:    a.Type(),
		VesselID: snap.VesselID,
		BatchID:  well.Plate.String(),
		Status:   assay.StatusOK,
		Channels: channels,
		Unit:     "au",
	}
	if stream.Float64() < a.realism.OutlierRate {
		obs.Flags.Outlier = true
		for ch := range obs.Channels {
			obs.Channels[ch] *= a.realism.OutlierScale
		}
	}
	return obs, nil
}

// shiftFor applies the contamination morphology multiplier for one
// channel. The snapshot pre-resolves the signature, so this stays a
// blind table lookup.
func shiftFor(snap vessel.Snapshot, ch assay.Channel) float64 {
	switch ch {
	case assay.ChannelER:
		return snap.Shift.ER
	case assay.ChannelMito:
		return snap.Shift.Mito
	case assay.ChannelNucleus:
		return snap.Shift.Nucleus
	case assay.ChannelActin:
		return snap.Shift.Actin
	case assay.ChannelRNA:
		return snap.Shift.RNA
	default:
		return 1
	}
}

// batchFactor is the per-plate lognormal gain shared by every
// observation on the plate. It derives from the master seed and the
// plate id alone, consuming no stream draws, so plate membership never
// perturbs any other randomness.
func batchFactor(masterSeed int64, plate core.PlateID, cv float64) float64 {
	if cv <= 0 {
		return 1
	}
	u := float64(uint64(core.DeriveSeed(masterSeed, "assay/batch", plate.String()))) / float64(math.MaxUint64)
	if u < 1e-12 {
		u = 1e-12
	}
	if u > 1-1e-12 {
		u = 1 - 1e-12
	}
	z := distuv.UnitNormal.Quantile(u)
	sigma2 := math.Log(1 + cv*cv)
	return math.Exp(-sigma2/2 + math.Sqrt(sigma2)*z)
}
