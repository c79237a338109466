package assays

import (
	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/domain/vessel"
	"cellvm/internal/config"
	"cellvm/ports"
)

// Per-cell signal yields in arbitrary reader units. Absolute scale is
// irrelevant to downstream analysis; ratios between conditions carry
// the signal.
const (
	ldhPerDeadCell  = 1.0
	atpPerLiveCell  = 1.0
	countFloorCells = 0

	// Plate readers see a smaller evaporation edge effect than imagers.
	edgeReaderAttenuation = 0.02
)

// LDHCytotoxicity reads lactate dehydrogenase released into the media:
// a death-proportional signal. It sees only cumulative death and cell
// count, never what caused the death.
type LDHCytotoxicity struct {
	realism config.RealismConfig
}

func NewLDHCytotoxicity(cfg *config.Config) *LDHCytotoxicity {
	return &LDHCytotoxicity{realism: cfg.Realism}
}

func (a *LDHCytotoxicity) Type() assay.Type { return assay.TypeLDHCytotoxicity }

func (a *LDHCytotoxicity) Measure(snap vessel.Snapshot, well assay.WellRef, stream ports.RNGStream) (assay.Observation, error) {
	if !snap.Exists {
		return assay.Neutral(a.Type(), snap.VesselID), nil
	}
	signal := snap.DeathTotal * snap.CellCount * ldhPerDeadCell
	return readerObservation(a.Type(), snap, well, signal, "au", a.realism.ReaderCV, stream), nil
}

// ATPViability reads total ATP: a live-cell-mass signal.
type ATPViability struct {
	realism config.RealismConfig
}

func NewATPViability(cfg *config.Config) *ATPViability {
	return &ATPViability{realism: cfg.Realism}
}

func (a *ATPViability) Type() assay.Type { return assay.TypeATPViability }

func (a *ATPViability) Measure(snap vessel.Snapshot, well assay.WellRef, stream ports.RNGStream) (assay.Observation, error) {
	if !snap.Exists {
		return assay.Neutral(a.Type(), snap.VesselID), nil
	}
	signal := snap.Viability * snap.CellCount * atpPerLiveCell
	return readerObservation(a.Type(), snap, well, signal, "rlu", a.realism.ReaderCV, stream), nil
}

// CellCount is the hemocytometer/flow counter: the true count blurred
// by counting error.
type CellCount struct {
	realism config.RealismConfig
}

func NewCellCount(cfg *config.Config) *CellCount {
	return &CellCount{realism: cfg.Realism}
}

func (a *CellCount) Type() assay.Type { return assay.TypeCellCount }

func (a *CellCount) Measure(snap vessel.Snapshot, well assay.WellRef, stream ports.RNGStream) (assay.Observation, error) {
	if !snap.Exists {
		return assay.Neutral(a.Type(), snap.VesselID), nil
	}
	return readerObservation(a.Type(), snap, well, snap.CellCount, "cells", a.realism.CountingCV, stream), nil
}

// readerObservation applies the shared plate-reader error model: one
// multiplicative Gaussian draw at the instrument CV, a mild edge
// attenuation, and a zero floor. One draw per call, always.
func readerObservation(t assay.Type, snap vessel.Snapshot, well assay.WellRef, signal float64, unit string, cv float64, stream ports.RNGStream) assay.Observation {
	value := signal * (1 + cv*stream.NormFloat64())
	if well.IsEdge() {
		value *= 1 - edgeReaderAttenuation
	}
	if value < countFloorCells {
		value = countFloorCells
	}
	return assay.Observation{
		ID:       core.NewObservationID(),
		Assay:    t,
		VesselID: snap.VesselID,
		BatchID:  well.Plate.String(),
		Status:   assay.StatusOK,
		Value:    value,
		Unit:     unit,
	}
}
