// Package assay defines the closed measurement vocabulary: assay kinds,
// imaging channels, well references, and the Observation value object
// every measurement returns. Observations are owned by the caller, never
// by the vessel.
package assay

import (
	"fmt"

	"cellvm/domain/core"
)

// Type is the closed assay enumeration. Exhaustive matching on Type
// replaces free-form assay-name strings and their normalization
// ambiguity ("cellpainting" vs "cell_painting").
type Type int

const (
	TypeCellPainting Type = iota
	TypeLDHCytotoxicity
	TypeATPViability
	TypeScRNASeq
	TypeCellCount

	numTypes
)

var typeNames = [numTypes]string{
	TypeCellPainting:    "cell_painting",
	TypeLDHCytotoxicity: "ldh_cytotoxicity",
	TypeATPViability:    "atp_viability",
	TypeScRNASeq:        "scrna_seq",
	TypeCellCount:       "cell_count",
}

// String returns the canonical wire name.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("assay(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports membership in the closed set.
func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

// ParseType maps a canonical wire name back to a Type. Exact match
// only: no case folding, no underscore normalization.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, core.NewConfigurationError("assay type", s)
}

// Types returns every assay kind in declaration order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Channel names one cell-painting imaging channel.
type Channel string

const (
	ChannelER      Channel = "er"
	ChannelMito    Channel = "mito"
	ChannelNucleus Channel = "nucleus"
	ChannelActin   Channel = "actin"
	ChannelRNA     Channel = "rna"
)

// Channels lists the imaging channels in fixed order. Iteration over
// this slice (never over a map) keeps draw order deterministic.
func Channels() []Channel {
	return []Channel{ChannelER, ChannelMito, ChannelNucleus, ChannelActin, ChannelRNA}
}

// WellRef locates a measurement on a concrete plate. It exists only at
// measurement time: position is derived, never stored on the vessel, and
// never reaches any seed derivation.
type WellRef struct {
	Plate core.PlateID `json:"plate"`
	Row   int          `json:"row"`
	Col   int          `json:"col"`
	Rows  int          `json:"rows"`
	Cols  int          `json:"cols"`
}

// IsEdge classifies the well on demand from its coordinate.
func (w WellRef) IsEdge() bool {
	if w.Rows <= 0 || w.Cols <= 0 {
		return false
	}
	return w.Row == 0 || w.Col == 0 || w.Row == w.Rows-1 || w.Col == w.Cols-1
}

// Status is the observation-level outcome.
type Status string

const (
	StatusOK Status = "ok"
	// StatusUnknownVessel marks the neutral observation returned when a
	// read references a vessel that was never seeded.
	StatusUnknownVessel Status = "unknown_vessel"
)

// Flags carries soft quality markers. None of them is an error.
type Flags struct {
	Underpowered bool `json:"underpowered,omitempty"`
	Outlier      bool `json:"outlier,omitempty"`
}

// CountMatrix is a cells-by-genes count table from a sequencing assay.
type CountMatrix struct {
	Genes  []string `json:"genes"`
	Counts [][]int  `json:"counts"` // one row per cell
}

// Observation is the ephemeral output of one assay call.
type Observation struct {
	ID         core.ObservationID  `json:"id"`
	Assay      Type                `json:"assay"`
	VesselID   core.VesselID       `json:"vessel_id"`
	BatchID    string              `json:"batch_id,omitempty"`
	CapturedAt core.Hours          `json:"captured_at"`
	Status     Status              `json:"status"`
	Flags      Flags               `json:"flags"`
	Channels   map[Channel]float64 `json:"channels,omitempty"`
	Value      float64             `json:"value,omitempty"`
	Unit       string              `json:"unit,omitempty"`
	Matrix     *CountMatrix        `json:"matrix,omitempty"`
}

// Neutral returns the zero-status observation for an unknown vessel.
func Neutral(t Type, id core.VesselID) Observation {
	return Observation{
		ID:       core.NewObservationID(),
		Assay:    t,
		VesselID: id,
		Status:   StatusUnknownVessel,
	}
}
