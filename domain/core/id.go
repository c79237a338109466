package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// VesselID names a culture container. Caller-supplied and exchangeable:
	// it must carry no plate-coordinate information.
	VesselID ID
	// PlateID names a plate/batch grouping used for shared random-effect
	// draws. Exchangeable, like VesselID.
	PlateID ID
	// RunID names one simulation run (one master seed).
	RunID ID
	// ObservationID names a single assay output.
	ObservationID ID
	// CellLineID keys the cell-line kinetic tables.
	CellLineID ID
	// CompoundID keys the compound sensitivity tables.
	CompoundID ID
)

// String conversions for domain IDs
func (id VesselID) String() string      { return ID(id).String() }
func (id PlateID) String() string       { return ID(id).String() }
func (id RunID) String() string         { return ID(id).String() }
func (id ObservationID) String() string { return ID(id).String() }
func (id CellLineID) String() string    { return ID(id).String() }
func (id CompoundID) String() string    { return ID(id).String() }

// NewObservationID mints a fresh observation identifier
func NewObservationID() ObservationID { return ObservationID(NewID()) }

// ParseVesselID parses a string into VesselID
func ParseVesselID(s string) (VesselID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("vessel ID cannot be empty")
	}
	return VesselID(s), nil
}

// ParseCellLineID parses a string into CellLineID
func ParseCellLineID(s string) (CellLineID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("cell line ID cannot be empty")
	}
	return CellLineID(s), nil
}

// ParseCompoundID parses a string into CompoundID
func ParseCompoundID(s string) (CompoundID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("compound ID cannot be empty")
	}
	return CompoundID(s), nil
}
