package testkit

import (
	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/domain/vessel"
)

// Step is one protocol action. Exactly one field should be set.
type Step struct {
	Seed    *SeedStep
	Treat   *TreatStep
	Advance *AdvanceStep
	Passage *PassageStep
	Feed    *FeedStep
	Assay   *AssayStep
}

type SeedStep struct {
	Vessel       core.VesselID
	Plate        core.PlateID
	Line         core.CellLineID
	InitialCount float64
	Capacity     float64
}

type TreatStep struct {
	Vessel   core.VesselID
	Compound core.CompoundID
	DoseUM   float64
}

type AdvanceStep struct {
	Hours float64
}

type PassageStep struct {
	Source     core.VesselID
	Dest       core.VesselID
	SplitRatio float64
}

type FeedStep struct {
	Vessel core.VesselID
}

type AssayStep struct {
	Vessel core.VesselID
	Type   assay.Type
	Well   assay.WellRef
}

// Protocol is an ordered experiment script.
type Protocol struct {
	Name  string
	Steps []Step
}

// Result collects everything a protocol run produced.
type Result struct {
	Observations []assay.Observation
	Final        map[core.VesselID]*vessel.Vessel
}

// Run executes the protocol against the kit's session, step by step.
// Any step error aborts the run; the caller gets the error from the
// offending operation unwrapped.
func (k *Kit) Run(p Protocol) (*Result, error) {
	res := &Result{Final: make(map[core.VesselID]*vessel.Vessel)}
	for _, step := range p.Steps {
		var err error
		switch {
		case step.Seed != nil:
			_, err = k.Session.SeedVessel(step.Seed.Vessel, step.Seed.Plate, step.Seed.Line,
				step.Seed.InitialCount, step.Seed.Capacity)
		case step.Treat != nil:
			err = k.Session.TreatWithCompound(step.Treat.Vessel, step.Treat.Compound, step.Treat.DoseUM)
		case step.Advance != nil:
			err = k.Session.AdvanceTime(step.Advance.Hours)
		case step.Passage != nil:
			_, err = k.Session.PassageCells(step.Passage.Source, step.Passage.Dest, step.Passage.SplitRatio)
		case step.Feed != nil:
			err = k.Session.FeedVessel(step.Feed.Vessel)
		case step.Assay != nil:
			var obs assay.Observation
			obs, err = k.measure(step.Assay)
			if err == nil {
				res.Observations = append(res.Observations, obs)
			}
		default:
			err = core.NewConfigurationError("protocol step", "no action set")
		}
		if err != nil {
			return nil, err
		}
	}
	for _, id := range k.Session.VesselIDs() {
		v, err := k.Session.GetVesselState(id)
		if err != nil {
			return nil, err
		}
		res.Final[id] = v
	}
	return res, nil
}

func (k *Kit) measure(step *AssayStep) (assay.Observation, error) {
	switch step.Type {
	case assay.TypeCellPainting:
		return k.Session.CellPaintingAssay(step.Vessel, step.Well)
	case assay.TypeLDHCytotoxicity:
		return k.Session.LDHCytotoxicityAssay(step.Vessel, step.Well)
	case assay.TypeATPViability:
		return k.Session.ATPViabilityAssay(step.Vessel, step.Well)
	case assay.TypeScRNASeq:
		return k.Session.ScRNASeqAssay(step.Vessel, step.Well)
	case assay.TypeCellCount:
		return k.Session.CountCells(step.Vessel, step.Well)
	default:
		return assay.Observation{}, core.NewConfigurationError("assay type", step.Type.String())
	}
}

// DoseResponse builds the canonical dose-ladder protocol: one vessel
// per dose on a shared plate, treated after a settling day, read with
// the ATP assay after the exposure window.
func DoseResponse(plate core.PlateID, line core.CellLineID, compound core.CompoundID, doses []float64, exposureHours float64) Protocol {
	p := Protocol{Name: "dose_response"}
	ids := make([]core.VesselID, len(doses))
	for i := range doses {
		ids[i] = core.VesselID(string(plate) + "-dose" + string(rune('a'+i)))
		p.Steps = append(p.Steps, Step{Seed: &SeedStep{
			Vessel: ids[i], Plate: plate, Line: line, InitialCount: 5e5, Capacity: 1e7,
		}})
	}
	p.Steps = append(p.Steps, Step{Advance: &AdvanceStep{Hours: 24}})
	for i, dose := range doses {
		p.Steps = append(p.Steps, Step{Treat: &TreatStep{Vessel: ids[i], Compound: compound, DoseUM: dose}})
	}
	p.Steps = append(p.Steps, Step{Advance: &AdvanceStep{Hours: exposureHours}})
	for i := range doses {
		well := assay.WellRef{Plate: plate, Row: 1, Col: i + 1, Rows: 8, Cols: 12}
		p.Steps = append(p.Steps, Step{Assay: &AssayStep{Vessel: ids[i], Type: assay.TypeATPViability, Well: well}})
	}
	return p
}

// GrowthCurve builds the growth-characterization protocol: one vessel
// counted at a fixed cadence.
func GrowthCurve(plate core.PlateID, line core.CellLineID, points int, intervalHours float64) Protocol {
	p := Protocol{Name: "growth_curve"}
	id := core.VesselID(string(plate) + "-growth")
	p.Steps = append(p.Steps, Step{Seed: &SeedStep{
		Vessel: id, Plate: plate, Line: line, InitialCount: 5e5, Capacity: 1e7,
	}})
	well := assay.WellRef{Plate: plate, Row: 2, Col: 2, Rows: 8, Cols: 12}
	for i := 0; i < points; i++ {
		p.Steps = append(p.Steps, Step{Advance: &AdvanceStep{Hours: intervalHours}})
		p.Steps = append(p.Steps, Step{Assay: &AssayStep{Vessel: id, Type: assay.TypeCellCount, Well: well}})
	}
	return p
}
