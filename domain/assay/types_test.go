package assay

import (
	"math"
	"testing"

	"cellvm/domain/core"
)

func TestParseTypeIsExactMatchOnly(t *testing.T) {
	got, err := ParseType("cell_painting")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != TypeCellPainting {
		t.Fatalf("parsed %v", got)
	}

	for _, bad := range []string{"cellpainting", "Cell_Painting", "CELL_PAINTING", "cell painting", ""} {
		if _, err := ParseType(bad); err == nil {
			t.Fatalf("accepted non-canonical name %q", bad)
		}
	}
}

func TestTypeNamesRoundTrip(t *testing.T) {
	for _, at := range Types() {
		back, err := ParseType(at.String())
		if err != nil {
			t.Fatalf("round trip %s: %v", at, err)
		}
		if back != at {
			t.Fatalf("%s round-tripped to %s", at, back)
		}
	}
	if Type(99).Valid() {
		t.Fatal("out-of-range type claims validity")
	}
}

func TestWellRefEdgeClassification(t *testing.T) {
	cases := []struct {
		row, col int
		edge     bool
	}{
		{0, 0, true},
		{0, 5, true},
		{7, 5, true},
		{3, 0, true},
		{3, 11, true},
		{3, 5, false},
		{1, 1, false},
	}
	for _, c := range cases {
		w := WellRef{Plate: core.PlateID("plate-1"), Row: c.row, Col: c.col, Rows: 8, Cols: 12}
		if w.IsEdge() != c.edge {
			t.Fatalf("well (%d,%d) edge = %v, want %v", c.row, c.col, w.IsEdge(), c.edge)
		}
	}
	if (WellRef{Row: 0, Col: 0}).IsEdge() {
		t.Fatal("degenerate geometry should not classify as edge")
	}
}

func TestNeutralObservation(t *testing.T) {
	obs := Neutral(TypeLDHCytotoxicity, core.VesselID("ghost"))
	if obs.Status != StatusUnknownVessel {
		t.Fatalf("status = %q", obs.Status)
	}
	if obs.Assay != TypeLDHCytotoxicity {
		t.Fatalf("assay = %v", obs.Assay)
	}
	if obs.Value != 0 || obs.Matrix != nil || len(obs.Channels) != 0 {
		t.Fatal("neutral observation carries data")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	if s.N != 4 || s.Mean != 2.5 || s.Min != 1 || s.Max != 4 || s.Median != 2.5 {
		t.Fatalf("summary = %+v", s)
	}
	if math.Abs(s.StdDev-1.2909944487358056) > 1e-12 {
		t.Fatalf("stddev = %v", s.StdDev)
	}
	if empty := Summarize(nil); empty.N != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}
}

func TestChannelVectorCanonicalOrder(t *testing.T) {
	obs := Observation{Channels: map[Channel]float64{
		ChannelRNA:     5,
		ChannelER:      1,
		ChannelNucleus: 3,
		ChannelMito:    2,
		ChannelActin:   4,
	}}
	vec := obs.ChannelVector()
	want := []float64{1, 2, 3, 4, 5}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("vector = %v, want %v", vec, want)
		}
	}
	if (Observation{}).ChannelVector() != nil {
		t.Fatal("empty observation should flatten to nil")
	}
}
