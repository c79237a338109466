package kinetics

import (
	"errors"
	"math"
	"testing"

	"cellvm/domain/core"
	"cellvm/domain/hazard"
	"cellvm/internal/config"
	"cellvm/internal/rng"
)

func newTestEngine(t *testing.T, masterSeed int64) *Engine {
	t.Helper()
	cfg := config.Default(masterSeed)
	cfg.BioNoise.Enabled = false
	cfg.Contamination.Enabled = false
	eng, err := New(cfg, rng.NewManager(masterSeed))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func seedOne(t *testing.T, eng *Engine, id string, line core.CellLineID) core.VesselID {
	t.Helper()
	vid := core.VesselID(id)
	if _, err := eng.Seed(vid, core.PlateID("plate-1"), line, 5e5, 1e7); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return vid
}

func TestSeedRejectsUnknownLineAndDuplicates(t *testing.T) {
	eng := newTestEngine(t, 1)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)

	if _, err := eng.Seed(vid, core.PlateID("plate-1"), config.LineHEK293, 5e5, 1e7); err == nil {
		t.Fatal("duplicate seed accepted")
	}
	if _, err := eng.Seed(core.VesselID("flask-b"), core.PlateID("plate-1"), core.CellLineID("CHO"), 5e5, 1e7); err == nil {
		t.Fatal("unknown cell line accepted")
	}
	if !core.IsConfigurationError(func() error {
		_, err := eng.Seed(core.VesselID("flask-c"), core.PlateID("plate-1"), config.LineHEK293, 0, 1e7)
		return err
	}()) {
		t.Fatal("zero seed count should be a configuration error")
	}
}

func TestSeedAppliesSeedingEfficiency(t *testing.T) {
	eng := newTestEngine(t, 2)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)
	v, err := eng.State(vid)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	want := 5e5 * 0.9
	if math.Abs(v.CellCount-want) > 1 {
		t.Fatalf("seeded count = %.0f, want %.0f", v.CellCount, want)
	}
	if v.Viability != 1 {
		t.Fatalf("fresh vessel viability = %v, want 1", v.Viability)
	}
}

func TestUntreatedGrowthStaysHealthy(t *testing.T) {
	eng := newTestEngine(t, 3)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)
	before, _ := eng.State(vid)

	if err := eng.AdvanceTime(48); err != nil {
		t.Fatalf("advance: %v", err)
	}
	after, _ := eng.State(vid)

	if after.CellCount <= before.CellCount*1.5 {
		t.Fatalf("48h growth too small: %.0f -> %.0f", before.CellCount, after.CellCount)
	}
	if after.Viability < 0.9 {
		t.Fatalf("untreated viability fell to %v", after.Viability)
	}
	if eng.Clock() != core.Hours(48) {
		t.Fatalf("clock = %v, want 48", eng.Clock())
	}
}

func TestGrowthPlateausAtCarryingCapacity(t *testing.T) {
	eng := newTestEngine(t, 4)
	vid := seedOne(t, eng, "flask-a", config.LineHeLa)

	if err := eng.AdvanceTime(24 * 14); err != nil {
		t.Fatalf("advance: %v", err)
	}
	v, _ := eng.State(vid)
	ceiling := v.Capacity * 1.0 // HeLa MaxConfluence
	if v.CellCount > ceiling*1.001 {
		t.Fatalf("count %.0f exceeded carrying capacity %.0f", v.CellCount, ceiling)
	}
	if v.Confluence() < 0.5 {
		t.Fatalf("two weeks of growth reached only confluence %v", v.Confluence())
	}
}

func TestTreatAtEC50KillsNearHalf(t *testing.T) {
	// At dose == EC50 the Hill occupancy is exactly 0.5, so the
	// instantaneous kill lands in the pharmacodynamic-noise band
	// around half of viability.
	for seed := int64(0); seed < 10; seed++ {
		eng := newTestEngine(t, 100+seed)
		vid := seedOne(t, eng, "flask-a", config.LineHEK293)

		if err := eng.Treat(vid, config.CompoundTunicamycin, 1.2); err != nil {
			t.Fatalf("treat: %v", err)
		}
		v, _ := eng.State(vid)
		if v.Viability < 0.3 || v.Viability > 0.7 {
			t.Fatalf("seed %d: post-EC50 viability = %v, want within [0.3, 0.7]", seed, v.Viability)
		}
		if v.Ledger.Cumulative[hazard.CauseCompound] <= 0 {
			t.Fatalf("instant kill not attributed to compound cause")
		}
	}
}

func TestTreatBelowDetectionFloorIsInert(t *testing.T) {
	eng := newTestEngine(t, 5)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)

	if err := eng.Treat(vid, config.CompoundTunicamycin, 0.001); err != nil {
		t.Fatalf("treat: %v", err)
	}
	v, _ := eng.State(vid)
	if v.Viability != 1 {
		t.Fatalf("sub-floor dose changed viability to %v", v.Viability)
	}
	if _, ok := v.Treatments[config.CompoundTunicamycin]; !ok {
		t.Fatal("sub-floor treatment not recorded")
	}
}

func TestTreatErrors(t *testing.T) {
	eng := newTestEngine(t, 6)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)

	if err := eng.Treat(core.VesselID("ghost"), config.CompoundRotenone, 1); !errors.Is(err, core.ErrUnknownVessel) {
		t.Fatalf("ghost treat error = %v, want ErrUnknownVessel", err)
	}
	if err := eng.Treat(vid, core.CompoundID("paracetamol"), 1); err == nil {
		t.Fatal("unknown compound accepted")
	}
	if err := eng.Treat(vid, config.CompoundRotenone, -1); err == nil {
		t.Fatal("negative dose accepted")
	}
}

func TestDoseResponseIsMonotone(t *testing.T) {
	// Same master seed across doses keeps the pharmacodynamic noise
	// draw identical, isolating the Hill term.
	doses := []float64{0.1, 0.5, 1.2, 5, 25}
	var prev float64 = 2
	for _, dose := range doses {
		eng := newTestEngine(t, 7)
		vid := seedOne(t, eng, "flask-a", config.LineHEK293)
		if err := eng.Treat(vid, config.CompoundTunicamycin, dose); err != nil {
			t.Fatalf("treat dose %v: %v", dose, err)
		}
		v, _ := eng.State(vid)
		if v.Viability >= prev {
			t.Fatalf("viability %v at dose %v not below %v at lower dose", v.Viability, dose, prev)
		}
		prev = v.Viability
	}
}

func TestSustainedTreatmentDrivesViabilityDown(t *testing.T) {
	eng := newTestEngine(t, 8)
	vid := seedOne(t, eng, "flask-a", config.LineA549)

	if err := eng.Treat(vid, config.CompoundStaurosporine, 0.5); err != nil {
		t.Fatalf("treat: %v", err)
	}
	afterTreat, _ := eng.State(vid)

	last := afterTreat.Viability
	for i := 0; i < 4; i++ {
		if err := eng.AdvanceTime(12); err != nil {
			t.Fatalf("advance: %v", err)
		}
		v, _ := eng.State(vid)
		if v.Viability > last {
			t.Fatalf("viability rose from %v to %v under sustained dosing", last, v.Viability)
		}
		last = v.Viability
	}
	if last >= afterTreat.Viability {
		t.Fatal("48h of saturating staurosporine produced no further kill")
	}
}

func TestAdvanceTimeRejectsNegative(t *testing.T) {
	eng := newTestEngine(t, 9)
	if err := eng.AdvanceTime(-1); err == nil {
		t.Fatal("negative time accepted")
	}
}

func TestPassageSemantics(t *testing.T) {
	eng := newTestEngine(t, 10)
	src := seedOne(t, eng, "flask-a", config.LineU2OS)
	if err := eng.AdvanceTime(48); err != nil {
		t.Fatalf("advance: %v", err)
	}
	before, _ := eng.State(src)

	dest, err := eng.Passage(src, core.VesselID("flask-b"), 0.25)
	if err != nil {
		t.Fatalf("passage: %v", err)
	}
	if dest.PassageNumber != before.PassageNumber+1 {
		t.Fatalf("dest passage = %d, want %d", dest.PassageNumber, before.PassageNumber+1)
	}
	if dest.Viability > before.Viability {
		t.Fatalf("passage raised viability: %v -> %v", before.Viability, dest.Viability)
	}
	if dest.Ledger.Cumulative[hazard.CauseStress] <= 0 {
		t.Fatal("passage penalty not attributed to stress")
	}

	after, _ := eng.State(src)
	wantSrc := before.CellCount * 0.75
	if math.Abs(after.CellCount-wantSrc) > 1 {
		t.Fatalf("source count = %.0f, want %.0f", after.CellCount, wantSrc)
	}
	if after.MediaAge != 0 {
		t.Fatalf("source media age = %v, want 0 after passage", after.MediaAge)
	}

	if _, err := eng.Passage(src, core.VesselID("flask-b"), 0.5); err == nil {
		t.Fatal("passage into an existing vessel accepted")
	}
	if _, err := eng.Passage(src, core.VesselID("flask-c"), 0); err == nil {
		t.Fatal("zero split ratio accepted")
	}
}

func TestFeedResetsMediaAge(t *testing.T) {
	eng := newTestEngine(t, 11)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)
	if err := eng.AdvanceTime(60); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := eng.Feed(vid); err != nil {
		t.Fatalf("feed: %v", err)
	}
	v, _ := eng.State(vid)
	if v.MediaAge != 0 {
		t.Fatalf("media age = %v after feed, want 0", v.MediaAge)
	}
	if err := eng.Feed(core.VesselID("ghost")); !errors.Is(err, core.ErrUnknownVessel) {
		t.Fatalf("ghost feed error = %v, want ErrUnknownVessel", err)
	}
}

func TestIdenticalRunsAreBitIdentical(t *testing.T) {
	run := func(masterSeed int64) (float64, float64, float64) {
		eng := newTestEngine(t, masterSeed)
		vid := seedOne(t, eng, "flask-a", config.LineHeLa)
		if err := eng.Treat(vid, config.CompoundRotenone, 0.3); err != nil {
			t.Fatalf("treat: %v", err)
		}
		if err := eng.AdvanceTime(72); err != nil {
			t.Fatalf("advance: %v", err)
		}
		v, _ := eng.State(vid)
		return v.CellCount, v.Viability, v.Stress.MitoDysfunction
	}

	c1, via1, s1 := run(42)
	c2, via2, s2 := run(42)
	if c1 != c2 || via1 != via2 || s1 != s2 {
		t.Fatalf("same seed diverged: (%v,%v,%v) vs (%v,%v,%v)", c1, via1, s1, c2, via2, s2)
	}

	c3, _, _ := run(43)
	if c1 == c3 {
		t.Fatal("different master seeds produced identical cell counts")
	}
}

func TestStressLatentsRespondToCompoundLoadings(t *testing.T) {
	eng := newTestEngine(t, 12)
	vid := seedOne(t, eng, "flask-a", config.LineHEK293)
	if err := eng.Treat(vid, config.CompoundRotenone, 5); err != nil {
		t.Fatalf("treat: %v", err)
	}
	if err := eng.AdvanceTime(24); err != nil {
		t.Fatalf("advance: %v", err)
	}
	v, _ := eng.State(vid)
	if v.Stress.MitoDysfunction <= v.Stress.ERStress {
		t.Fatalf("rotenone should load mito over ER: mito=%v er=%v",
			v.Stress.MitoDysfunction, v.Stress.ERStress)
	}
	if v.Stress.MitoDysfunction <= 0.3 {
		t.Fatalf("saturating rotenone left mito stress at %v", v.Stress.MitoDysfunction)
	}
}

func TestSnapshotNeutralForUnknownVessel(t *testing.T) {
	eng := newTestEngine(t, 13)
	snap := eng.Snapshot(core.VesselID("ghost"), nil)
	if snap.Exists {
		t.Fatal("unknown vessel snapshot reports existence")
	}
	if snap.CellCount != 0 || snap.Viability != 0 {
		t.Fatalf("neutral snapshot carries signal: count=%v viability=%v", snap.CellCount, snap.Viability)
	}
}
