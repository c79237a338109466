package assays

import (
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/domain/vessel"
	"cellvm/internal/config"
	"cellvm/ports"
)

// geneSpec defines one panel gene: a relative baseline expression plus
// loadings on the latent stress axes and the cell-cycle program.
// Stress-marker genes are attenuated in cycling cells, which is the
// confounder downstream analysis has to deconvolve.
type geneSpec struct {
	name         string
	base         float64
	er           float64
	mito         float64
	transport    float64
	cycle        float64
	stressMarker bool
}

// genePanel is a fixed curated panel: UPR markers, mitochondrial stress
// response, secretory-pathway stress, cell-cycle markers, and
// housekeeping genes. Declaration order is the matrix column order.
var genePanel = []geneSpec{
	{name: "HSPA5", base: 0.40, er: 3.0, stressMarker: true},
	{name: "DDIT3", base: 0.10, er: 2.6, stressMarker: true},
	{name: "XBP1", base: 0.30, er: 1.8, stressMarker: true},
	{name: "ATF4", base: 0.25, er: 1.5, mito: 0.5, stressMarker: true},
	{name: "SOD2", base: 0.50, mito: 2.2, stressMarker: true},
	{name: "PINK1", base: 0.20, mito: 1.6, stressMarker: true},
	{name: "HMOX1", base: 0.15, mito: 1.9, er: 0.4, stressMarker: true},
	{name: "ARF4", base: 0.30, transport: 2.0, stressMarker: true},
	{name: "GOLGA2", base: 0.40, transport: 1.3, stressMarker: true},
	{name: "MKI67", base: 0.08, cycle: 4.0},
	{name: "CCNB1", base: 0.12, cycle: 3.2},
	{name: "TOP2A", base: 0.10, cycle: 3.6},
	{name: "ACTB", base: 2.00},
	{name: "GAPDH", base: 1.80},
	{name: "B2M", base: 1.20},
}

// ScRNASeq profiles a sampled subpopulation as a cells-by-genes count
// matrix. Too few cells in the vessel flags the observation
// underpowered; it never fails the call.
type ScRNASeq struct {
	cfg config.ScRNAConfig
}

func NewScRNASeq(cfg *config.Config) *ScRNASeq {
	return &ScRNASeq{cfg: cfg.ScRNA}
}

func (a *ScRNASeq) Type() assay.Type { return assay.TypeScRNASeq }

// Measure draws one uniform per sampled cell (cycling membership) plus
// one Int63 seeding the Poisson source, keeping the assay-stream budget
// fixed per call.
func (a *ScRNASeq) Measure(snap vessel.Snapshot, well assay.WellRef, stream ports.RNGStream) (assay.Observation, error) {
	if !snap.Exists {
		return assay.Neutral(a.Type(), snap.VesselID), nil
	}

	genes := make([]string, len(genePanel))
	for i, g := range genePanel {
		genes[i] = g.name
	}
	counts := make([][]int, a.cfg.SampledCells)

	src := xrand.NewSource(uint64(stream.Int63()))
	for c := range counts {
		cycling := stream.Float64() < a.cfg.CellCycleFraction
		rel := a.relativeExpression(snap.Stress, cycling)

		var total float64
		for _, r := range rel {
			total += r
		}
		row := make([]int, len(genePanel))
		for g, r := range rel {
			lambda := a.cfg.MeanDepth * r / total
			if lambda <= 0 {
				continue
			}
			row[g] = int(distuv.Poisson{Lambda: lambda, Src: src}.Rand())
		}
		counts[c] = row
	}

	obs := assay.Observation{
		ID:       core.NewObservationID(),
		Assay:    a.Type(),
		VesselID: snap.VesselID,
		BatchID:  well.Plate.String(),
		Status:   assay.StatusOK,
		Unit:     "counts",
		Matrix:   &assay.CountMatrix{Genes: genes, Counts: counts},
	}
	if snap.CellCount < a.cfg.MinCells {
		obs.Flags.Underpowered = true
	}
	return obs, nil
}

// relativeExpression evaluates the panel for one cell. Cycling cells
// express the cycle program and attenuate stress-marker induction.
func (a *ScRNASeq) relativeExpression(stress vessel.StressState, cycling bool) []float64 {
	rel := make([]float64, len(genePanel))
	for i, g := range genePanel {
		induction := g.er*stress.ERStress + g.mito*stress.MitoDysfunction + g.transport*stress.TransportDysfunction
		if cycling && g.stressMarker {
			induction *= 1 - a.cfg.CycleSuppression
		}
		r := g.base + induction
		if cycling {
			r += g.cycle
		}
		if r < 0 {
			r = 0
		}
		rel[i] = r
	}
	return rel
}
