package hazard

import (
	"math"

	"cellvm/domain/core"
)

// conservationTolerance bounds the allowed gap between the realized kill
// and the sum of per-cause allocations in one commit.
const conservationTolerance = 1e-9

// boundsTolerance is the slack allowed on the [0,1] range of ledger fields.
const boundsTolerance = 1e-6

// Ledger holds per-vessel cumulative, cause-attributed death fractions.
// INVARIANTS:
// - every field stays in [0,1] (within boundsTolerance)
// - fields never decrease
// - per commit, sum of increments equals the realized kill (within
//   conservationTolerance)
type Ledger struct {
	Cumulative map[Cause]float64 `json:"cumulative"`
}

// NewLedger creates an empty ledger with every tracked cause at zero.
func NewLedger() Ledger {
	cum := make(map[Cause]float64, numCauses)
	for _, c := range Causes() {
		cum[c] = 0
	}
	return Ledger{Cumulative: cum}
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	cum := make(map[Cause]float64, len(l.Cumulative))
	for c, v := range l.Cumulative {
		cum[c] = v
	}
	return Ledger{Cumulative: cum}
}

// Total returns the summed attributed death fraction. Summation runs in
// declaration order so results are bit-reproducible.
func (l Ledger) Total() float64 {
	var sum float64
	for _, c := range Causes() {
		sum += l.Cumulative[c]
	}
	return sum
}

// Unattributed returns the residual death fraction not covered by any
// named cause. Read-only audit quantity: allocation never targets it.
func (l Ledger) Unattributed(viability float64) float64 {
	return 1 - viability - l.Total()
}

// apply adds one commit's allocations, enforcing monotonicity and bounds.
func (l Ledger) apply(alloc Allocation) error {
	for _, c := range Causes() {
		inc, ok := alloc.ByCause[c]
		if !ok {
			continue
		}
		if inc < 0 {
			return core.NewInvariantError("negative allocation %g for cause %s", inc, c)
		}
		next := l.Cumulative[c] + inc
		if next > 1+boundsTolerance {
			return core.NewInvariantError("cause %s would exceed 1: %g", c, next)
		}
		l.Cumulative[c] = next
	}
	return nil
}

// Proposals is the ephemeral per-step accumulator of proposed rates.
// It is created at the start of a step and discarded after commit.
type Proposals struct {
	rates map[Cause]float64
}

// NewProposals creates an empty proposal set.
func NewProposals() *Proposals {
	return &Proposals{rates: make(map[Cause]float64, numCauses)}
}

// Propose registers an instantaneous death rate (per hour) against a
// cause. Unknown causes fail immediately. Multiple proposals for the
// same cause within a step accumulate. Negative rates are clamped to
// zero before accumulation.
func (p *Proposals) Propose(cause Cause, ratePerHour float64) error {
	if !cause.Valid() {
		return core.NewUnknownCauseError(cause.String())
	}
	if ratePerHour < 0 || math.IsNaN(ratePerHour) {
		ratePerHour = 0
	}
	p.rates[cause] += ratePerHour
	return nil
}

// Empty reports whether no rate has been proposed this step.
func (p *Proposals) Empty() bool {
	for _, r := range p.rates {
		if r > 0 {
			return false
		}
	}
	return true
}

// Allocation is the realized outcome of one commit: the total viability
// kill and its exact per-cause split.
type Allocation struct {
	Kill    float64           `json:"kill"`
	ByCause map[Cause]float64 `json:"by_cause"`
}

// Commit realizes death from the aggregate proposed rate over dtHours,
// scaled by the vessel's hazard-scale multiplier, and allocates it
// linearly in proportion to each cause's share of the aggregate rate.
//
// The survival form viability*(1-exp(-R*dt)) keeps the kill strictly
// below current viability, so no clipping artifact can break
// conservation. The largest contributor absorbs the floating-point
// residual so the allocation sums to the kill exactly.
//
// Commit mutates the ledger, clears the proposals, and returns the
// applied allocation. The caller decrements vessel viability by
// Allocation.Kill; the returned error is always an invariant violation
// and must halt the run.
func (p *Proposals) Commit(ledger Ledger, viability, dtHours, scale float64) (Allocation, error) {
	defer p.clear()

	// Iterate causes in declaration order throughout: map order would
	// perturb float summation and break bit-reproducibility.
	alloc := Allocation{ByCause: make(map[Cause]float64, len(p.rates))}
	var totalRate float64
	for _, c := range Causes() {
		totalRate += p.rates[c]
	}
	if totalRate <= 0 || viability <= 0 || dtHours <= 0 {
		return alloc, nil
	}
	if scale < 0 {
		return alloc, core.NewInvariantError("negative hazard scale %g", scale)
	}

	kill := viability * (1 - math.Exp(-totalRate*scale*dtHours))
	if kill > viability {
		kill = viability
	}

	var allocated float64
	largest := Cause(-1)
	var largestRate float64
	for _, c := range Causes() {
		r := p.rates[c]
		if r <= 0 {
			continue
		}
		share := kill * (r / totalRate)
		alloc.ByCause[c] = share
		allocated += share
		if r > largestRate {
			largest, largestRate = c, r
		}
	}
	if largest >= 0 {
		// Absorb floating-point residual to make conservation exact.
		alloc.ByCause[largest] += kill - allocated
	}
	alloc.Kill = kill

	var check float64
	for _, v := range alloc.ByCause {
		check += v
	}
	if math.Abs(check-kill) > conservationTolerance {
		return alloc, core.NewInvariantError("allocation sum %g != kill %g", check, kill)
	}

	if err := ledger.apply(alloc); err != nil {
		return alloc, err
	}
	return alloc, nil
}

func (p *Proposals) clear() {
	for c := range p.rates {
		delete(p.rates, c)
	}
}

// Rates returns a copy of the currently proposed rates. Diagnostic use.
func (p *Proposals) Rates() map[Cause]float64 {
	out := make(map[Cause]float64, len(p.rates))
	for c, r := range p.rates {
		out[c] = r
	}
	return out
}
