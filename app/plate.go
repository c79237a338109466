package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/domain/vessel"
	"cellvm/internal/contract"
	"cellvm/ports"
)

// WellAssignment binds one vessel to its plate coordinate for a plate
// read. The coordinate exists only here, at measurement time.
type WellAssignment struct {
	Vessel core.VesselID
	Well   assay.WellRef
}

// MeasurePlate runs one assay across a set of wells in parallel.
// Snapshots and streams are derived serially up front, so each worker
// owns its stream exclusively and the results are identical to a serial
// read. A vessel may appear at most once per plate read; duplicates
// would share a stream across workers and break determinism.
func (s *Session) MeasurePlate(ctx context.Context, t assay.Type, wells []WellAssignment) ([]assay.Observation, error) {
	inst, err := s.registry.Get(t)
	if err != nil {
		return nil, err
	}

	type job struct {
		snap   vessel.Snapshot
		well   assay.WellRef
		stream ports.RNGStream
	}
	jobs := make([]job, len(wells))
	seen := make(map[core.VesselID]bool, len(wells))
	before := s.streams.Audit()
	for i, w := range wells {
		if seen[w.Vessel] {
			return nil, core.NewConfigurationError("duplicate vessel in plate read", w.Vessel.String())
		}
		seen[w.Vessel] = true
		stream, err := s.streams.Stream(ports.StreamAssay, w.Vessel.String())
		if err != nil {
			return nil, err
		}
		jobs[i] = job{snap: s.engine.Snapshot(w.Vessel, s.enforcer), well: w.Well, stream: stream}
	}

	results := make([]assay.Observation, len(wells))
	g, _ := errgroup.WithContext(ctx)
	for i := range jobs {
		i := i
		g.Go(func() error {
			obs, err := inst.Measure(jobs[i].snap, jobs[i].well, jobs[i].stream)
			if err != nil {
				return err
			}
			results[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("plate read %s failed: %v", t, err)
		return nil, err
	}
	if s.enforcer.Strict() {
		if err := contract.VerifyAssayIsolation(before, s.streams.Audit()); err != nil {
			return nil, err
		}
	}

	now := s.engine.Clock()
	for i := range results {
		results[i].CapturedAt = now
	}
	s.log.Info("plate read %s: wells=%d", t, len(results))
	return results, nil
}
