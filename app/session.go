// Package app wires the simulation engine, the RNG stream manager, the
// causal-contract enforcer, and the assay instruments into one session
// facade. Orchestration collaborators (campaign managers, job queues,
// CLIs) talk only to this package.
package app

import (
	"cellvm/adapters/assays"
	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/domain/vessel"
	"cellvm/internal"
	"cellvm/internal/config"
	"cellvm/internal/contract"
	"cellvm/internal/kinetics"
	"cellvm/internal/rng"
	"cellvm/ports"
)

// Session is one deterministic simulation run: a master seed, a frozen
// configuration, and the full vessel registry. Sessions are
// single-threaded; MeasurePlate is the one parallel entry point and
// pre-partitions its streams before fanning out.
type Session struct {
	cfg      *config.Config
	log      *internal.Logger
	streams  *rng.Manager
	engine   *kinetics.Engine
	enforcer *contract.Enforcer
	registry *assays.Registry
}

// NewSession validates the configuration and builds the run.
func NewSession(cfg *config.Config, logger *internal.Logger) (*Session, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	streams := rng.NewManager(cfg.Run.MasterSeed)
	engine, err := kinetics.New(cfg, streams)
	if err != nil {
		return nil, err
	}
	mode := contract.ModeObserve
	if cfg.Run.StrictContract {
		mode = contract.ModeStrict
	}
	s := &Session{
		cfg:      cfg,
		log:      logger.WithRun(string(cfg.Run.RunID)),
		streams:  streams,
		engine:   engine,
		enforcer: contract.NewEnforcer(mode),
		registry: assays.NewRegistry(cfg),
	}
	s.log.Info("session started: master_seed=%d strict=%v step=%.2fh",
		cfg.Run.MasterSeed, cfg.Run.StrictContract, cfg.Run.StepHours)
	return s, nil
}

// Clock returns the current simulated time.
func (s *Session) Clock() core.Hours { return s.engine.Clock() }

// SeedVessel creates a new culture and returns its starting state.
func (s *Session) SeedVessel(id core.VesselID, plate core.PlateID, line core.CellLineID, initialCount, capacity float64) (*vessel.Vessel, error) {
	v, err := s.engine.Seed(id, plate, line, initialCount, capacity)
	if err != nil {
		s.log.Error("seed %s failed: %v", id, err)
		return nil, err
	}
	s.log.Info("seeded %s: line=%s count=%.0f plate=%s", id, line, v.CellCount, plate)
	return v.Clone(), nil
}

// TreatWithCompound doses a vessel and applies the instantaneous
// pharmacodynamic effect.
func (s *Session) TreatWithCompound(id core.VesselID, compound core.CompoundID, doseUM float64) error {
	if err := s.engine.Treat(id, compound, doseUM); err != nil {
		s.log.Error("treat %s with %s failed: %v", id, compound, err)
		return err
	}
	s.log.Info("treated %s: compound=%s dose=%.3fuM", id, compound, doseUM)
	return nil
}

// AdvanceTime integrates all vessels forward by the given hours.
func (s *Session) AdvanceTime(hours float64) error {
	if err := s.engine.AdvanceTime(hours); err != nil {
		s.log.Error("advance %.2fh failed: %v", hours, err)
		return err
	}
	s.log.Debug("advanced %.2fh, clock=%.2fh", hours, s.engine.Clock().Float())
	return nil
}

// Incubate is the lab-protocol synonym for AdvanceTime.
func (s *Session) Incubate(hours float64) error {
	return s.AdvanceTime(hours)
}

// PassageCells splits a vessel into a fresh one.
func (s *Session) PassageCells(srcID, destID core.VesselID, splitRatio float64) (*vessel.Vessel, error) {
	dest, err := s.engine.Passage(srcID, destID, splitRatio)
	if err != nil {
		s.log.Error("passage %s -> %s failed: %v", srcID, destID, err)
		return nil, err
	}
	s.log.Info("passaged %s -> %s: ratio=%.2f passage=%d", srcID, destID, splitRatio, dest.PassageNumber)
	return dest.Clone(), nil
}

// FeedVessel replaces the media.
func (s *Session) FeedVessel(id core.VesselID) error {
	if err := s.engine.Feed(id); err != nil {
		return err
	}
	s.log.Debug("fed %s", id)
	return nil
}

// CountCells runs the counting assay on a vessel.
func (s *Session) CountCells(id core.VesselID, well assay.WellRef) (assay.Observation, error) {
	return s.measure(assay.TypeCellCount, id, well)
}

// CellPaintingAssay images a vessel's five structural channels.
func (s *Session) CellPaintingAssay(id core.VesselID, well assay.WellRef) (assay.Observation, error) {
	return s.measure(assay.TypeCellPainting, id, well)
}

// LDHCytotoxicityAssay reads the death-proportional LDH signal.
func (s *Session) LDHCytotoxicityAssay(id core.VesselID, well assay.WellRef) (assay.Observation, error) {
	return s.measure(assay.TypeLDHCytotoxicity, id, well)
}

// ATPViabilityAssay reads the live-cell-mass ATP signal.
func (s *Session) ATPViabilityAssay(id core.VesselID, well assay.WellRef) (assay.Observation, error) {
	return s.measure(assay.TypeATPViability, id, well)
}

// ScRNASeqAssay profiles a sampled subpopulation.
func (s *Session) ScRNASeqAssay(id core.VesselID, well assay.WellRef) (assay.Observation, error) {
	return s.measure(assay.TypeScRNASeq, id, well)
}

// measure runs one instrument behind the causal contract: the snapshot
// is guarded, and in strict mode the audit counters must prove that
// only the assay stream advanced.
func (s *Session) measure(t assay.Type, id core.VesselID, well assay.WellRef) (assay.Observation, error) {
	inst, err := s.registry.Get(t)
	if err != nil {
		return assay.Observation{}, err
	}
	stream, err := s.streams.Stream(ports.StreamAssay, id.String())
	if err != nil {
		return assay.Observation{}, err
	}

	before := s.streams.Audit()
	snap := s.engine.Snapshot(id, s.enforcer)
	obs, err := inst.Measure(snap, well, stream)
	if err != nil {
		s.log.Error("%s on %s failed: %v", t, id, err)
		return assay.Observation{}, err
	}
	if s.enforcer.Strict() {
		if err := contract.VerifyAssayIsolation(before, s.streams.Audit()); err != nil {
			return assay.Observation{}, err
		}
	}
	obs.CapturedAt = s.engine.Clock()
	s.log.Debug("%s on %s: status=%s", t, id, obs.Status)
	return obs, nil
}

// GetVesselState returns the full current state of a vessel. Unknown
// vessels are a caller error here, unlike the neutral-result reads.
func (s *Session) GetVesselState(id core.VesselID) (*vessel.Vessel, error) {
	return s.engine.State(id)
}

// ObserveVessel returns the measurement-facing snapshot; unknown
// vessels yield the neutral view instead of an error.
func (s *Session) ObserveVessel(id core.VesselID) vessel.Snapshot {
	return s.engine.Snapshot(id, nil)
}

// GetRNGAudit returns per-stream draw counters since the last reset.
func (s *Session) GetRNGAudit() map[ports.StreamKind]uint64 {
	return s.streams.Audit()
}

// ResetRNGAudit zeroes the counters without reseeding any stream.
func (s *Session) ResetRNGAudit() { s.streams.ResetAudit() }

// OpenStreams lists the stream ids derived so far per kind. Diagnostic
// companion to the audit counters: the counters say how much each kind
// drew, this says on whose behalf.
func (s *Session) OpenStreams() map[ports.StreamKind][]string {
	return s.streams.OpenStreams()
}

// ContractViolations lists guarded-field reads recorded in observe
// mode. Empty in strict mode, which fails the offending call instead.
func (s *Session) ContractViolations() []contract.Violation {
	return s.enforcer.Violations()
}

// VesselIDs lists seeded vessels in seeding order.
func (s *Session) VesselIDs() []core.VesselID { return s.engine.VesselIDs() }
