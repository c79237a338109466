// Package rng implements the run-scoped RNG stream manager: one
// independently seeded, draw-counted stream per (kind, logical id) pair.
package rng

import (
	"math/rand"
	"regexp"
	"sort"
	"sync/atomic"

	"cellvm/domain/core"
	"cellvm/ports"
)

// wellCoordPattern matches identifiers that look like plate coordinates
// ("A1" .. "P48", optionally zero-padded). Seeding from such an id would
// leak well position into biological noise, so the manager rejects them
// outright instead of trusting call-site discipline.
var wellCoordPattern = regexp.MustCompile(`^[A-Pa-p][0-9]{1,2}$`)

type streamKey struct {
	kind ports.StreamKind
	id   string
}

// Manager derives and caches streams from a single master seed. Stream
// derivation is single-threaded by contract (callers pre-partition
// streams before any parallel section), but draws on already-derived
// streams may run concurrently across streams, so the per-kind audit
// counters are atomic.
type Manager struct {
	masterSeed int64
	streams    map[streamKey]*Stream
	counts     []atomic.Uint64
}

// kindIndex maps a stream kind to its counter slot.
func kindIndex(kind ports.StreamKind) int {
	for i, k := range ports.StreamKinds() {
		if k == kind {
			return i
		}
	}
	return -1
}

// NewManager creates a stream manager for one run.
func NewManager(masterSeed int64) *Manager {
	return &Manager{
		masterSeed: masterSeed,
		streams:    make(map[streamKey]*Stream),
		counts:     make([]atomic.Uint64, len(ports.StreamKinds())),
	}
}

// MasterSeed returns the seed the manager derives every stream from.
func (m *Manager) MasterSeed() int64 { return m.masterSeed }

// Stream returns the cached stream for a kind and exchangeable logical
// identifier, deriving it on first use. Identifiers that look like
// plate coordinates are configuration errors, as are unknown kinds.
func (m *Manager) Stream(kind ports.StreamKind, logicalID string) (ports.RNGStream, error) {
	return m.stream(kind, logicalID)
}

func (m *Manager) stream(kind ports.StreamKind, logicalID string) (*Stream, error) {
	if logicalID == "" {
		return nil, core.NewConfigurationError("rng stream id", "(empty)")
	}
	if wellCoordPattern.MatchString(logicalID) {
		return nil, core.NewConfigurationError("rng stream id looks like a well coordinate", logicalID)
	}
	idx := kindIndex(kind)
	if idx < 0 {
		return nil, core.NewConfigurationError("unknown rng stream kind", string(kind))
	}
	key := streamKey{kind: kind, id: logicalID}
	if s, ok := m.streams[key]; ok {
		return s, nil
	}
	seed := core.DeriveSeed(m.masterSeed, string(kind), logicalID)
	s := &Stream{
		kind:  kind,
		rng:   rand.New(rand.NewSource(seed)),
		count: &m.counts[idx],
	}
	m.streams[key] = s
	return s, nil
}

// Audit returns per-kind draw counters since the last reset.
func (m *Manager) Audit() map[ports.StreamKind]uint64 {
	out := make(map[ports.StreamKind]uint64, len(ports.StreamKinds()))
	for i, k := range ports.StreamKinds() {
		out[k] = m.counts[i].Load()
	}
	return out
}

// ResetAudit zeroes the counters. Stream positions are untouched, so a
// reset never changes any downstream draw.
func (m *Manager) ResetAudit() {
	for i := range m.counts {
		m.counts[i].Store(0)
	}
}

// OpenStreams lists the derived stream ids per kind, sorted. Diagnostic.
func (m *Manager) OpenStreams() map[ports.StreamKind][]string {
	out := make(map[ports.StreamKind][]string)
	for key := range m.streams {
		out[key.kind] = append(out[key.kind], key.id)
	}
	for _, ids := range out {
		sort.Strings(ids)
	}
	return out
}

// Stream is one deterministic sub-stream. Every draw increments its
// kind's counter. The underlying generator is not safe for concurrent
// draws on the same stream; parallel sections partition one stream per
// worker, and the shared counter is the only cross-stream state.
type Stream struct {
	kind  ports.StreamKind
	rng   *rand.Rand
	count *atomic.Uint64
}

// Float64 draws a uniform in [0,1).
func (s *Stream) Float64() float64 {
	s.count.Add(1)
	return s.rng.Float64()
}

// NormFloat64 draws a standard normal.
func (s *Stream) NormFloat64() float64 {
	s.count.Add(1)
	return s.rng.NormFloat64()
}

// Int63 draws a non-negative int63.
func (s *Stream) Int63() int64 {
	s.count.Add(1)
	return s.rng.Int63()
}
