package ports

// StreamKind names one of the isolated randomness sources. Biological
// variation, treatment pharmacology, measurement noise, and lab
// operations each draw from their own stream so that no concern can
// perturb another's trajectory.
type StreamKind string

const (
	StreamGrowth     StreamKind = "growth"
	StreamTreatment  StreamKind = "treatment"
	StreamAssay      StreamKind = "assay"
	StreamOperations StreamKind = "operations"
)

// StreamKinds lists every stream in declaration order.
func StreamKinds() []StreamKind {
	return []StreamKind{StreamGrowth, StreamTreatment, StreamAssay, StreamOperations}
}

// RNGStream is a deterministic random stream scoped to one kind and one
// exchangeable logical identifier. Every draw is counted for audit.
type RNGStream interface {
	Float64() float64
	NormFloat64() float64
	Int63() int64
}

// RNGManager owns the per-run stream registry. Streams are derived from
// a single master seed plus a stream kind and an exchangeable logical
// identifier - never a spatial coordinate - so no randomness source can
// leak well position into biological variation.
type RNGManager interface {
	// Stream returns the (cached) stream for a kind and logical id.
	// Implementations reject identifiers that look like plate
	// coordinates.
	Stream(kind StreamKind, logicalID string) (RNGStream, error)

	// Audit returns draw counters per stream kind since the last reset,
	// used to prove isolation (e.g. an assay call only touched the
	// assay stream).
	Audit() map[StreamKind]uint64

	// ResetAudit zeroes the counters without reseeding any stream.
	ResetAudit()
}
