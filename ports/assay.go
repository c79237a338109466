package ports

import (
	"cellvm/domain/assay"
	"cellvm/domain/vessel"
)

// Assay is one measurement instrument. Implementations are pure with
// respect to simulation state: they read only the latent snapshot plus
// the well reference, and draw randomness only from the supplied assay
// stream. Technical noise parameters are bound at construction from the
// realism profile.
type Assay interface {
	Type() assay.Type
	Measure(snap vessel.Snapshot, well assay.WellRef, stream RNGStream) (assay.Observation, error)
}
