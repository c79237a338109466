package assays

import (
	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/internal/config"
	"cellvm/ports"
)

// Registry resolves assay types to constructed instruments. All
// instruments share one realism profile bound at run start.
type Registry struct {
	byType map[assay.Type]ports.Assay
}

// NewRegistry builds every instrument for the run.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{byType: make(map[assay.Type]ports.Assay)}
	for _, a := range []ports.Assay{
		NewCellPainting(cfg),
		NewLDHCytotoxicity(cfg),
		NewATPViability(cfg),
		NewScRNASeq(cfg),
		NewCellCount(cfg),
	} {
		r.byType[a.Type()] = a
	}
	return r
}

// Get returns the instrument for an assay type.
func (r *Registry) Get(t assay.Type) (ports.Assay, error) {
	a, ok := r.byType[t]
	if !ok {
		return nil, core.NewConfigurationError("assay", t.String())
	}
	return a, nil
}
