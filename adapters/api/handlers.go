package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cellvm/domain/assay"
	"cellvm/domain/core"
	"cellvm/ports"
)

type seedRequest struct {
	VesselID     string  `json:"vessel_id"`
	PlateID      string  `json:"plate_id"`
	CellLine     string  `json:"cell_line"`
	InitialCount float64 `json:"initial_count"`
	Capacity     float64 `json:"capacity"`
}

type treatRequest struct {
	Compound string  `json:"compound"`
	DoseUM   float64 `json:"dose_um"`
}

type passageRequest struct {
	DestID     string  `json:"dest_id"`
	SplitRatio float64 `json:"split_ratio"`
}

type advanceRequest struct {
	Hours float64 `json:"hours"`
}

type assayRequest struct {
	Well assay.WellRef `json:"well"`
}

type clockResponse struct {
	ClockHours float64 `json:"clock_hours"`
}

type auditResponse struct {
	Draws   map[ports.StreamKind]uint64   `json:"draws"`
	Streams map[ports.StreamKind][]string `json:"streams"`
}

func (s *Server) handleSeedVessel(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := core.ParseVesselID(req.VesselID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	line, err := core.ParseCellLineID(req.CellLine)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.session.SeedVessel(id, core.PlateID(req.PlateID), line, req.InitialCount, req.Capacity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListVessels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.VesselIDs())
}

func (s *Server) handleGetVessel(w http.ResponseWriter, r *http.Request) {
	v, err := s.session.GetVesselState(core.VesselID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleTreat(w http.ResponseWriter, r *http.Request) {
	var req treatRequest
	if !s.decode(w, r, &req) {
		return
	}
	compound, err := core.ParseCompoundID(req.Compound)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := core.VesselID(chi.URLParam(r, "id"))
	if err := s.session.TreatWithCompound(id, compound, req.DoseUM); err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.session.GetVesselState(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePassage(w http.ResponseWriter, r *http.Request) {
	var req passageRequest
	if !s.decode(w, r, &req) {
		return
	}
	dest, err := core.ParseVesselID(req.DestID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.session.PassageCells(core.VesselID(chi.URLParam(r, "id")), dest, req.SplitRatio)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if err := s.session.FeedVessel(core.VesselID(chi.URLParam(r, "id"))); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssay(w http.ResponseWriter, r *http.Request) {
	var req assayRequest
	if !s.decode(w, r, &req) {
		return
	}
	at, err := assay.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := core.VesselID(chi.URLParam(r, "id"))

	var obs assay.Observation
	switch at {
	case assay.TypeCellPainting:
		obs, err = s.session.CellPaintingAssay(id, req.Well)
	case assay.TypeLDHCytotoxicity:
		obs, err = s.session.LDHCytotoxicityAssay(id, req.Well)
	case assay.TypeATPViability:
		obs, err = s.session.ATPViabilityAssay(id, req.Well)
	case assay.TypeScRNASeq:
		obs, err = s.session.ScRNASeqAssay(id, req.Well)
	case assay.TypeCellCount:
		obs, err = s.session.CountCells(id, req.Well)
	default:
		s.writeError(w, core.NewConfigurationError("assay type", at.String()))
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, obs)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.session.AdvanceTime(req.Hours); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clockResponse{ClockHours: s.session.Clock().Float()})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, auditResponse{
		Draws:   s.session.GetRNGAudit(),
		Streams: s.session.OpenStreams(),
	})
}

func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.ContractViolations())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response: %v", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
// Invariant violations are 500s on purpose: the run is untrustworthy
// and the caller should halt the campaign.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrUnknownVessel):
		status = http.StatusNotFound
	case core.IsConfigurationError(err):
		status = http.StatusBadRequest
	case core.IsContractViolation(err):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
