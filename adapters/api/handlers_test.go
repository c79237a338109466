package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cellvm/app"
	"cellvm/domain/vessel"
	"cellvm/internal"
	"cellvm/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default(77)
	cfg.BioNoise.Enabled = false
	cfg.Contamination.Enabled = false
	session, err := app.NewSession(cfg, internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return NewServer(session, internal.NewLogger(internal.LogLevelError))
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func seedFlask(t *testing.T, srv *Server, id string) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/v1/vessels", seedRequest{
		VesselID: id, PlateID: "plate-1", CellLine: string(config.LineHEK293),
		InitialCount: 5e5, Capacity: 1e7,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSeedAndGetVessel(t *testing.T) {
	srv := newTestServer(t)
	seedFlask(t, srv, "flask-a")

	rec := doJSON(t, srv, http.MethodGet, "/v1/vessels/flask-a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var v vessel.Vessel
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode vessel: %v", err)
	}
	if v.Viability != 1 {
		t.Fatalf("viability = %v, want 1", v.Viability)
	}
	if v.CellCount <= 0 {
		t.Fatalf("cell count = %v", v.CellCount)
	}
}

func TestGetUnknownVesselIs404(t *testing.T) {
	srv := newTestServer(t)
	if rec := doJSON(t, srv, http.MethodGet, "/v1/vessels/ghost", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTreatAndAdvanceFlow(t *testing.T) {
	srv := newTestServer(t)
	seedFlask(t, srv, "flask-a")

	rec := doJSON(t, srv, http.MethodPost, "/v1/vessels/flask-a/treat", treatRequest{
		Compound: string(config.CompoundTunicamycin), DoseUM: 1.2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("treat status = %d: %s", rec.Code, rec.Body.String())
	}
	var v vessel.Vessel
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode vessel: %v", err)
	}
	if v.Viability >= 1 {
		t.Fatal("EC50 dose left viability untouched")
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/advance", advanceRequest{Hours: 24})
	if rec.Code != http.StatusOK {
		t.Fatalf("advance status = %d", rec.Code)
	}
	var clock clockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &clock); err != nil {
		t.Fatalf("decode clock: %v", err)
	}
	if clock.ClockHours != 24 {
		t.Fatalf("clock = %v, want 24", clock.ClockHours)
	}
}

func TestTreatUnknownCompoundIs400(t *testing.T) {
	srv := newTestServer(t)
	seedFlask(t, srv, "flask-a")
	rec := doJSON(t, srv, http.MethodPost, "/v1/vessels/flask-a/treat", treatRequest{Compound: "aspirin", DoseUM: 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAssayEndpointReturnsObservation(t *testing.T) {
	srv := newTestServer(t)
	seedFlask(t, srv, "flask-a")

	body := map[string]interface{}{
		"well": map[string]interface{}{"plate": "plate-1", "row": 2, "col": 3, "rows": 8, "cols": 12},
	}
	rec := doJSON(t, srv, http.MethodPost, "/v1/vessels/flask-a/assays/cell_painting", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("assay status = %d: %s", rec.Code, rec.Body.String())
	}
	var obs struct {
		Status   string             `json:"status"`
		Channels map[string]float64 `json:"channels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &obs); err != nil {
		t.Fatalf("decode observation: %v", err)
	}
	if obs.Status != "ok" {
		t.Fatalf("status = %q", obs.Status)
	}
	if len(obs.Channels) != 5 {
		t.Fatalf("channels = %d, want 5", len(obs.Channels))
	}

	if rec := doJSON(t, srv, http.MethodPost, "/v1/vessels/flask-a/assays/cellpainting", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-canonical assay name accepted: %d", rec.Code)
	}
}

func TestAuditEndpoint(t *testing.T) {
	srv := newTestServer(t)
	seedFlask(t, srv, "flask-a")

	body := map[string]interface{}{
		"well": map[string]interface{}{"plate": "plate-1", "row": 2, "col": 3, "rows": 8, "cols": 12},
	}
	if rec := doJSON(t, srv, http.MethodPost, "/v1/vessels/flask-a/assays/cell_count", body); rec.Code != http.StatusOK {
		t.Fatalf("count status = %d", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/v1/audit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d", rec.Code)
	}
	var audit struct {
		Draws   map[string]uint64   `json:"draws"`
		Streams map[string][]string `json:"streams"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &audit); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if audit.Draws["assay"] == 0 {
		t.Fatalf("counting drew nothing from the assay stream: %v", audit.Draws)
	}
	if audit.Draws["treatment"] != 0 {
		t.Fatalf("read path advanced the treatment stream: %v", audit.Draws)
	}
	found := false
	for _, id := range audit.Streams["assay"] {
		if id == "flask-a" {
			found = true
		}
	}
	if !found {
		t.Fatalf("assay stream listing missing flask-a: %v", audit.Streams)
	}
}

func TestPassageEndpoint(t *testing.T) {
	srv := newTestServer(t)
	seedFlask(t, srv, "flask-a")

	rec := doJSON(t, srv, http.MethodPost, "/v1/vessels/flask-a/passage", passageRequest{DestID: "flask-b", SplitRatio: 0.25})
	if rec.Code != http.StatusCreated {
		t.Fatalf("passage status = %d: %s", rec.Code, rec.Body.String())
	}
	var v vessel.Vessel
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode vessel: %v", err)
	}
	if v.PassageNumber != 1 {
		t.Fatalf("passage number = %d, want 1", v.PassageNumber)
	}

	rec = doJSON(t, srv, http.MethodGet, "/v1/vessels", nil)
	var ids []string
	if err := json.Unmarshal(rec.Body.Bytes(), &ids); err != nil {
		t.Fatalf("decode ids: %v", err)
	}
	if fmt.Sprint(ids) != "[flask-a flask-b]" {
		t.Fatalf("vessel ids = %v", ids)
	}
}
