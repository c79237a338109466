package contract

import (
	"errors"
	"strings"
	"testing"

	"cellvm/domain/core"
	"cellvm/ports"
)

func TestStrictModeNamesViolatingField(t *testing.T) {
	e := NewEnforcer(ModeStrict)
	err := e.Observe("treatments.dose")
	if !errors.Is(err, core.ErrContractViolation) {
		t.Fatalf("expected contract violation, got %v", err)
	}
	if !strings.Contains(err.Error(), "treatments.dose") {
		t.Errorf("error should name the field, got %q", err.Error())
	}
	if len(e.Violations()) != 1 {
		t.Errorf("violation should be recorded, got %d", len(e.Violations()))
	}
}

func TestObserveModeRecordsWithoutFailing(t *testing.T) {
	e := NewEnforcer(ModeObserve)
	if err := e.Observe("treatments"); err != nil {
		t.Fatalf("observe mode must not fail reads: %v", err)
	}
	if len(e.Violations()) != 1 {
		t.Errorf("observe mode should still record, got %d", len(e.Violations()))
	}
}

func TestOffModeIsSilent(t *testing.T) {
	e := NewEnforcer(ModeOff)
	if err := e.Observe("treatments"); err != nil {
		t.Fatal(err)
	}
	if len(e.Violations()) != 0 {
		t.Error("off mode should record nothing")
	}
}

func TestVerifyAssayIsolation(t *testing.T) {
	before := map[ports.StreamKind]uint64{
		ports.StreamGrowth: 10, ports.StreamTreatment: 4, ports.StreamAssay: 7, ports.StreamOperations: 0,
	}

	ok := map[ports.StreamKind]uint64{
		ports.StreamGrowth: 10, ports.StreamTreatment: 4, ports.StreamAssay: 19, ports.StreamOperations: 0,
	}
	if err := VerifyAssayIsolation(before, ok); err != nil {
		t.Fatalf("assay-only draws must pass: %v", err)
	}

	bad := map[ports.StreamKind]uint64{
		ports.StreamGrowth: 12, ports.StreamTreatment: 4, ports.StreamAssay: 19, ports.StreamOperations: 0,
	}
	err := VerifyAssayIsolation(before, bad)
	if !errors.Is(err, core.ErrContractViolation) {
		t.Fatalf("growth draws during measurement must fail, got %v", err)
	}
	if !strings.Contains(err.Error(), "growth") {
		t.Errorf("error should name the stream, got %q", err.Error())
	}
}
