package config

import (
	"testing"

	"cellvm/domain/core"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default(42)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Run.MasterSeed != 42 {
		t.Fatalf("master seed = %d", cfg.Run.MasterSeed)
	}
}

func TestLookupErrors(t *testing.T) {
	cfg := Default(1)

	if _, err := cfg.CellLine(core.CellLineID("CHO")); !core.IsConfigurationError(err) {
		t.Fatalf("unknown line error = %v", err)
	}
	if _, _, err := cfg.CompoundFor(core.CompoundID("aspirin"), LineHEK293); !core.IsConfigurationError(err) {
		t.Fatalf("unknown compound error = %v", err)
	}

	// A compound known in general but untabulated for a line still
	// fails at the boundary.
	p := cfg.Compounds[CompoundRotenone]
	delete(p.EC50UM, LineU2OS)
	if _, _, err := cfg.CompoundFor(CompoundRotenone, LineU2OS); !core.IsConfigurationError(err) {
		t.Fatalf("untabulated pair error = %v", err)
	}

	if _, _, err := cfg.CompoundFor(CompoundRotenone, LineHeLa); err != nil {
		t.Fatalf("tabulated pair failed: %v", err)
	}
}

func TestValidateRejectsMalformedTables(t *testing.T) {
	cfg := Default(1)
	cfg.Run.StepHours = 0
	if err := cfg.Validate(); !core.IsConfigurationError(err) {
		t.Fatalf("zero step accepted: %v", err)
	}

	cfg = Default(1)
	line := cfg.CellLines[LineHEK293]
	line.DoublingTimeHours = -1
	cfg.CellLines[LineHEK293] = line
	if err := cfg.Validate(); !core.IsConfigurationError(err) {
		t.Fatalf("negative doubling time accepted: %v", err)
	}

	cfg = Default(1)
	compound := cfg.Compounds[CompoundTunicamycin]
	compound.HillSlope = 0
	cfg.Compounds[CompoundTunicamycin] = compound
	if err := cfg.Validate(); !core.IsConfigurationError(err) {
		t.Fatalf("zero hill slope accepted: %v", err)
	}

	cfg = Default(1)
	cfg.Realism.DeadSignalRetention = 1.5
	if err := cfg.Validate(); !core.IsConfigurationError(err) {
		t.Fatalf("retention > 1 accepted: %v", err)
	}
}

func TestLoadHonorsEnvironmentOverrides(t *testing.T) {
	t.Setenv("CELLVM_MASTER_SEED", "777")
	t.Setenv("CELLVM_STRICT_CONTRACT", "true")
	t.Setenv("CELLVM_BIO_NOISE_ENABLED", "false")
	t.Setenv("CELLVM_STEP_HOURS", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Run.MasterSeed != 777 {
		t.Fatalf("seed = %d", cfg.Run.MasterSeed)
	}
	if !cfg.Run.StrictContract {
		t.Fatal("strict contract not enabled")
	}
	if cfg.BioNoise.Enabled {
		t.Fatal("bio noise not disabled")
	}
	if cfg.Run.StepHours != 0.25 {
		t.Fatalf("step hours = %v", cfg.Run.StepHours)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("CELLVM_MASTER_SEED", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("malformed seed accepted")
	}

	t.Setenv("CELLVM_MASTER_SEED", "1")
	t.Setenv("CELLVM_STEP_HOURS", "-3")
	if _, err := Load(); err == nil {
		t.Fatal("negative step hours accepted")
	}
}
