package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load builds a config from Default plus environment overrides. A .env
// file in the working directory is honored when present; a missing file
// is not an error. Only run-level switches are env-tunable: the science
// tables stay injected structs.
func Load() (*Config, error) {
	_ = godotenv.Load()

	seed := int64(42)
	if v := os.Getenv("CELLVM_MASTER_SEED"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		seed = parsed
	}

	cfg := Default(seed)

	if v := os.Getenv("CELLVM_STRICT_CONTRACT"); v != "" {
		cfg.Run.StrictContract = parseBool(v)
	}
	if v := os.Getenv("CELLVM_BIO_NOISE_ENABLED"); v != "" {
		cfg.BioNoise.Enabled = parseBool(v)
	}
	if v := os.Getenv("CELLVM_CONTAMINATION_ENABLED"); v != "" {
		cfg.Contamination.Enabled = parseBool(v)
	}
	if v := os.Getenv("CELLVM_STEP_HOURS"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		cfg.Run.StepHours = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
