package config

import (
	"os"
	"strconv"
	"time"
)

const (
	sweepSecretEnv      = "SWEEP_SECRET"
	sweepBatchLimitEnv  = "SWEEP_BATCH_LIMIT"
	sweepOpTimeoutMsEnv = "SWEEP_OP_TIMEOUT_MS"

	defaultSweepBatchLimit  = 500
	defaultSweepOpTimeoutMs = 5000
)

type SweepConfig struct {
	// Secret is the shared bearer token the external scheduler must
	// present on the trigger endpoint.
	Secret string

	// BatchLimit caps how many due items one pass scans.
	BatchLimit int

	// OpTimeout bounds each store call inside a pass. A timed-out pass
	// is abandoned and logged, never retried inline.
	OpTimeout time.Duration
}

func LoadSweepConfig() *SweepConfig {
	batchLimit := defaultSweepBatchLimit
	if v := os.Getenv(sweepBatchLimitEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			batchLimit = parsed
		}
	}

	opTimeoutMs := defaultSweepOpTimeoutMs
	if v := os.Getenv(sweepOpTimeoutMsEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			opTimeoutMs = parsed
		}
	}

	return &SweepConfig{
		Secret:     os.Getenv(sweepSecretEnv),
		BatchLimit: batchLimit,
		OpTimeout:  time.Duration(opTimeoutMs) * time.Millisecond,
	}
}

func (c *SweepConfig) Validate() error {
	if c == nil || c.Secret == "" {
		return ErrSweepSecretMissing
	}
	return nil
}
