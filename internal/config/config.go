package config

import (
	"fmt"
	"time"
)

// Defaults mirror the batch sizes this workload is normally run with.
const (
	DefaultTracesDir  = "traces"
	DefaultStatsDir   = "stats"
	DefaultBinary     = "bin/champsim"
	DefaultWorkers    = 8
	DefaultWarmup     = 200_000_000
	DefaultSimulation = 500_000_000
	DefaultTimeout    = 36000 * time.Second // 10 hours per simulation
)

// Config holds the resolved batch configuration. Flag values win over
// SIMBATCH_* environment variables and the optional config file; see
// NewViper for the lookup chain.
type Config struct {
	TracesDir    string
	StatsDir     string
	Binary       string
	Workers      int
	Warmup       uint64
	Simulation   uint64
	Timeout      time.Duration
	SkipExisting bool
	DryRun       bool
	Limit        int
	ResultsFile  string
	Verbose      bool
}

// Default returns a Config populated with the package defaults.
func Default() Config {
	return Config{
		TracesDir:  DefaultTracesDir,
		StatsDir:   DefaultStatsDir,
		Binary:     DefaultBinary,
		Workers:    DefaultWorkers,
		Warmup:     DefaultWarmup,
		Simulation: DefaultSimulation,
		Timeout:    DefaultTimeout,
	}
}

// Validate rejects values the scheduler cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d (must be >= 1)", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s (must be positive)", c.Timeout)
	}
	if c.Limit < 0 {
		return fmt.Errorf("invalid limit: %d (must be >= 0)", c.Limit)
	}
	return nil
}
