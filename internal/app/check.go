package app

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"

	"simbatch/internal/config"
	"simbatch/internal/trace"
)

// newCheckCommand builds the pre-flight diagnostic. Informational only: it
// prints what a run would see and never fails the process.
func newCheckCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "check",
		Short:         "Check simulator binary, trace catalog, and host before a run",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(opts.ConfigFile)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd.Root().PersistentFlags(), opts, v)
			if err != nil {
				return err
			}
			runCheck(cfg)
			return nil
		},
	}
}

func runCheck(cfg *config.Config) {
	fmt.Println("=== simbatch check ===")

	if path, err := resolveBinary(cfg.Binary); err != nil {
		fmt.Printf("binary:   MISSING (%s) - build it or pass --binary\n", cfg.Binary)
	} else {
		fmt.Printf("binary:   %s\n", path)
	}

	catalog, err := trace.Discover(cfg.TracesDir)
	if err != nil {
		fmt.Printf("traces:   %v\n", err)
	} else {
		k := len(catalog)
		fmt.Printf("traces:   %d files in %s\n", k, cfg.TracesDir)
		fmt.Printf("pairs:    %d combinations (C(%d,2))\n", k*(k-1)/2, k)
	}

	if fi, err := os.Stat(cfg.StatsDir); err == nil && fi.IsDir() {
		fmt.Printf("stats:    %s (exists)\n", cfg.StatsDir)
	} else {
		fmt.Printf("stats:    %s (will be created)\n", cfg.StatsDir)
	}

	if logical, err := cpu.Counts(true); err == nil {
		fmt.Printf("host:     %d logical CPUs\n", logical)
		if cfg.Workers > logical {
			fmt.Printf("note:     --workers %d exceeds CPU count; simulations will contend\n", cfg.Workers)
		}
	}
	fmt.Printf("workers:  %d, timeout: %s\n", cfg.Workers, cfg.Timeout)
}
