// Package app wires the command-line surface: flag parsing, config
// resolution, logging setup, and the run/check/analyze subcommands.
package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"simbatch/internal/config"
)

const version = "1.1.0"

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	TracesDir    string
	StatsDir     string
	Binary       string
	Workers      int
	Warmup       uint64
	Simulation   uint64
	TimeoutSec   int
	SkipExisting bool
	DryRun       bool
	Limit        int
	Results      string
	Verbose      bool

	ConfigFile string
	Version    bool
}

// Run is the program entrypoint for cmd/simbatch/main.go.
func Run() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           "simbatch [flags]",
		Short:         "Run the simulator over every pairwise trace combination",
		Long:          "simbatch enumerates all unordered pairs of trace files, runs the external\ncache simulator once per pair under bounded parallelism, and skips pairs\nwhose output CSV already exists when asked to resume.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Printf("simbatch version %s\n", version)
				return nil
			}

			v, err := config.NewViper(opts.ConfigFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
				return exitError{code: 1}
			}
			cfg, err := resolveConfig(cmd.Flags(), opts, v)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
				return exitError{code: 1}
			}

			log := newLogger(cfg.Verbose)
			if code := runBatch(cfg, log, os.Stdout); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRootFlags(cmd.PersistentFlags(), opts)
	cmd.AddCommand(newVersionCommand(), newCheckCommand(opts), newAnalyzeCommand(opts))

	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.simbatch/config.*)")
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")

	fs.StringVar(&opts.TracesDir, "traces-dir", config.DefaultTracesDir, "Directory containing trace files")
	fs.StringVar(&opts.StatsDir, "stats-dir", config.DefaultStatsDir, "Directory for output CSV files")
	fs.StringVar(&opts.Binary, "binary", config.DefaultBinary, "Path to the simulator binary")
	fs.IntVar(&opts.Workers, "workers", config.DefaultWorkers, "Number of parallel worker processes")
	fs.Uint64Var(&opts.Warmup, "warmup", config.DefaultWarmup, "Warmup instruction count")
	fs.Uint64Var(&opts.Simulation, "simulation", config.DefaultSimulation, "Simulation instruction count")
	fs.IntVar(&opts.TimeoutSec, "timeout", int(config.DefaultTimeout/time.Second), "Per-task timeout in seconds")
	fs.BoolVar(&opts.SkipExisting, "skip-existing", false, "Skip pairs whose output CSV already exists")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Preview the task list without running anything")
	fs.IntVar(&opts.Limit, "limit", 0, "Run at most N tasks (0 = no limit)")
	fs.StringVar(&opts.Results, "results", "", "Write a JSON manifest of all task results to this path")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")
}

// resolveConfig applies the flag > env/config-file > default chain for every
// option, then validates.
func resolveConfig(fs *pflag.FlagSet, opts *cliOptions, v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()

	stringOpt := func(name string, flagVal string, dst *string) {
		if fs.Changed(name) {
			*dst = flagVal
		} else if val := v.GetString(name); val != "" {
			*dst = val
		}
	}
	stringOpt("traces-dir", opts.TracesDir, &cfg.TracesDir)
	stringOpt("stats-dir", opts.StatsDir, &cfg.StatsDir)
	stringOpt("binary", opts.Binary, &cfg.Binary)
	stringOpt("results", opts.Results, &cfg.ResultsFile)

	if fs.Changed("workers") {
		cfg.Workers = opts.Workers
	} else if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}
	if fs.Changed("warmup") {
		cfg.Warmup = opts.Warmup
	} else if v.IsSet("warmup") {
		cfg.Warmup = v.GetUint64("warmup")
	}
	if fs.Changed("simulation") {
		cfg.Simulation = opts.Simulation
	} else if v.IsSet("simulation") {
		cfg.Simulation = v.GetUint64("simulation")
	}
	if fs.Changed("timeout") {
		cfg.Timeout = time.Duration(opts.TimeoutSec) * time.Second
	} else if v.IsSet("timeout") {
		cfg.Timeout = time.Duration(v.GetInt("timeout")) * time.Second
	}
	if fs.Changed("limit") {
		cfg.Limit = opts.Limit
	} else if v.IsSet("limit") {
		cfg.Limit = v.GetInt("limit")
	}

	if fs.Changed("skip-existing") {
		cfg.SkipExisting = opts.SkipExisting
	} else {
		cfg.SkipExisting = v.GetBool("skip-existing")
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = opts.DryRun
	} else {
		cfg.DryRun = v.GetBool("dry-run")
	}
	if fs.Changed("verbose") {
		cfg.Verbose = opts.Verbose
	} else {
		cfg.Verbose = v.GetBool("verbose")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("simbatch version %s\n", version)
			return nil
		},
	}
}
