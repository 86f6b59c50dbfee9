package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"simbatch/internal/analyze"
	"simbatch/internal/config"
)

// newAnalyzeCommand builds the offline reader of the produced CSVs: it pairs
// rows, fits the predicted-eviction model, and prints the correlation. With
// --plot it also renders the log-log scatter.
func newAnalyzeCommand(opts *cliOptions) *cobra.Command {
	var plotPath string

	cmd := &cobra.Command{
		Use:           "analyze [csv-file...]",
		Short:         "Compare predicted vs actual evictions across the produced CSVs",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(opts.ConfigFile)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd.Root().PersistentFlags(), opts, v)
			if err != nil {
				return err
			}

			paths := args
			if len(paths) == 0 {
				paths, err = analyze.CollectCSVs(cfg.StatsDir)
				if err != nil {
					return err
				}
			}

			rows, err := analyze.LoadFiles(paths)
			if err != nil {
				return err
			}
			rep, err := analyze.Run(rows)
			if err != nil {
				return err
			}

			fmt.Printf("Files read:    %d\n", len(paths))
			fmt.Printf("Points:        %d", len(rep.Points))
			if rep.PairsSkipped > 0 {
				fmt.Printf(" (%d pairs skipped: zero denominator)", rep.PairsSkipped)
			}
			fmt.Println()
			fmt.Printf("Pearson r:     %.4f\n", rep.R)
			fmt.Printf("r-squared:     %.4f\n", rep.RSquared)

			if plotPath != "" {
				if err := analyze.RenderScatter(rep, plotPath); err != nil {
					return err
				}
				fmt.Printf("Plot saved to: %s\n", plotPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&plotPath, "plot", "", "Render the scatter plot to this file (e.g. evictions.png)")
	return cmd
}
