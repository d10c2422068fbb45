package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/diffing"
)

var diffCmd = &cobra.Command{
	Use:   "diff <run-id-1> <run-id-2>",
	Short: "Compare two runs artifact by artifact",
	Long:  "Compares aggregate metrics, per-figure outcomes and run-level artifacts between two completed runs, and persists the diff report under the output directory.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var (
	diffConfig    string
	diffOutputDir string
	diffOut       string
)

func init() {
	diffCmd.Flags().StringVarP(&diffConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	diffCmd.Flags().StringVarP(&diffOutputDir, "output-dir", "o", "", "Override the configured output directory")
	diffCmd.Flags().StringVar(&diffOut, "out", "", "Directory for the diff report (default a timestamped directory under the store)")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(diffConfig, diffOutputDir)
	if err != nil {
		return err
	}

	report, err := diffing.Diff(newStore(cfg), args[0], args[1], diffOut)
	if err != nil {
		return err
	}

	fmt.Printf("Compared %s against %s\n", report.RunID1, report.RunID2)
	fmt.Printf("  changed figures:   %d\n", report.Summary.ChangedFigureCount)
	fmt.Printf("  changed artifacts: %d\n", report.Summary.ChangedArtifactCount)
	for name, metric := range report.Metrics {
		if metric.Delta != nil && *metric.Delta != 0 {
			fmt.Printf("  %s: %+.3f\n", name, *metric.Delta)
		}
	}
	fmt.Printf("Report: %s\n", report.DiffDir)
	return nil
}
