package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/inspect"
	"github.com/oluwafemidiakhoa/paperfig/internal/observability"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a completed run's figures and metrics",
	Long:  "Loads the run's inspection snapshot (building and persisting it if absent) and prints per-figure verdicts, iteration histories and aggregate metrics, optionally filtered.",
	RunE:  runInspect,
}

var (
	inspectRunID        string
	inspectConfig       string
	inspectOutputDir    string
	inspectFailuresOnly bool
	inspectFigureID     string
	inspectMinScore     float64
	inspectDimension    string
	inspectJSON         bool
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectRunID, "run-id", "r", "", "Run id to inspect (required)")
	inspectCmd.Flags().StringVarP(&inspectConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	inspectCmd.Flags().StringVarP(&inspectOutputDir, "output-dir", "o", "", "Override the configured output directory")
	inspectCmd.Flags().BoolVar(&inspectFailuresOnly, "failures-only", false, "Show only figures that were not accepted")
	inspectCmd.Flags().StringVar(&inspectFigureID, "figure", "", "Show only the given figure id")
	inspectCmd.Flags().Float64Var(&inspectMinScore, "min-score", -1, "Show only figures scoring at least this value")
	inspectCmd.Flags().StringVar(&inspectDimension, "failed-dimension", "", "Show only figures that failed the given dimension")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Emit the inspection as JSON")

	if err := inspectCmd.MarkFlagRequired("run-id"); err != nil {
		panic(fmt.Sprintf("failed to mark run-id flag as required: %v", err))
	}

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(inspectConfig, inspectOutputDir)
	if err != nil {
		return err
	}

	inspection, err := inspect.LoadOrBuild(newStore(cfg), inspectRunID)
	if err != nil {
		return err
	}

	filter := inspect.Filter{
		FailuresOnly:    inspectFailuresOnly,
		FigureID:        inspectFigureID,
		FailedDimension: inspectDimension,
	}
	if inspectMinScore >= 0 {
		filter.MinScore = &inspectMinScore
	}
	inspection = inspect.Apply(inspection, filter)

	if inspectJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(inspection)
	}

	observability.NewPrinter(os.Stdout).PrintInspection(inspection)
	return nil
}
