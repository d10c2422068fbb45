package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/pipeline"
)

var rerunCmd = &cobra.Command{
	Use:   "rerun",
	Short: "Re-execute a prior run, reusing its plan and configuration",
	Long:  "Starts a fresh run against the same paper as a prior run. The prior figure plan, thresholds, audit modes and journal profile are replayed verbatim so only generation and critique repeat.",
	RunE:  runRerun,
}

var (
	rerunRunID     string
	rerunConfig    string
	rerunOutputDir string
	rerunVerbose   bool
)

func init() {
	rerunCmd.Flags().StringVarP(&rerunRunID, "run-id", "r", "", "Prior run id (required)")
	rerunCmd.Flags().StringVarP(&rerunConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	rerunCmd.Flags().StringVarP(&rerunOutputDir, "output-dir", "o", "", "Override the configured output directory")
	rerunCmd.Flags().BoolVarP(&rerunVerbose, "verbose", "v", false, "Print detailed progress summaries")

	if err := rerunCmd.MarkFlagRequired("run-id"); err != nil {
		panic(fmt.Sprintf("failed to mark run-id flag as required: %v", err))
	}

	rootCmd.AddCommand(rerunCmd)
}

func runRerun(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(rerunConfig, rerunOutputDir)
	if err != nil {
		return err
	}
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	orchestrator, err := pipeline.New(pipeline.Options{
		Store:    newStore(cfg),
		Provider: provider,
		Config:   cfg,
		Verbose:  rerunVerbose,
	})
	if err != nil {
		return err
	}

	result, err := orchestrator.Rerun(ctx, rerunRunID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s complete (rerun of %s): %d/%d figure(s) accepted\n",
		result.RunID, rerunRunID,
		result.Inspection.Aggregate.AcceptedCount,
		result.Inspection.Aggregate.TotalFigures)
	return nil
}
