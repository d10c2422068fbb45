package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/diffing"
	"github.com/oluwafemidiakhoa/paperfig/internal/pipeline"
)

var regressCmd = &cobra.Command{
	Use:   "regress",
	Short: "Run two paper versions and check regression invariants",
	Long:  "Generates a run for each paper version, diffs the results and checks that acceptance, scores and traceability did not regress between versions.",
	RunE:  runRegress,
}

var (
	regressPaperV1   string
	regressPaperV2   string
	regressConfig    string
	regressOutputDir string
)

func init() {
	regressCmd.Flags().StringVar(&regressPaperV1, "paper-v1", "", "Path to the first paper version (required)")
	regressCmd.Flags().StringVar(&regressPaperV2, "paper-v2", "", "Path to the second paper version (required)")
	regressCmd.Flags().StringVarP(&regressConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	regressCmd.Flags().StringVarP(&regressOutputDir, "output-dir", "o", "", "Override the configured output directory")

	for _, flag := range []string{"paper-v1", "paper-v2"} {
		if err := regressCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(regressCmd)
}

func runRegress(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(regressConfig, regressOutputDir)
	if err != nil {
		return err
	}
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	store := newStore(cfg)
	orchestrator, err := pipeline.New(pipeline.Options{
		Store:    store,
		Provider: provider,
		Config:   cfg,
	})
	if err != nil {
		return err
	}

	generate := func(ctx context.Context, paperPath string) (string, error) {
		result, err := orchestrator.Generate(ctx, paperPath)
		if err != nil {
			return "", err
		}
		return result.RunID, nil
	}

	report, err := diffing.Regress(ctx, store, regressPaperV1, regressPaperV2, generate)
	if err != nil {
		return err
	}

	fmt.Printf("Regression check %s: %s\n", report.ReportID, report.Summary)
	for _, invariant := range report.Invariants {
		mark := "ok"
		if !invariant.Passed {
			mark = "FAIL"
		}
		fmt.Printf("  [%s] %s\n", mark, invariant.ID)
	}
	fmt.Printf("Report: %s\n", report.ReportDir)

	if !diffing.Passed(report) {
		return fmt.Errorf("regression invariants failed")
	}
	return nil
}
