package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/critique"
	"github.com/oluwafemidiakhoa/paperfig/internal/inspect"
	"github.com/oluwafemidiakhoa/paperfig/internal/observability"
	"github.com/oluwafemidiakhoa/paperfig/internal/plugins"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

var critiqueArchCmd = &cobra.Command{
	Use:   "critique-architecture",
	Short: "Evaluate architecture rules over a completed run",
	Long:  "Re-runs the architecture critique rules against a run's artifact tree, rewrites its critique report and exits non-zero when a finding meets the block severity.",
	RunE:  runCritiqueArchitecture,
}

var (
	critiqueArchRunID     string
	critiqueArchConfig    string
	critiqueArchOutputDir string
	critiqueArchSeverity  string
)

func init() {
	critiqueArchCmd.Flags().StringVarP(&critiqueArchRunID, "run-id", "r", "", "Run id to critique (required)")
	critiqueArchCmd.Flags().StringVarP(&critiqueArchConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	critiqueArchCmd.Flags().StringVarP(&critiqueArchOutputDir, "output-dir", "o", "", "Override the configured output directory")
	critiqueArchCmd.Flags().StringVar(&critiqueArchSeverity, "block-severity", "", "Severity that blocks: minor, major or critical (default from run metadata)")

	if err := critiqueArchCmd.MarkFlagRequired("run-id"); err != nil {
		panic(fmt.Sprintf("failed to mark run-id flag as required: %v", err))
	}

	rootCmd.AddCommand(critiqueArchCmd)
}

func runCritiqueArchitecture(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(critiqueArchConfig, critiqueArchOutputDir)
	if err != nil {
		return err
	}
	store := newStore(cfg)

	runDir, err := store.Require(critiqueArchRunID)
	if err != nil {
		return err
	}
	meta, err := store.ReadMetadata(critiqueArchRunID)
	if err != nil {
		return err
	}
	plan, err := store.ReadPlan(critiqueArchRunID)
	if err != nil {
		return err
	}
	inspection, err := inspect.LoadOrBuild(store, critiqueArchRunID)
	if err != nil {
		return err
	}

	severity := types.Severity(critiqueArchSeverity)
	if severity == "" {
		severity = meta.ArchCritiqueBlockSeverity
	}
	if !types.ValidSeverity(severity) {
		return fmt.Errorf("invalid block severity %q (want minor, major or critical)", severity)
	}

	rules, err := plugins.Default().ResolveCritiqueRules(cfg.EnabledCritiqueRules)
	if err != nil {
		return err
	}

	report := critique.Critique(&critique.RuleContext{
		RunID:      critiqueArchRunID,
		RunDir:     runDir,
		Plan:       plan,
		Inspection: inspection,
	}, rules, severity)
	if err := critique.WriteReport(runDir, report); err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintArchitectureCritique(report)

	if report.Blocked {
		return fmt.Errorf("architecture critique blocked the run: %s", report.Summary)
	}
	return nil
}
