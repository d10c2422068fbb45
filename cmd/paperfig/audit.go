package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/audits"
	"github.com/oluwafemidiakhoa/paperfig/internal/observability"
	"github.com/oluwafemidiakhoa/paperfig/internal/plugins"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the reproducibility audit over a completed run",
	Long:  "Re-evaluates every reproducibility check against a run's artifact tree and rewrites its audit report. In hard mode a failed required check exits non-zero.",
	RunE:  runAudit,
}

var (
	auditRunID      string
	auditConfig     string
	auditOutputDir  string
	auditMode       string
	auditVerifyHash bool
)

func init() {
	auditCmd.Flags().StringVarP(&auditRunID, "run-id", "r", "", "Run id to audit (required)")
	auditCmd.Flags().StringVarP(&auditConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	auditCmd.Flags().StringVarP(&auditOutputDir, "output-dir", "o", "", "Override the configured output directory")
	auditCmd.Flags().StringVar(&auditMode, "mode", "", "Audit mode: soft or hard (default from run metadata)")
	auditCmd.Flags().BoolVar(&auditVerifyHash, "verify-config", false, "Check the recorded config hash against the current config")

	if err := auditCmd.MarkFlagRequired("run-id"); err != nil {
		panic(fmt.Sprintf("failed to mark run-id flag as required: %v", err))
	}

	rootCmd.AddCommand(auditCmd)
}

func runAudit(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(auditConfig, auditOutputDir)
	if err != nil {
		return err
	}
	store := newStore(cfg)

	runDir, err := store.Require(auditRunID)
	if err != nil {
		return err
	}
	meta, err := store.ReadMetadata(auditRunID)
	if err != nil {
		return err
	}

	mode := auditMode
	if mode == "" {
		mode = meta.ReproAuditMode
	}
	if mode != audits.ModeSoft && mode != audits.ModeHard {
		return fmt.Errorf("invalid audit mode %q (want soft or hard)", mode)
	}

	checks, err := plugins.Default().ResolveReproChecks(cfg.EnabledReproChecks)
	if err != nil {
		return err
	}

	checkCtx := &audits.CheckContext{
		RunID:    auditRunID,
		RunDir:   runDir,
		Metadata: meta,
	}
	if auditVerifyHash {
		checkCtx.ExpectedConfigHash = cfg.Fingerprint()
	}

	report := audits.RunReproducibilityAudit(checkCtx, mode, checks)
	if err := audits.WriteReport(runDir, report); err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintReproAudit(report)

	if !report.Passed && mode == audits.ModeHard {
		return fmt.Errorf("reproducibility audit failed: %s", report.Summary)
	}
	return nil
}
