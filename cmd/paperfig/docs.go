package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/docs"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Check or regenerate the documentation manifest",
}

var docsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the documentation manifest against the command catalog",
	RunE:  runDocsCheck,
}

var docsRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rewrite the documentation manifest from the command catalog",
	RunE:  runDocsRegenerate,
}

var docsManifestPath string

func init() {
	docsCmd.PersistentFlags().StringVar(&docsManifestPath, "manifest", docs.DefaultManifest, "Path to the documentation manifest")
	docsCmd.AddCommand(docsCheckCmd)
	docsCmd.AddCommand(docsRegenerateCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsCheck(_ *cobra.Command, _ []string) error {
	report, err := docs.CheckDrift(docsManifestPath)
	if err != nil {
		return err
	}

	if report.InSync() {
		fmt.Println("Documentation is in sync with the command catalog")
		for _, note := range report.Notes {
			fmt.Printf("  note: %s\n", note)
		}
		return nil
	}

	if len(report.MissingCommands) > 0 {
		fmt.Printf("Undocumented commands: %s\n", strings.Join(report.MissingCommands, ", "))
	}
	if len(report.ExtraCommands) > 0 {
		fmt.Printf("Documented but gone: %s\n", strings.Join(report.ExtraCommands, ", "))
	}
	if len(report.ChangedCommands) > 0 {
		fmt.Printf("Outdated summaries: %s\n", strings.Join(report.ChangedCommands, ", "))
	}
	return fmt.Errorf("documentation drift detected (run 'paperfig docs regenerate')")
}

func runDocsRegenerate(_ *cobra.Command, _ []string) error {
	if err := docs.Regenerate(docsManifestPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", docsManifestPath)
	return nil
}
