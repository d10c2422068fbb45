package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oluwafemidiakhoa/paperfig/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full figure pipeline over a paper",
	Long:  "Plans figures for the paper, drives each one through the generate-critique refinement loop, then finalizes the run through the inspection, docs drift, architecture critique and reproducibility gates.",
	RunE:  runGenerate,
}

var (
	generatePaper      string
	generateConfig     string
	generateOutputDir  string
	generateProfile    string
	generateMaxFigures int
	generateVerbose    bool
)

func init() {
	generateCmd.Flags().StringVarP(&generatePaper, "paper", "p", "", "Path to the paper (Markdown or plain text, required)")
	generateCmd.Flags().StringVarP(&generateConfig, "config", "c", "", "Path to config file (default paperfig.yaml)")
	generateCmd.Flags().StringVarP(&generateOutputDir, "output-dir", "o", "", "Override the configured output directory")
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Journal profile id to apply")
	generateCmd.Flags().IntVar(&generateMaxFigures, "max-figures", 0, "Cap on planned figures (0 uses the default)")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print detailed progress summaries")

	if err := generateCmd.MarkFlagRequired("paper"); err != nil {
		panic(fmt.Sprintf("failed to mark paper flag as required: %v", err))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(generateConfig, generateOutputDir)
	if err != nil {
		return err
	}
	profile, err := loadProfile(generateProfile, cfg)
	if err != nil {
		return err
	}
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	orchestrator, err := pipeline.New(pipeline.Options{
		Store:      newStore(cfg),
		Provider:   provider,
		Config:     cfg,
		Profile:    profile,
		MaxFigures: generateMaxFigures,
		Verbose:    generateVerbose,
	})
	if err != nil {
		return err
	}

	result, err := orchestrator.Generate(ctx, generatePaper)
	if err != nil {
		var gateErr *pipeline.GateError
		if errors.As(err, &gateErr) {
			fmt.Printf("Run %s completed but was blocked: %v\n", gateErr.RunID, err)
			fmt.Printf("Artifacts: %s\n", result.RunDir)
		}
		return err
	}

	fmt.Printf("Run %s complete: %d/%d figure(s) accepted\n",
		result.RunID,
		result.Inspection.Aggregate.AcceptedCount,
		result.Inspection.Aggregate.TotalFigures)
	fmt.Printf("Artifacts: %s\n", result.RunDir)
	return nil
}
