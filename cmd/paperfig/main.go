// Package main provides the entry point for the paperfig CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paperfig",
	Short: "Traceable figure generation for research papers",
	Long:  "paperfig plans, generates and iteratively refines publication figures from a research paper, with every figure element traceable back to the source text and every run audited for reproducibility.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
