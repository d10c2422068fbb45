package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oluwafemidiakhoa/paperfig/internal/config"
	"github.com/oluwafemidiakhoa/paperfig/internal/journals"
	"github.com/oluwafemidiakhoa/paperfig/internal/providers"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// loadConfig loads configuration and applies the output-dir override
func loadConfig(configPath, outputDir string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg, nil
}

// newStore creates the run store for the configured output directory
func newStore(cfg *config.Config) *runstore.Store {
	return runstore.New(cfg.OutputDir)
}

// newProvider builds the configured figure provider backend
func newProvider(ctx context.Context, cfg *config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key (set api_key in config or GEMINI_API_KEY)")
		}
		return providers.NewGeminiProvider(ctx, cfg.Model, apiKey)
	case "local", "":
		return providers.NewLocalProvider(cfg.Seed), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// loadProfile resolves an optional journal profile by id
func loadProfile(profileID string, cfg *config.Config) (*types.JournalProfile, error) {
	if profileID == "" {
		return nil, nil
	}
	return journals.Load(profileID, cfg.ProfilesDir)
}
