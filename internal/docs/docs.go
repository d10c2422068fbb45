// Package docs keeps the CLI command catalog and the documentation manifest
// in sync, and reports drift between them as a run artifact.
package docs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
)

// Drift statuses.
const (
	StatusInSync  = "in_sync"
	StatusDrifted = "drifted"
)

// DefaultManifest is the manifest path checked when none is configured
const DefaultManifest = "docs/manifest.yaml"

// CommandDoc describes one CLI command as documentation sees it
type CommandDoc struct {
	Name    string `yaml:"name" json:"name"`
	Summary string `yaml:"summary" json:"summary"`
}

// Manifest is the documented command inventory
type Manifest struct {
	Commands []CommandDoc `yaml:"commands"`
}

// DriftReport records the comparison between the compiled-in catalog and the
// documentation manifest.
type DriftReport struct {
	Status          string       `json:"status"`
	ManifestPath    string       `json:"manifest_path"`
	MissingCommands []string     `json:"missing_commands"`
	ExtraCommands   []string     `json:"extra_commands"`
	ChangedCommands []string     `json:"changed_commands"`
	Catalog         []CommandDoc `json:"catalog"`
	GeneratedAt     string       `json:"generated_at"`
	Notes           []string     `json:"notes,omitempty"`
}

// InSync reports whether the manifest matches the catalog
func (r *DriftReport) InSync() bool {
	return r.Status == StatusInSync
}

// Catalog returns the compiled-in command inventory, the source of truth the
// manifest is checked against.
func Catalog() []CommandDoc {
	return []CommandDoc{
		{Name: "generate", Summary: "Run the full figure pipeline over a paper"},
		{Name: "rerun", Summary: "Re-execute a prior run, reusing its plan and configuration"},
		{Name: "inspect", Summary: "Summarize a completed run's figures and metrics"},
		{Name: "diff", Summary: "Compare two runs artifact by artifact"},
		{Name: "regress", Summary: "Run two paper versions and check regression invariants"},
		{Name: "audit", Summary: "Run the reproducibility audit over a completed run"},
		{Name: "critique-architecture", Summary: "Evaluate architecture rules over a completed run"},
		{Name: "export", Summary: "Export a run's final figures for publication"},
		{Name: "plugins", Summary: "List or validate registered plugins"},
		{Name: "docs", Summary: "Check or regenerate the documentation manifest"},
	}
}

// CheckDrift compares the manifest at path against the catalog. A missing
// manifest is treated as in sync so fresh checkouts and temp trees do not
// fail their runs; the absence is still noted.
func CheckDrift(path string) (*DriftReport, error) {
	report := &DriftReport{
		Status:          StatusInSync,
		ManifestPath:    path,
		MissingCommands: []string{},
		ExtraCommands:   []string{},
		ChangedCommands: []string{},
		Catalog:         Catalog(),
		GeneratedAt:     runstore.Timestamp(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			report.Notes = append(report.Notes, "manifest not found; skipping drift check")
			return report, nil
		}
		return nil, fmt.Errorf("failed to read docs manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse docs manifest %s: %w", path, err)
	}

	documented := make(map[string]string, len(manifest.Commands))
	for _, cmd := range manifest.Commands {
		documented[cmd.Name] = cmd.Summary
	}
	inCatalog := make(map[string]bool)
	for _, cmd := range report.Catalog {
		inCatalog[cmd.Name] = true
		summary, ok := documented[cmd.Name]
		if !ok {
			report.MissingCommands = append(report.MissingCommands, cmd.Name)
			continue
		}
		if summary != cmd.Summary {
			report.ChangedCommands = append(report.ChangedCommands, cmd.Name)
		}
	}
	for _, cmd := range manifest.Commands {
		if !inCatalog[cmd.Name] {
			report.ExtraCommands = append(report.ExtraCommands, cmd.Name)
		}
	}

	if len(report.MissingCommands)+len(report.ExtraCommands)+len(report.ChangedCommands) > 0 {
		report.Status = StatusDrifted
	}
	return report, nil
}

// Regenerate writes a manifest matching the current catalog
func Regenerate(path string) error {
	data, err := yaml.Marshal(Manifest{Commands: Catalog()})
	if err != nil {
		return fmt.Errorf("failed to encode docs manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write docs manifest %s: %w", path, err)
	}
	return nil
}

// WriteReport persists a drift report into a run directory
func WriteReport(runDir string, report *DriftReport) error {
	return runstore.WriteJSON(filepath.Join(runDir, runstore.DocsDriftFile), report)
}
