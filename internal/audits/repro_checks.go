// Package audits runs reproducibility checks over a completed run's artifact
// tree and produces the audit report that gates hard-mode runs.
package audits

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// CheckContext carries the inputs reproducibility checks evaluate against
type CheckContext struct {
	RunID    string
	RunDir   string
	Metadata *types.RunMetadata

	// ExpectedConfigHash is the caller's current config fingerprint. When
	// empty the config_hash_match check records itself as skipped.
	ExpectedConfigHash string
}

// CheckFunc evaluates one reproducibility concern
type CheckFunc func(ctx *CheckContext) types.ReproAuditCheck

// Check is one compile-time-registered reproducibility check
type Check struct {
	ID          string
	Description string
	Required    bool
	Severity    types.Severity
	Run         CheckFunc
}

// checkTable is the closed set of reproducibility checks, built once and
// read-only.
var checkTable = []Check{
	{
		ID:          "run_json_present",
		Description: "Run metadata record exists",
		Required:    true,
		Severity:    types.SeverityCritical,
		Run:         artifactPresent("run_json_present", runstore.MetadataFile, types.SeverityCritical, true),
	},
	{
		ID:          "plan_json_present",
		Description: "Figure plan artifact exists",
		Required:    true,
		Severity:    types.SeverityCritical,
		Run:         artifactPresent("plan_json_present", runstore.PlanFile, types.SeverityCritical, true),
	},
	{
		ID:          "sections_json_present",
		Description: "Parsed paper sections artifact exists",
		Required:    true,
		Severity:    types.SeverityMajor,
		Run:         artifactPresent("sections_json_present", runstore.SectionsFile, types.SeverityMajor, true),
	},
	{
		ID:          "traceability_json_present",
		Description: "Run-level traceability artifact exists",
		Required:    true,
		Severity:    types.SeverityMajor,
		Run:         artifactPresent("traceability_json_present", runstore.TraceabilityFile, types.SeverityMajor, true),
	},
	{
		ID:          "inspect_json_present",
		Description: "Run inspection snapshot exists",
		Required:    true,
		Severity:    types.SeverityMajor,
		Run:         artifactPresent("inspect_json_present", runstore.InspectFile, types.SeverityMajor, true),
	},
	{
		ID:          "docs_drift_report_present",
		Description: "Documentation drift report exists",
		Required:    true,
		Severity:    types.SeverityMinor,
		Run:         artifactPresent("docs_drift_report_present", runstore.DocsDriftFile, types.SeverityMinor, true),
	},
	{
		ID:          "architecture_critique_present",
		Description: "Architecture critique report exists",
		Required:    true,
		Severity:    types.SeverityMinor,
		Run:         artifactPresent("architecture_critique_present", runstore.ArchitectureCritiqueFile, types.SeverityMinor, true),
	},
	{
		ID:          "prompt_plan_present",
		Description: "Planning prompt provenance exists",
		Required:    true,
		Severity:    types.SeverityMinor,
		Run:         artifactPresent("prompt_plan_present", filepath.Join(runstore.PromptsDir, "plan_figure.txt"), types.SeverityMinor, true),
	},
	{
		ID:          "prompt_critique_present",
		Description: "Critique prompt provenance exists",
		Required:    true,
		Severity:    types.SeverityMinor,
		Run:         artifactPresent("prompt_critique_present", filepath.Join(runstore.PromptsDir, "critique_figure.txt"), types.SeverityMinor, true),
	},
	{
		ID:          "provenance_metadata",
		Description: "Run metadata carries complete provenance fields",
		Required:    true,
		Severity:    types.SeverityMajor,
		Run:         checkProvenanceMetadata,
	},
	{
		ID:          "deterministic_seed_declared",
		Description: "Run metadata declares a deterministic seed",
		Required:    false,
		Severity:    types.SeverityMinor,
		Run:         checkDeterministicSeed,
	},
	{
		ID:          "config_hash_match",
		Description: "Recorded config hash matches the current config fingerprint",
		Required:    true,
		Severity:    types.SeverityMajor,
		Run:         checkConfigHashMatch,
	},
}

// Checks returns the registered reproducibility checks in registration order.
// The returned slice must be treated as read-only.
func Checks() []Check {
	return checkTable
}

func artifactPresent(checkID, relPath string, severity types.Severity, required bool) CheckFunc {
	return func(ctx *CheckContext) types.ReproAuditCheck {
		path := filepath.Join(ctx.RunDir, relPath)
		_, err := os.Stat(path)
		check := types.ReproAuditCheck{
			CheckID:  checkID,
			Required: required,
			Passed:   err == nil,
			Severity: severity,
			Details:  map[string]string{"path": relPath},
		}
		if err == nil {
			check.Message = fmt.Sprintf("%s present", relPath)
		} else {
			check.Message = fmt.Sprintf("%s missing", relPath)
		}
		return check
	}
}

func checkProvenanceMetadata(ctx *CheckContext) types.ReproAuditCheck {
	check := types.ReproAuditCheck{
		CheckID:  "provenance_metadata",
		Required: true,
		Severity: types.SeverityMajor,
		Details:  map[string]string{},
	}
	if ctx.Metadata == nil {
		check.Message = "run metadata unavailable"
		return check
	}
	var missing []string
	for field, value := range map[string]string{
		"paper_path":    ctx.Metadata.PaperPath,
		"created_at":    ctx.Metadata.CreatedAt,
		"template_pack": ctx.Metadata.TemplatePack,
		"config_hash":   ctx.Metadata.ConfigHash,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		check.Message = fmt.Sprintf("%d provenance field(s) empty", len(missing))
		for _, field := range missing {
			check.Details[field] = "empty"
		}
		return check
	}
	check.Passed = true
	check.Message = "provenance fields complete"
	return check
}

func checkDeterministicSeed(ctx *CheckContext) types.ReproAuditCheck {
	check := types.ReproAuditCheck{
		CheckID:  "deterministic_seed_declared",
		Required: false,
		Severity: types.SeverityMinor,
		Details:  map[string]string{},
	}
	if ctx.Metadata == nil || ctx.Metadata.Seed == nil {
		check.Message = "no seed declared"
		return check
	}
	check.Passed = true
	check.Message = fmt.Sprintf("seed %d declared", *ctx.Metadata.Seed)
	check.Details["seed"] = fmt.Sprintf("%d", *ctx.Metadata.Seed)
	return check
}

func checkConfigHashMatch(ctx *CheckContext) types.ReproAuditCheck {
	check := types.ReproAuditCheck{
		CheckID:  "config_hash_match",
		Required: true,
		Severity: types.SeverityMajor,
		Details:  map[string]string{},
	}
	if ctx.ExpectedConfigHash == "" {
		check.Passed = true
		check.Message = "skipped: no expected config hash supplied"
		check.Details["status"] = "skipped"
		return check
	}
	recorded := ""
	if ctx.Metadata != nil {
		recorded = ctx.Metadata.ConfigHash
	}
	check.Details["recorded"] = recorded
	check.Details["expected"] = ctx.ExpectedConfigHash
	if recorded == ctx.ExpectedConfigHash {
		check.Passed = true
		check.Message = "config hash matches"
	} else {
		check.Message = "config hash mismatch"
	}
	return check
}
