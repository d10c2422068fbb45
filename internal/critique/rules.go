// Package critique evaluates a completed run's artifact tree against
// architecture rules and gates the run on finding severity.
package critique

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oluwafemidiakhoa/paperfig/internal/contracts"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// RuleContext carries the persisted artifacts a rule may inspect. Rules are
// pure functions over a completed run; they never mutate the run directory.
type RuleContext struct {
	RunID      string
	RunDir     string
	Plan       []types.FigurePlan
	Inspection *types.RunInspection
}

// RuleFunc evaluates a run and returns zero or more findings
type RuleFunc func(ctx *RuleContext) []types.ArchitectureCritiqueFinding

// Rule is one compile-time-registered critique rule
type Rule struct {
	ID          string
	Description string
	Evaluate    RuleFunc
}

// ruleTable is the closed set of critique rules, built once and read-only.
var ruleTable = []Rule{
	{
		ID:          "plan_ids_unique",
		Description: "Figure ids in the plan are unique",
		Evaluate:    rulePlanIDsUnique,
	},
	{
		ID:          "final_artifacts_complete",
		Description: "Every planned figure has a complete final artifact set",
		Evaluate:    ruleFinalArtifactsComplete,
	},
	{
		ID:          "contracts_valid",
		Description: "Every figure contract conforms to the contract schema",
		Evaluate:    ruleContractsValid,
	},
	{
		ID:          "iterations_contiguous",
		Description: "Iteration directories are numbered 1..n without gaps",
		Evaluate:    ruleIterationsContiguous,
	},
	{
		ID:          "traceability_floor",
		Description: "Average traceability coverage stays above 0.5",
		Evaluate:    ruleTraceabilityFloor,
	},
}

// Table returns the registered critique rules in registration order.
// The returned slice must be treated as read-only.
func Table() []Rule {
	return ruleTable
}

func rulePlanIDsUnique(ctx *RuleContext) []types.ArchitectureCritiqueFinding {
	seen := make(map[string]bool, len(ctx.Plan))
	var findings []types.ArchitectureCritiqueFinding
	for _, plan := range ctx.Plan {
		if seen[plan.FigureID] {
			findings = append(findings, types.ArchitectureCritiqueFinding{
				FindingID:   fmt.Sprintf("plan_ids_unique:%s", plan.FigureID),
				Severity:    types.SeverityCritical,
				Title:       "Duplicate figure id in plan",
				Description: fmt.Sprintf("Figure id %q appears more than once in plan.json.", plan.FigureID),
				Evidence:    runstore.PlanFile,
				Suggestion:  "Regenerate the plan; figure ids must be unique within a run.",
			})
		}
		seen[plan.FigureID] = true
	}
	return findings
}

func ruleFinalArtifactsComplete(ctx *RuleContext) []types.ArchitectureCritiqueFinding {
	var findings []types.ArchitectureCritiqueFinding
	for _, plan := range ctx.Plan {
		figureDir := runstore.FigureDir(ctx.RunDir, plan.FigureID)
		finalDir := runstore.FinalDir(figureDir)
		var missing []string
		for _, name := range []string{
			runstore.FinalFigureFile,
			runstore.ElementMetadataFile,
			runstore.FinalTraceabilityFile,
			runstore.ContractFile,
		} {
			if _, err := os.Stat(filepath.Join(finalDir, name)); err != nil {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			findings = append(findings, types.ArchitectureCritiqueFinding{
				FindingID:   fmt.Sprintf("final_artifacts_complete:%s", plan.FigureID),
				Severity:    types.SeverityMajor,
				Title:       "Incomplete final artifact set",
				Description: fmt.Sprintf("Figure %q is missing final artifacts: %s.", plan.FigureID, strings.Join(missing, ", ")),
				Evidence:    finalDir,
				Suggestion:  "Rerun the figure; the refinement loop always promotes a final set, accepted or not.",
			})
		}
	}
	return findings
}

func ruleContractsValid(ctx *RuleContext) []types.ArchitectureCritiqueFinding {
	var findings []types.ArchitectureCritiqueFinding
	for _, plan := range ctx.Plan {
		figureDir := runstore.FigureDir(ctx.RunDir, plan.FigureID)
		contract, err := contracts.Load(figureDir)
		if err != nil {
			findings = append(findings, types.ArchitectureCritiqueFinding{
				FindingID:   fmt.Sprintf("contracts_valid:%s", plan.FigureID),
				Severity:    types.SeverityMajor,
				Title:       "Missing or unreadable contract",
				Description: fmt.Sprintf("Figure %q has no readable contract.json: %v.", plan.FigureID, err),
				Evidence:    filepath.Join(figureDir, runstore.ContractFile),
				Suggestion:  "Rerun the figure so the orchestrator writes its contract.",
			})
			continue
		}
		if errs := contracts.Validate(*contract); len(errs) > 0 {
			findings = append(findings, types.ArchitectureCritiqueFinding{
				FindingID:   fmt.Sprintf("contracts_valid:%s", plan.FigureID),
				Severity:    types.SeverityMajor,
				Title:       "Contract schema violation",
				Description: fmt.Sprintf("Figure %q contract fails validation: %s.", plan.FigureID, strings.Join(errs, "; ")),
				Evidence:    filepath.Join(figureDir, runstore.ContractFile),
				Suggestion:  "Fix the contract source (plan or template) and rerun.",
			})
		}
	}
	return findings
}

func ruleIterationsContiguous(ctx *RuleContext) []types.ArchitectureCritiqueFinding {
	var findings []types.ArchitectureCritiqueFinding
	for _, plan := range ctx.Plan {
		figureDir := runstore.FigureDir(ctx.RunDir, plan.FigureID)
		iters, err := runstore.ListIterDirs(figureDir)
		if err != nil || len(iters) == 0 {
			continue
		}
		for i, name := range iters {
			if runstore.IterNumber(name) != i+1 {
				findings = append(findings, types.ArchitectureCritiqueFinding{
					FindingID:   fmt.Sprintf("iterations_contiguous:%s", plan.FigureID),
					Severity:    types.SeverityMinor,
					Title:       "Iteration numbering gap",
					Description: fmt.Sprintf("Figure %q iteration directories are not contiguous: %s.", plan.FigureID, strings.Join(iters, ", ")),
					Evidence:    figureDir,
					Suggestion:  "Iteration directories are owned by the loop; do not prune them by hand.",
				})
				break
			}
		}
	}
	return findings
}

func ruleTraceabilityFloor(ctx *RuleContext) []types.ArchitectureCritiqueFinding {
	if ctx.Inspection == nil {
		return nil
	}
	coverage := ctx.Inspection.Aggregate.AvgTraceabilityCoverage
	if coverage == nil || *coverage >= 0.5 {
		return nil
	}
	return []types.ArchitectureCritiqueFinding{{
		FindingID:   "traceability_floor",
		Severity:    types.SeverityMinor,
		Title:       "Low traceability coverage",
		Description: fmt.Sprintf("Average traceability coverage %.2f is below 0.5.", *coverage),
		Evidence:    runstore.InspectFile,
		Suggestion:  "Tighten template traceability requirements or improve generator span mapping.",
	}}
}
