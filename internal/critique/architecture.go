package critique

import (
	"fmt"
	"path/filepath"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// Critique evaluates the given rules over a run and assembles the
// architecture critique report. The run is blocked when any finding's
// severity meets or exceeds blockSeverity.
func Critique(ctx *RuleContext, rules []Rule, blockSeverity types.Severity) *types.ArchitectureCritiqueReport {
	findings := make([]types.ArchitectureCritiqueFinding, 0)
	for _, rule := range rules {
		findings = append(findings, rule.Evaluate(ctx)...)
	}

	blocked := false
	for _, finding := range findings {
		if finding.Severity.AtLeast(blockSeverity) {
			blocked = true
			break
		}
	}

	summary := fmt.Sprintf("%d finding(s) across %d rule(s)", len(findings), len(rules))
	if blocked {
		summary += fmt.Sprintf("; blocked at severity %s", blockSeverity)
	}

	return &types.ArchitectureCritiqueReport{
		RunID:         ctx.RunID,
		BlockSeverity: blockSeverity,
		Findings:      findings,
		Blocked:       blocked,
		Summary:       summary,
		GeneratedAt:   runstore.Timestamp(),
	}
}

// WriteReport persists an architecture critique report into the run directory
func WriteReport(runDir string, report *types.ArchitectureCritiqueReport) error {
	return runstore.WriteJSON(filepath.Join(runDir, runstore.ArchitectureCritiqueFile), report)
}

// LoadReport reads a run's persisted architecture critique report
func LoadReport(runDir string) (*types.ArchitectureCritiqueReport, error) {
	var report types.ArchitectureCritiqueReport
	if err := runstore.ReadJSON(filepath.Join(runDir, runstore.ArchitectureCritiqueFile), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
