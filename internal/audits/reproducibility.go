package audits

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// Audit modes. Soft records failures without gating; hard blocks run
// finalization on any required-check failure.
const (
	ModeSoft = "soft"
	ModeHard = "hard"
)

// RunReproducibilityAudit evaluates every registered check against the run
// and assembles the audit report. The report passes when no required check
// fails; optional checks never affect the verdict.
func RunReproducibilityAudit(ctx *CheckContext, mode string, checks []Check) *types.ReproAuditReport {
	results := make([]types.ReproAuditCheck, 0, len(checks))
	requiredFailed := 0
	for _, check := range checks {
		result := check.Run(ctx)
		result.Description = check.Description
		results = append(results, result)
		if result.Required && !result.Passed {
			requiredFailed++
		}
	}

	passed := requiredFailed == 0
	summary := fmt.Sprintf("%d/%d check(s) passed", countPassed(results), len(results))
	if !passed {
		summary += fmt.Sprintf("; %d required check(s) failed", requiredFailed)
	}

	return &types.ReproAuditReport{
		RunID:       ctx.RunID,
		Mode:        mode,
		Checks:      results,
		Passed:      passed,
		Summary:     summary,
		GeneratedAt: runstore.Timestamp(),
		Environment: map[string]string{
			"go_version": runtime.Version(),
			"platform":   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		},
	}
}

func countPassed(checks []types.ReproAuditCheck) int {
	n := 0
	for _, check := range checks {
		if check.Passed {
			n++
		}
	}
	return n
}

// WriteReport persists a reproducibility audit report into the run directory
func WriteReport(runDir string, report *types.ReproAuditReport) error {
	return runstore.WriteJSON(filepath.Join(runDir, runstore.ReproAuditFile), report)
}

// LoadReport reads a run's persisted reproducibility audit report
func LoadReport(runDir string) (*types.ReproAuditReport, error) {
	var report types.ReproAuditReport
	if err := runstore.ReadJSON(filepath.Join(runDir, runstore.ReproAuditFile), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
