package diffing

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oluwafemidiakhoa/paperfig/internal/inspect"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// RegressionFile is the report name written into each regression directory
const RegressionFile = "regression_report.json"

// RegressionsDir is the subdirectory of the store root holding regression reports
const RegressionsDir = "regressions"

// scoreDropTolerance is how far averaged metrics may fall between versions
// before the invariant fails.
const scoreDropTolerance = 0.05

// GenerateFunc runs the pipeline over one paper and returns the run id
type GenerateFunc func(ctx context.Context, paperPath string) (string, error)

// Regress generates runs for two versions of a paper, diffs them and checks
// the regression invariants. The two generations are independent (each owns
// its run directory) so they execute concurrently.
func Regress(ctx context.Context, store *runstore.Store, paperV1, paperV2 string, generate GenerateFunc) (*types.RegressionReport, error) {
	var runID1, runID2 string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		id, err := generate(groupCtx, paperV1)
		if err != nil {
			return fmt.Errorf("version 1 run failed: %w", err)
		}
		runID1 = id
		return nil
	})
	group.Go(func() error {
		id, err := generate(groupCtx, paperV2)
		if err != nil {
			return fmt.Errorf("version 2 run failed: %w", err)
		}
		runID2 = id
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	diff, err := Diff(store, runID1, runID2, "")
	if err != nil {
		return nil, err
	}

	left, err := inspect.LoadOrBuild(store, runID1)
	if err != nil {
		return nil, err
	}
	right, err := inspect.LoadOrBuild(store, runID2)
	if err != nil {
		return nil, err
	}

	metrics := CompareMetrics(left, right)
	invariants := checkInvariants(metrics)

	passed := 0
	for _, invariant := range invariants {
		if invariant.Passed {
			passed++
		}
	}

	reportID := fmt.Sprintf("regress-%s-%s", stamp(), uuid.New().String()[:6])
	reportDir := filepath.Join(store.Root, RegressionsDir, reportID)
	report := &types.RegressionReport{
		ReportID:    reportID,
		PaperV1:     paperV1,
		PaperV2:     paperV2,
		RunIDV1:     runID1,
		RunIDV2:     runID2,
		GeneratedAt: runstore.Timestamp(),
		Metrics:     metrics,
		Invariants:  invariants,
		Summary:     fmt.Sprintf("%d/%d invariant(s) passed", passed, len(invariants)),
		DiffReport:  filepath.Join(diff.DiffDir, DiffFile),
		ReportDir:   reportDir,
	}
	if err := runstore.WriteJSON(filepath.Join(reportDir, RegressionFile), report); err != nil {
		return nil, err
	}
	return report, nil
}

// Passed reports whether every invariant of the report held
func Passed(report *types.RegressionReport) bool {
	for _, invariant := range report.Invariants {
		if !invariant.Passed {
			return false
		}
	}
	return true
}

// checkInvariants evaluates the named regression invariants over the metric
// deltas. A missing delta (one side non-numeric) never fails an invariant.
func checkInvariants(metrics map[string]types.MetricDelta) []types.RegressionInvariant {
	accepted := metrics["accepted_count"]
	score := metrics["avg_final_score"]
	coverage := metrics["avg_traceability_coverage"]

	return []types.RegressionInvariant{
		{
			ID:          "accepted_not_decrease",
			Description: "The number of accepted figures does not decrease",
			Passed:      accepted.Delta == nil || *accepted.Delta >= 0,
			Details:     accepted,
		},
		{
			ID:          "avg_score_not_drop",
			Description: fmt.Sprintf("Average final score does not drop by more than %.2f", scoreDropTolerance),
			Passed:      score.Delta == nil || *score.Delta >= -scoreDropTolerance,
			Details:     score,
		},
		{
			ID:          "traceability_not_drop",
			Description: fmt.Sprintf("Average traceability coverage does not drop by more than %.2f", scoreDropTolerance),
			Passed:      coverage.Delta == nil || *coverage.Delta >= -scoreDropTolerance,
			Details:     coverage,
		},
	}
}
