// Package diffing compares completed runs artifact by artifact and checks
// cross-version regression invariants.
package diffing

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oluwafemidiakhoa/paperfig/internal/inspect"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// DiffFile is the report name written into each diff directory
const DiffFile = "diff.json"

// comparedArtifacts are the run-level files diffed byte for byte.
var comparedArtifacts = []string{
	runstore.PlanFile,
	runstore.SectionsFile,
	runstore.CaptionsFile,
	runstore.TraceabilityFile,
	runstore.StyleRefsFile,
}

// Diff compares two completed runs and persists the report to
// <outDir>/diff.json. An empty outDir defaults to the timestamped
// <root>/diffs/diff-<run1>-vs-<run2>-<stamp> directory.
func Diff(store *runstore.Store, runID1, runID2, outDir string) (*types.DiffReport, error) {
	dir1, err := store.Require(runID1)
	if err != nil {
		return nil, err
	}
	dir2, err := store.Require(runID2)
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

	report := &types.DiffReport{
		RunID1:           runID1,
		RunID2:           runID2,
		GeneratedAt:      runstore.Timestamp(),
		Metrics:          CompareMetrics(left, right),
		ChangedFigures:   []types.FigureChange{},
		ChangedArtifacts: []string{},
	}

	changes, err := compareFigures(dir1, dir2, left, right)
	if err != nil {
		return nil, err
	}
	report.ChangedFigures = changes

	for _, name := range comparedArtifacts {
		same, err := filesEqual(filepath.Join(dir1, name), filepath.Join(dir2, name))
		if err != nil {
			return nil, err
		}
		if !same {
			report.ChangedArtifacts = append(report.ChangedArtifacts, name)
		}
	}

	report.Summary = types.DiffSummary{
		ChangedFigureCount:   len(report.ChangedFigures),
		ChangedArtifactCount: len(report.ChangedArtifacts),
	}

	diffDir := outDir
	if diffDir == "" {
		diffDir = filepath.Join(store.Root, runstore.DiffsDir,
			fmt.Sprintf("diff-%s-vs-%s-%s", runID1, runID2, stamp()))
	}
	report.DiffDir = diffDir
	if err := runstore.WriteJSON(filepath.Join(diffDir, DiffFile), report); err != nil {
		return nil, err
	}
	return report, nil
}

// CompareMetrics derives metric deltas from two inspections. Deltas read
// run 2 minus run 1; counts always compare, averages only when both runs
// produced one.
func CompareMetrics(left, right *types.RunInspection) map[string]types.MetricDelta {
	count := func(v int) *float64 {
		f := float64(v)
		return &f
	}
	return map[string]types.MetricDelta{
		"total_figures":             delta(count(left.Aggregate.TotalFigures), count(right.Aggregate.TotalFigures)),
		"accepted_count":            delta(count(left.Aggregate.AcceptedCount), count(right.Aggregate.AcceptedCount)),
		"failed_count":              delta(count(left.Aggregate.FailedCount), count(right.Aggregate.FailedCount)),
		"avg_final_score":           delta(left.Aggregate.AvgFinalScore, right.Aggregate.AvgFinalScore),
		"avg_traceability_coverage": delta(left.Aggregate.AvgTraceabilityCoverage, right.Aggregate.AvgTraceabilityCoverage),
	}
}

func delta(run1, run2 *float64) types.MetricDelta {
	d := types.MetricDelta{Run1: run1, Run2: run2}
	if run1 != nil && run2 != nil {
		v := *run2 - *run1
		d.Delta = &v
	}
	return d
}

func compareFigures(dir1, dir2 string, left, right *types.RunInspection) ([]types.FigureChange, error) {
	leftFigures := byFigureID(left)
	rightFigures := byFigureID(right)

	ids := make([]string, 0, len(leftFigures)+len(rightFigures))
	for id := range leftFigures {
		ids = append(ids, id)
	}
	for id := range rightFigures {
		if _, ok := leftFigures[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	changes := []types.FigureChange{}
	for _, id := range ids {
		leftFig, inLeft := leftFigures[id]
		rightFig, inRight := rightFigures[id]

		switch {
		case !inRight:
			side, err := diffSide(dir1, leftFig)
			if err != nil {
				return nil, err
			}
			changes = append(changes, types.FigureChange{FigureID: id, Change: "removed_in_run_2", Run1: side})
		case !inLeft:
			side, err := diffSide(dir2, rightFig)
			if err != nil {
				return nil, err
			}
			changes = append(changes, types.FigureChange{FigureID: id, Change: "added_in_run_2", Run2: side})
		default:
			side1, err := diffSide(dir1, leftFig)
			if err != nil {
				return nil, err
			}
			side2, err := diffSide(dir2, rightFig)
			if err != nil {
				return nil, err
			}
			if modified(side1, side2) {
				changes = append(changes, types.FigureChange{FigureID: id, Change: "modified", Run1: side1, Run2: side2})
			}
		}
	}
	return changes, nil
}

func byFigureID(inspection *types.RunInspection) map[string]types.FigureInspection {
	out := make(map[string]types.FigureInspection, len(inspection.Figures))
	for _, figure := range inspection.Figures {
		out[figure.FigureID] = figure
	}
	return out
}

func diffSide(runDir string, figure types.FigureInspection) (*types.FigureDiffSide, error) {
	svgPath := filepath.Join(runstore.FinalDir(runstore.FigureDir(runDir, figure.FigureID)), runstore.FinalFigureFile)
	hash, err := runstore.FileHash(svgPath)
	if err != nil {
		return nil, err
	}
	return &types.FigureDiffSide{
		FinalScore:  figure.FinalScore,
		FinalPassed: figure.FinalPassed,
		SVGHash:     hash,
	}, nil
}

func modified(side1, side2 *types.FigureDiffSide) bool {
	if side1.SVGHash != side2.SVGHash {
		return true
	}
	if side1.FinalPassed != side2.FinalPassed {
		return true
	}
	switch {
	case side1.FinalScore == nil && side2.FinalScore == nil:
		return false
	case side1.FinalScore == nil || side2.FinalScore == nil:
		return true
	default:
		return *side1.FinalScore != *side2.FinalScore
	}
}

func stamp() string {
	return time.Now().UTC().Format("20060102-150405")
}

func filesEqual(path1, path2 string) (bool, error) {
	data1, err1 := os.ReadFile(path1)
	data2, err2 := os.ReadFile(path2)
	if os.IsNotExist(err1) && os.IsNotExist(err2) {
		return true, nil
	}
	if os.IsNotExist(err1) || os.IsNotExist(err2) {
		return false, nil
	}
	if err1 != nil {
		return false, fmt.Errorf("failed to read %s: %w", path1, err1)
	}
	if err2 != nil {
		return false, fmt.Errorf("failed to read %s: %w", path2, err2)
	}
	return bytes.Equal(data1, data2), nil
}
