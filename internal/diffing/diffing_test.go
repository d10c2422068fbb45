package diffing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

type fixtureFigure struct {
	id     string
	score  float64
	passed bool
	svg    string
}

func writeRun(t *testing.T, store *runstore.Store, figures []fixtureFigure) string {
	t.Helper()
	runID := runstore.NewRunID()
	runDir := store.RunDir(runID)
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	meta := &types.RunMetadata{
		SchemaVersion:    types.RunMetadataSchemaVersion,
		RunID:            runID,
		PaperPath:        "papers/demo.md",
		CreatedAt:        runstore.Timestamp(),
		MaxIterations:    3,
		QualityThreshold: 0.75,
	}
	require.NoError(t, store.WriteMetadata(runID, meta))

	plan := make([]types.FigurePlan, 0, len(figures))
	for i, figure := range figures {
		plan = append(plan, types.FigurePlan{
			FigureID: figure.id,
			Title:    figure.id,
			Kind:     "architecture",
			Order:    i + 1,
		})
	}
	require.NoError(t, store.WritePlan(runID, plan))

	for _, figure := range figures {
		figureDir := runstore.FigureDir(runDir, figure.id)
		report := types.CritiqueReport{
			FigureID:         figure.id,
			Score:            figure.score,
			Threshold:        0.75,
			Passed:           figure.passed,
			FailedDimensions: []string{},
		}
		require.NoError(t, runstore.WriteJSON(
			filepath.Join(runstore.IterDir(figureDir, 1), runstore.CritiqueFile), report))

		finalDir := runstore.FinalDir(figureDir)
		require.NoError(t, os.MkdirAll(finalDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(finalDir, runstore.FinalFigureFile), []byte(figure.svg), 0o644))
		spans := []types.SourceSpan{{Section: "method", Start: 0, End: 5}}
		trace := types.Traceability{
			FigureID: figure.id,
			Elements: []types.TraceElement{{ElementID: "n1", SourceSpans: spans}},
		}
		require.NoError(t, runstore.WriteJSON(filepath.Join(finalDir, runstore.FinalTraceabilityFile), trace))
	}
	return runID
}

func TestDiffClassifiesFigureChanges(t *testing.T) {
	store := runstore.New(t.TempDir())
	run1 := writeRun(t, store, []fixtureFigure{
		{id: "fig_same", score: 0.8, passed: true, svg: "<svg>same</svg>"},
		{id: "fig_changed", score: 0.6, passed: false, svg: "<svg>v1</svg>"},
		{id: "fig_removed", score: 0.7, passed: true, svg: "<svg>gone</svg>"},
	})
	run2 := writeRun(t, store, []fixtureFigure{
		{id: "fig_same", score: 0.8, passed: true, svg: "<svg>same</svg>"},
		{id: "fig_changed", score: 0.9, passed: true, svg: "<svg>v2</svg>"},
		{id: "fig_added", score: 0.85, passed: true, svg: "<svg>new</svg>"},
	})

	report, err := Diff(store, run1, run2, "")
	require.NoError(t, err)

	byID := make(map[string]types.FigureChange)
	for _, change := range report.ChangedFigures {
		byID[change.FigureID] = change
	}
	require.Len(t, byID, 3)
	assert.Equal(t, "modified", byID["fig_changed"].Change)
	assert.Equal(t, "removed_in_run_2", byID["fig_removed"].Change)
	assert.Equal(t, "added_in_run_2", byID["fig_added"].Change)
	assert.NotContains(t, byID, "fig_same")

	modified := byID["fig_changed"]
	require.NotNil(t, modified.Run1)
	require.NotNil(t, modified.Run2)
	assert.NotEqual(t, modified.Run1.SVGHash, modified.Run2.SVGHash)

	assert.Equal(t, 3, report.Summary.ChangedFigureCount)
	assert.FileExists(t, filepath.Join(report.DiffDir, DiffFile))
}

func TestDiffMetricDeltas(t *testing.T) {
	store := runstore.New(t.TempDir())
	run1 := writeRun(t, store, []fixtureFigure{
		{id: "fig_a", score: 0.6, passed: false, svg: "<svg>a</svg>"},
	})
	run2 := writeRun(t, store, []fixtureFigure{
		{id: "fig_a", score: 0.9, passed: true, svg: "<svg>a2</svg>"},
	})

	report, err := Diff(store, run1, run2, "")
	require.NoError(t, err)

	accepted := report.Metrics["accepted_count"]
	require.NotNil(t, accepted.Delta)
	assert.Equal(t, 1.0, *accepted.Delta)

	score := report.Metrics["avg_final_score"]
	require.NotNil(t, score.Delta)
	assert.InDelta(t, 0.3, *score.Delta, 1e-9)
}

func TestDiffRunAgainstItself(t *testing.T) {
	store := runstore.New(t.TempDir())
	run := writeRun(t, store, []fixtureFigure{
		{id: "fig_a", score: 0.8, passed: true, svg: "<svg>a</svg>"},
		{id: "fig_b", score: 0.6, passed: false, svg: "<svg>b</svg>"},
	})

	report, err := Diff(store, run, run, "")
	require.NoError(t, err)

	assert.Empty(t, report.ChangedFigures)
	assert.Empty(t, report.ChangedArtifacts)
	assert.Equal(t, 0, report.Summary.ChangedFigureCount)
	assert.Equal(t, 0, report.Summary.ChangedArtifactCount)
	for name, metric := range report.Metrics {
		require.NotNil(t, metric.Delta, "metric %s has no delta", name)
		assert.Zero(t, *metric.Delta, "metric %s delta should be zero", name)
	}
}

func TestDiffExplicitOutputDir(t *testing.T) {
	store := runstore.New(t.TempDir())
	run1 := writeRun(t, store, []fixtureFigure{{id: "fig_a", score: 0.8, passed: true, svg: "<svg>a</svg>"}})
	run2 := writeRun(t, store, []fixtureFigure{{id: "fig_a", score: 0.9, passed: true, svg: "<svg>a2</svg>"}})

	outDir := filepath.Join(t.TempDir(), "reports", "my-diff")
	report, err := Diff(store, run1, run2, outDir)
	require.NoError(t, err)

	assert.Equal(t, outDir, report.DiffDir)
	assert.FileExists(t, filepath.Join(outDir, DiffFile))
	assert.NoDirExists(t, filepath.Join(store.Root, runstore.DiffsDir))
}

func TestDiffMissingRun(t *testing.T) {
	store := runstore.New(t.TempDir())
	run1 := writeRun(t, store, []fixtureFigure{{id: "fig_a", score: 0.8, passed: true, svg: "<svg/>"}})

	_, err := Diff(store, run1, "run-00000000-000000-abcdef", "")
	require.Error(t, err)
	_, ok := err.(*runstore.NotFoundError)
	assert.True(t, ok, "expected *NotFoundError, got %T", err)
}

func TestRegressPassingInvariants(t *testing.T) {
	store := runstore.New(t.TempDir())

	runs := map[string][]fixtureFigure{
		"v1.md": {{id: "fig_a", score: 0.7, passed: true, svg: "<svg>v1</svg>"}},
		"v2.md": {{id: "fig_a", score: 0.8, passed: true, svg: "<svg>v2</svg>"}},
	}
	generate := func(_ context.Context, paperPath string) (string, error) {
		return writeRun(t, store, runs[filepath.Base(paperPath)]), nil
	}

	report, err := Regress(context.Background(), store, "papers/v1.md", "papers/v2.md", generate)
	require.NoError(t, err)

	assert.True(t, Passed(report))
	require.Len(t, report.Invariants, 3)
	assert.FileExists(t, filepath.Join(report.ReportDir, RegressionFile))
	assert.FileExists(t, report.DiffReport)
}

func TestRegressFailsOnScoreDrop(t *testing.T) {
	store := runstore.New(t.TempDir())

	runs := map[string][]fixtureFigure{
		"v1.md": {
			{id: "fig_a", score: 0.9, passed: true, svg: "<svg>v1</svg>"},
			{id: "fig_b", score: 0.9, passed: true, svg: "<svg>v1b</svg>"},
		},
		"v2.md": {
			{id: "fig_a", score: 0.5, passed: false, svg: "<svg>v2</svg>"},
			{id: "fig_b", score: 0.5, passed: false, svg: "<svg>v2b</svg>"},
		},
	}
	generate := func(_ context.Context, paperPath string) (string, error) {
		return writeRun(t, store, runs[filepath.Base(paperPath)]), nil
	}

	report, err := Regress(context.Background(), store, "papers/v1.md", "papers/v2.md", generate)
	require.NoError(t, err)

	assert.False(t, Passed(report))
	byID := make(map[string]types.RegressionInvariant)
	for _, invariant := range report.Invariants {
		byID[invariant.ID] = invariant
	}
	assert.False(t, byID["accepted_not_decrease"].Passed)
	assert.False(t, byID["avg_score_not_drop"].Passed)
	assert.True(t, byID["traceability_not_drop"].Passed)
}

func TestScoreDropToleranceBoundary(t *testing.T) {
	metricsFor := func(before, after float64) map[string]types.MetricDelta {
		return map[string]types.MetricDelta{
			"avg_final_score": delta(&before, &after),
		}
	}
	scoreInvariant := func(metrics map[string]types.MetricDelta) types.RegressionInvariant {
		for _, invariant := range checkInvariants(metrics) {
			if invariant.ID == "avg_score_not_drop" {
				return invariant
			}
		}
		t.Fatal("avg_score_not_drop invariant missing")
		return types.RegressionInvariant{}
	}

	// A 0.04 drop stays within tolerance; a 0.10 drop does not.
	assert.True(t, scoreInvariant(metricsFor(0.80, 0.76)).Passed)
	assert.False(t, scoreInvariant(metricsFor(0.80, 0.70)).Passed)

	// A missing delta never fails the invariant.
	assert.True(t, scoreInvariant(map[string]types.MetricDelta{}).Passed)
}
