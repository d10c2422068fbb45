package inspect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// fixtureRun writes a two-figure run: fig_pass accepted on iteration 2,
// fig_fail exhausted after 3 iterations with fallback-promoted finals.
func fixtureRun(t *testing.T) (*runstore.Store, string) {
	t.Helper()
	store := runstore.New(t.TempDir())
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

	plan := []types.FigurePlan{
		{FigureID: "fig_pass", Title: "Passing", Kind: "architecture"},
		{FigureID: "fig_fail", Title: "Failing", Kind: "dataflow"},
	}
	require.NoError(t, store.WritePlan(runID, plan))

	writeIter := func(figureID string, iter int, score float64, passed bool) {
		report := types.CritiqueReport{
			FigureID:         figureID,
			Score:            score,
			Threshold:        0.75,
			Passed:           passed,
			FailedDimensions: []string{},
		}
		if !passed {
			report.FailedDimensions = []string{"clarity"}
		}
		figureDir := runstore.FigureDir(runDir, figureID)
		path := filepath.Join(runstore.IterDir(figureDir, iter), runstore.CritiqueFile)
		require.NoError(t, runstore.WriteJSON(path, report))
	}
	writeFinal := func(figureID string, traced bool) {
		figureDir := runstore.FigureDir(runDir, figureID)
		finalDir := runstore.FinalDir(figureDir)
		require.NoError(t, os.MkdirAll(finalDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(finalDir, runstore.FinalFigureFile), []byte("<svg/>"), 0o644))
		elements := []types.TraceElement{{ElementID: "n1"}, {ElementID: "n2"}}
		if traced {
			spans := []types.SourceSpan{{Section: "method", Start: 0, End: 5}}
			elements[0].SourceSpans = spans
			elements[1].SourceSpans = spans
		}
		trace := types.Traceability{FigureID: figureID, Elements: elements}
		require.NoError(t, runstore.WriteJSON(filepath.Join(finalDir, runstore.FinalTraceabilityFile), trace))
	}

	writeIter("fig_pass", 1, 0.6, false)
	writeIter("fig_pass", 2, 0.85, true)
	writeFinal("fig_pass", true)

	writeIter("fig_fail", 1, 0.5, false)
	writeIter("fig_fail", 2, 0.55, false)
	writeIter("fig_fail", 3, 0.6, false)
	writeFinal("fig_fail", false)

	return store, runID
}

func TestBuildSnapshot(t *testing.T) {
	store, runID := fixtureRun(t)

	inspection, err := BuildSnapshot(store, runID)
	require.NoError(t, err)

	assert.Equal(t, 2, inspection.PlanCount)
	require.Len(t, inspection.Figures, 2)

	pass := inspection.Figures[0]
	assert.Equal(t, "fig_pass", pass.FigureID)
	assert.True(t, pass.Accepted)
	assert.Equal(t, 2, pass.IterationsAttempted)
	assert.False(t, pass.MaxIterationsHit)
	require.NotNil(t, pass.FinalScore)
	assert.Equal(t, 0.85, *pass.FinalScore)
	require.NotNil(t, pass.Traceability.Coverage)
	assert.Equal(t, 1.0, *pass.Traceability.Coverage)

	fail := inspection.Figures[1]
	assert.False(t, fail.Accepted)
	assert.True(t, fail.MaxIterationsHit)
	require.NotNil(t, fail.FinalScore)
	assert.Equal(t, 0.6, *fail.FinalScore)
	assert.Equal(t, []string{"clarity"}, fail.FailedDimensions)

	agg := inspection.Aggregate
	assert.Equal(t, 2, agg.TotalFigures)
	assert.Equal(t, 1, agg.AcceptedCount)
	assert.Equal(t, 1, agg.FailedCount)
	assert.Equal(t, []string{"fig_fail"}, agg.MaxIterationsHit)
	require.NotNil(t, agg.AvgFinalScore)
	assert.InDelta(t, 0.725, *agg.AvgFinalScore, 1e-9)
}

func TestBuildSnapshotIsIdempotent(t *testing.T) {
	store, runID := fixtureRun(t)

	first, err := BuildSnapshot(store, runID)
	require.NoError(t, err)
	second, err := BuildSnapshot(store, runID)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestBuildSnapshotMissingRun(t *testing.T) {
	store := runstore.New(t.TempDir())

	_, err := BuildSnapshot(store, "run-00000000-000000-abcdef")
	require.Error(t, err)
	_, ok := err.(*runstore.NotFoundError)
	assert.True(t, ok, "expected *NotFoundError, got %T", err)
}

func TestLoadOrBuildPersistsSnapshot(t *testing.T) {
	store, runID := fixtureRun(t)
	runDir := store.RunDir(runID)

	built, err := LoadOrBuild(store, runID)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(runDir, runstore.InspectFile))

	// A second call reads the persisted file instead of rebuilding.
	loaded, err := LoadOrBuild(store, runID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(built, loaded))
}

func TestApplyFilters(t *testing.T) {
	store, runID := fixtureRun(t)
	inspection, err := BuildSnapshot(store, runID)
	require.NoError(t, err)

	failures := Apply(inspection, Filter{FailuresOnly: true})
	require.Len(t, failures.Figures, 1)
	assert.Equal(t, "fig_fail", failures.Figures[0].FigureID)
	assert.Equal(t, 1, failures.Aggregate.TotalFigures)

	byID := Apply(inspection, Filter{FigureID: "fig_pass"})
	require.Len(t, byID.Figures, 1)
	assert.Equal(t, "fig_pass", byID.Figures[0].FigureID)

	minScore := 0.8
	highScorers := Apply(inspection, Filter{MinScore: &minScore})
	require.Len(t, highScorers.Figures, 1)
	assert.Equal(t, "fig_pass", highScorers.Figures[0].FigureID)

	byDimension := Apply(inspection, Filter{FailedDimension: "clarity"})
	require.Len(t, byDimension.Figures, 1)
	assert.Equal(t, "fig_fail", byDimension.Figures[0].FigureID)

	// Zero filter passes the inspection through untouched.
	assert.Same(t, inspection, Apply(inspection, Filter{}))
}
