package exporters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwafemidiakhoa/paperfig/internal/contracts"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

func exportFixture(t *testing.T) (*runstore.Store, string) {
	t.Helper()
	store := runstore.New(t.TempDir())
	runID := runstore.NewRunID()
	runDir := store.RunDir(runID)
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	plan := []types.FigurePlan{
		{FigureID: "fig_done", Title: "Done", Kind: "architecture", Order: 1,
			AbstractionLevel: "medium", Description: "d", Justification: "j",
			SourceSpans: []types.SourceSpan{{Section: "method", Start: 0, End: 5}}},
		{FigureID: "fig_missing", Title: "Missing", Kind: "dataflow", Order: 2},
	}
	require.NoError(t, store.WritePlan(runID, plan))

	finalDir := runstore.FinalDir(runstore.FigureDir(runDir, "fig_done"))
	require.NoError(t, os.MkdirAll(finalDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(finalDir, runstore.FinalFigureFile), []byte("<svg/>"), 0o644))
	require.NoError(t, contracts.Write(finalDir, contracts.Build(runID, plan[0], nil)))

	captions := "fig_done: Done. The final figure.\n"
	require.NoError(t, os.WriteFile(filepath.Join(runDir, runstore.CaptionsFile), []byte(captions), 0o644))

	return store, runID
}

func TestExportCopiesFinalFigures(t *testing.T) {
	store, runID := exportFixture(t)
	destDir := filepath.Join(t.TempDir(), "export")

	report, err := Export(context.Background(), store, runID, destDir, Options{})
	require.NoError(t, err)

	require.Len(t, report.Figures, 1)
	figure := report.Figures[0]
	assert.Equal(t, "fig_done", figure.FigureID)
	assert.FileExists(t, figure.SVGPath)
	assert.FileExists(t, figure.LaTeXPath)
	assert.Empty(t, figure.ContractErrors)
	assert.Equal(t, "Done. The final figure.", figure.Caption)

	assert.Equal(t, []string{"fig_missing"}, report.Skipped)
	assert.FileExists(t, filepath.Join(destDir, ReportFile))

	latex, err := os.ReadFile(figure.LaTeXPath)
	require.NoError(t, err)
	assert.Contains(t, string(latex), "\\caption{Done. The final figure.}")
	assert.Contains(t, string(latex), "\\label{fig:fig_done}")
}

func TestExportRecordsContractErrors(t *testing.T) {
	store, runID := exportFixture(t)
	runDir := store.RunDir(runID)

	// Corrupt the final contract so re-validation fails.
	finalDir := runstore.FinalDir(runstore.FigureDir(runDir, "fig_done"))
	broken := types.FigureContract{FigureID: "fig_done"}
	require.NoError(t, runstore.WriteJSON(filepath.Join(finalDir, runstore.ContractFile), broken))

	report, err := Export(context.Background(), store, runID, filepath.Join(t.TempDir(), "export"), Options{})
	require.NoError(t, err)

	require.Len(t, report.Figures, 1)
	assert.NotEmpty(t, report.Figures[0].ContractErrors)
}

func TestExportMissingRun(t *testing.T) {
	store := runstore.New(t.TempDir())

	_, err := Export(context.Background(), store, "run-00000000-000000-abcdef", t.TempDir(), Options{})
	require.Error(t, err)
}

func TestExportPNGConverterFailureIsRecorded(t *testing.T) {
	store, runID := exportFixture(t)

	report, err := Export(context.Background(), store, runID, filepath.Join(t.TempDir(), "export"), Options{
		PNG:       true,
		Converter: "definitely-not-a-real-converter-xyz",
	})
	require.NoError(t, err)

	require.Len(t, report.Figures, 1)
	assert.Equal(t, "failed", report.Figures[0].PNGStatus)
	assert.Empty(t, report.Figures[0].PNGPath)
}
