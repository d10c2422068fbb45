package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDriftMissingManifestIsInSync(t *testing.T) {
	report, err := CheckDrift(filepath.Join(t.TempDir(), "manifest.yaml"))
	require.NoError(t, err)

	assert.True(t, report.InSync())
	assert.NotEmpty(t, report.Notes)
}

func TestRegenerateThenCheckIsInSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "manifest.yaml")

	require.NoError(t, Regenerate(path))

	report, err := CheckDrift(path)
	require.NoError(t, err)
	assert.True(t, report.InSync())
	assert.Empty(t, report.MissingCommands)
	assert.Empty(t, report.ExtraCommands)
	assert.Empty(t, report.ChangedCommands)
}

func TestCheckDriftDetectsMissingAndChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	manifest := `commands:
  - name: generate
    summary: outdated summary
  - name: retired-command
    summary: no longer exists
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	report, err := CheckDrift(path)
	require.NoError(t, err)

	assert.Equal(t, StatusDrifted, report.Status)
	assert.Contains(t, report.ChangedCommands, "generate")
	assert.Contains(t, report.ExtraCommands, "retired-command")
	assert.Contains(t, report.MissingCommands, "inspect")
}

func TestCheckDriftRejectsBrokenManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commands: {not: [a, list"), 0o644))

	_, err := CheckDrift(path)
	require.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	runDir := t.TempDir()
	report, err := CheckDrift(filepath.Join(runDir, "nope.yaml"))
	require.NoError(t, err)

	require.NoError(t, WriteReport(runDir, report))
	assert.FileExists(t, filepath.Join(runDir, "docs_drift_report.json"))
}
