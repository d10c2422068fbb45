package audits

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

func completeRunDir(t *testing.T) string {
	t.Helper()
	runDir := t.TempDir()
	for _, name := range []string{
		runstore.MetadataFile,
		runstore.PlanFile,
		runstore.SectionsFile,
		runstore.TraceabilityFile,
		runstore.InspectFile,
		runstore.DocsDriftFile,
		runstore.ArchitectureCritiqueFile,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(runDir, name), []byte("{}"), 0o644))
	}
	promptsDir := filepath.Join(runDir, runstore.PromptsDir)
	require.NoError(t, os.MkdirAll(promptsDir, 0o755))
	for _, name := range []string{"plan_figure.txt", "critique_figure.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(promptsDir, name), []byte("prompt"), 0o644))
	}
	return runDir
}

func completeMetadata() *types.RunMetadata {
	return &types.RunMetadata{
		SchemaVersion: types.RunMetadataSchemaVersion,
		RunID:         "run-1",
		PaperPath:     "papers/demo.md",
		CreatedAt:     runstore.Timestamp(),
		TemplatePack:  "expanded_v1",
		ConfigHash:    "abc123",
	}
}

func findCheck(t *testing.T, report *types.ReproAuditReport, checkID string) types.ReproAuditCheck {
	t.Helper()
	for _, check := range report.Checks {
		if check.CheckID == checkID {
			return check
		}
	}
	t.Fatalf("check %s not in report", checkID)
	return types.ReproAuditCheck{}
}

func TestAuditCompleteRunPasses(t *testing.T) {
	ctx := &CheckContext{RunID: "run-1", RunDir: completeRunDir(t), Metadata: completeMetadata()}

	report := RunReproducibilityAudit(ctx, ModeSoft, Checks())

	assert.True(t, report.Passed)
	assert.Len(t, report.Checks, len(Checks()))
	assert.Equal(t, ModeSoft, report.Mode)
	assert.Contains(t, report.Environment, "go_version")
	assert.Contains(t, report.Environment, "platform")
}

func TestAuditMissingRequiredArtifactFails(t *testing.T) {
	runDir := completeRunDir(t)
	require.NoError(t, os.Remove(filepath.Join(runDir, runstore.PlanFile)))
	ctx := &CheckContext{RunID: "run-1", RunDir: runDir, Metadata: completeMetadata()}

	report := RunReproducibilityAudit(ctx, ModeHard, Checks())

	assert.False(t, report.Passed)
	assert.False(t, findCheck(t, report, "plan_json_present").Passed)
}

func TestAuditOptionalSeedCheckNeverGates(t *testing.T) {
	ctx := &CheckContext{RunID: "run-1", RunDir: completeRunDir(t), Metadata: completeMetadata()}

	report := RunReproducibilityAudit(ctx, ModeSoft, Checks())

	seedCheck := findCheck(t, report, "deterministic_seed_declared")
	assert.False(t, seedCheck.Passed)
	assert.False(t, seedCheck.Required)
	assert.True(t, report.Passed)
}

func TestAuditSeedDeclared(t *testing.T) {
	meta := completeMetadata()
	seed := int64(42)
	meta.Seed = &seed
	ctx := &CheckContext{RunID: "run-1", RunDir: completeRunDir(t), Metadata: meta}

	report := RunReproducibilityAudit(ctx, ModeSoft, Checks())

	seedCheck := findCheck(t, report, "deterministic_seed_declared")
	assert.True(t, seedCheck.Passed)
	assert.Equal(t, "42", seedCheck.Details["seed"])
}

func TestConfigHashMatchSkippedWithoutExpectedHash(t *testing.T) {
	ctx := &CheckContext{RunID: "run-1", RunDir: completeRunDir(t), Metadata: completeMetadata()}

	report := RunReproducibilityAudit(ctx, ModeSoft, Checks())

	hashCheck := findCheck(t, report, "config_hash_match")
	assert.True(t, hashCheck.Passed)
	assert.Equal(t, "skipped", hashCheck.Details["status"])
}

func TestConfigHashMismatchFailsAudit(t *testing.T) {
	ctx := &CheckContext{
		RunID:              "run-1",
		RunDir:             completeRunDir(t),
		Metadata:           completeMetadata(),
		ExpectedConfigHash: "other",
	}

	report := RunReproducibilityAudit(ctx, ModeSoft, Checks())

	hashCheck := findCheck(t, report, "config_hash_match")
	assert.False(t, hashCheck.Passed)
	assert.False(t, report.Passed)
}

func TestProvenanceMetadataReportsEmptyFields(t *testing.T) {
	meta := completeMetadata()
	meta.TemplatePack = ""
	ctx := &CheckContext{RunID: "run-1", RunDir: completeRunDir(t), Metadata: meta}

	report := RunReproducibilityAudit(ctx, ModeSoft, Checks())

	provCheck := findCheck(t, report, "provenance_metadata")
	assert.False(t, provCheck.Passed)
	assert.Equal(t, "empty", provCheck.Details["template_pack"])
}

func TestWriteAndLoadReport(t *testing.T) {
	runDir := t.TempDir()
	ctx := &CheckContext{RunID: "run-1", RunDir: runDir, Metadata: completeMetadata()}
	report := RunReproducibilityAudit(ctx, ModeHard, Checks())

	require.NoError(t, WriteReport(runDir, report))

	loaded, err := LoadReport(runDir)
	require.NoError(t, err)
	assert.Equal(t, report, loaded)
}
