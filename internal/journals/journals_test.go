package journals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

const strictProfile = `{
  "id": "neurips",
  "name": "NeurIPS Submission",
  "version": "1",
  "quality_threshold": 0.85,
  "dimension_threshold": 0.7,
  "max_iterations": 5,
  "required_kinds": ["architecture", "dataflow"],
  "arch_critique_block_severity": "major",
  "repro_audit_mode": "hard",
  "template_pack": "expanded_v1"
}`

func writeProfile(t *testing.T, dir, profileID, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, profileID+".json"), []byte(content), 0o644))
}

func TestLoadValidProfile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "neurips", strictProfile)

	profile, err := Load("neurips", dir)
	require.NoError(t, err)
	assert.Equal(t, "neurips", profile.ProfileID)
	assert.Equal(t, 0.85, profile.QualityThreshold)
	assert.Equal(t, []string{"architecture", "dataflow"}, profile.RequiredKinds)
}

func TestLoadMissingProfile(t *testing.T) {
	_, err := Load("nope", t.TempDir())
	require.Error(t, err)

	nfe, ok := err.(*runstore.NotFoundError)
	require.True(t, ok, "expected *NotFoundError, got %T", err)
	assert.Equal(t, "journal profile", nfe.Kind)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "broken", `{"name": "No ID"}`)

	_, err := Load("broken", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoadRejectsOutOfRangeThresholds(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "loose", `{
  "id": "loose",
  "name": "Out of range",
  "quality_threshold": 1.5,
  "dimension_threshold": 0.5,
  "max_iterations": 3
}`)

	_, err := Load("loose", dir)
	require.Error(t, err)
}

func TestEnforceRequirements(t *testing.T) {
	profile := &types.JournalProfile{
		ProfileID:     "neurips",
		RequiredKinds: []string{"architecture", "dataflow"},
	}
	plan := []types.FigurePlan{
		{FigureID: "fig_a", Kind: "architecture"},
	}

	err := EnforceRequirements(profile, plan)
	require.Error(t, err)

	reqErr, ok := err.(*RequirementError)
	require.True(t, ok, "expected *RequirementError, got %T", err)
	assert.Equal(t, []string{"dataflow"}, reqErr.MissingKinds)

	plan = append(plan, types.FigurePlan{FigureID: "fig_b", Kind: "dataflow"})
	assert.NoError(t, EnforceRequirements(profile, plan))
	assert.NoError(t, EnforceRequirements(nil, nil))
}

func TestApplyOverlaysDeclaredSettings(t *testing.T) {
	profile := &types.JournalProfile{
		ProfileID:                 "neurips",
		QualityThreshold:          0.85,
		MaxIterations:             5,
		ArchCritiqueBlockSeverity: types.SeverityMajor,
		ReproAuditMode:            "hard",
	}
	meta := &types.RunMetadata{
		QualityThreshold:          0.75,
		DimensionThreshold:        0.55,
		MaxIterations:             3,
		ArchCritiqueBlockSeverity: types.SeverityCritical,
		ReproAuditMode:            "soft",
		TemplatePack:              "expanded_v1",
	}

	Apply(profile, meta)

	assert.Equal(t, "neurips", meta.JournalProfile)
	assert.Equal(t, 0.85, meta.QualityThreshold)
	assert.Equal(t, 0.55, meta.DimensionThreshold)
	assert.Equal(t, 5, meta.MaxIterations)
	assert.Equal(t, types.SeverityMajor, meta.ArchCritiqueBlockSeverity)
	assert.Equal(t, "hard", meta.ReproAuditMode)
	assert.Equal(t, "expanded_v1", meta.TemplatePack)
}
