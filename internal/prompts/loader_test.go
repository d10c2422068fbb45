package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(PipelineFile, KeyPlanFigure)
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "planning publication figures")
}

func TestGet_UnknownKey(t *testing.T) {
	ClearCache()

	_, err := Get(PipelineFile, "no-such-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", KeyPlanFigure)
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	result := Format("Score {{.FigureID}} against {{.Contract}}", map[string]string{
		"FigureID": "fig_a",
		"Contract": "contract body",
	})
	assert.Equal(t, "Score fig_a against contract body", result)

	// Unknown placeholders are left intact.
	assert.Equal(t, "{{.Missing}}", Format("{{.Missing}}", nil))
}

func TestAllPipelineKeysPresent(t *testing.T) {
	ClearCache()

	for _, key := range []string{KeyPlanFigure, KeyCritiqueFigure, KeyCritiqueArch, KeyReproAudit} {
		prompt, err := Get(PipelineFile, key)
		require.NoError(t, err, "key %s", key)
		assert.NotEmpty(t, prompt)
	}
}

func TestWriteProvenance(t *testing.T) {
	runDir := t.TempDir()

	require.NoError(t, WriteProvenance(runDir, "plan_figure", "rendered prompt"))

	data, err := os.ReadFile(filepath.Join(runDir, "prompts", "plan_figure.txt"))
	require.NoError(t, err)
	assert.Equal(t, "rendered prompt", string(data))
}
