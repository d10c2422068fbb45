package providers

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwafemidiakhoa/paperfig/internal/paper"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

func sampleContract(plan types.FigurePlan) types.FigureContract {
	sections := make([]string, 0, len(plan.SourceSpans))
	for _, span := range plan.SourceSpans {
		sections = append(sections, span.Section)
	}
	return types.FigureContract{
		ContractID:       "run-1:" + plan.FigureID,
		RunID:            "run-1",
		FigureID:         plan.FigureID,
		RequiredSections: sections,
		SourceSpans:      plan.SourceSpans,
	}
}

const localTestPaper = `# Abstract
We present a pipeline.

# Methods
The pipeline has three stages.

# Results
It works.
`

func TestLocalPlanFiguresIsDeterministic(t *testing.T) {
	content := paper.Parse(localTestPaper)
	provider := NewLocalProvider(nil)

	first, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: content})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: content})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestLocalPlanFiguresRespectsMaxFigures(t *testing.T) {
	content := paper.Parse(localTestPaper)
	provider := NewLocalProvider(nil)

	plans, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: content, MaxFigures: 1})
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	assert.Equal(t, "architecture", plans[0].Kind)
}

func TestLocalPlanFiguresEmptyPaper(t *testing.T) {
	provider := NewLocalProvider(nil)

	_, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: paper.Parse("")})
	require.Error(t, err)
}

func TestLocalGenerateFigure(t *testing.T) {
	content := paper.Parse(localTestPaper)
	provider := NewLocalProvider(nil)

	plans, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: content})
	require.NoError(t, err)
	plan := plans[0]

	figure, err := provider.GenerateFigure(context.Background(), GenerateRequest{
		Plan:      plan,
		Contract:  sampleContract(plan),
		Paper:     content,
		Iteration: 1,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(figure.SVG, "<svg"))
	assert.NotEmpty(t, figure.Elements)
	assert.Equal(t, plan.FigureID, figure.Traceability.FigureID)
	assert.Len(t, figure.Traceability.Elements, len(figure.Elements))
	for _, element := range figure.Traceability.Elements {
		assert.NotEmpty(t, element.SourceSpans)
	}
}

func TestLocalGenerateFigureFollowsTemplateCaptionStyle(t *testing.T) {
	content := paper.Parse(localTestPaper)
	provider := NewLocalProvider(nil)

	plans, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: content})
	require.NoError(t, err)
	plan := plans[0]

	styled, err := provider.GenerateFigure(context.Background(), GenerateRequest{
		Plan:     plan,
		Contract: sampleContract(plan),
		Paper:    content,
		Template: &types.FlowTemplate{TemplateID: "flow_overview", CaptionStyle: "imperative"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(styled.Caption, "See the "), "caption %q", styled.Caption)

	plain, err := provider.GenerateFigure(context.Background(), GenerateRequest{
		Plan:     plan,
		Contract: sampleContract(plan),
		Paper:    content,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plain.Caption, plan.Title), "caption %q", plain.Caption)
}

func TestLocalCritiqueImprovesWithIterations(t *testing.T) {
	content := paper.Parse(localTestPaper)
	provider := NewLocalProvider(nil)

	plans, err := provider.PlanFigures(context.Background(), PlanRequest{Paper: content})
	require.NoError(t, err)
	plan := plans[0]

	figure, err := provider.GenerateFigure(context.Background(), GenerateRequest{
		Plan:     plan,
		Contract: sampleContract(plan),
		Paper:    content,
	})
	require.NoError(t, err)

	first, err := provider.CritiqueFigure(context.Background(), CritiqueRequest{
		Plan: plan, Figure: figure, Iteration: 1,
	})
	require.NoError(t, err)

	third, err := provider.CritiqueFigure(context.Background(), CritiqueRequest{
		Plan: plan, Figure: figure, Iteration: 3,
	})
	require.NoError(t, err)

	assert.Greater(t, third.Score, first.Score)
	assert.Contains(t, third.QualityDimensions, "traceability")
}
