package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oluwafemidiakhoa/paperfig/internal/llm"
	"github.com/oluwafemidiakhoa/paperfig/internal/prompts"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// GeminiProvider plans, generates and critiques figures through the Gemini
// API. All three roles exchange JSON with the model.
type GeminiProvider struct {
	client llm.Client
}

// NewGeminiProvider creates a model-backed provider
func NewGeminiProvider(ctx context.Context, model, apiKey string) (*GeminiProvider, error) {
	client, err := llm.NewGeminiClient(ctx, model, apiKey)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client}, nil
}

// NewGeminiProviderWithClient wires an existing client, mainly for tests
func NewGeminiProviderWithClient(client llm.Client) *GeminiProvider {
	return &GeminiProvider{client: client}
}

// Name identifies the backend
func (p *GeminiProvider) Name() string { return "gemini" }

// Close releases the underlying client
func (p *GeminiProvider) Close() error { return p.client.Close() }

// PlanFigures asks the model for a figure plan grounded in the paper sections
func (p *GeminiProvider) PlanFigures(ctx context.Context, req PlanRequest) ([]types.FigurePlan, error) {
	if req.Paper == nil {
		return nil, fmt.Errorf("no paper content to plan from")
	}

	var sections strings.Builder
	for name, section := range req.Paper.Sections {
		fmt.Fprintf(&sections, "## %s [%d..%d]\n%s\n", name, section.Start, section.End, section.Text)
	}

	template := prompts.MustGet(prompts.PipelineFile, prompts.KeyPlanFigure)
	prompt := prompts.Format(template, map[string]string{
		"Sections":   sections.String(),
		"MaxFigures": fmt.Sprintf("%d", req.MaxFigures),
	})

	raw, err := p.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	var plans []types.FigurePlan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("model returned an empty plan")
	}
	return plans, nil
}

// generationResponse is the JSON shape the model returns for one attempt
type generationResponse struct {
	SVG          string                  `json:"svg"`
	Elements     []types.ElementMetadata `json:"elements"`
	Traceability []types.TraceElement    `json:"traceability"`
	Caption      string                  `json:"caption"`
}

// GenerateFigure asks the model for an SVG rendition satisfying the contract
func (p *GeminiProvider) GenerateFigure(ctx context.Context, req GenerateRequest) (*GeneratedFigure, error) {
	contractJSON, err := json.Marshal(req.Contract)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contract: %w", err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Render figure %q (%s) as SVG.\n\nContract:\n%s\n", req.Plan.Title, req.Plan.Kind, contractJSON)
	if req.Template != nil {
		fmt.Fprintf(&prompt, "\nStyle: write the caption in %s style.\n", req.Template.CaptionStyle)
		if len(req.Template.CritiqueFocus) > 0 {
			fmt.Fprintf(&prompt, "The critic will focus on: %s.\n", strings.Join(req.Template.CritiqueFocus, ", "))
		}
	}
	if req.Feedback != nil {
		feedbackJSON, _ := json.Marshal(req.Feedback)
		fmt.Fprintf(&prompt, "\nPrevious attempt scored %.2f. Address this feedback:\n%s\n", req.Feedback.PreviousScore, feedbackJSON)
	}
	prompt.WriteString("\nReturn a JSON object with: svg, elements (element_id, kind, label), traceability (element_id, source_spans), caption.")

	raw, err := p.client.GenerateJSON(ctx, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	var resp generationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	if resp.SVG == "" {
		return nil, fmt.Errorf("model returned no SVG")
	}

	return &GeneratedFigure{
		SVG:      resp.SVG,
		Elements: resp.Elements,
		Traceability: types.Traceability{
			FigureID: req.Plan.FigureID,
			Elements: resp.Traceability,
		},
		Caption: resp.Caption,
	}, nil
}

// CritiqueFigure asks the model to score one attempt against its contract
func (p *GeminiProvider) CritiqueFigure(ctx context.Context, req CritiqueRequest) (*CritiqueResult, error) {
	if req.Figure == nil {
		return nil, fmt.Errorf("no figure to critique")
	}
	contractJSON, err := json.Marshal(req.Contract)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contract: %w", err)
	}
	elementsJSON, _ := json.Marshal(req.Figure.Elements)

	template := prompts.MustGet(prompts.PipelineFile, prompts.KeyCritiqueFigure)
	prompt := prompts.Format(template, map[string]string{
		"FigureID": req.Plan.FigureID,
		"Contract": string(contractJSON),
		"SVG":      req.Figure.SVG,
		"Elements": string(elementsJSON),
	})

	raw, err := p.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("critique failed: %w", err)
	}

	var result CritiqueResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse critique response: %w", err)
	}
	if result.QualityDimensions == nil {
		result.QualityDimensions = map[string]float64{}
	}
	return &result, nil
}
