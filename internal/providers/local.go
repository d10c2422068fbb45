package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// LocalProvider is a deterministic, offline backend. Given the same paper and
// settings it always plans, renders and scores identically, which makes it
// the reference backend for regression comparisons and tests.
type LocalProvider struct {
	seed int64
}

// NewLocalProvider creates a local provider. The seed is recorded for
// provenance; planning and scoring are already fully deterministic.
func NewLocalProvider(seed *int64) *LocalProvider {
	p := &LocalProvider{}
	if seed != nil {
		p.seed = *seed
	}
	return p
}

// Name identifies the backend
func (p *LocalProvider) Name() string { return "local" }

// Close releases resources; the local provider holds none
func (p *LocalProvider) Close() error { return nil }

// kindsBySection maps canonical paper sections to the figure kinds they motivate.
var kindsBySection = []struct {
	section string
	kind    string
	title   string
}{
	{"method", "architecture", "System Overview"},
	{"method", "dataflow", "Data Flow"},
	{"experiments", "sequence", "Training Procedure"},
	{"results", "comparison", "Results Comparison"},
}

// PlanFigures proposes one figure per motivated kind, in a stable order
func (p *LocalProvider) PlanFigures(_ context.Context, req PlanRequest) ([]types.FigurePlan, error) {
	if req.Paper == nil {
		return nil, fmt.Errorf("no paper content to plan from")
	}

	var plans []types.FigurePlan
	order := 1
	for _, candidate := range kindsBySection {
		section, ok := req.Paper.Sections[candidate.section]
		if !ok {
			continue
		}
		if req.MaxFigures > 0 && len(plans) >= req.MaxFigures {
			break
		}
		plan := types.FigurePlan{
			FigureID:         fmt.Sprintf("fig_%s", candidate.kind),
			Title:            candidate.title,
			Kind:             candidate.kind,
			Order:            order,
			AbstractionLevel: "medium",
			Description:      fmt.Sprintf("%s derived from the %s section", candidate.title, candidate.section),
			Justification:    fmt.Sprintf("The %s section describes content best shown as a %s figure", candidate.section, candidate.kind),
			SourceSpans: []types.SourceSpan{
				{Section: section.Name, Start: section.Start, End: section.End},
			},
		}
		if req.Catalog != nil {
			for i := range req.Catalog.Templates {
				if req.Catalog.Templates[i].Kind == candidate.kind {
					plan.TemplateID = req.Catalog.Templates[i].TemplateID
					break
				}
			}
		}
		plans = append(plans, plan)
		order++
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("paper has no sections that motivate figures")
	}
	return plans, nil
}

// GenerateFigure renders a labeled-box SVG, one element per required section
func (p *LocalProvider) GenerateFigure(_ context.Context, req GenerateRequest) (*GeneratedFigure, error) {
	sections := req.Contract.RequiredSections
	if len(sections) == 0 {
		sections = []string{"body"}
	}

	var svg strings.Builder
	width := 240*len(sections) + 40
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="200" viewBox="0 0 %d 200">`, width, width)
	fmt.Fprintf(&svg, `<title>%s</title>`, req.Plan.Title)

	elements := make([]types.ElementMetadata, 0, len(sections))
	traced := make([]types.TraceElement, 0, len(sections))
	for i, section := range sections {
		elementID := fmt.Sprintf("node_%s", section)
		x := 20 + 240*i
		fmt.Fprintf(&svg, `<g id="%s"><rect x="%d" y="60" width="200" height="80" fill="none" stroke="black"/>`, elementID, x)
		fmt.Fprintf(&svg, `<text x="%d" y="105">%s</text></g>`, x+20, section)
		if i > 0 {
			fmt.Fprintf(&svg, `<line x1="%d" y1="100" x2="%d" y2="100" stroke="black"/>`, x-20, x)
		}
		elements = append(elements, types.ElementMetadata{
			ElementID: elementID,
			Kind:      "node",
			Label:     section,
		})
		var spans []types.SourceSpan
		for _, span := range req.Plan.SourceSpans {
			if span.Section == section {
				spans = append(spans, span)
			}
		}
		if len(spans) == 0 && len(req.Plan.SourceSpans) > 0 {
			spans = req.Plan.SourceSpans[:1]
		}
		traced = append(traced, types.TraceElement{ElementID: elementID, SourceSpans: spans})
	}
	svg.WriteString(`</svg>`)

	caption := fmt.Sprintf("%s. %s", req.Plan.Title, req.Plan.Description)
	if req.Template != nil && req.Template.CaptionStyle == "imperative" {
		caption = fmt.Sprintf("See the %s: %s", strings.ToLower(req.Plan.Title), req.Plan.Description)
	}

	return &GeneratedFigure{
		SVG:      svg.String(),
		Elements: elements,
		Traceability: types.Traceability{
			FigureID: req.Plan.FigureID,
			Elements: traced,
		},
		Caption: caption,
	}, nil
}

// CritiqueFigure scores deterministically. Quality climbs with each
// iteration, so a run with enough iterations always converges.
func (p *LocalProvider) CritiqueFigure(_ context.Context, req CritiqueRequest) (*CritiqueResult, error) {
	if req.Figure == nil {
		return nil, fmt.Errorf("no figure to critique")
	}

	base := 0.55 + 0.15*float64(req.Iteration)
	if base > 0.95 {
		base = 0.95
	}

	traceScore := 0.0
	if len(req.Figure.Traceability.Elements) > 0 {
		traced := 0
		for _, element := range req.Figure.Traceability.Elements {
			if len(element.SourceSpans) > 0 {
				traced++
			}
		}
		traceScore = float64(traced) / float64(len(req.Figure.Traceability.Elements))
	}

	dimensions := map[string]float64{
		"clarity":      clamp(base + 0.05),
		"completeness": clamp(base),
		"traceability": clamp((base + traceScore) / 2),
		"layout":       clamp(base - 0.05),
	}

	score := 0.0
	for _, v := range dimensions {
		score += v
	}
	score = clamp(score / float64(len(dimensions)))

	var issues, recommendations []string
	for name, value := range dimensions {
		if value < 0.7 {
			issues = append(issues, fmt.Sprintf("%s below expectation at %.2f", name, value))
			recommendations = append(recommendations, fmt.Sprintf("improve %s in the next attempt", name))
		}
	}
	sort.Strings(issues)
	sort.Strings(recommendations)

	return &CritiqueResult{
		Score:             score,
		QualityDimensions: dimensions,
		Issues:            issues,
		Recommendations:   recommendations,
	}, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
