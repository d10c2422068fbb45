// Package providers defines the planning, generation and critique backends
// the pipeline drives, plus the built-in implementations.
package providers

import (
	"context"

	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// PlanRequest carries the inputs to figure planning
type PlanRequest struct {
	Paper      *types.PaperContent
	Catalog    *types.FlowTemplateCatalog
	MaxFigures int
}

// GenerateRequest carries the inputs to one generation attempt
type GenerateRequest struct {
	Plan     types.FigurePlan
	Contract types.FigureContract
	Paper    *types.PaperContent
	// Template is the resolved flow template, nil when the plan matched none.
	// Its caption style and critique focus steer the generator's output.
	Template  *types.FlowTemplate
	Iteration int
	// Feedback is nil on the first iteration
	Feedback *types.CritiqueFeedback
}

// GeneratedFigure is the output of one generation attempt
type GeneratedFigure struct {
	SVG          string
	Elements     []types.ElementMetadata
	Traceability types.Traceability
	Caption      string
}

// CritiqueRequest carries the inputs to one critique pass
type CritiqueRequest struct {
	Plan      types.FigurePlan
	Contract  types.FigureContract
	Figure    *GeneratedFigure
	Iteration int
}

// CritiqueResult is a critic's raw verdict. Thresholding and the pass
// decision belong to the refinement loop, not the critic.
type CritiqueResult struct {
	Score             float64            `json:"score"`
	QualityDimensions map[string]float64 `json:"quality_dimensions"`
	Issues            []string           `json:"issues"`
	Recommendations   []string           `json:"recommendations"`
}

// Planner proposes figures for a paper
type Planner interface {
	PlanFigures(ctx context.Context, req PlanRequest) ([]types.FigurePlan, error)
}

// Generator renders one figure attempt
type Generator interface {
	GenerateFigure(ctx context.Context, req GenerateRequest) (*GeneratedFigure, error)
}

// Critic scores one generated figure
type Critic interface {
	CritiqueFigure(ctx context.Context, req CritiqueRequest) (*CritiqueResult, error)
}

// Provider bundles the three pipeline roles behind one backend
type Provider interface {
	Planner
	Generator
	Critic
	// Name identifies the backend in run metadata and logs
	Name() string
	// Close releases any resources held by the provider
	Close() error
}
