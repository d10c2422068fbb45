package types

// TraceabilityStats summarizes how many rendered elements trace back to source spans
type TraceabilityStats struct {
	TotalElements  int      `json:"total_elements"`
	TracedElements int      `json:"traced_elements"`
	Coverage       *float64 `json:"coverage"`
}

// IterationSummary is one entry of a figure's iteration history
type IterationSummary struct {
	Iteration        int      `json:"iteration"`
	Score            float64  `json:"score"`
	Passed           bool     `json:"passed"`
	FailedDimensions []string `json:"failed_dimensions"`
}

// FigureInspection summarizes one figure of a completed run. Accepted and the
// presence of final artifacts are independent signals: an exhausted figure
// still has final artifacts via the fallback promotion.
type FigureInspection struct {
	FigureID            string             `json:"figure_id"`
	Title               string             `json:"title"`
	Kind                string             `json:"kind"`
	TemplateID          string             `json:"template_id"`
	IterationsAttempted int                `json:"iterations_attempted"`
	MaxIterationsHit    bool               `json:"max_iterations_hit"`
	Accepted            bool               `json:"accepted"`
	FinalScore          *float64           `json:"final_score"`
	FinalPassed         bool               `json:"final_passed"`
	FailedDimensions    []string           `json:"failed_dimensions"`
	Issues              []string           `json:"issues"`
	Recommendations     []string           `json:"recommendations"`
	Traceability        TraceabilityStats  `json:"traceability"`
	IterationHistory    []IterationSummary `json:"iteration_history"`
	FinalSVGPath        string             `json:"final_svg_path,omitempty"`
}

// RunAggregate holds whole-run metrics derived from the figure summaries
type RunAggregate struct {
	TotalFigures            int      `json:"total_figures"`
	AcceptedCount           int      `json:"accepted_count"`
	FailedCount             int      `json:"failed_count"`
	AvgFinalScore           *float64 `json:"avg_final_score"`
	AvgTraceabilityCoverage *float64 `json:"avg_traceability_coverage"`
	MaxIterationsHit        []string `json:"max_iterations_hit"`
}

// RunInspection is the aggregate inspection snapshot persisted as inspect.json.
// Rebuilding it from the run directory is idempotent.
type RunInspection struct {
	RunID     string             `json:"run_id"`
	RunDir    string             `json:"run_dir"`
	Metadata  *RunMetadata       `json:"metadata,omitempty"`
	PlanCount int                `json:"plan_count"`
	Figures   []FigureInspection `json:"figures"`
	Aggregate RunAggregate       `json:"aggregate"`
	Warnings  []string           `json:"warnings"`
}
