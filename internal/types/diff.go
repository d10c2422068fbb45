package types

// MetricDelta represents one aggregate metric compared across two runs.
// Delta is right minus left, nil if either side is non-numeric.
type MetricDelta struct {
	Run1  *float64 `json:"run_1"`
	Run2  *float64 `json:"run_2"`
	Delta *float64 `json:"delta"`
}

// FigureDiffSide captures one run's view of a figure inside a modified change entry
type FigureDiffSide struct {
	FinalScore  *float64 `json:"final_score"`
	FinalPassed bool     `json:"final_passed"`
	SVGHash     string   `json:"svg_hash,omitempty"`
}

// FigureChange classifies how one figure differs between two runs.
// Change is one of added_in_run_2, removed_in_run_2 or modified; unchanged
// figures are omitted from the report.
type FigureChange struct {
	FigureID string          `json:"figure_id"`
	Change   string          `json:"change"`
	Run1     *FigureDiffSide `json:"run_1,omitempty"`
	Run2     *FigureDiffSide `json:"run_2,omitempty"`
}

// DiffSummary holds the change counts of a diff report
type DiffSummary struct {
	ChangedFigureCount   int `json:"changed_figure_count"`
	ChangedArtifactCount int `json:"changed_artifact_count"`
}

// DiffReport represents the persisted comparison of two completed runs
type DiffReport struct {
	RunID1           string                 `json:"run_id_1"`
	RunID2           string                 `json:"run_id_2"`
	GeneratedAt      string                 `json:"generated_at"`
	Metrics          map[string]MetricDelta `json:"metrics"`
	ChangedFigures   []FigureChange         `json:"changed_figures"`
	ChangedArtifacts []string               `json:"changed_artifacts"`
	Summary          DiffSummary            `json:"summary"`
	DiffDir          string                 `json:"diff_dir"`
}

// RegressionInvariant is one named pass/fail invariant over metric deltas
type RegressionInvariant struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Passed      bool        `json:"passed"`
	Details     MetricDelta `json:"details"`
}

// RegressionReport represents the outcome of a two-version regression check
type RegressionReport struct {
	ReportID    string                 `json:"report_id"`
	PaperV1     string                 `json:"paper_v1"`
	PaperV2     string                 `json:"paper_v2"`
	RunIDV1     string                 `json:"run_id_v1"`
	RunIDV2     string                 `json:"run_id_v2"`
	GeneratedAt string                 `json:"generated_at"`
	Metrics     map[string]MetricDelta `json:"metrics"`
	Invariants  []RegressionInvariant  `json:"invariants"`
	Summary     string                 `json:"summary"`
	DiffReport  string                 `json:"diff_report,omitempty"`
	ReportDir   string                 `json:"report_dir"`
}
