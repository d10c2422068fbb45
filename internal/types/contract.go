package types

// FigureContract represents a versioned structural commitment for a figure,
// derived once per figure per run and written exactly once.
type FigureContract struct {
	ContractID                string            `json:"contract_id"`
	SchemaVersion             string            `json:"schema_version"`
	RunID                     string            `json:"run_id"`
	FigureID                  string            `json:"figure_id"`
	Title                     string            `json:"title"`
	Kind                      string            `json:"kind"`
	TemplateID                string            `json:"template_id"`
	Order                     int               `json:"order"`
	AbstractionLevel          string            `json:"abstraction_level"`
	RequiredSections          []string          `json:"required_sections"`
	SourceSpans               []SourceSpan      `json:"source_spans"`
	TraceabilityRequirements  map[string]string `json:"traceability_requirements"`
	Invariants                []string          `json:"invariants"`
	CreatedAt                 string            `json:"created_at"`
}
