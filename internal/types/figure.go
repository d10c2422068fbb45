package types

// FigurePlan represents one planned figure. It is produced once by planning
// and never changes afterwards; iterations vary the candidate, not the plan.
type FigurePlan struct {
	FigureID         string       `json:"figure_id"`
	Title            string       `json:"title"`
	Kind             string       `json:"kind"`
	Order            int          `json:"order"`
	AbstractionLevel string       `json:"abstraction_level"`
	Description      string       `json:"description"`
	Justification    string       `json:"justification"`
	TemplateID       string       `json:"template_id,omitempty"`
	SourceSpans      []SourceSpan `json:"source_spans"`
}

// FigureCandidate represents the output of one generation attempt for one figure.
// It is owned by a single iteration and superseded by the next iteration's
// candidate, or promoted to final on acceptance.
type FigureCandidate struct {
	FigureID            string `json:"figure_id"`
	SVGPath             string `json:"svg_path"`
	ElementMetadataPath string `json:"element_metadata_path"`
	TraceabilityPath    string `json:"traceability_path"`
}

// ElementMetadata describes one rendered element of a figure
type ElementMetadata struct {
	ElementID string `json:"element_id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
}

// TraceElement maps one rendered element back to source document spans
type TraceElement struct {
	ElementID   string       `json:"element_id"`
	SourceSpans []SourceSpan `json:"source_spans"`
}

// Traceability is the per-figure traceability record written next to each candidate
type Traceability struct {
	FigureID string         `json:"figure_id"`
	Elements []TraceElement `json:"elements"`
}
