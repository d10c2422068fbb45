package types

// JournalProfile represents an external configuration override bundle applied
// wholesale to a run before execution. Missing required figure kinds abort
// planning as a hard precondition.
type JournalProfile struct {
	ProfileID                 string   `json:"id" validate:"required"`
	Name                      string   `json:"name" validate:"required"`
	Version                   string   `json:"version"`
	QualityThreshold          float64  `json:"quality_threshold" validate:"gte=0,lte=1"`
	DimensionThreshold        float64  `json:"dimension_threshold" validate:"gte=0,lte=1"`
	MaxIterations             int      `json:"max_iterations" validate:"gte=1"`
	RequiredKinds             []string `json:"required_kinds"`
	ArchCritiqueBlockSeverity Severity `json:"arch_critique_block_severity" validate:"omitempty,oneof=minor major critical"`
	ReproAuditMode            string   `json:"repro_audit_mode" validate:"omitempty,oneof=soft hard"`
	TemplatePack              string   `json:"template_pack"`
	Notes                     string   `json:"notes"`
}
