package types

// RunMetadataSchemaVersion is the current run.json schema version. Readers
// reject versions they do not know instead of reading fields defensively.
const RunMetadataSchemaVersion = "1.0"

// RunMetadata represents the versioned metadata record persisted as run.json.
// Seed is a pointer without omitempty so the key is always present, declared
// or null; the reproducibility audit checks for its presence.
type RunMetadata struct {
	SchemaVersion             string   `json:"schema_version"`
	RunID                     string   `json:"run_id"`
	PaperPath                 string   `json:"paper_path"`
	CreatedAt                 string   `json:"created_at"`
	MaxIterations             int      `json:"max_iterations"`
	QualityThreshold          float64  `json:"quality_threshold"`
	DimensionThreshold        float64  `json:"dimension_threshold"`
	TemplatePack              string   `json:"template_pack"`
	ArchCritiqueMode          string   `json:"arch_critique_mode"`
	ArchCritiqueBlockSeverity Severity `json:"arch_critique_block_severity"`
	ReproAuditMode            string   `json:"repro_audit_mode"`
	ConfigHash                string   `json:"config_hash"`
	JournalProfile            string   `json:"journal_profile,omitempty"`
	Seed                      *int64   `json:"seed"`
	RerunOf                   string   `json:"rerun_of,omitempty"`
	ReusedPlan                bool     `json:"reused_plan,omitempty"`
}
