package types

// Severity classifies audit findings. Ordering: minor < major < critical.
type Severity string

// Severity levels in ascending order.
const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordinal position of the severity. Unknown severities rank
// below minor so a misspelled severity can never block a run by accident.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityMajor:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above the given threshold severity
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

// ValidSeverity reports whether s is one of the known severity levels
func ValidSeverity(s Severity) bool {
	return s.Rank() > 0
}

// ArchitectureCritiqueFinding represents one finding produced by a critique rule
type ArchitectureCritiqueFinding struct {
	FindingID   string   `json:"finding_id"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Suggestion  string   `json:"suggestion"`
}

// ArchitectureCritiqueReport represents the whole-run architecture critique outcome
type ArchitectureCritiqueReport struct {
	RunID         string                        `json:"run_id"`
	BlockSeverity Severity                      `json:"block_severity"`
	Findings      []ArchitectureCritiqueFinding `json:"findings"`
	Blocked       bool                          `json:"blocked"`
	Summary       string                        `json:"summary"`
	GeneratedAt   string                        `json:"generated_at"`
}

// ReproAuditCheck represents the result of one reproducibility check
type ReproAuditCheck struct {
	CheckID     string            `json:"check_id"`
	Description string            `json:"description"`
	Required    bool              `json:"required"`
	Passed      bool              `json:"passed"`
	Severity    Severity          `json:"severity"`
	Message     string            `json:"message"`
	Details     map[string]string `json:"details"`
}

// ReproAuditReport represents the whole-run reproducibility audit outcome.
// Passed is true when no required check failed; optional checks may fail
// without affecting the verdict.
type ReproAuditReport struct {
	RunID       string            `json:"run_id"`
	Mode        string            `json:"mode"`
	Checks      []ReproAuditCheck `json:"checks"`
	Passed      bool              `json:"passed"`
	Summary     string            `json:"summary"`
	GeneratedAt string            `json:"generated_at"`
	Environment map[string]string `json:"environment"`
}
