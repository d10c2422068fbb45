// Package runstore manages the on-disk artifact tree owned by each pipeline run.
package runstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// Well-known artifact names inside a run directory.
const (
	MetadataFile             = "run.json"
	SectionsFile             = "sections.json"
	PlanFile                 = "plan.json"
	CaptionsFile             = "captions.txt"
	TraceabilityFile         = "traceability.json"
	InspectFile              = "inspect.json"
	DocsDriftFile            = "docs_drift_report.json"
	ArchitectureCritiqueFile = "architecture_critique.json"
	ReproAuditFile           = "repro_audit.json"
	PluginsFile              = "plugins.json"
	JournalProfileFile       = "journal_profile.json"
	StyleRefsFile            = "style_refs.json"
	RunLogFile               = "run.log"
	PromptsDir               = "prompts"
	FiguresDir               = "figures"
	DiffsDir                 = "diffs"
	ContractFile             = "contract.json"
	CritiqueFile             = "critique.json"
	FinalFigureFile          = "figure.svg"
	ElementMetadataFile      = "element_metadata.json"
	FinalTraceabilityFile    = "traceability.json"
)

// NotFoundError reports a missing run, document or artifact. It is
// non-retryable and surfaced immediately.
type NotFoundError struct {
	Kind string
	Name string
	Root string
}

func (e *NotFoundError) Error() string {
	if e.Root != "" {
		return fmt.Sprintf("%s %q not found in %s", e.Kind, e.Name, e.Root)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Store locates run directories under a common root
type Store struct {
	Root string
}

// New creates a store rooted at the given directory
func New(root string) *Store {
	return &Store{Root: root}
}

// NewRunID returns a globally unique run identifier: a UTC time prefix plus a
// random suffix, collision-free across processes.
func NewRunID() string {
	return fmt.Sprintf("run-%s-%s", time.Now().UTC().Format("20060102-150405"), uuid.New().String()[:6])
}

// Timestamp returns the canonical artifact timestamp format
func Timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// RunDir returns the directory owned by the given run id
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.Root, runID)
}

// Require returns the run directory or a NotFoundError if the run does not exist
func (s *Store) Require(runID string) (string, error) {
	dir := s.RunDir(runID)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", &NotFoundError{Kind: "run", Name: runID, Root: s.Root}
	}
	return dir, nil
}

// FigureDir returns the directory owned by one figure of a run
func FigureDir(runDir, figureID string) string {
	return filepath.Join(runDir, FiguresDir, figureID)
}

// IterDir returns the directory owned by one refinement iteration of a figure
func IterDir(figureDir string, iteration int) string {
	return filepath.Join(figureDir, fmt.Sprintf("iter_%d", iteration))
}

// FinalDir returns a figure's final artifact directory
func FinalDir(figureDir string) string {
	return filepath.Join(figureDir, "final")
}

// WriteJSON writes v as indented JSON, creating parent directories as needed
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSON reads the JSON file at path into v
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Kind: "artifact", Name: path}
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// WriteMetadata persists the run metadata record
func (s *Store) WriteMetadata(runID string, meta *types.RunMetadata) error {
	return WriteJSON(filepath.Join(s.RunDir(runID), MetadataFile), meta)
}

// ReadMetadata loads and version-checks a run's metadata. Unknown schema
// versions are rejected rather than read defensively.
func (s *Store) ReadMetadata(runID string) (*types.RunMetadata, error) {
	dir, err := s.Require(runID)
	if err != nil {
		return nil, err
	}
	var meta types.RunMetadata
	if err := ReadJSON(filepath.Join(dir, MetadataFile), &meta); err != nil {
		return nil, err
	}
	if meta.SchemaVersion != types.RunMetadataSchemaVersion {
		return nil, fmt.Errorf("run %s has unsupported metadata schema version %q (want %q)",
			runID, meta.SchemaVersion, types.RunMetadataSchemaVersion)
	}
	return &meta, nil
}

// WritePlan persists the figure plan
func (s *Store) WritePlan(runID string, plan []types.FigurePlan) error {
	return WriteJSON(filepath.Join(s.RunDir(runID), PlanFile), plan)
}

// ReadPlan loads a run's persisted figure plan
func (s *Store) ReadPlan(runID string) ([]types.FigurePlan, error) {
	dir, err := s.Require(runID)
	if err != nil {
		return nil, err
	}
	var plan []types.FigurePlan
	if err := ReadJSON(filepath.Join(dir, PlanFile), &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// FileHash returns the hex sha256 digest of the file at path, or an empty
// string when the file does not exist.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// CopyFile copies src to dst, creating dst's parent directories
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// ListIterDirs returns a figure's iter_<n> directory names sorted by iteration number
func ListIterDirs(figureDir string) ([]string, error) {
	entries, err := os.ReadDir(figureDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", figureDir, err)
	}
	iters := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "iter_") {
			iters = append(iters, entry.Name())
		}
	}
	sort.Slice(iters, func(i, j int) bool { return IterNumber(iters[i]) < IterNumber(iters[j]) })
	return iters, nil
}

// IterNumber parses the numeric suffix of an iter_<n> directory name, zero on mismatch
func IterNumber(name string) int {
	var n int
	if _, err := fmt.Sscanf(name, "iter_%d", &n); err != nil {
		return 0
	}
	return n
}
