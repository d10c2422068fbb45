// Package journals loads journal submission profiles and enforces their
// figure requirements as run preconditions.
package journals

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/schemas"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
	embedded "github.com/oluwafemidiakhoa/paperfig/schemas"
)

// RequirementError reports a journal requirement the plan cannot satisfy.
// It aborts planning before any figure work starts.
type RequirementError struct {
	ProfileID    string
	MissingKinds []string
}

func (e *RequirementError) Error() string {
	return fmt.Sprintf("journal profile %q requires figure kinds not in the plan: %s",
		e.ProfileID, strings.Join(e.MissingKinds, ", "))
}

var validate = validator.New()

// Load reads and validates the profile <profileID>.json from dir. The raw
// document is checked against the journal profile schema before decoding, and
// the decoded struct is range-checked with the field validators.
func Load(profileID, dir string) (*types.JournalProfile, error) {
	path := filepath.Join(dir, profileID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &runstore.NotFoundError{Kind: "journal profile", Name: profileID, Root: dir}
		}
		return nil, fmt.Errorf("failed to read journal profile %s: %w", path, err)
	}

	if err := schemas.ValidateString(embedded.JournalProfile, string(data)); err != nil {
		return nil, fmt.Errorf("journal profile %s is invalid: %w", profileID, err)
	}

	var profile types.JournalProfile
	if err := runstore.ReadJSON(path, &profile); err != nil {
		return nil, err
	}
	if err := validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("journal profile %s failed validation: %w", profileID, err)
	}
	return &profile, nil
}

// EnforceRequirements checks that every figure kind the profile requires is
// covered by at least one planned figure.
func EnforceRequirements(profile *types.JournalProfile, plan []types.FigurePlan) error {
	if profile == nil || len(profile.RequiredKinds) == 0 {
		return nil
	}
	planned := make(map[string]bool, len(plan))
	for _, figure := range plan {
		planned[figure.Kind] = true
	}
	var missing []string
	for _, kind := range profile.RequiredKinds {
		if !planned[kind] {
			missing = append(missing, kind)
		}
	}
	if len(missing) > 0 {
		return &RequirementError{ProfileID: profile.ProfileID, MissingKinds: missing}
	}
	return nil
}

// Apply overlays the profile's non-zero settings onto run metadata. The
// profile wins wherever it declares a value.
func Apply(profile *types.JournalProfile, meta *types.RunMetadata) {
	if profile == nil {
		return
	}
	meta.JournalProfile = profile.ProfileID
	if profile.QualityThreshold > 0 {
		meta.QualityThreshold = profile.QualityThreshold
	}
	if profile.DimensionThreshold > 0 {
		meta.DimensionThreshold = profile.DimensionThreshold
	}
	if profile.MaxIterations > 0 {
		meta.MaxIterations = profile.MaxIterations
	}
	if profile.ArchCritiqueBlockSeverity != "" {
		meta.ArchCritiqueBlockSeverity = profile.ArchCritiqueBlockSeverity
	}
	if profile.ReproAuditMode != "" {
		meta.ReproAuditMode = profile.ReproAuditMode
	}
	if profile.TemplatePack != "" {
		meta.TemplatePack = profile.TemplatePack
	}
}
