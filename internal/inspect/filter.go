package inspect

import (
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// Filter narrows an inspection to the figures a reviewer cares about
type Filter struct {
	FailuresOnly    bool
	FigureID        string
	MinScore        *float64
	FailedDimension string
}

// IsZero reports whether the filter selects everything
func (f Filter) IsZero() bool {
	return !f.FailuresOnly && f.FigureID == "" && f.MinScore == nil && f.FailedDimension == ""
}

// Apply returns a copy of the inspection containing only matching figures.
// The aggregate is recomputed over the surviving figures so filtered views
// stay internally consistent.
func Apply(inspection *types.RunInspection, filter Filter) *types.RunInspection {
	if inspection == nil || filter.IsZero() {
		return inspection
	}

	filtered := *inspection
	filtered.Figures = []types.FigureInspection{}
	for _, figure := range inspection.Figures {
		if filter.FailuresOnly && figure.Accepted {
			continue
		}
		if filter.FigureID != "" && figure.FigureID != filter.FigureID {
			continue
		}
		if filter.MinScore != nil && (figure.FinalScore == nil || *figure.FinalScore < *filter.MinScore) {
			continue
		}
		if filter.FailedDimension != "" && !contains(figure.FailedDimensions, filter.FailedDimension) {
			continue
		}
		filtered.Figures = append(filtered.Figures, figure)
	}
	filtered.Aggregate = aggregate(filtered.Figures)
	return &filtered
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
