package types

import "sort"

// CritiqueReport represents the scored evaluation of one figure candidate
type CritiqueReport struct {
	FigureID           string             `json:"figure_id"`
	Score              float64            `json:"score"`
	Threshold          float64            `json:"threshold"`
	QualityDimensions  map[string]float64 `json:"quality_dimensions"`
	DimensionThreshold float64            `json:"dimension_threshold"`
	FailedDimensions   []string           `json:"failed_dimensions"`
	Issues             []string           `json:"issues"`
	Recommendations    []string           `json:"recommendations"`
	Passed             bool               `json:"passed"`
}

// ComputePassed derives FailedDimensions and Passed from the scores and
// thresholds. Passed is true only if the overall score meets the threshold and
// no dimension score falls below the dimension threshold. Contract validation
// may later veto a passing report; it never un-fails a failing one.
func (r *CritiqueReport) ComputePassed() {
	failed := make([]string, 0)
	for name, score := range r.QualityDimensions {
		if score < r.DimensionThreshold {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	r.FailedDimensions = failed
	r.Passed = r.Score >= r.Threshold && len(failed) == 0
}

// CritiqueFeedback carries the previous iteration's outcome forward so the
// generator can self-correct
type CritiqueFeedback struct {
	PreviousScore    float64  `json:"previous_score"`
	Issues           []string `json:"issues"`
	Recommendations  []string `json:"recommendations"`
	FailedDimensions []string `json:"failed_dimensions"`
}
