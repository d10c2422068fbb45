package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePassed(t *testing.T) {
	tests := []struct {
		name             string
		report           CritiqueReport
		expectedPassed   bool
		expectedFailures []string
	}{
		{
			name: "Passes when score and all dimensions meet thresholds",
			report: CritiqueReport{
				Score:              0.8,
				Threshold:          0.75,
				DimensionThreshold: 0.55,
				QualityDimensions:  map[string]float64{"clarity": 0.9, "layout": 0.6},
			},
			expectedPassed:   true,
			expectedFailures: []string{},
		},
		{
			name: "Fails when overall score is below threshold",
			report: CritiqueReport{
				Score:              0.7,
				Threshold:          0.75,
				DimensionThreshold: 0.55,
				QualityDimensions:  map[string]float64{"clarity": 0.9},
			},
			expectedPassed:   false,
			expectedFailures: []string{},
		},
		{
			name: "Fails when a dimension is below the dimension threshold",
			report: CritiqueReport{
				Score:              0.9,
				Threshold:          0.75,
				DimensionThreshold: 0.55,
				QualityDimensions:  map[string]float64{"clarity": 0.9, "layout": 0.4},
			},
			expectedPassed:   false,
			expectedFailures: []string{"layout"},
		},
		{
			name: "Failed dimensions are sorted",
			report: CritiqueReport{
				Score:              0.5,
				Threshold:          0.75,
				DimensionThreshold: 0.55,
				QualityDimensions:  map[string]float64{"layout": 0.1, "clarity": 0.2},
			},
			expectedPassed:   false,
			expectedFailures: []string{"clarity", "layout"},
		},
		{
			name: "Score exactly at threshold passes",
			report: CritiqueReport{
				Score:              0.75,
				Threshold:          0.75,
				DimensionThreshold: 0.55,
				QualityDimensions:  map[string]float64{"clarity": 0.55},
			},
			expectedPassed:   true,
			expectedFailures: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.report.ComputePassed()
			assert.Equal(t, tt.expectedPassed, tt.report.Passed)
			assert.Equal(t, tt.expectedFailures, tt.report.FailedDimensions)
		})
	}
}
