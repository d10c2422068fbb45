// Package inspect builds the aggregate inspection snapshot of a completed
// run from its on-disk artifacts.
package inspect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// BuildSnapshot derives a run inspection from the artifact tree alone.
// Building is read-only and idempotent: the same tree always yields the same
// snapshot.
func BuildSnapshot(store *runstore.Store, runID string) (*types.RunInspection, error) {
	runDir, err := store.Require(runID)
	if err != nil {
		return nil, err
	}

	inspection := &types.RunInspection{
		RunID:    runID,
		RunDir:   runDir,
		Figures:  []types.FigureInspection{},
		Warnings: []string{},
	}

	meta, err := store.ReadMetadata(runID)
	if err != nil {
		inspection.Warnings = append(inspection.Warnings, fmt.Sprintf("metadata unreadable: %v", err))
	} else {
		inspection.Metadata = meta
	}

	plan, err := store.ReadPlan(runID)
	if err != nil {
		inspection.Warnings = append(inspection.Warnings, fmt.Sprintf("plan unreadable: %v", err))
	}
	inspection.PlanCount = len(plan)

	for _, figurePlan := range plan {
		figure, warnings := inspectFigure(runDir, figurePlan, meta)
		inspection.Figures = append(inspection.Figures, figure)
		inspection.Warnings = append(inspection.Warnings, warnings...)
	}

	inspection.Aggregate = aggregate(inspection.Figures)
	return inspection, nil
}

// LoadOrBuild returns the persisted snapshot when one exists, otherwise
// builds it and persists the result.
func LoadOrBuild(store *runstore.Store, runID string) (*types.RunInspection, error) {
	runDir, err := store.Require(runID)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(runDir, runstore.InspectFile)
	if _, err := os.Stat(path); err == nil {
		var inspection types.RunInspection
		if err := runstore.ReadJSON(path, &inspection); err != nil {
			return nil, err
		}
		return &inspection, nil
	}

	inspection, err := BuildSnapshot(store, runID)
	if err != nil {
		return nil, err
	}
	if err := runstore.WriteJSON(path, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

func inspectFigure(runDir string, plan types.FigurePlan, meta *types.RunMetadata) (types.FigureInspection, []string) {
	figure := types.FigureInspection{
		FigureID:         plan.FigureID,
		Title:            plan.Title,
		Kind:             plan.Kind,
		TemplateID:       plan.TemplateID,
		FailedDimensions: []string{},
		Issues:           []string{},
		Recommendations:  []string{},
		IterationHistory: []types.IterationSummary{},
	}
	var warnings []string

	figureDir := runstore.FigureDir(runDir, plan.FigureID)
	iterNames, err := runstore.ListIterDirs(figureDir)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("figure %s: %v", plan.FigureID, err))
	}
	figure.IterationsAttempted = len(iterNames)

	// The promoted iteration is the first passing one, else the last.
	var promoted *types.CritiqueReport
	for _, iterName := range iterNames {
		var report types.CritiqueReport
		critiquePath := filepath.Join(figureDir, iterName, runstore.CritiqueFile)
		if err := runstore.ReadJSON(critiquePath, &report); err != nil {
			warnings = append(warnings, fmt.Sprintf("figure %s: critique for %s unreadable: %v", plan.FigureID, iterName, err))
			continue
		}
		figure.IterationHistory = append(figure.IterationHistory, types.IterationSummary{
			Iteration:        runstore.IterNumber(iterName),
			Score:            report.Score,
			Passed:           report.Passed,
			FailedDimensions: report.FailedDimensions,
		})
		if promoted == nil || !promoted.Passed {
			r := report
			promoted = &r
		}
	}

	if promoted != nil {
		score := promoted.Score
		figure.FinalScore = &score
		figure.FinalPassed = promoted.Passed
		figure.Accepted = promoted.Passed
		figure.FailedDimensions = promoted.FailedDimensions
		figure.Issues = promoted.Issues
		figure.Recommendations = promoted.Recommendations
	}
	if meta != nil && meta.MaxIterations > 0 {
		figure.MaxIterationsHit = !figure.Accepted && figure.IterationsAttempted >= meta.MaxIterations
	}

	finalDir := runstore.FinalDir(figureDir)
	svgPath := filepath.Join(finalDir, runstore.FinalFigureFile)
	if _, err := os.Stat(svgPath); err == nil {
		figure.FinalSVGPath = svgPath
	} else {
		warnings = append(warnings, fmt.Sprintf("figure %s: no final SVG", plan.FigureID))
	}

	figure.Traceability = traceabilityStats(finalDir)
	return figure, warnings
}

func traceabilityStats(finalDir string) types.TraceabilityStats {
	stats := types.TraceabilityStats{}
	var trace types.Traceability
	if err := runstore.ReadJSON(filepath.Join(finalDir, runstore.FinalTraceabilityFile), &trace); err != nil {
		return stats
	}
	stats.TotalElements = len(trace.Elements)
	for _, element := range trace.Elements {
		if len(element.SourceSpans) > 0 {
			stats.TracedElements++
		}
	}
	if stats.TotalElements > 0 {
		coverage := float64(stats.TracedElements) / float64(stats.TotalElements)
		stats.Coverage = &coverage
	}
	return stats
}

func aggregate(figures []types.FigureInspection) types.RunAggregate {
	agg := types.RunAggregate{
		TotalFigures:     len(figures),
		MaxIterationsHit: []string{},
	}

	var scoreSum float64
	var scoreCount int
	var coverageSum float64
	var coverageCount int
	for _, figure := range figures {
		if figure.Accepted {
			agg.AcceptedCount++
		} else {
			agg.FailedCount++
		}
		if figure.FinalScore != nil {
			scoreSum += *figure.FinalScore
			scoreCount++
		}
		if figure.Traceability.Coverage != nil {
			coverageSum += *figure.Traceability.Coverage
			coverageCount++
		}
		if figure.MaxIterationsHit {
			agg.MaxIterationsHit = append(agg.MaxIterationsHit, figure.FigureID)
		}
	}
	if scoreCount > 0 {
		avg := scoreSum / float64(scoreCount)
		agg.AvgFinalScore = &avg
	}
	if coverageCount > 0 {
		avg := coverageSum / float64(coverageCount)
		agg.AvgTraceabilityCoverage = &avg
	}
	return agg
}
