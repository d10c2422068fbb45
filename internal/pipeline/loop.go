package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/oluwafemidiakhoa/paperfig/internal/contracts"
	"github.com/oluwafemidiakhoa/paperfig/internal/providers"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// figureOutcome is what one figure's loop hands back to the run
type figureOutcome struct {
	accepted     bool
	caption      string
	traceability types.Traceability
}

// runFigure drives one figure through generate-critique refinement. Contract
// validation happens exactly once, before the loop; its errors veto every
// iteration. On exhaustion the last iteration is promoted so a final artifact
// set always exists.
func (o *Orchestrator) runFigure(ctx context.Context, runID, runDir string, content *types.PaperContent, plan types.FigurePlan, template *types.FlowTemplate, meta *types.RunMetadata, logger *logrus.Entry) (*figureOutcome, error) {
	figLog := logger.WithField("figure_id", plan.FigureID)
	figureDir := runstore.FigureDir(runDir, plan.FigureID)

	contract := contracts.Build(runID, plan, template)
	if err := contracts.Write(figureDir, contract); err != nil {
		return nil, err
	}
	contractErrs := contracts.Validate(contract)
	if len(contractErrs) > 0 {
		figLog.WithField("errors", len(contractErrs)).Warn("contract validation failed; all iterations will be vetoed")
	}

	maxIterations := meta.MaxIterations
	if maxIterations < 1 {
		maxIterations = 1
	}

	var feedback *types.CritiqueFeedback
	var lastFigure *providers.GeneratedFigure
	var lastIter int
	for iteration := 1; iteration <= maxIterations; iteration++ {
		figLog.WithField("iteration", iteration).Info("generating")

		figure, err := o.provider.GenerateFigure(ctx, providers.GenerateRequest{
			Plan:      plan,
			Contract:  contract,
			Paper:     content,
			Template:  template,
			Iteration: iteration,
			Feedback:  feedback,
		})
		if err != nil {
			return nil, fmt.Errorf("figure %s iteration %d: %w", plan.FigureID, iteration, err)
		}

		iterDir := runstore.IterDir(figureDir, iteration)
		if err := writeIteration(iterDir, figure); err != nil {
			return nil, err
		}

		result, err := o.provider.CritiqueFigure(ctx, providers.CritiqueRequest{
			Plan:      plan,
			Contract:  contract,
			Figure:    figure,
			Iteration: iteration,
		})
		if err != nil {
			return nil, fmt.Errorf("figure %s iteration %d critique: %w", plan.FigureID, iteration, err)
		}

		report := buildReport(plan.FigureID, result, meta, contractErrs)
		if err := runstore.WriteJSON(filepath.Join(iterDir, runstore.CritiqueFile), report); err != nil {
			return nil, err
		}

		lastFigure = figure
		lastIter = iteration

		if report.Passed {
			figLog.WithFields(logrus.Fields{"iteration": iteration, "score": report.Score}).Info("accepted")
			if err := promote(figureDir, iteration, contract); err != nil {
				return nil, err
			}
			return &figureOutcome{accepted: true, caption: figure.Caption, traceability: figure.Traceability}, nil
		}

		figLog.WithFields(logrus.Fields{"iteration": iteration, "score": report.Score}).Info("retrying")
		feedback = &types.CritiqueFeedback{
			PreviousScore:    report.Score,
			Issues:           report.Issues,
			Recommendations:  report.Recommendations,
			FailedDimensions: report.FailedDimensions,
		}
	}

	// Exhausted: promote the last attempt so downstream stages still have a
	// complete final set to reason about.
	figLog.WithField("iterations", lastIter).Warn("exhausted; promoting last iteration")
	if err := promote(figureDir, lastIter, contract); err != nil {
		return nil, err
	}
	return &figureOutcome{accepted: false, caption: lastFigure.Caption, traceability: lastFigure.Traceability}, nil
}

// buildReport assembles the critique report for one iteration. Contract
// errors are merged in after threshold evaluation: they force a failure and
// record "contract" as a failed dimension regardless of score.
func buildReport(figureID string, result *providers.CritiqueResult, meta *types.RunMetadata, contractErrs []string) *types.CritiqueReport {
	report := &types.CritiqueReport{
		FigureID:           figureID,
		Score:              result.Score,
		Threshold:          meta.QualityThreshold,
		QualityDimensions:  result.QualityDimensions,
		DimensionThreshold: meta.DimensionThreshold,
		Issues:             result.Issues,
		Recommendations:    result.Recommendations,
	}
	report.ComputePassed()

	if len(contractErrs) > 0 {
		report.Passed = false
		report.FailedDimensions = append(report.FailedDimensions, "contract")
		for _, msg := range contractErrs {
			report.Issues = append(report.Issues, fmt.Sprintf("contract: %s", msg))
		}
	}
	return report
}

func writeIteration(iterDir string, figure *providers.GeneratedFigure) error {
	if err := os.MkdirAll(iterDir, 0o755); err != nil {
		return fmt.Errorf("failed to create iteration directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(iterDir, runstore.FinalFigureFile), []byte(figure.SVG), 0o644); err != nil {
		return fmt.Errorf("failed to write figure SVG: %w", err)
	}
	if err := runstore.WriteJSON(filepath.Join(iterDir, runstore.ElementMetadataFile), figure.Elements); err != nil {
		return err
	}
	return runstore.WriteJSON(filepath.Join(iterDir, runstore.FinalTraceabilityFile), figure.Traceability)
}

// promote copies one iteration's artifacts into the figure's final directory
// and stamps the contract alongside them.
func promote(figureDir string, iteration int, contract types.FigureContract) error {
	iterDir := runstore.IterDir(figureDir, iteration)
	finalDir := runstore.FinalDir(figureDir)
	for _, name := range []string{runstore.FinalFigureFile, runstore.ElementMetadataFile, runstore.FinalTraceabilityFile} {
		if err := runstore.CopyFile(filepath.Join(iterDir, name), filepath.Join(finalDir, name)); err != nil {
			return err
		}
	}
	return contracts.Write(finalDir, contract)
}
