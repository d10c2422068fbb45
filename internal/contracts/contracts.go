// Package contracts builds and validates the structural contracts that each
// planned figure must satisfy.
package contracts

import (
	"fmt"
	"path/filepath"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/schemas"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
	embedded "github.com/oluwafemidiakhoa/paperfig/schemas"
)

// SchemaVersion is the current figure contract schema version
const SchemaVersion = "1.0"

// Invariant names stamped onto contracts.
const (
	InvariantContractPresent         = "contract_present"
	InvariantTraceabilityPresent     = "traceability_present"
	InvariantRequiredSectionsPresent = "required_sections_present"
	InvariantSourceSpansPresent      = "source_spans_present"
)

// Build derives the contract for one planned figure. Required sections come
// from the matched template when one exists, otherwise from the plan's own
// source-span section references. Template traceability requirements are
// copied verbatim.
func Build(runID string, plan types.FigurePlan, template *types.FlowTemplate) types.FigureContract {
	var requiredSections []string
	if template != nil {
		requiredSections = append(requiredSections, template.RequiredSections...)
	} else {
		for _, span := range plan.SourceSpans {
			if span.Section != "" {
				requiredSections = append(requiredSections, span.Section)
			}
		}
	}

	traceabilityRequirements := map[string]string{}
	if template != nil {
		for key, value := range template.TraceabilityRequirements {
			traceabilityRequirements[key] = value
		}
	}

	invariants := []string{InvariantContractPresent, InvariantTraceabilityPresent}
	if len(requiredSections) > 0 {
		invariants = append(invariants, InvariantRequiredSectionsPresent)
	}
	if len(plan.SourceSpans) > 0 {
		invariants = append(invariants, InvariantSourceSpansPresent)
	}

	sourceSpans := plan.SourceSpans
	if sourceSpans == nil {
		sourceSpans = []types.SourceSpan{}
	}
	if requiredSections == nil {
		requiredSections = []string{}
	}

	return types.FigureContract{
		ContractID:               fmt.Sprintf("%s:%s", runID, plan.FigureID),
		SchemaVersion:            SchemaVersion,
		RunID:                    runID,
		FigureID:                 plan.FigureID,
		Title:                    plan.Title,
		Kind:                     plan.Kind,
		TemplateID:               plan.TemplateID,
		Order:                    plan.Order,
		AbstractionLevel:         plan.AbstractionLevel,
		RequiredSections:         requiredSections,
		SourceSpans:              sourceSpans,
		TraceabilityRequirements: traceabilityRequirements,
		Invariants:               invariants,
		CreatedAt:                runstore.Timestamp(),
	}
}

// Validate checks a contract instance against the embedded contract schema,
// returning one "field: message" string per violation.
func Validate(contract types.FigureContract) []string {
	return schemas.ValidateValue(embedded.FigureContract, contract)
}

// Write persists a contract to the given figure directory
func Write(figureDir string, contract types.FigureContract) error {
	return runstore.WriteJSON(filepath.Join(figureDir, runstore.ContractFile), contract)
}

// Load reads a contract from the given figure directory
func Load(figureDir string) (*types.FigureContract, error) {
	var contract types.FigureContract
	if err := runstore.ReadJSON(filepath.Join(figureDir, runstore.ContractFile), &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}
