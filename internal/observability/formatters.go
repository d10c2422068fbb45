// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPlan outputs a human-readable summary of the figure plan.
func (p *Printer) PrintPlan(plan []types.FigurePlan) {
	if len(plan) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(plan), maxItemsToShow)
	for i := 0; i < count; i++ {
		figure := plan[i]
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", figure.Order, figure.Title, figure.Kind))
		sb.WriteString(fmt.Sprintf("   id: %s, spans: %d\n", figure.FigureID, len(figure.SourceSpans)))
	}
	if len(plan) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(plan)-maxItemsToShow))
	}

	p.printBox("FIGURE PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInspection outputs the run summary with per-figure verdicts.
func (p *Printer) PrintInspection(inspection *types.RunInspection) {
	if inspection == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", inspection.RunID))
	sb.WriteString(fmt.Sprintf("Figures:  %d planned, %d accepted, %d failed\n",
		inspection.PlanCount, inspection.Aggregate.AcceptedCount, inspection.Aggregate.FailedCount))
	if inspection.Aggregate.AvgFinalScore != nil {
		sb.WriteString(fmt.Sprintf("Score:    %.2f average\n", *inspection.Aggregate.AvgFinalScore))
	}
	if inspection.Aggregate.AvgTraceabilityCoverage != nil {
		sb.WriteString(fmt.Sprintf("Tracing:  %.0f%% average coverage\n", *inspection.Aggregate.AvgTraceabilityCoverage*100))
	}
	sb.WriteString("\n")

	for _, figure := range inspection.Figures {
		verdict := "accepted"
		if !figure.Accepted {
			verdict = "failed"
			if figure.MaxIterationsHit {
				verdict = "exhausted"
			}
		}
		score := "-"
		if figure.FinalScore != nil {
			score = fmt.Sprintf("%.2f", *figure.FinalScore)
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  score %s, %d iteration(s)\n",
			figure.FigureID, verdict, score, figure.IterationsAttempted))
	}

	if len(inspection.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings: %d\n", len(inspection.Warnings)))
	}

	p.printBox("RUN INSPECTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintArchitectureCritique outputs findings grouped under the block verdict.
func (p *Printer) PrintArchitectureCritique(report *types.ArchitectureCritiqueReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Verdict:  %s\n", blockedLabel(report.Blocked)))
	sb.WriteString(fmt.Sprintf("Summary:  %s\n", report.Summary))
	if len(report.Findings) > 0 {
		sb.WriteString("\n")
		count := min(len(report.Findings), maxItemsToShow)
		for i := 0; i < count; i++ {
			finding := report.Findings[i]
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", finding.Severity, finding.Title))
		}
		if len(report.Findings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Findings)-maxItemsToShow))
		}
	}

	p.printBox("ARCHITECTURE CRITIQUE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReproAudit outputs the audit verdict and any failed checks.
func (p *Printer) PrintReproAudit(report *types.ReproAuditReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:     %s\n", report.Mode))
	sb.WriteString(fmt.Sprintf("Summary:  %s\n", report.Summary))
	for _, check := range report.Checks {
		if check.Passed {
			continue
		}
		sb.WriteString(fmt.Sprintf("  ✗ %s: %s\n", check.CheckID, check.Message))
	}

	p.printBox("REPRODUCIBILITY AUDIT", strings.TrimSuffix(sb.String(), "\n"))
}

func blockedLabel(blocked bool) string {
	if blocked {
		return "BLOCKED"
	}
	return "clear"
}
