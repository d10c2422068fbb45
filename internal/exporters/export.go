// Package exporters copies a run's final figures into a publication-ready
// bundle: SVGs, LaTeX include snippets and optional PNG rasterizations.
package exporters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oluwafemidiakhoa/paperfig/internal/contracts"
	"github.com/oluwafemidiakhoa/paperfig/internal/execx"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
)

// ReportFile is the export report name written into the destination directory
const ReportFile = "export_report.json"

// defaultRasterizeTimeout bounds each external conversion
const defaultRasterizeTimeout = 30 * time.Second

// Options configures an export
type Options struct {
	// PNG enables rasterization through an external converter
	PNG bool
	// Converter overrides the rasterizer binary (default rsvg-convert)
	Converter string
	// Runner overrides the command runner, mainly for tests
	Runner *execx.Runner
}

// FigureExport records the outcome for one exported figure
type FigureExport struct {
	FigureID       string   `json:"figure_id"`
	SVGPath        string   `json:"svg_path"`
	LaTeXPath      string   `json:"latex_path"`
	PNGPath        string   `json:"png_path,omitempty"`
	PNGStatus      string   `json:"png_status,omitempty"`
	Caption        string   `json:"caption,omitempty"`
	ContractErrors []string `json:"contract_errors"`
}

// Report is the persisted export summary
type Report struct {
	RunID       string         `json:"run_id"`
	DestDir     string         `json:"dest_dir"`
	Figures     []FigureExport `json:"figures"`
	Skipped     []string       `json:"skipped"`
	GeneratedAt string         `json:"generated_at"`
}

// Export copies every figure with a final artifact set into destDir. Each
// final contract is re-validated on the way out; violations are recorded but
// do not block the export.
func Export(ctx context.Context, store *runstore.Store, runID, destDir string, opts Options) (*Report, error) {
	runDir, err := store.Require(runID)
	if err != nil {
		return nil, err
	}
	plan, err := store.ReadPlan(runID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	captions := readCaptions(runDir)

	report := &Report{
		RunID:       runID,
		DestDir:     destDir,
		Figures:     []FigureExport{},
		Skipped:     []string{},
		GeneratedAt: runstore.Timestamp(),
	}

	runner := opts.Runner
	if runner == nil {
		runner = execx.NewRunner(defaultRasterizeTimeout)
	}
	converter := opts.Converter
	if converter == "" {
		converter = "rsvg-convert"
	}

	for _, figurePlan := range plan {
		finalDir := runstore.FinalDir(runstore.FigureDir(runDir, figurePlan.FigureID))
		srcSVG := filepath.Join(finalDir, runstore.FinalFigureFile)
		if _, err := os.Stat(srcSVG); err != nil {
			report.Skipped = append(report.Skipped, figurePlan.FigureID)
			continue
		}

		export := FigureExport{
			FigureID:       figurePlan.FigureID,
			Caption:        captions[figurePlan.FigureID],
			ContractErrors: []string{},
		}

		export.SVGPath = filepath.Join(destDir, figurePlan.FigureID+".svg")
		if err := runstore.CopyFile(srcSVG, export.SVGPath); err != nil {
			return nil, err
		}

		export.LaTeXPath = filepath.Join(destDir, figurePlan.FigureID+".tex")
		snippet := latexSnippet(figurePlan.FigureID, export.Caption)
		if err := os.WriteFile(export.LaTeXPath, []byte(snippet), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write LaTeX snippet: %w", err)
		}

		if contract, err := contracts.Load(finalDir); err != nil {
			export.ContractErrors = append(export.ContractErrors, fmt.Sprintf("contract unreadable: %v", err))
		} else if errs := contracts.Validate(*contract); len(errs) > 0 {
			export.ContractErrors = errs
		}

		if opts.PNG {
			export.PNGPath = filepath.Join(destDir, figurePlan.FigureID+".png")
			result := runner.Run(ctx, converter, "-o", export.PNGPath, export.SVGPath)
			export.PNGStatus = result.Status
			if result.Status != execx.StatusOK {
				export.PNGPath = ""
			}
		}

		report.Figures = append(report.Figures, export)
	}

	if err := runstore.WriteJSON(filepath.Join(destDir, ReportFile), report); err != nil {
		return nil, err
	}
	return report, nil
}

// readCaptions parses the run's captions file into figure-id keyed text
func readCaptions(runDir string) map[string]string {
	captions := make(map[string]string)
	data, err := os.ReadFile(filepath.Join(runDir, runstore.CaptionsFile))
	if err != nil {
		return captions
	}
	for _, line := range strings.Split(string(data), "\n") {
		id, caption, found := strings.Cut(line, ": ")
		if found && id != "" {
			captions[id] = caption
		}
	}
	return captions
}

func latexSnippet(figureID, caption string) string {
	var sb strings.Builder
	sb.WriteString("\\begin{figure}[t]\n")
	sb.WriteString("  \\centering\n")
	fmt.Fprintf(&sb, "  \\includesvg[width=\\linewidth]{%s}\n", figureID)
	if caption != "" {
		fmt.Fprintf(&sb, "  \\caption{%s}\n", caption)
	}
	fmt.Fprintf(&sb, "  \\label{fig:%s}\n", figureID)
	sb.WriteString("\\end{figure}\n")
	return sb.String()
}
