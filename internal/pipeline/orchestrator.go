// Package pipeline orchestrates the full figure-generation run: planning,
// contract construction, the refinement loop and the finalization gates.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oluwafemidiakhoa/paperfig/internal/audits"
	"github.com/oluwafemidiakhoa/paperfig/internal/config"
	"github.com/oluwafemidiakhoa/paperfig/internal/critique"
	"github.com/oluwafemidiakhoa/paperfig/internal/docs"
	"github.com/oluwafemidiakhoa/paperfig/internal/inspect"
	"github.com/oluwafemidiakhoa/paperfig/internal/journals"
	"github.com/oluwafemidiakhoa/paperfig/internal/observability"
	"github.com/oluwafemidiakhoa/paperfig/internal/paper"
	"github.com/oluwafemidiakhoa/paperfig/internal/plugins"
	"github.com/oluwafemidiakhoa/paperfig/internal/prompts"
	"github.com/oluwafemidiakhoa/paperfig/internal/providers"
	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/templates"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

// GateError reports a finalization gate that blocked the run. The run's
// artifacts are complete and inspectable; only its acceptance is withheld.
type GateError struct {
	RunID  string
	Stage  string
	Reason string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("run %s blocked at %s gate: %s", e.RunID, e.Stage, e.Reason)
}

// Options configures an Orchestrator
type Options struct {
	Store      *runstore.Store
	Provider   providers.Provider
	Config     *config.Config
	Profile    *types.JournalProfile
	MaxFigures int
	// DocsManifest overrides the manifest path checked during finalization
	DocsManifest string
	// Verbose enables boxed progress summaries on stdout
	Verbose bool
}

// Result bundles everything a completed (or gated) run produced
type Result struct {
	RunID      string
	RunDir     string
	Inspection *types.RunInspection
	Drift      *docs.DriftReport
	ArchReport *types.ArchitectureCritiqueReport
	Audit      *types.ReproAuditReport
}

// Orchestrator drives runs end to end
type Orchestrator struct {
	store    *runstore.Store
	provider providers.Provider
	cfg      *config.Config
	profile  *types.JournalProfile
	printer  *observability.Printer
	opts     Options
}

// New creates an orchestrator. Store, provider and config are required.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("orchestrator requires a run store")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("orchestrator requires a provider")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("orchestrator requires a config")
	}
	o := &Orchestrator{
		store:    opts.Store,
		provider: opts.Provider,
		cfg:      opts.Config,
		profile:  opts.Profile,
		opts:     opts,
	}
	if opts.Verbose {
		o.printer = observability.NewPrinter(os.Stdout)
	}
	return o, nil
}

// runParams carries everything one run executes against. Generate uses the
// orchestrator's own config and profile; Rerun substitutes the prior run's
// persisted ones.
type runParams struct {
	paperPath  string
	rerunOf    string
	reusedPlan []types.FigurePlan
	cfg        *config.Config
	profile    *types.JournalProfile
}

// Generate runs the full pipeline over the paper at paperPath
func (o *Orchestrator) Generate(ctx context.Context, paperPath string) (*Result, error) {
	return o.run(ctx, runParams{paperPath: paperPath, cfg: o.cfg, profile: o.profile})
}

// Rerun replays a prior run: its persisted plan is carried over verbatim
// (planning is never re-invoked) and its recorded thresholds, modes, template
// pack, seed and journal profile take precedence over the orchestrator's
// current configuration.
func (o *Orchestrator) Rerun(ctx context.Context, priorRunID string) (*Result, error) {
	priorMeta, err := o.store.ReadMetadata(priorRunID)
	if err != nil {
		return nil, err
	}
	plan, err := o.store.ReadPlan(priorRunID)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("run %s persisted an empty plan; nothing to replay", priorRunID)
	}
	profile, err := o.priorProfile(priorRunID, priorMeta)
	if err != nil {
		return nil, err
	}
	return o.run(ctx, runParams{
		paperPath:  priorMeta.PaperPath,
		rerunOf:    priorRunID,
		reusedPlan: plan,
		cfg:        o.replayConfig(priorMeta),
		profile:    profile,
	})
}

// replayConfig overlays a prior run's recorded settings onto the current
// config so the rerun executes against the configuration the prior run
// actually used.
func (o *Orchestrator) replayConfig(meta *types.RunMetadata) *config.Config {
	cfg := *o.cfg
	cfg.MaxIterations = meta.MaxIterations
	cfg.QualityThreshold = meta.QualityThreshold
	cfg.DimensionThreshold = meta.DimensionThreshold
	cfg.TemplatePack = meta.TemplatePack
	cfg.ArchCritiqueMode = meta.ArchCritiqueMode
	cfg.ArchCritiqueBlockSeverity = string(meta.ArchCritiqueBlockSeverity)
	cfg.ReproAuditMode = meta.ReproAuditMode
	cfg.Seed = meta.Seed
	return &cfg
}

// priorProfile reloads the journal profile snapshot a prior run persisted
func (o *Orchestrator) priorProfile(priorRunID string, meta *types.RunMetadata) (*types.JournalProfile, error) {
	if meta.JournalProfile == "" {
		return nil, nil
	}
	profile := &types.JournalProfile{}
	path := filepath.Join(o.store.RunDir(priorRunID), runstore.JournalProfileFile)
	if err := runstore.ReadJSON(path, profile); err != nil {
		return nil, fmt.Errorf("run %s names journal profile %q but its snapshot is unreadable: %w", priorRunID, meta.JournalProfile, err)
	}
	return profile, nil
}

func (o *Orchestrator) run(ctx context.Context, params runParams) (*Result, error) {
	runID := runstore.NewRunID()
	runDir := o.store.RunDir(runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	logger, closeLog, err := newRunLogger(runDir, runID)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	logger.WithField("paper", params.paperPath).Info("run started")

	content, err := paper.Load(params.paperPath)
	if err != nil {
		return nil, err
	}
	if err := runstore.WriteJSON(filepath.Join(runDir, runstore.SectionsFile), content.Sections); err != nil {
		return nil, err
	}

	catalog, err := templates.Load(params.cfg.TemplatePack, params.cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	meta := buildMetadata(runID, params)
	if err := o.store.WriteMetadata(runID, meta); err != nil {
		return nil, err
	}
	if params.profile != nil {
		if err := runstore.WriteJSON(filepath.Join(runDir, runstore.JournalProfileFile), params.profile); err != nil {
			return nil, err
		}
	}
	if err := runstore.WriteJSON(filepath.Join(runDir, runstore.PluginsFile), plugins.Default().List()); err != nil {
		return nil, err
	}

	plan, err := o.planFigures(ctx, runDir, content, catalog, params, logger)
	if err != nil {
		return nil, err
	}
	if err := o.store.WritePlan(runID, plan); err != nil {
		return nil, err
	}
	if o.printer != nil {
		o.printer.PrintPlan(plan)
	}

	critiquePrompt := prompts.MustGet(prompts.PipelineFile, prompts.KeyCritiqueFigure)
	if err := prompts.WriteProvenance(runDir, "critique_figure", critiquePrompt); err != nil {
		return nil, err
	}

	captions := make([]string, 0, len(plan))
	runTrace := make([]types.Traceability, 0, len(plan))
	styleRefs := make([]map[string]string, 0, len(plan))
	for _, figurePlan := range plan {
		template := templates.ForPlan(catalog, figurePlan)
		outcome, err := o.runFigure(ctx, runID, runDir, content, figurePlan, template, meta, logger)
		if err != nil {
			return nil, err
		}
		captions = append(captions, fmt.Sprintf("%s: %s", figurePlan.FigureID, outcome.caption))
		runTrace = append(runTrace, outcome.traceability)
		if template != nil {
			styleRefs = append(styleRefs, map[string]string{
				"figure_id":     figurePlan.FigureID,
				"template_id":   template.TemplateID,
				"caption_style": template.CaptionStyle,
			})
		}
	}

	if err := os.WriteFile(filepath.Join(runDir, runstore.CaptionsFile), []byte(strings.Join(captions, "\n")+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write captions: %w", err)
	}
	if err := runstore.WriteJSON(filepath.Join(runDir, runstore.TraceabilityFile), runTrace); err != nil {
		return nil, err
	}
	if err := runstore.WriteJSON(filepath.Join(runDir, runstore.StyleRefsFile), styleRefs); err != nil {
		return nil, err
	}

	return o.finalize(runID, runDir, plan, meta, params.cfg, logger)
}

// finalize runs the post-loop stages in their fixed order: inspection, docs
// drift, architecture critique, reproducibility audit.
func (o *Orchestrator) finalize(runID, runDir string, plan []types.FigurePlan, meta *types.RunMetadata, cfg *config.Config, logger *logrus.Entry) (*Result, error) {
	result := &Result{RunID: runID, RunDir: runDir}

	inspection, err := inspect.BuildSnapshot(o.store, runID)
	if err != nil {
		return result, err
	}
	if err := runstore.WriteJSON(filepath.Join(runDir, runstore.InspectFile), inspection); err != nil {
		return result, err
	}
	result.Inspection = inspection
	if o.printer != nil {
		o.printer.PrintInspection(inspection)
	}

	manifest := o.opts.DocsManifest
	if manifest == "" {
		manifest = docs.DefaultManifest
	}
	drift, err := docs.CheckDrift(manifest)
	if err != nil {
		return result, err
	}
	if err := docs.WriteReport(runDir, drift); err != nil {
		return result, err
	}
	result.Drift = drift
	if !drift.InSync() {
		logger.WithField("manifest", manifest).Error("documentation drift detected")
		return result, &GateError{RunID: runID, Stage: "docs", Reason: "documentation manifest does not match the command catalog"}
	}

	if meta.ArchCritiqueMode != "off" {
		rules, err := plugins.Default().ResolveCritiqueRules(cfg.EnabledCritiqueRules)
		if err != nil {
			return result, err
		}
		archPrompt := prompts.MustGet(prompts.PipelineFile, prompts.KeyCritiqueArch)
		if err := prompts.WriteProvenance(runDir, "critique_architecture", archPrompt); err != nil {
			return result, err
		}
		report := critique.Critique(&critique.RuleContext{
			RunID:      runID,
			RunDir:     runDir,
			Plan:       plan,
			Inspection: inspection,
		}, rules, meta.ArchCritiqueBlockSeverity)
		if err := critique.WriteReport(runDir, report); err != nil {
			return result, err
		}
		result.ArchReport = report
		if o.printer != nil {
			o.printer.PrintArchitectureCritique(report)
		}
		if report.Blocked {
			logger.WithField("findings", len(report.Findings)).Error("architecture critique blocked the run")
			return result, &GateError{RunID: runID, Stage: "architecture", Reason: report.Summary}
		}
	}

	checks, err := plugins.Default().ResolveReproChecks(cfg.EnabledReproChecks)
	if err != nil {
		return result, err
	}
	audit := audits.RunReproducibilityAudit(&audits.CheckContext{
		RunID:              runID,
		RunDir:             runDir,
		Metadata:           meta,
		ExpectedConfigHash: cfg.Fingerprint(),
	}, meta.ReproAuditMode, checks)
	if err := audits.WriteReport(runDir, audit); err != nil {
		return result, err
	}
	result.Audit = audit
	if o.printer != nil {
		o.printer.PrintReproAudit(audit)
	}
	if !audit.Passed && meta.ReproAuditMode == audits.ModeHard {
		logger.Error("reproducibility audit failed in hard mode")
		return result, &GateError{RunID: runID, Stage: "reproducibility", Reason: audit.Summary}
	}

	logger.WithFields(logrus.Fields{
		"accepted": inspection.Aggregate.AcceptedCount,
		"failed":   inspection.Aggregate.FailedCount,
	}).Info("run finished")
	return result, nil
}

func (o *Orchestrator) planFigures(ctx context.Context, runDir string, content *types.PaperContent, catalog *types.FlowTemplateCatalog, params runParams, logger *logrus.Entry) ([]types.FigurePlan, error) {
	planPrompt := prompts.MustGet(prompts.PipelineFile, prompts.KeyPlanFigure)
	if err := prompts.WriteProvenance(runDir, "plan_figure", planPrompt); err != nil {
		return nil, err
	}

	if len(params.reusedPlan) > 0 {
		logger.WithField("figures", len(params.reusedPlan)).Info("reusing prior plan")
		return params.reusedPlan, nil
	}

	maxFigures := o.opts.MaxFigures
	if maxFigures <= 0 {
		maxFigures = 6
	}
	plan, err := o.provider.PlanFigures(ctx, providers.PlanRequest{
		Paper:      content,
		Catalog:    catalog,
		MaxFigures: maxFigures,
	})
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}
	if err := journals.EnforceRequirements(params.profile, plan); err != nil {
		return nil, err
	}
	logger.WithField("figures", len(plan)).Info("plan accepted")
	return plan, nil
}

func buildMetadata(runID string, params runParams) *types.RunMetadata {
	cfg := params.cfg
	meta := &types.RunMetadata{
		SchemaVersion:             types.RunMetadataSchemaVersion,
		RunID:                     runID,
		PaperPath:                 params.paperPath,
		CreatedAt:                 runstore.Timestamp(),
		MaxIterations:             cfg.MaxIterations,
		QualityThreshold:          cfg.QualityThreshold,
		DimensionThreshold:        cfg.DimensionThreshold,
		TemplatePack:              cfg.TemplatePack,
		ArchCritiqueMode:          cfg.ArchCritiqueMode,
		ArchCritiqueBlockSeverity: types.Severity(cfg.ArchCritiqueBlockSeverity),
		ReproAuditMode:            cfg.ReproAuditMode,
		ConfigHash:                cfg.Fingerprint(),
		Seed:                      cfg.Seed,
		RerunOf:                   params.rerunOf,
		ReusedPlan:                len(params.reusedPlan) > 0,
	}
	journals.Apply(params.profile, meta)
	return meta
}

func newRunLogger(runDir, runID string) (*logrus.Entry, func(), error) {
	file, err := os.OpenFile(filepath.Join(runDir, runstore.RunLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger.WithField("run_id", runID), func() { _ = file.Close() }, nil
}
