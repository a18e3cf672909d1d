package run

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/logging"
	"github.com/matteofrigo/imaging-transcriptomics/internal/outdir"
	"github.com/matteofrigo/imaging-transcriptomics/internal/report"
	"github.com/matteofrigo/imaging-transcriptomics/internal/scan"
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// Request is a validated, immutable run request produced by the argument
// resolver. Exactly one parameterization variant is set and the profile is
// one of the three named profiles; the resolver guarantees both.
type Request struct {
	// InputPath is the scan to analyze.
	InputPath string
	// OutRoot is the output directory root; empty means the input's parent.
	OutRoot string
	// Params is the analysis parameterization.
	Params transcriptomics.Parameters
	// Profile is the console verbosity profile.
	Profile logging.Profile
}

// Summary describes a completed run.
type Summary struct {
	// OutputDir is the resolved per-run output directory.
	OutputDir string
	// RunLogPath is the per-run log file inside OutputDir.
	RunLogPath string
	// NComponents is the resolved component count.
	NComponents int
	// ArtifactErrors counts report artifacts that failed to render.
	ArtifactErrors int
}

// Orchestrator sequences one run: ingest, resolve output, analyze, report.
// It owns the failure boundary; every fatal error is logged with its stage
// and input identifiers before being returned. Single pass, no retries.
type Orchestrator struct {
	ingestor scan.Ingestor
	engine   transcriptomics.Engine
	emitter  report.Emitter
	dirs     *outdir.Manager
	logs     *logging.Runtime

	stage Stage
}

// New assembles an orchestrator from its collaborators.
func New(ingestor scan.Ingestor, engine transcriptomics.Engine, emitter report.Emitter,
	dirs *outdir.Manager, logs *logging.Runtime) *Orchestrator {
	return &Orchestrator{
		ingestor: ingestor,
		engine:   engine,
		emitter:  emitter,
		dirs:     dirs,
		logs:     logs,
		stage:    StageUnstarted,
	}
}

// Stage returns the orchestrator's current lifecycle stage.
func (o *Orchestrator) Stage() Stage {
	return o.stage
}

// Execute runs the pipeline for req. Each step runs strictly after the
// previous one succeeds; the first fatal error aborts the run with the
// stage already logged. Report emission is the exception: a failed artifact
// is logged and the remaining artifacts are still attempted, and only a run
// in which every artifact failed is itself a failure.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Summary, error) {
	logger := o.logs.Logger()

	// The request reaching this point is the resolver's guarantee.
	if err := o.transition(StageArgsResolved); err != nil {
		return nil, err
	}
	if err := o.transition(StageLoggerReady); err != nil {
		return nil, err
	}

	label := outdir.RunLabel(req.InputPath)
	logger.Info().
		Str("input", req.InputPath).
		Str("run_label", label).
		Stringer("params", req.Params).
		Msg("run started")

	// Ingest the scan before touching the output location, so a bad input
	// never leaves an empty run directory behind.
	vol, err := o.ingestor.Read(req.InputPath)
	if err != nil {
		return nil, o.fail(logger, req, err, "scan read failed")
	}
	features, err := o.ingestor.Reduce(vol)
	if err != nil {
		return nil, o.fail(logger, req, err, "scan reduction failed")
	}
	if err := o.transition(StageScanIngested); err != nil {
		return nil, err
	}
	logger.Debug().Int("regions", len(features)).Msg("feature vector extracted")

	outRoot := req.OutRoot
	if outRoot == "" {
		outRoot = filepath.Dir(req.InputPath)
	}
	dir, err := o.dirs.Resolve(outRoot, label)
	if err != nil {
		return nil, o.fail(logger, req, err, "output directory resolution failed")
	}
	runLog, err := o.logs.AttachRunSink(dir)
	if err != nil {
		// The run must not proceed silently without its audit trail.
		return nil, o.fail(logger, req, err, "per-run log attachment failed")
	}
	logger = o.logs.Logger()
	if err := o.transition(StageOutputResolved); err != nil {
		return nil, err
	}
	logger.Info().Str("output_dir", dir).Str("run_log", runLog).Msg("output directory resolved")

	result, err := o.engine.Run(ctx, features, req.Params)
	if err != nil {
		return nil, o.fail(logger, req, err, "analysis failed")
	}
	if err := o.transition(StageAnalyzed); err != nil {
		return nil, err
	}
	logger.Info().
		Int("ncomp", result.NComponents).
		Float64("cumulative_variance", result.CumulativeVariance(result.NComponents)).
		Msg("analysis complete")

	if err := o.transition(StageReporting); err != nil {
		return nil, err
	}
	failures := o.emitArtifacts(logger, dir, req.InputPath, result)
	if failures == artifactCount {
		return nil, o.fail(logger, req,
			errors.Wrap(errors.ErrReport, "all report artifacts failed"),
			"report emission failed")
	}
	if err := o.transition(StageDone); err != nil {
		return nil, err
	}

	logger.Info().Str("output_dir", dir).Int("artifact_errors", failures).Msg("run complete")
	return &Summary{
		OutputDir:      dir,
		RunLogPath:     runLog,
		NComponents:    result.NComponents,
		ArtifactErrors: failures,
	}, nil
}

// artifactCount is the number of discrete report emission steps.
const artifactCount = 3

// emitArtifacts renders the three artifacts in sequence, logging each
// failure and continuing, and returns the failure count.
func (o *Orchestrator) emitArtifacts(logger zerolog.Logger, dir, inputPath string,
	result *transcriptomics.Result) int {
	steps := []struct {
		name string
		emit func() error
	}{
		{"plots", func() error { return o.emitter.Plots(dir, result) }},
		{"tabular", func() error { return o.emitter.Tabular(dir, result) }},
		{"document", func() error { return o.emitter.Document(dir, inputPath, result) }},
	}

	failures := 0
	for _, step := range steps {
		if err := step.emit(); err != nil {
			failures++
			logger.Error().Err(err).Str("artifact", step.name).Msg("artifact emission failed")
			continue
		}
		logger.Debug().Str("artifact", step.name).Msg("artifact written")
	}
	return failures
}

// fail logs a fatal error with its stage and input context, moves the
// machine to Failed, and returns the error unchanged.
func (o *Orchestrator) fail(logger zerolog.Logger, req Request, err error, msg string) error {
	logger.Error().
		Err(err).
		Str("stage", string(o.stage)).
		Str("input", req.InputPath).
		Msg(msg)
	o.stage = StageFailed
	return err
}
