package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/logging"
	"github.com/matteofrigo/imaging-transcriptomics/internal/outdir"
	"github.com/matteofrigo/imaging-transcriptomics/internal/scan"
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// fakeIngestor counts calls and fails on demand.
type fakeIngestor struct {
	readErr   error
	reduceErr error
	reads     int
	reduces   int
}

func (f *fakeIngestor) Read(_ string) (*scan.Volume, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return &scan.Volume{Dims: [3]int{1, 1, 4}, Data: []float64{1, 2, 3, 4}}, nil
}

func (f *fakeIngestor) Reduce(_ *scan.Volume) (scan.FeatureVector, error) {
	f.reduces++
	if f.reduceErr != nil {
		return nil, f.reduceErr
	}
	return scan.FeatureVector{1, 2, 3, 4}, nil
}

// fakeEngine returns a canned result or error.
type fakeEngine struct {
	err  error
	runs int
}

func (f *fakeEngine) Run(_ context.Context, _ scan.FeatureVector, _ transcriptomics.Parameters) (*transcriptomics.Result, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return &transcriptomics.Result{
		NComponents:       2,
		ExplainedVariance: []float64{0.6, 0.2},
		Genes:             []transcriptomics.GeneScore{{Label: "GENE1", Score: 0.9, Rank: 1}},
	}, nil
}

// fakeEmitter fails selected artifacts and records call order.
type fakeEmitter struct {
	plotsErr    error
	tabularErr  error
	documentErr error
	calls       []string
}

func (f *fakeEmitter) Plots(_ string, _ *transcriptomics.Result) error {
	f.calls = append(f.calls, "plots")
	return f.plotsErr
}

func (f *fakeEmitter) Tabular(_ string, _ *transcriptomics.Result) error {
	f.calls = append(f.calls, "tabular")
	return f.tabularErr
}

func (f *fakeEmitter) Document(_, _ string, _ *transcriptomics.Result) error {
	f.calls = append(f.calls, "document")
	return f.documentErr
}

// harness bundles an orchestrator over fakes with a temp output root.
type harness struct {
	orch     *Orchestrator
	ingestor *fakeIngestor
	engine   *fakeEngine
	emitter  *fakeEmitter
	logs     *bytes.Buffer
	inputDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ingestor: &fakeIngestor{},
		engine:   &fakeEngine{},
		emitter:  &fakeEmitter{},
		logs:     &bytes.Buffer{},
		inputDir: t.TempDir(),
	}
	rt := logging.NewWithWriter(logging.ProfileVerbose, h.logs)
	t.Cleanup(rt.Close)
	h.orch = New(h.ingestor, h.engine, h.emitter, outdir.NewManager("Imt_", 99), rt)
	return h
}

func (h *harness) request() Request {
	return Request{
		InputPath: filepath.Join(h.inputDir, "brain.nii"),
		Params:    transcriptomics.ComponentCount(2),
		Profile:   logging.ProfileVerbose,
	}
}

// TestOrchestrator_Execute_Success tests the full sequence and artifacts.
func TestOrchestrator_Execute_Success(t *testing.T) {
	h := newHarness(t)

	summary, err := h.orch.Execute(context.Background(), h.request())
	require.NoError(t, err)

	assert.Equal(t, StageDone, h.orch.Stage())
	assert.Equal(t, filepath.Join(h.inputDir, "Imt_brain"), summary.OutputDir)
	assert.Equal(t, 2, summary.NComponents)
	assert.Zero(t, summary.ArtifactErrors)
	assert.FileExists(t, summary.RunLogPath)

	// Single pass: each collaborator invoked exactly once, in order.
	assert.Equal(t, 1, h.ingestor.reads)
	assert.Equal(t, 1, h.ingestor.reduces)
	assert.Equal(t, 1, h.engine.runs)
	assert.Equal(t, []string{"plots", "tabular", "document"}, h.emitter.calls)
}

// TestOrchestrator_Execute_DefaultsOutRootToInputParent tests the --out
// default.
func TestOrchestrator_Execute_DefaultsOutRootToInputParent(t *testing.T) {
	h := newHarness(t)

	summary, err := h.orch.Execute(context.Background(), h.request())
	require.NoError(t, err)
	assert.Equal(t, h.inputDir, filepath.Dir(summary.OutputDir))
}

// TestOrchestrator_Execute_ExplicitOutRoot tests --out override.
func TestOrchestrator_Execute_ExplicitOutRoot(t *testing.T) {
	h := newHarness(t)
	outRoot := t.TempDir()

	req := h.request()
	req.OutRoot = outRoot

	summary, err := h.orch.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outRoot, "Imt_brain"), summary.OutputDir)
}

// TestOrchestrator_Execute_IngestionFailure tests that a bad scan aborts
// before any output directory exists.
func TestOrchestrator_Execute_IngestionFailure(t *testing.T) {
	h := newHarness(t)
	h.ingestor.readErr = errors.Categorize(errors.ErrScanShape, errors.ErrIngestion)

	_, err := h.orch.Execute(context.Background(), h.request())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIngestion)
	assert.Equal(t, StageFailed, h.orch.Stage())

	// No output directory was created.
	assert.NoDirExists(t, filepath.Join(h.inputDir, "Imt_brain"))
	// Analysis and reporting never ran.
	assert.Zero(t, h.engine.runs)
	assert.Empty(t, h.emitter.calls)
	// Failure was logged with stage context.
	assert.Contains(t, h.logs.String(), "scan read failed")
	assert.Contains(t, h.logs.String(), "logger_ready")
}

// TestOrchestrator_Execute_AnalysisFailure tests the no-retry fatal policy.
func TestOrchestrator_Execute_AnalysisFailure(t *testing.T) {
	h := newHarness(t)
	h.engine.err = errors.Categorize(errors.ErrDegenerateFit, errors.ErrAnalysis)

	_, err := h.orch.Execute(context.Background(), h.request())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAnalysis)
	assert.Equal(t, StageFailed, h.orch.Stage())
	assert.Equal(t, 1, h.engine.runs)
	assert.Empty(t, h.emitter.calls)
}

// TestOrchestrator_Execute_PartialReportFailure tests that one failed
// artifact does not abort the rest of the emission or the run.
func TestOrchestrator_Execute_PartialReportFailure(t *testing.T) {
	h := newHarness(t)
	h.emitter.plotsErr = errors.Wrap(errors.ErrReport, "svg")

	summary, err := h.orch.Execute(context.Background(), h.request())
	require.NoError(t, err)

	assert.Equal(t, StageDone, h.orch.Stage())
	assert.Equal(t, 1, summary.ArtifactErrors)
	// Remaining artifacts were still attempted.
	assert.Equal(t, []string{"plots", "tabular", "document"}, h.emitter.calls)
	assert.Contains(t, h.logs.String(), "artifact emission failed")
}

// TestOrchestrator_Execute_AllArtifactsFailed tests the total-failure case.
func TestOrchestrator_Execute_AllArtifactsFailed(t *testing.T) {
	h := newHarness(t)
	h.emitter.plotsErr = errors.Wrap(errors.ErrReport, "svg")
	h.emitter.tabularErr = errors.Wrap(errors.ErrReport, "csv")
	h.emitter.documentErr = errors.Wrap(errors.ErrReport, "md")

	_, err := h.orch.Execute(context.Background(), h.request())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrReport)
	assert.Equal(t, StageFailed, h.orch.Stage())
	assert.Equal(t, []string{"plots", "tabular", "document"}, h.emitter.calls)
}

// TestOrchestrator_Execute_RunLogReceivesEvents tests the per-run audit
// trail.
func TestOrchestrator_Execute_RunLogReceivesEvents(t *testing.T) {
	h := newHarness(t)

	summary, err := h.orch.Execute(context.Background(), h.request())
	require.NoError(t, err)

	data, err := os.ReadFile(summary.RunLogPath) //#nosec G304 -- test file path
	require.NoError(t, err)
	assert.Contains(t, string(data), "analysis complete")
	assert.Contains(t, string(data), "run complete")
}

// TestOrchestrator_Execute_SecondRunGetsFreshDir tests collision avoidance
// across back-to-back runs of the same input.
func TestOrchestrator_Execute_SecondRunGetsFreshDir(t *testing.T) {
	h := newHarness(t)

	first, err := h.orch.Execute(context.Background(), h.request())
	require.NoError(t, err)

	// The machine is single pass; a new run needs a new orchestrator.
	h2 := &harness{
		ingestor: &fakeIngestor{},
		engine:   &fakeEngine{},
		emitter:  &fakeEmitter{},
		logs:     &bytes.Buffer{},
		inputDir: h.inputDir,
	}
	rt := logging.NewWithWriter(logging.ProfileVerbose, h2.logs)
	t.Cleanup(rt.Close)
	h2.orch = New(h2.ingestor, h2.engine, h2.emitter, outdir.NewManager("Imt_", 99), rt)

	second, err := h2.orch.Execute(context.Background(), h2.request())
	require.NoError(t, err)
	assert.NotEqual(t, first.OutputDir, second.OutputDir)
}

// TestOrchestrator_Execute_NotReusable tests that a terminal orchestrator
// rejects a second pass instead of re-entering stages.
func TestOrchestrator_Execute_NotReusable(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.Execute(context.Background(), h.request())
	require.NoError(t, err)

	_, err = h.orch.Execute(context.Background(), h.request())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidTransition)
}
