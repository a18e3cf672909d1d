package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matteofrigo/imaging-transcriptomics/internal/config"
	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/logging"
	"github.com/matteofrigo/imaging-transcriptomics/internal/outdir"
	"github.com/matteofrigo/imaging-transcriptomics/internal/report"
	"github.com/matteofrigo/imaging-transcriptomics/internal/run"
	"github.com/matteofrigo/imaging-transcriptomics/internal/scan"
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// Parameterization bounds enforced by the argument resolver. The resolver
// is the sole validation authority: the analysis engine trusts these values.
const (
	minComponentCount = 1
	maxComponentCount = 15
	minVarianceTarget = 10.0
	maxVarianceTarget = 100.0
)

// runOptions captures the raw run command flags. The *Set fields record
// flag presence so the resolver can tell an explicit zero from an omitted
// flag.
type runOptions struct {
	input       string
	out         string
	ncomp       int
	ncompSet    bool
	variance    float64
	varianceSet bool
	verbose     bool
	suppress    bool
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command) {
	root.AddCommand(newRunCmd())
}

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a brain scan against the gene expression atlas",
		Long: `Run the full pipeline on one volumetric scan: region averaging, PLS
regression against the gene expression reference, and report emission.

Exactly one of --ncomp and --variance selects the parameterization.

Examples:
  imgtx run --input brain.nii --ncomp 5
  imgtx run -i scan001.nii.gz -v 60 --out /results
  imgtx run -i brain.nii -n 3 --suppress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ncompSet = cmd.Flags().Changed("ncomp")
			opts.varianceSet = cmd.Flags().Changed("variance")
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "",
		"Path to the volumetric scan to analyze (.nii, .nii.gz)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "",
		"Output directory root (defaults to the input's parent directory)")
	cmd.Flags().IntVarP(&opts.ncomp, "ncomp", "n", 0,
		"Number of PLS components (1-15)")
	cmd.Flags().Float64VarP(&opts.variance, "variance", "v", 0,
		"Target explained variance percentage (10-100)")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false,
		"Emit all diagnostic levels to console")
	cmd.Flags().BoolVar(&opts.suppress, "suppress", false,
		"Emit warnings and errors only to console")

	return cmd
}

// ResolveRequest validates the raw flags into an immutable run request.
// It performs no I/O and opens no logger; every violation maps to ErrUsage
// so the process can abort before any file is touched.
func ResolveRequest(opts runOptions) (run.Request, error) {
	usage := func(err error) (run.Request, error) {
		return run.Request{}, errors.Categorize(err, errors.ErrUsage)
	}

	if opts.input == "" {
		return usage(errors.ErrInputRequired)
	}

	if opts.verbose && opts.suppress {
		return usage(errors.ErrConflictingVerbosity)
	}
	profile := logging.ProfileNormal
	switch {
	case opts.verbose:
		profile = logging.ProfileVerbose
	case opts.suppress:
		profile = logging.ProfileSuppressed
	}

	var params transcriptomics.Parameters
	switch {
	case opts.ncompSet && opts.varianceSet:
		return usage(errors.ErrConflictingParameterization)
	case opts.ncompSet:
		if opts.ncomp < minComponentCount || opts.ncomp > maxComponentCount {
			return usage(errors.Wrapf(errors.ErrComponentCountRange,
				"got %d, want %d-%d", opts.ncomp, minComponentCount, maxComponentCount))
		}
		params = transcriptomics.ComponentCount(opts.ncomp)
	case opts.varianceSet:
		if opts.variance < minVarianceTarget || opts.variance > maxVarianceTarget {
			return usage(errors.Wrapf(errors.ErrVarianceTargetRange,
				"got %g, want %g-%g", opts.variance, minVarianceTarget, maxVarianceTarget))
		}
		params = transcriptomics.VarianceTarget(opts.variance)
	default:
		return usage(errors.ErrMissingParameterization)
	}

	return run.Request{
		InputPath: opts.input,
		OutRoot:   opts.out,
		Params:    params,
		Profile:   profile,
	}, nil
}

// runPipeline resolves the request, assembles the collaborators, and hands
// the run to the orchestrator.
func runPipeline(ctx context.Context, out io.Writer, opts runOptions) error {
	// Usage failures abort before any I/O; there is no logger yet, so the
	// error surfaces directly through cobra to stderr.
	req, err := ResolveRequest(opts)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logs, err := logging.New(req.Profile, cfg.Logging)
	if err != nil {
		return err
	}
	defer logs.Close()

	atlasPath, err := config.ResolveDataPath(cfg.Data.AtlasPath)
	if err != nil {
		return err
	}
	expressionPath, err := config.ResolveDataPath(cfg.Data.ExpressionPath)
	if err != nil {
		return err
	}
	labelsPath, err := config.ResolveDataPath(cfg.Data.LabelsPath)
	if err != nil {
		return err
	}

	orch := run.New(
		scan.NewAdapter(atlasPath, cfg.Data.Regions),
		transcriptomics.NewPLS(expressionPath, labelsPath, cfg.Analysis.MaxComponents),
		report.NewRenderer(),
		outdir.NewManager(cfg.Output.DirPrefix, cfg.Output.MaxCollisionSuffix),
		logs,
	)

	summary, err := orch.Execute(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Results written to %s (%d components", summary.OutputDir, summary.NComponents)
	if summary.ArtifactErrors > 0 {
		fmt.Fprintf(out, ", %d artifact(s) failed", summary.ArtifactErrors)
	}
	fmt.Fprintln(out, ")")
	return nil
}
