// Package errors provides centralized error handling for the imaging
// transcriptomics pipeline.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Category sentinels. Every error produced by the pipeline wraps exactly one
// of these five, so callers can map any failure to its stage with errors.Is().
var (
	// ErrUsage indicates bad or contradictory command-line input. Reported
	// before any logger exists; the process must exit without touching disk.
	ErrUsage = errors.New("usage error")

	// ErrIO indicates an unreadable input or an unwritable output location.
	ErrIO = errors.New("io error")

	// ErrIngestion indicates a malformed or dimensionally incompatible scan.
	ErrIngestion = errors.New("scan ingestion failed")

	// ErrAnalysis indicates a numerically degenerate or otherwise failed
	// analysis fit. Never retried.
	ErrAnalysis = errors.New("analysis failed")

	// ErrReport indicates a failure to render one report artifact. Logged,
	// does not abort the remaining artifact steps.
	ErrReport = errors.New("report emission failed")
)

// Fine-grained sentinels. Each wraps into one of the categories above at the
// point of use; they exist so tests and callers can distinguish specific
// conditions.
var (
	// ErrMissingParameterization indicates neither --ncomp nor --variance was supplied.
	ErrMissingParameterization = errors.New("one of --ncomp or --variance is required")

	// ErrConflictingParameterization indicates both --ncomp and --variance were supplied.
	ErrConflictingParameterization = errors.New("--ncomp and --variance are mutually exclusive")

	// ErrConflictingVerbosity indicates both --verbose and --suppress were supplied.
	ErrConflictingVerbosity = errors.New("--verbose and --suppress are mutually exclusive")

	// ErrComponentCountRange indicates a component count outside [1,15].
	ErrComponentCountRange = errors.New("component count out of range")

	// ErrVarianceTargetRange indicates a variance target outside [10,100].
	ErrVarianceTargetRange = errors.New("variance target out of range")

	// ErrInputRequired indicates the required input path was not supplied.
	ErrInputRequired = errors.New("input path is required")

	// ErrUnsupportedFormat indicates the scan file extension is not a
	// supported volumetric format.
	ErrUnsupportedFormat = errors.New("unsupported scan format")

	// ErrScanShape indicates the scan dimensions do not match the parcellation atlas.
	ErrScanShape = errors.New("scan shape does not match atlas")

	// ErrEmptyRegion indicates an atlas region with no voxels in the scan.
	ErrEmptyRegion = errors.New("atlas region has no voxels")

	// ErrOutputDirConflict indicates the collision-avoidance suffix space
	// for the output directory is exhausted.
	ErrOutputDirConflict = errors.New("output directory name conflicts exhausted")

	// ErrRunSinkAttach indicates the per-run log file could not be attached.
	// The run must not proceed without its audit trail.
	ErrRunSinkAttach = errors.New("cannot attach per-run log sink")

	// ErrDegenerateFit indicates the regression collapsed (zero-variance
	// response or vanishing weight vector).
	ErrDegenerateFit = errors.New("numerically degenerate fit")

	// ErrExpressionData indicates the gene expression matrix or its labels
	// could not be loaded or are inconsistent.
	ErrExpressionData = errors.New("invalid gene expression data")

	// ErrInvalidTransition indicates an attempt to make an invalid run
	// stage transition.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")
)

// IsFatal reports whether err aborts the run. Report artifact failures are
// the only non-fatal category.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrReport)
}
