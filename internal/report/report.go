// Package report renders the persisted artifacts of an analysis run: an
// explained-variance plot, a tabular export of the gene association
// results, and a combined summary document.
//
// Each artifact is a discrete, independently failing step; the orchestrator
// decides whether to continue past a failed one.
package report

import (
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// Artifact file names created inside the run output directory.
const (
	PlotFileName     = "explained_variance.svg"
	TabularFileName  = "gene_results.csv"
	DocumentFileName = "report.md"
)

// Emitter renders run artifacts into an output directory. The orchestrator
// depends on this interface; Renderer is the default implementation.
type Emitter interface {
	// Plots renders the explained-variance chart.
	Plots(dir string, res *transcriptomics.Result) error

	// Tabular exports the gene association table as CSV.
	Tabular(dir string, res *transcriptomics.Result) error

	// Document writes the combined summary referencing the original input.
	Document(dir, inputPath string, res *transcriptomics.Result) error
}

// Renderer is the default Emitter writing SVG, CSV, and markdown files.
type Renderer struct{}

// NewRenderer returns the default artifact renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}
