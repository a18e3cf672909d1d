package transcriptomics

import (
	"context"

	"github.com/matteofrigo/imaging-transcriptomics/internal/scan"
)

// GeneScore is one gene's association with the imaging pattern.
type GeneScore struct {
	// Label is the gene symbol.
	Label string
	// Score is the gene's weight on the first latent component.
	Score float64
	// Rank is the 1-based position after sorting scores descending.
	Rank int
}

// Result is the outcome of one analysis run. It is consumed immediately by
// the report emitter; only its rendered artifacts persist.
type Result struct {
	// NComponents is the resolved number of latent components.
	NComponents int
	// ExplainedVariance holds the fraction of response variance explained
	// by each extracted component, in extraction order.
	ExplainedVariance []float64
	// Genes is the association table, ranked by descending score.
	Genes []GeneScore
}

// CumulativeVariance returns the summed explained-variance fractions of the
// first n components.
func (r *Result) CumulativeVariance(n int) float64 {
	if n > len(r.ExplainedVariance) {
		n = len(r.ExplainedVariance)
	}
	total := 0.0
	for _, v := range r.ExplainedVariance[:n] {
		total += v
	}
	return total
}

// Engine runs the gene-association analysis. The orchestrator depends on
// this interface; PLS is the default implementation.
type Engine interface {
	Run(ctx context.Context, features scan.FeatureVector, params Parameters) (*Result, error)
}
