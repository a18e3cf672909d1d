package transcriptomics

import (
	"context"
	"math"
	"sort"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/scan"
)

// weightEpsilon is the threshold below which a weight vector norm is
// treated as numerically degenerate.
const weightEpsilon = 1e-12

// PLS implements Engine with a PLS1 (NIPALS) regression of the z-scored
// feature vector on the z-scored gene expression matrix.
type PLS struct {
	expressionPath string
	labelsPath     string
	maxComponents  int
}

// NewPLS returns a PLS engine reading reference data from the given paths.
// maxComponents caps extraction when resolving a variance target.
func NewPLS(expressionPath, labelsPath string, maxComponents int) *PLS {
	return &PLS{
		expressionPath: expressionPath,
		labelsPath:     labelsPath,
		maxComponents:  maxComponents,
	}
}

// Run fits the regression and produces the gene association table.
//
// For a fixed component count, exactly that many components are extracted.
// For a variance target, components are extracted until their cumulative
// explained response variance reaches the target percentage, capped at the
// engine's component limit. A zero-variance response or a vanishing weight
// vector yields ErrAnalysis.
func (e *PLS) Run(ctx context.Context, features scan.FeatureVector, params Parameters) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Categorize(err, errors.ErrAnalysis)
	}

	matrix, err := loadExpression(e.expressionPath, len(features))
	if err != nil {
		return nil, err
	}
	labels, err := loadLabels(e.labelsPath, len(matrix[0]))
	if err != nil {
		return nil, err
	}

	y, ok := zscoreVector(features)
	if !ok {
		return nil, errors.Categorize(
			errors.Wrap(errors.ErrDegenerateFit, "feature vector has no variance"),
			errors.ErrAnalysis)
	}

	limit := e.maxComponents
	if n, fixed := params.AsComponentCount(); fixed {
		limit = n
	}

	explained, weights, err := fit(matrix, y, limit)
	if err != nil {
		return nil, err
	}

	ncomp := len(explained)
	if target, byVariance := params.AsVarianceTarget(); byVariance {
		ncomp = componentsForTarget(explained, target)
	}

	return &Result{
		NComponents:       ncomp,
		ExplainedVariance: explained[:ncomp],
		Genes:             rankGenes(labels, weights),
	}, nil
}

// fit runs NIPALS PLS1, returning the per-component explained response
// variance fractions and the first-component gene weights. X and y are
// deflated in place.
func fit(x [][]float64, y []float64, components int) (explained []float64, firstWeights []float64, err error) {
	rows := len(x)
	cols := len(x[0])

	yy0 := dot(y, y)
	if yy0 == 0 {
		return nil, nil, errors.Categorize(
			errors.Wrap(errors.ErrDegenerateFit, "response has no variance"),
			errors.ErrAnalysis)
	}

	residual := make([]float64, rows)
	copy(residual, y)

	for c := 0; c < components; c++ {
		// Weight vector: correlation of each gene with the residual.
		w := make([]float64, cols)
		for j := range cols {
			for i := range rows {
				w[j] += x[i][j] * residual[i]
			}
		}
		norm := math.Sqrt(dot(w, w))
		if norm < weightEpsilon {
			if c == 0 {
				return nil, nil, errors.Categorize(
					errors.Wrap(errors.ErrDegenerateFit, "weight vector vanished"),
					errors.ErrAnalysis)
			}
			// Residual structure exhausted; later components explain nothing.
			explained = append(explained, 0)
			continue
		}
		for j := range w {
			w[j] /= norm
		}

		// Scores.
		t := make([]float64, rows)
		for i := range rows {
			for j := range cols {
				t[i] += x[i][j] * w[j]
			}
		}
		tt := dot(t, t)
		if tt < weightEpsilon {
			explained = append(explained, 0)
			continue
		}

		ty := dot(t, residual)
		explained = append(explained, (ty*ty)/(tt*yy0))

		// Deflate X and the response residual.
		for j := range cols {
			p := 0.0
			for i := range rows {
				p += x[i][j] * t[i]
			}
			p /= tt
			for i := range rows {
				x[i][j] -= t[i] * p
			}
		}
		q := ty / tt
		for i := range rows {
			residual[i] -= q * t[i]
		}

		if c == 0 {
			firstWeights = w
		}
	}

	return explained, firstWeights, nil
}

// componentsForTarget returns the smallest component count whose cumulative
// explained variance reaches the target percentage, capped at the number of
// extracted components.
func componentsForTarget(explained []float64, target float64) int {
	cumulative := 0.0
	for i, v := range explained {
		cumulative += v
		if cumulative*100 >= target {
			return i + 1
		}
	}
	return len(explained)
}

// rankGenes pairs labels with first-component weights and ranks them by
// descending score.
func rankGenes(labels []string, weights []float64) []GeneScore {
	genes := make([]GeneScore, len(labels))
	for i, label := range labels {
		genes[i] = GeneScore{Label: label, Score: weights[i]}
	}
	sort.SliceStable(genes, func(a, b int) bool {
		return genes[a].Score > genes[b].Score
	})
	for i := range genes {
		genes[i].Rank = i + 1
	}
	return genes
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
