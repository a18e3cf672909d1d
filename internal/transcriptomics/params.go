// Package transcriptomics provides the gene-association analysis engine:
// partial least squares regression of a region-averaged imaging feature
// vector against the bundled gene expression reference matrix.
//
// The engine performs no validation of its parameters; the argument
// resolver is the sole validation authority for CLI input.
package transcriptomics

import "fmt"

// paramKind discriminates the Parameters variant.
type paramKind int

const (
	kindComponentCount paramKind = iota + 1
	kindVarianceTarget
)

// Parameters is the analysis parameterization: either a fixed component
// count or a variance target, never both. The zero value is invalid;
// construct via ComponentCount or VarianceTarget. Illegal combinations are
// unrepresentable by construction.
type Parameters struct {
	kind       paramKind
	components int
	variance   float64
}

// ComponentCount parameterizes the analysis with a fixed number of latent
// components.
func ComponentCount(n int) Parameters {
	return Parameters{kind: kindComponentCount, components: n}
}

// VarianceTarget parameterizes the analysis with a minimum percentage of
// response variance the selected components must jointly explain.
func VarianceTarget(v float64) Parameters {
	return Parameters{kind: kindVarianceTarget, variance: v}
}

// AsComponentCount returns the fixed component count, if that is the
// active variant.
func (p Parameters) AsComponentCount() (int, bool) {
	return p.components, p.kind == kindComponentCount
}

// AsVarianceTarget returns the variance target percentage, if that is the
// active variant.
func (p Parameters) AsVarianceTarget() (float64, bool) {
	return p.variance, p.kind == kindVarianceTarget
}

// String renders the parameterization for logging.
func (p Parameters) String() string {
	switch p.kind {
	case kindComponentCount:
		return fmt.Sprintf("ncomp=%d", p.components)
	case kindVarianceTarget:
		return fmt.Sprintf("variance=%.1f%%", p.variance)
	default:
		return "unset"
	}
}
