package transcriptomics

import (
	"bufio"
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// expressionMetaColumns is the number of leading non-expression columns in
// the gene expression CSV (region id and region name).
const expressionMetaColumns = 2

// loadExpression reads the normalised gene expression matrix: one header
// record, then one row per region with gene expression values from the
// third column on. The returned matrix is z-scored per gene (ddof=1) across
// the first `regions` rows, matching the reference preprocessing.
func loadExpression(path string, regions int) ([][]float64, error) {
	f, err := os.Open(path) //nolint:gosec // configured data path
	if err != nil {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "open %s: %v", path, err),
			errors.ErrAnalysis)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "parse %s: %v", path, err),
			errors.ErrAnalysis)
	}
	if len(records) < regions+1 {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "%s has %d data rows, need %d regions",
				path, len(records)-1, regions),
			errors.ErrAnalysis)
	}

	header := records[0]
	if len(header) <= expressionMetaColumns {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "%s has no gene columns", path),
			errors.ErrAnalysis)
	}
	genes := len(header) - expressionMetaColumns

	matrix := make([][]float64, regions)
	for r := range regions {
		row := records[r+1]
		if len(row) != len(header) {
			return nil, errors.Categorize(
				errors.Wrapf(errors.ErrExpressionData, "%s row %d has %d fields, want %d",
					path, r+2, len(row), len(header)),
				errors.ErrAnalysis)
		}
		matrix[r] = make([]float64, genes)
		for g := range genes {
			v, convErr := strconv.ParseFloat(strings.TrimSpace(row[g+expressionMetaColumns]), 64)
			if convErr != nil {
				return nil, errors.Categorize(
					errors.Wrapf(errors.ErrExpressionData, "%s row %d col %d: %v",
						path, r+2, g+expressionMetaColumns+1, convErr),
					errors.ErrAnalysis)
			}
			matrix[r][g] = v
		}
	}

	zscoreColumns(matrix)
	return matrix, nil
}

// loadLabels reads the gene label list, one label per line, and checks it
// against the expected gene count.
func loadLabels(path string, genes int) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // configured data path
	if err != nil {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "open %s: %v", path, err),
			errors.ErrAnalysis)
	}
	defer func() { _ = f.Close() }()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		label := strings.TrimSpace(sc.Text())
		if label != "" {
			labels = append(labels, label)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "read %s: %v", path, err),
			errors.ErrAnalysis)
	}

	if len(labels) != genes {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrExpressionData, "%s has %d labels, expression matrix has %d genes",
				path, len(labels), genes),
			errors.ErrAnalysis)
	}
	return labels, nil
}

// zscoreColumns standardizes each column in place with ddof=1.
// Zero-variance columns are left centered at zero rather than divided by
// zero; the fit guards against fully degenerate input separately.
func zscoreColumns(matrix [][]float64) {
	if len(matrix) < 2 {
		return
	}
	rows := len(matrix)
	cols := len(matrix[0])

	for c := range cols {
		mean := 0.0
		for r := range rows {
			mean += matrix[r][c]
		}
		mean /= float64(rows)

		ss := 0.0
		for r := range rows {
			d := matrix[r][c] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(rows-1))

		for r := range rows {
			matrix[r][c] -= mean
			if std > 0 {
				matrix[r][c] /= std
			}
		}
	}
}

// zscoreVector returns a standardized copy of v (ddof=1), or false when v
// has no variance.
func zscoreVector(v []float64) ([]float64, bool) {
	n := len(v)
	if n < 2 {
		return nil, false
	}

	mean := 0.0
	for _, x := range v {
		mean += x
	}
	mean /= float64(n)

	ss := 0.0
	for _, x := range v {
		d := x - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n-1))
	if std == 0 {
		return nil, false
	}

	out := make([]float64, n)
	for i, x := range v {
		out[i] = (x - mean) / std
	}
	return out, true
}
