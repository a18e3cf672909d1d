package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// Tabular exports the ranked gene association table as CSV.
func (r *Renderer) Tabular(dir string, res *transcriptomics.Result) error {
	path := filepath.Join(dir, TabularFileName)
	f, err := os.Create(path) //nolint:gosec // path derived from validated run directory
	if err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "create %s: %v", path, err),
			errors.ErrReport)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"rank", "gene", "score"}); err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "write %s: %v", path, err),
			errors.ErrReport)
	}
	for _, g := range res.Genes {
		record := []string{
			strconv.Itoa(g.Rank),
			g.Label,
			strconv.FormatFloat(g.Score, 'g', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return errors.Categorize(
				errors.Wrapf(errors.ErrIO, "write %s: %v", path, err),
				errors.ErrReport)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "flush %s: %v", path, err),
			errors.ErrReport)
	}
	return nil
}

// componentLabel names a component for charts and tables.
func componentLabel(n int) string {
	return fmt.Sprintf("PLS%d", n)
}

// percentLabel renders a variance fraction as a percentage string.
func percentLabel(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
