package report

import (
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// topGenesInDocument bounds the gene table embedded in the summary document;
// the full table lives in the CSV export.
const topGenesInDocument = 25

// documentData feeds the summary template.
type documentData struct {
	InputPath   string
	GeneratedAt string
	NComponents int
	Components  []documentComponent
	Cumulative  string
	Genes       []transcriptomics.GeneScore
	TotalGenes  int
	PlotFile    string
	TableFile   string
}

// documentComponent is one row of the variance table.
type documentComponent struct {
	Label      string
	Explained  string
	Cumulative string
}

// summaryDocument is the combined markdown report layout.
var summaryDocument = template.Must(template.New("document").Parse(`# Imaging transcriptomics report

- **Input scan**: {{.InputPath}}
- **Generated**: {{.GeneratedAt}}
- **Components**: {{.NComponents}} (cumulative explained variance {{.Cumulative}})

## Explained variance

| Component | Explained | Cumulative |
|-----------|-----------|------------|
{{- range .Components}}
| {{.Label}} | {{.Explained}} | {{.Cumulative}} |
{{- end}}

See [{{.PlotFile}}]({{.PlotFile}}) for the chart.

## Top gene associations

| Rank | Gene | Score |
|------|------|-------|
{{- range .Genes}}
| {{.Rank}} | {{.Label}} | {{printf "%.4f" .Score}} |
{{- end}}

Full table ({{.TotalGenes}} genes): [{{.TableFile}}]({{.TableFile}})
`))

// Document writes the combined markdown summary referencing the original
// input path and the sibling artifacts.
func (r *Renderer) Document(dir, inputPath string, res *transcriptomics.Result) error {
	components := make([]documentComponent, len(res.ExplainedVariance))
	cumulative := 0.0
	for i, v := range res.ExplainedVariance {
		cumulative += v
		components[i] = documentComponent{
			Label:      componentLabel(i + 1),
			Explained:  percentLabel(v),
			Cumulative: percentLabel(cumulative),
		}
	}

	genes := res.Genes
	if len(genes) > topGenesInDocument {
		genes = genes[:topGenesInDocument]
	}

	data := documentData{
		InputPath:   inputPath,
		GeneratedAt: time.Now().Format(time.RFC3339),
		NComponents: res.NComponents,
		Components:  components,
		Cumulative:  percentLabel(res.CumulativeVariance(res.NComponents)),
		Genes:       genes,
		TotalGenes:  len(res.Genes),
		PlotFile:    PlotFileName,
		TableFile:   TabularFileName,
	}

	path := filepath.Join(dir, DocumentFileName)
	f, err := os.Create(path) //nolint:gosec // path derived from validated run directory
	if err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "create %s: %v", path, err),
			errors.ErrReport)
	}
	defer func() { _ = f.Close() }()

	if err := summaryDocument.Execute(f, data); err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "render %s: %v", path, err),
			errors.ErrReport)
	}
	return nil
}
