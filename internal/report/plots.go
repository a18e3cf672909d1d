package report

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
	"github.com/matteofrigo/imaging-transcriptomics/internal/transcriptomics"
)

// Chart geometry for the explained-variance plot.
const (
	chartWidth   = 640
	chartHeight  = 360
	chartMargin  = 48
	barGap       = 8
	chartBarArea = chartHeight - 2*chartMargin
)

// plotBar is one rendered bar of the variance chart.
type plotBar struct {
	X, Y          int
	Width, Height int
	Label         string
	Percent       string
}

// plotData feeds the SVG template.
type plotData struct {
	Width, Height int
	Title         string
	Bars          []plotBar
}

// varianceChart is the SVG layout of the explained-variance bar chart.
var varianceChart = template.Must(template.New("variance").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
  <rect width="{{.Width}}" height="{{.Height}}" fill="white"/>
  <text x="{{.Width}}" y="24" text-anchor="end" font-family="sans-serif" font-size="16">{{.Title}}</text>
{{- range .Bars}}
  <rect x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" fill="#4878a8"/>
  <text x="{{.X}}" y="{{$.Height}}" font-family="sans-serif" font-size="12">{{.Label}}</text>
  <text x="{{.X}}" y="{{.Y}}" dy="-4" font-family="sans-serif" font-size="11">{{.Percent}}</text>
{{- end}}
</svg>
`))

// Plots renders the per-component explained-variance bar chart.
func (r *Renderer) Plots(dir string, res *transcriptomics.Result) error {
	bars := layoutBars(res.ExplainedVariance)
	data := plotData{
		Width:  chartWidth,
		Height: chartHeight,
		Title:  "Explained variance per PLS component",
		Bars:   bars,
	}

	path := filepath.Join(dir, PlotFileName)
	f, err := os.Create(path) //nolint:gosec // path derived from validated run directory
	if err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "create %s: %v", path, err),
			errors.ErrReport)
	}
	defer func() { _ = f.Close() }()

	if err := varianceChart.Execute(f, data); err != nil {
		return errors.Categorize(
			errors.Wrapf(errors.ErrIO, "render %s: %v", path, err),
			errors.ErrReport)
	}
	return nil
}

// layoutBars positions one bar per component, scaled to the largest value.
func layoutBars(explained []float64) []plotBar {
	if len(explained) == 0 {
		return nil
	}

	maxVal := explained[0]
	for _, v := range explained {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	barWidth := (chartWidth - 2*chartMargin) / len(explained)
	bars := make([]plotBar, len(explained))
	for i, v := range explained {
		h := int(float64(chartBarArea) * v / maxVal)
		bars[i] = plotBar{
			X:       chartMargin + i*barWidth,
			Y:       chartHeight - chartMargin - h,
			Width:   barWidth - barGap,
			Height:  h,
			Label:   componentLabel(i + 1),
			Percent: percentLabel(v),
		}
	}
	return bars
}
