package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

const (
	chartWidth  = "100%"
	chartHeight = "500px"
)

// WriteHistogramChart renders the bin counts of h as an HTML bar chart.
func WriteHistogramChart(w io.Writer, h *ensemble.Histogram, title string) error {
	counts := h.Counts()
	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))

	for i, c := range counts {
		lower, upper := h.BinRange(i)
		labels[i] = fmt.Sprintf("%s..%s", formatValue(Value(lower)), formatValue(Value(upper)))
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d samples in %d bins", h.TotalCount(), h.BinCount()),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
	)

	bar.SetXAxis(labels).AddSeries("count", data)

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render histogram chart: %w", err)
	}

	return nil
}
