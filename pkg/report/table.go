package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	valueDigits   = 4
	undefinedText = "undefined"
)

var headingColor = color.New(color.FgCyan, color.Bold)

// WriteTable renders s as plain-text tables, one per computed section.
func WriteTable(w io.Writer, s *Summary) error {
	var sections []string

	title := s.Name
	if title == "" {
		title = "ensemble"
	}

	sections = append(sections, headingColor.Sprintf("=== %s ===", strings.ToUpper(title)),
		fmt.Sprintf("samples: %s | undefined: %s", humanize.Comma(int64(s.Samples)), humanize.Comma(int64(s.Undefined))))

	if s.Stats != nil {
		sections = append(sections, statsTable(s.Stats))
	}

	if len(s.Percentiles) > 0 {
		sections = append(sections, percentileTable(s.Method, s.Style, s.Percentiles))
	}

	if s.Histogram != nil {
		sections = append(sections, histogramTable(s.Histogram))
	}

	if len(s.Curves) > 0 {
		sections = append(sections, curveTable(s.Curves))
	}

	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	if err != nil {
		return fmt.Errorf("write table report: %w", err)
	}

	return nil
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func formatValue(v Value) string {
	if !v.Defined() {
		return undefinedText
	}

	return humanize.CommafWithDigits(float64(v), valueDigits)
}

func formatPosition(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

func statsTable(st *Stats) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"statistic", "value"})
	tbl.AppendRows([]table.Row{
		{"count", humanize.Comma(int64(st.Count))},
		{"min", formatValue(st.Min)},
		{"max", formatValue(st.Max)},
		{"range", formatValue(st.Range)},
		{"sum", formatValue(st.Sum)},
		{"mean", formatValue(st.Mean)},
		{"std dev", formatValue(st.StdDev)},
	})

	return headingColor.Sprint("Statistics") + "\n" + tbl.Render()
}

func percentileTable(method, style string, pcts []Percentile) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"position", "value"})

	for _, p := range pcts {
		tbl.AppendRow(table.Row{formatPosition(p.Position), formatValue(p.Value)})
	}

	heading := "Percentiles"
	if method != "" {
		heading += fmt.Sprintf(" (%s, %s)", method, style)
	}

	return headingColor.Sprint(heading) + "\n" + tbl.Render()
}

func histogramTable(h *Histogram) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"bin", "lower", "upper", "count"})

	for i, b := range h.Bins {
		tbl.AppendRow(table.Row{i, formatValue(b.Lower), formatValue(b.Upper), humanize.Comma(int64(b.Count))})
	}

	tbl.AppendFooter(table.Row{"", "", "total", humanize.Comma(int64(h.Total))})

	out := headingColor.Sprint("Histogram") + "\n" + tbl.Render()

	if h.SmallestPositive.Defined() || h.LargestNegative.Defined() {
		out += "\nlog axis: smallest positive " + formatValue(h.SmallestPositive) +
			", largest negative " + formatValue(h.LargestNegative)
	}

	if len(h.Estimates) > 0 {
		est := newTable()
		est.AppendHeader(table.Row{"fraction", "estimate"})

		for _, p := range h.Estimates {
			est.AppendRow(table.Row{formatPosition(p.Position), formatValue(p.Value)})
		}

		out += "\n\n" + headingColor.Sprint("Histogram estimates") + "\n" + est.Render()
	}

	return out
}

func curveTable(curves []Curve) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"step", "p10", "p50", "p90", "mean"})

	for _, c := range curves {
		tbl.AppendRow(table.Row{c.Step, formatValue(c.P10), formatValue(c.P50), formatValue(c.P90), formatValue(c.Mean)})
	}

	return headingColor.Sprint("Curves") + "\n" + tbl.Render()
}
