// Package chart renders aggregated series as PNG line charts.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/tracker"
	"github.com/vicanso/go-charts/v2"
)

// Width and Height of rendered charts, in pixels.
var (
	Width  = 900
	Height = 500
)

// Line renders every metric of s as a line, one point per day.
//
// Null values are drawn as gaps in their line.
func Line(title string, s *tracker.Series) ([]byte, error) {
	if len(s.Days) == 0 {
		return nil, fmt.Errorf("chart %q: no data", title)
	}
	labels := make([]string, len(s.Days))
	for i, d := range s.Days {
		labels[i] = d.Format("Jan 2 '06")
	}
	names := make([]string, len(s.Metrics))
	for m, metric := range s.Metrics {
		names[m] = string(metric)
	}
	values, yMin, yMax := points(s)

	padding := (yMax - yMin) * 0.05
	if padding == 0 {
		padding = math.Max(math.Abs(yMax)*0.05, 1)
	}
	yMin, yMax = yMin-padding, yMax+padding

	split := 6
	if len(labels) <= 30 {
		split = max(len(labels)/3, 3)
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title, s.Name),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		// dots would be drawn at the null value
		func(opt *charts.ChartOption) { opt.SymbolShow = charts.FalseFlag() },
		charts.WidthOptionFunc(Width),
		charts.HeightOptionFunc(Height),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering chart %q: %w", title, err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding chart %q: %w", title, err)
	}
	return buf, nil
}

// WriteReport writes the charts of r in dir and returns the written paths:
// portfolio gains, total return, and one return chart per symbol.
func WriteReport(dir string, r *tracker.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	type page struct {
		file, title string
		series      *tracker.Series
	}
	pages := []page{
		{"gains.png", "Gain / (Loss) vs " + r.Benchmark, r.Gains()},
		{"returns.png", "Return vs " + r.Benchmark, r.Returns()},
	}
	for _, s := range r.BySymbol() {
		pages = append(pages, page{"returns-" + fileName(s.Name) + ".png", s.Name + " vs " + r.Benchmark, s})
	}

	var written []string
	for _, pg := range pages {
		if len(pg.series.Days) == 0 {
			continue
		}
		buf, err := Line(pg.title, pg.series)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, pg.file)
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// fileName replaces characters of a ticker that are unsafe in file names, e.g. "BRK/B".
func fileName(ticker string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '^':
			return '_'
		}
		return r
	}, ticker)
}

// points converts the metrics of s to chart values and returns their range.
// Nulls become the chart null value and are left out of the range.
func points(s *tracker.Series) (values [][]float64, yMin, yMax float64) {
	yMin, yMax = math.Inf(1), math.Inf(-1)
	values = make([][]float64, len(s.Metrics))
	for m := range s.Metrics {
		values[m] = make([]float64, len(s.Days))
		for i, v := range s.Values[m] {
			if !v.Valid {
				values[m][i] = charts.GetNullValue()
				continue
			}
			f := v.Decimal.InexactFloat64()
			values[m][i] = f
			yMin, yMax = min(yMin, f), max(yMax, f)
		}
	}
	if math.IsInf(yMin, 1) {
		yMin, yMax = 0, 0
	}
	return values, yMin, yMax
}
