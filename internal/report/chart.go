package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"

	"github.com/ava5627/oort-ai/internal/fsutil"
	"github.com/ava5627/oort-ai/internal/scenario"
)

// RenderRangeChart writes an HTML page with, per agent, the true range to
// the nearest enemy, the belief error, and the sight-line rate over time.
func RenderRangeChart(records []scenario.Record, title string, w io.Writer) error {
	tracks := groupByBody(records)
	if len(tracks) == 0 {
		return ErrNoRecords
	}

	rangeChart := newTimeChart(title, "range and estimate error", "metres")
	losChart := newTimeChart(title, "sight-line rate", "rad/s")

	var ranges []float64
	for _, t := range tracks {
		rng := make([]opts.LineData, 0, len(t.records))
		belief := make([]opts.LineData, 0, len(t.records))
		los := make([]opts.LineData, 0, len(t.records))
		for _, r := range t.records {
			if r.Range > 0 {
				rng = append(rng, opts.LineData{Value: []interface{}{r.Tick, r.Range}})
				ranges = append(ranges, r.Range)
			}
			if r.HasBelief && r.Range > 0 {
				belief = append(belief, opts.LineData{Value: []interface{}{r.Tick, r.BeliefError()}})
			}
			if r.Class.IsGuidedMunition() && r.HasBelief {
				los = append(los, opts.LineData{Value: []interface{}{r.Tick, r.LOSRate}})
			}
		}
		rangeChart.AddSeries(t.id+" range", rng, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		if len(belief) > 0 {
			rangeChart.AddSeries(t.id+" error", belief, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		}
		if len(los) > 0 {
			losChart.AddSeries(t.id, los, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		}
	}
	if len(ranges) > 0 {
		rangeChart.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("closest approach %.0f m, furthest %.0f m", floats.Min(ranges), floats.Max(ranges)),
		}))
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(rangeChart, losChart)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render range chart: %w", err)
	}
	return nil
}

func newTimeChart(title, subtitle, unit string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "tick", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: unit}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	return line
}

// SaveRangeChart renders the range chart into the named file on fsys.
func SaveRangeChart(fsys fsutil.FileSystem, path string, records []scenario.Record, title string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := RenderRangeChart(records, title, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
