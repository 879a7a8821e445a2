// Package report renders recorded engagements: a PNG trajectory plot with
// gonum/plot and an interactive HTML range chart with go-echarts.
package report

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ava5627/oort-ai/internal/scenario"
)

// ErrNoRecords is returned when there is nothing to draw.
var ErrNoRecords = errors.New("no records")

// track is one body's records in tick order.
type track struct {
	id      string
	records []scenario.Record
}

// groupByBody splits records per body, in first-seen order.
func groupByBody(records []scenario.Record) []track {
	index := map[string]int{}
	var out []track
	for _, r := range records {
		i, ok := index[r.BodyID]
		if !ok {
			i = len(out)
			index[r.BodyID] = i
			out = append(out, track{id: r.BodyID})
		}
		out[i].records = append(out[i].records, r)
	}
	for _, t := range out {
		slices.SortStableFunc(t.records, func(a, b scenario.Record) int { return int(a.Tick - b.Tick) })
	}
	return out
}

// PlotTrajectories draws each agent's path and its believed target
// positions, and saves the plot as an image at path. The format follows the
// file extension.
func PlotTrajectories(records []scenario.Record, title, path string) error {
	tracks := groupByBody(records)
	if len(tracks) == 0 {
		return ErrNoRecords
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	for i, t := range tracks {
		pts := make(plotter.XYs, 0, len(t.records))
		var beliefs plotter.XYs
		for _, r := range t.records {
			pts = append(pts, plotter.XY{X: r.Position.X, Y: r.Position.Y})
			if r.HasBelief {
				beliefs = append(beliefs, plotter.XY{X: r.Belief.X, Y: r.Belief.Y})
			}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("trajectory for %s: %w", t.id, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(t.id, line)

		if len(beliefs) > 0 {
			sc, err := plotter.NewScatter(beliefs)
			if err != nil {
				return fmt.Errorf("beliefs for %s: %w", t.id, err)
			}
			sc.GlyphStyle.Color = plotutil.Color(i)
			sc.GlyphStyle.Shape = draw.CrossGlyph{}
			sc.GlyphStyle.Radius = vg.Points(1.5)
			p.Add(sc)
			p.Legend.Add(t.id+" belief", sc)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}
