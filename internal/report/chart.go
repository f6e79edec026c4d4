package report

import (
	"fmt"
	"image/color"
	"os"

	eventdomain "churn-metrics-pipeline/internal/events/core/domain"
	metricdomain "churn-metrics-pipeline/internal/metrics/core/domain"
	"churn-metrics-pipeline/internal/pkg/daterange"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	lineColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pointColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// DailyChart renders one line of events per day.
func DailyChart(path, title string, counts []eventdomain.DailyCount) error {
	pts := make(plotter.XYs, len(counts))
	for i, c := range counts {
		pts[i].X = float64(c.Day.Unix())
		pts[i].Y = float64(c.NEvent)
	}

	p := newTimePlot(title, "events")
	if err := addSeries(p, pts); err != nil {
		return err
	}
	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// SeriesChart renders max, avg, min and count of a metric in four stacked panels.
// Buckets without values are left out of the value panels.
func SeriesChart(path, metric string, points []metricdomain.SeriesPoint) error {
	var maxPts, avgPts, minPts plotter.XYs
	countPts := make(plotter.XYs, len(points))
	for i, sp := range points {
		x := float64(sp.MetricTime.Unix())
		countPts[i] = plotter.XY{X: x, Y: float64(sp.NCalc)}
		if sp.NCalc == 0 {
			continue
		}
		if sp.Max != nil {
			maxPts = append(maxPts, plotter.XY{X: x, Y: *sp.Max})
		}
		if sp.Avg != nil {
			avgPts = append(avgPts, plotter.XY{X: x, Y: *sp.Avg})
		}
		if sp.Min != nil {
			minPts = append(minPts, plotter.XY{X: x, Y: *sp.Min})
		}
	}

	panels := []struct {
		label string
		pts   plotter.XYs
	}{
		{"max", maxPts},
		{"avg", avgPts},
		{"min", minPts},
		{"n_calc", countPts},
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		p := newTimePlot("", metric+" "+panel.label)
		if i == 0 {
			p.Title.Text = metric + " over time"
		}
		if err := addSeries(p, panel.pts); err != nil {
			return err
		}
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(10*vg.Inch, 12*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      2 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}
	return f.Close()
}

func newTimePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: daterange.Layout}
	p.Add(plotter.NewGrid())
	return p
}

func addSeries(p *plot.Plot, pts plotter.XYs) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Color = lineColor

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build points: %w", err)
	}
	scatter.Color = pointColor
	scatter.Radius = vg.Points(1.5)

	p.Add(line, scatter)
	return nil
}
