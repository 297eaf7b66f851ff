package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/timeseries"
)

var (
	trainColor     = color.NRGBA{B: 255, A: 255}
	testColor      = color.NRGBA{B: 255, A: 128}
	predictedColor = color.NRGBA{G: 128, A: 255}
)

// PlotForecast saves a 10x6 inch chart of training actuals, held-out actuals
// and the forecast. The image format follows the extension of path.
func PlotForecast(frame *model.Frame, forecast *timeseries.Series, logged bool, path string) error {
	c, err := newChart(frame, forecast, logged)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Rides"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		label  string
		points []point
		color  color.Color
	}{
		{labelTrain, c.train, trainColor},
		{labelPredicted, c.predicted, predictedColor},
		{labelTest, c.test, testColor},
	} {
		if len(s.points) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys(s.points))
		if err != nil {
			return fmt.Errorf("plot %s: %w", s.label, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func xys(points []point) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, p := range points {
		out[i] = plotter.XY{X: float64(p.t.Unix()), Y: p.v}
	}
	return out
}
