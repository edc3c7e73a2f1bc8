package charts

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/bikecast/internal/backtest"
)

func timeSeries(points []backtest.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(pt.Time.Unix()), Y: pt.Value}
	}
	return xys
}

// backtest draws the observed training counts followed by the actual and
// predicted counts of the test period.
func (r *Renderer) backtest() (*plot.Plot, error) {
	if r.report == nil {
		return nil, errors.Wrap(ErrUnavailable, "backtest not run")
	}

	p := newPlot("Actual vs Predicted Bike Rentals", "dteday", "cnt")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	series := []struct {
		name   string
		points []backtest.Point
		color  int
	}{
		{"Train", r.report.Train, 0},
		{"Actual", r.report.Actual, 2},
		{"Prediction", r.report.Predicted, 1},
	}
	for _, s := range series {
		if len(s.points) == 0 {
			continue
		}
		line, err := plotter.NewLine(timeSeries(s.points))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(s.color)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p, nil
}
