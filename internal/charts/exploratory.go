package charts

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/internal/features"
)

const rentalCounts = "Rental counts"

var (
	workingdayLabels = []string{"Weekend", "Weekday"}
	holidayLabels    = []string{"Non-holiday", "Holiday"}
	weatherTicks     = []string{
		"Clear, Few clouds, Partly cloudy",
		"Mist + Cloudy, Mist + Broken clouds",
		"Light Snow, Light Rain + Thunderstorm",
		"Heavy Rain + Ice Pallets + Thunderstorm + Snow, Fog",
	}
)

// label returns labels[key-first], or the key itself when out of range.
func label(labels []string, first, key int) string {
	if i := key - first; i >= 0 && i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(key)
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

// groupBars draws one bar per group with nominal x labels.
func (r *Renderer) groupBars(title, xLabel string, key func(dataset.HourlyRecord) int, labels []string, first int) (*plot.Plot, error) {
	if err := r.needHourly(); err != nil {
		return nil, err
	}
	groups := r.hourly.SumBy(key, dataset.Cnt)

	values := make(plotter.Values, len(groups))
	names := make([]string, len(groups))
	for i, g := range groups {
		values[i] = g.Sum
		names[i] = label(labels, first, g.Key)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)

	p := newPlot(title, xLabel, rentalCounts)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

func (r *Renderer) users() (*plot.Plot, error) {
	if err := r.needHourly(); err != nil {
		return nil, err
	}
	registered, casual := r.hourly.UserTotals()

	bars, err := plotter.NewBarChart(plotter.Values{registered, casual}, vg.Points(40))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)

	p := newPlot("Distribution of rental counts by type of user", "Count", "User type")
	p.Add(bars)
	p.NominalY("Registered", "Casual")
	return p, nil
}

func (r *Renderer) season() (*plot.Plot, error) {
	return r.groupBars("Rental Counts by Season", "Season", dataset.Season, features.DatasetSeasonNames, 1)
}

func (r *Renderer) month() (*plot.Plot, error) {
	return r.groupBars("Rental Counts by Month", "Month", dataset.Month, features.MonthNames, 1)
}

func (r *Renderer) workingday() (*plot.Plot, error) {
	return r.groupBars("Rental Counts if the Day is a weekday or weekend", "Weekday or Weekend?", dataset.Workingday, workingdayLabels, 0)
}

func (r *Renderer) holiday() (*plot.Plot, error) {
	return r.groupBars("Rental Counts if the Day is a holiday", "Holiday?", dataset.Holiday, holidayLabels, 0)
}

func (r *Renderer) weather() (*plot.Plot, error) {
	return r.groupBars("Rental Counts by Weather situation", "Weather Situation", dataset.Weather, weatherTicks, 1)
}

// weekday stacks registered on top of casual rentals for each day.
func (r *Renderer) weekday() (*plot.Plot, error) {
	if err := r.needHourly(); err != nil {
		return nil, err
	}
	casual := r.hourly.SumBy(dataset.Weekday, dataset.Casual)
	registered := r.hourly.SumBy(dataset.Weekday, dataset.Registered)

	cv := make(plotter.Values, len(casual))
	rv := make(plotter.Values, len(registered))
	names := make([]string, len(casual))
	for i := range casual {
		cv[i] = casual[i].Sum
		rv[i] = registered[i].Sum
		names[i] = label(features.WeekdayNames, 0, casual[i].Key)
	}

	cb, err := plotter.NewBarChart(cv, vg.Points(20))
	if err != nil {
		return nil, err
	}
	cb.Color = plotutil.Color(1)
	rb, err := plotter.NewBarChart(rv, vg.Points(20))
	if err != nil {
		return nil, err
	}
	rb.Color = plotutil.Color(0)
	rb.StackOn(cb)

	p := newPlot("Rental Counts by Day of the week", "Day of the week", rentalCounts)
	p.Add(cb, rb)
	p.Legend.Add("casual", cb)
	p.Legend.Add("registered", rb)
	p.Legend.Top = true
	p.NominalX(names...)
	return p, nil
}

func (r *Renderer) hour() (*plot.Plot, error) {
	if err := r.needHourly(); err != nil {
		return nil, err
	}
	groups := r.hourly.SumBy(dataset.Hour, dataset.Cnt)

	pts := make(plotter.XYs, len(groups))
	ticks := make(plot.ConstantTicks, len(groups))
	for i, g := range groups {
		pts[i] = plotter.XY{X: float64(g.Key), Y: g.Sum}
		ticks[i] = plot.Tick{Value: float64(g.Key), Label: strconv.Itoa(g.Key) + ":00"}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(0)
	line.Width = vg.Points(2)

	p := newPlot("Rental Counts per hour", "Hour of the day", "Rental bike count")
	p.Add(line)
	p.Legend.Add("Count of rental bikes", line)
	p.X.Tick.Marker = ticks
	return p, nil
}

func (r *Renderer) temperature() (*plot.Plot, error) {
	return r.scatter("Rental Counts by Temperature", "Temperature", func(h dataset.HourlyRecord) float64 { return h.Temp })
}

func (r *Renderer) humidity() (*plot.Plot, error) {
	return r.scatter("Rental Counts by Humidity", "Humidity", func(h dataset.HourlyRecord) float64 { return h.Hum })
}

// trendBins is the number of equal-width bins of the mean trend line.
const trendBins = 20

// scatter plots cnt against a normalized column, with the mean count per
// bin of that column as a trend line. Null cells are skipped.
func (r *Renderer) scatter(title, xLabel string, x func(dataset.HourlyRecord) float64) (*plot.Plot, error) {
	if err := r.needHourly(); err != nil {
		return nil, err
	}

	pts := make(plotter.XYs, 0, len(r.hourly.Records))
	var sums, counts [trendBins]float64
	for _, rec := range r.hourly.Records {
		v := x(rec)
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: v, Y: float64(rec.Cnt)})
		b := int(v * trendBins)
		if b < 0 {
			b = 0
		} else if b >= trendBins {
			b = trendBins - 1
		}
		sums[b] += float64(rec.Cnt)
		counts[b]++
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.Color = plotutil.Color(0)
	sc.Radius = vg.Points(1)

	var trend plotter.XYs
	for b := 0; b < trendBins; b++ {
		if counts[b] > 0 {
			trend = append(trend, plotter.XY{X: (float64(b) + 0.5) / trendBins, Y: sums[b] / counts[b]})
		}
	}

	p := newPlot(title, xLabel, rentalCounts)
	p.Add(sc)
	if len(trend) > 1 {
		line, err := plotter.NewLine(trend)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(1)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("mean", line)
	}
	return p, nil
}
