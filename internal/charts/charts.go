// Package charts renders the exploratory charts over the historical dataset
// and the backtest chart with gonum/plot.
//
// Charts are addressed by name (see Names) and rendered as PNG or SVG. The
// underlying data never changes after startup, so rendered images are cached.
package charts

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/bikecast/internal/backtest"
	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/pkg/log"
)

var (
	// ErrUnknownChart is returned for a chart name that is not in Names.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrUnknownFormat is returned for formats other than png and svg.
	ErrUnknownFormat = errors.New("unknown image format")
	// ErrUnavailable is returned when the data a chart needs was not loaded.
	ErrUnavailable = errors.New("chart data unavailable")
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" and "svg"; an empty string means PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

type builder func(*Renderer) (*plot.Plot, error)

var builders = map[string]builder{
	"users":       (*Renderer).users,
	"season":      (*Renderer).season,
	"month":       (*Renderer).month,
	"weekday":     (*Renderer).weekday,
	"workingday":  (*Renderer).workingday,
	"holiday":     (*Renderer).holiday,
	"hour":        (*Renderer).hour,
	"weather":     (*Renderer).weather,
	"temperature": (*Renderer).temperature,
	"humidity":    (*Renderer).humidity,
	"backtest":    (*Renderer).backtest,
}

// Names lists the available charts in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Renderer draws charts from an immutable data set.
type Renderer struct {
	hourly *dataset.Hourly
	report *backtest.Report

	Width, Height vg.Length

	mu    sync.Mutex
	cache map[cacheKey][]byte

	clock  clockwork.Clock
	logger log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used to time renders.
func WithClock(c clockwork.Clock) Option {
	return func(r *Renderer) { r.clock = c }
}

// WithLogger replaces the default component logger.
func WithLogger(l log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

type cacheKey struct {
	name   string
	format Format
}

// NewRenderer returns a Renderer over hourly data and an optional backtest
// report. Either may be nil; charts that need missing data fail with
// ErrUnavailable.
func NewRenderer(hourly *dataset.Hourly, report *backtest.Report, opts ...Option) *Renderer {
	r := &Renderer{
		hourly: hourly,
		report: report,
		Width:  8 * vg.Inch,
		Height: 5 * vg.Inch,
		cache:  make(map[cacheKey][]byte),
		clock:  clockwork.NewRealClock(),
		logger: log.GetLoggerWithName("charts"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plot builds the named chart without rendering it.
func (r *Renderer) Plot(name string) (*plot.Plot, error) {
	build, ok := builders[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownChart, "%q", name)
	}
	return build(r)
}

// Render writes the named chart to w in the given format.
func (r *Renderer) Render(w io.Writer, name string, format Format) error {
	img, err := r.Bytes(name, format)
	if err != nil {
		return err
	}
	_, err = w.Write(img)
	return err
}

// Bytes returns the encoded image of the named chart.
func (r *Renderer) Bytes(name string, format Format) ([]byte, error) {
	if format != PNG && format != SVG {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	key := cacheKey{name: name, format: format}

	r.mu.Lock()
	img, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return img, nil
	}

	start := r.clock.Now()
	p, err := r.Plot(name)
	if err != nil {
		return nil, err
	}
	wt, err := p.WriterTo(r.Width, r.Height, string(format))
	if err != nil {
		return nil, errors.Wrapf(err, "render %s chart", name)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "encode %s chart", name)
	}
	img = buf.Bytes()

	r.mu.Lock()
	r.cache[key] = img
	r.mu.Unlock()

	r.logger.Debug("Chart rendered",
		log.OperationKey, log.OperationRender,
		log.ChartKey, name,
		log.FormatKey, string(format),
		log.DurationMsKey, r.clock.Since(start).Milliseconds(),
	)
	return img, nil
}

func (r *Renderer) needHourly() error {
	if r.hourly == nil || len(r.hourly.Records) == 0 {
		return errors.Wrap(ErrUnavailable, "hourly dataset not loaded")
	}
	return nil
}
