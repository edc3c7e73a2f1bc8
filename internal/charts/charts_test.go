package charts

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/bikecast/internal/backtest"
	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/pkg/log"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleHourly() *dataset.Hourly {
	h := &dataset.Hourly{Columns: dataset.HourlyColumns}
	start := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24*14; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		casual := (i * 7) % 50
		registered := (i * 13) % 300
		rec := dataset.HourlyRecord{
			Instant:    i + 1,
			Dteday:     ts.Truncate(24 * time.Hour),
			Season:     1 + (i/24)%4,
			Mnth:       1 + (i/24)%12,
			Hr:         ts.Hour(),
			Holiday:    btoi(i%97 == 0),
			Weekday:    int(ts.Weekday()),
			Workingday: btoi(ts.Weekday() != time.Saturday && ts.Weekday() != time.Sunday),
			Weathersit: 1 + i%4,
			Temp:       float64(i%41) / 41,
			Atemp:      float64(i%50) / 50,
			Hum:        float64(i%100) / 100,
			Windspeed:  float64(i%67) / 67,
			Casual:     casual,
			Registered: registered,
			Cnt:        casual + registered,
		}
		if i == 5 {
			rec.Hum = math.NaN()
		}
		h.Records = append(h.Records, rec)
	}
	return h
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sampleReport() *backtest.Report {
	cutoff := backtest.DefaultCutoff
	rep := &backtest.Report{Cutoff: cutoff}
	for i := 0; i < 48; i++ {
		ts := cutoff.Add(time.Duration(i-24) * time.Hour)
		pt := backtest.Point{Time: ts, Value: float64(100 + i)}
		if ts.Before(cutoff) {
			rep.Train = append(rep.Train, pt)
			continue
		}
		rep.Actual = append(rep.Actual, pt)
		rep.Predicted = append(rep.Predicted, backtest.Point{Time: ts, Value: float64(95 + i)})
	}
	rep.NTrain, rep.NTest = len(rep.Train), len(rep.Actual)
	return rep
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"backtest", "holiday", "hour", "humidity", "month", "season",
		"temperature", "users", "weather", "weekday", "workingday",
	}, Names())
}

func TestEveryChartRendersPNG(t *testing.T) {
	r := NewRenderer(sampleHourly(), sampleReport())

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			img, err := r.Bytes(name, PNG)
			require.NoError(t, err)
			require.NotEmpty(t, img)
			assert.True(t, bytes.HasPrefix(img, pngMagic))
		})
	}
}

func TestRenderSVG(t *testing.T) {
	r := NewRenderer(sampleHourly(), nil)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "season", SVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestBytesAreCached(t *testing.T) {
	r := NewRenderer(sampleHourly(), nil)

	a, err := r.Bytes("hour", PNG)
	require.NoError(t, err)
	b, err := r.Bytes("hour", PNG)
	require.NoError(t, err)
	assert.Same(t, &a[0], &b[0])
}

// steppingClock advances by step every time Now is read.
type steppingClock struct {
	*clockwork.FakeClock
	step time.Duration
}

func (c steppingClock) Now() time.Time {
	now := c.FakeClock.Now()
	c.Advance(c.step)
	return now
}

func TestRenderDurationUsesInjectedClock(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewZerologProviderWithWriter(zerolog.DebugLevel, &buf).GetLogger()
	clock := steppingClock{FakeClock: clockwork.NewFakeClock(), step: 250 * time.Millisecond}
	r := NewRenderer(sampleHourly(), nil, WithClock(clock), WithLogger(logger))

	_, err := r.Bytes("season", PNG)
	require.NoError(t, err)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Chart rendered", line["message"])
	assert.Equal(t, 250.0, line[log.DurationMsKey])
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(sampleHourly(), nil)

	_, err := r.Bytes("pie", PNG)
	assert.ErrorIs(t, err, ErrUnknownChart)

	_, err = r.Bytes("season", Format("gif"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = r.Bytes("backtest", PNG)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewRenderer(nil, nil).Bytes("users", PNG)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	assert.Equal(t, "image/png", f.ContentType())

	f, err = ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLabelFallsBackToKey(t *testing.T) {
	assert.Equal(t, "Winter", label([]string{"Winter"}, 1, 1))
	assert.Equal(t, "7", label([]string{"Winter"}, 1, 7))
}
