package dataset

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

func loadHourlyFixture(t *testing.T) *Hourly {
	t.Helper()
	h, err := LoadHourly(filepath.Join("testdata", "hourly.csv"))
	require.NoError(t, err)
	return h
}

func TestLoadHourly(t *testing.T) {
	h := loadHourlyFixture(t)

	require.Len(t, h.Records, 10)
	assert.Equal(t, HourlyColumns, h.Columns)
	assert.Equal(t, 1, h.Nulls)

	first := h.Records[0]
	assert.Equal(t, 1, first.Instant)
	assert.Equal(t, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), first.Dteday)
	assert.Equal(t, 6, first.Weekday)
	assert.InDelta(t, 0.2879, first.Atemp, 1e-12)
	assert.Equal(t, 16, first.Cnt)
}

func TestSumBy(t *testing.T) {
	h := loadHourlyFixture(t)

	assert.Equal(t, []GroupSum{{1, 143}, {3, 780}, {4, 725}}, h.SumBy(Season, Cnt))

	var atEight float64
	for _, g := range h.SumBy(Hour, Cnt) {
		if g.Key == 8 {
			atEight = g.Sum
		}
	}
	assert.InDelta(t, 905.0, atEight, 0)

	assert.Equal(t, []GroupSum{{0, 1468}, {1, 180}}, h.SumBy(Holiday, Cnt))
}

func TestUserTotals(t *testing.T) {
	registered, casual := loadHourlyFixture(t).UserTotals()
	assert.InDelta(t, 1452.0, registered, 0)
	assert.InDelta(t, 196.0, casual, 0)
}

func TestSummarize(t *testing.T) {
	s := loadHourlyFixture(t).Summarize(5)

	assert.Equal(t, 10, s.Rows)
	assert.Equal(t, 17, s.Columns)
	assert.Equal(t, 1, s.NullValues)
	assert.Len(t, s.Head, 5)

	cnt := s.Stats["cnt"]
	assert.InDelta(t, 164.8, cnt.Mean, 1e-9)
	assert.InDelta(t, 1.0, cnt.Min, 0)
	assert.InDelta(t, 725.0, cnt.Max, 0)

	// one humidity cell is empty
	assert.InDelta(t, 0.81, s.Stats["hum"].Max, 0)

	assert.Len(t, loadHourlyFixture(t).Summarize(50).Head, 10)
}

func TestReadHourlyErrors(t *testing.T) {
	header := strings.Join(HourlyColumns, ",")
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"missing column", "instant,dteday\n1,2011-01-01\n"},
		{"bad integer", header + "\n1,2011-01-01,1,0,1,x,0,6,0,1,0.24,0.28,0.81,0,3,13,16\n"},
		{"bad date", header + "\n1,01/01/2011,1,0,1,0,0,6,0,1,0.24,0.28,0.81,0,3,13,16\n"},
		{"bad float", header + "\n1,2011-01-01,1,0,1,0,0,6,0,1,warm,0.28,0.81,0,3,13,16\n"},
		{"short row", header + "\n1,2011-01-01,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHourly(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestReadHourlyAcceptsFloatIntegers(t *testing.T) {
	csv := strings.Join(HourlyColumns, ",") + "\n1.0,2011-01-01 00:00:00,1,0,1,0,0,6,0,1,0.24,0.28,0.81,0,3.0,13,16\n"
	h, err := ReadHourly(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, h.Records[0].Casual)
}

func TestLoadPreprocessedSortsAndSplits(t *testing.T) {
	rows, err := LoadPreprocessed(filepath.Join("testdata", "preprocessed.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Dteday.Before(rows[i-1].Dteday))
	}
	assert.Equal(t, 22, rows[0].Features.Hr)
	assert.Equal(t, 31, rows[0].Features.Day)
	assert.InDelta(t, 0.6364, rows[0].Features.Atemp, 1e-12)
	assert.InDelta(t, 150.0, rows[0].Cnt, 0)

	train, test := SplitAt(rows, time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, train, 2)
	assert.Len(t, test, 2)
	assert.Equal(t, time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC), test[0].Dteday)
}

func TestReadPreprocessedErrors(t *testing.T) {
	_, err := ReadPreprocessed(strings.NewReader("dteday,cnt,hr\n2012-01-01,1,0\n"))
	assert.Error(t, err)

	header := "dteday,season,yr,mnth,hr,holiday,weekday,workingday,weathersit,atemp,hum,windspeed,cnt,day,time_of_day,comfortable_temp,comfortable_humidity"
	_, err = ReadPreprocessed(strings.NewReader(header + "\n"))
	assert.ErrorIs(t, err, bcErrors.ErrEmptyData)

	_, err = ReadPreprocessed(strings.NewReader(header + "\n2012-01-01,1,1,1,0,0,0,1,1,0.2,,0.1,5,1,0,0,0\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadHourly(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
	_, err = LoadPreprocessed(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
