package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GroupSum is the total of one measure for one value of a grouping column.
type GroupSum struct {
	Key int     `json:"key"`
	Sum float64 `json:"sum"`
}

// Column accessors for SumBy.
var (
	Season     = func(r HourlyRecord) int { return r.Season }
	Month      = func(r HourlyRecord) int { return r.Mnth }
	Hour       = func(r HourlyRecord) int { return r.Hr }
	Weekday    = func(r HourlyRecord) int { return r.Weekday }
	Workingday = func(r HourlyRecord) int { return r.Workingday }
	Holiday    = func(r HourlyRecord) int { return r.Holiday }
	Weather    = func(r HourlyRecord) int { return r.Weathersit }

	Cnt        = func(r HourlyRecord) float64 { return float64(r.Cnt) }
	Casual     = func(r HourlyRecord) float64 { return float64(r.Casual) }
	Registered = func(r HourlyRecord) float64 { return float64(r.Registered) }
)

// SumBy groups the records by key and sums value per group. Groups are
// returned in ascending key order.
func (h *Hourly) SumBy(key func(HourlyRecord) int, value func(HourlyRecord) float64) []GroupSum {
	sums := make(map[int]float64)
	for _, r := range h.Records {
		sums[key(r)] += value(r)
	}
	out := make([]GroupSum, 0, len(sums))
	for k, s := range sums {
		out = append(out, GroupSum{Key: k, Sum: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// UserTotals returns the total registered and casual rentals.
func (h *Hourly) UserTotals() (registered, casual float64) {
	for _, r := range h.Records {
		registered += float64(r.Registered)
		casual += float64(r.Casual)
	}
	return registered, casual
}

// ColumnStats describes one numeric column, ignoring null cells.
type ColumnStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary is the overview shown above the exploratory charts.
type Summary struct {
	Rows       int                    `json:"rows"`
	Columns    int                    `json:"columns"`
	NullValues int                    `json:"null_values"`
	Head       []HourlyRecord         `json:"head"`
	Stats      map[string]ColumnStats `json:"stats"`
}

// Summarize reports the table shape, the first headRows rows and
// descriptive statistics of the measure columns.
func (h *Hourly) Summarize(headRows int) Summary {
	if headRows > len(h.Records) {
		headRows = len(h.Records)
	}
	s := Summary{
		Rows:       len(h.Records),
		Columns:    len(h.Columns),
		NullValues: h.Nulls,
		Head:       append([]HourlyRecord(nil), h.Records[:headRows]...),
		Stats:      make(map[string]ColumnStats),
	}

	columns := map[string]func(HourlyRecord) float64{
		"temp":       func(r HourlyRecord) float64 { return r.Temp },
		"atemp":      func(r HourlyRecord) float64 { return r.Atemp },
		"hum":        func(r HourlyRecord) float64 { return r.Hum },
		"windspeed":  func(r HourlyRecord) float64 { return r.Windspeed },
		"casual":     Casual,
		"registered": Registered,
		"cnt":        Cnt,
	}
	for name, get := range columns {
		values := make([]float64, 0, len(h.Records))
		for _, r := range h.Records {
			if v := get(r); !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(values, nil)
		if len(values) == 1 {
			std = 0
		}
		s.Stats[name] = ColumnStats{
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(values),
			Max:    floats.Max(values),
		}
	}
	return s
}
