// Package features turns the raw values a user enters for one hour into the
// FeatureRecord a rental model was trained on.
//
// The derivations are pure functions. Each one rejects input outside its
// documented domain with an InvalidArgument error instead of guessing.
package features

import (
	"math"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// Time-of-day buckets.
const (
	Night     = 0
	Morning   = 1
	Afternoon = 2
	Evening   = 3
)

// timeOfDay is indexed by hour. The night bucket wraps midnight and the
// morning bucket includes noon.
var timeOfDay = [24]int{
	Night, Night, Night, Night, Night, Night, // 0-5
	Morning, Morning, Morning, Morning, Morning, Morning, Morning, // 6-12
	Afternoon, Afternoon, Afternoon, Afternoon, // 13-16
	Evening, Evening, Evening, Evening, // 17-20
	Night, Night, Night, // 21-23
}

// Season maps a calendar month to the model's season code:
// Dec-Feb 0, Mar-May 1, Jun-Aug 2, Sep-Nov 3.
func Season(month int) (int, error) {
	switch month {
	case 12, 1, 2:
		return 0, nil
	case 3, 4, 5:
		return 1, nil
	case 6, 7, 8:
		return 2, nil
	case 9, 10, 11:
		return 3, nil
	}
	return 0, bcErrors.NewInvalidArgumentError("features.Season", "month", month, "must be in [1, 12]")
}

// TimeOfDay returns the bucket for hour in [0, 23].
func TimeOfDay(hour int) (int, error) {
	if hour < 0 || hour >= len(timeOfDay) {
		return 0, bcErrors.NewInvalidArgumentError("features.TimeOfDay", "hour", hour, "must be in [0, 23]")
	}
	return timeOfDay[hour], nil
}

// ComfortableTemp flags a normalized feeling temperature in [0.40, 0.65].
func ComfortableTemp(atemp float64) (int, error) {
	return inRange("features.ComfortableTemp", "atemp", atemp, 0.40, 0.65)
}

// ComfortableHumidity flags a normalized humidity in [0.25, 0.55].
func ComfortableHumidity(hum float64) (int, error) {
	return inRange("features.ComfortableHumidity", "hum", hum, 0.25, 0.55)
}

func inRange(op, field string, v, lo, hi float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, bcErrors.NewInvalidArgumentError(op, field, v, "must be finite")
	}
	if v >= lo && v <= hi {
		return 1, nil
	}
	return 0, nil
}
