package features

import "strconv"

// Display labels for the input controls and chart axes.
var (
	YearLabels = []string{"2011", "2012"}

	MonthNames = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}

	// WeekdayNames is indexed by the dataset's weekday code (0 = Sunday).
	WeekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

	// WeatherDescriptions is indexed by weathersit-1.
	WeatherDescriptions = []string{
		"Clear, Few clouds, Partly cloudy, Partly cloudy",
		"Mist + Cloudy, Mist + Broken clouds, Mist + Few clouds, Mist",
		"Light Snow, Light Rain + Thunderstorm + Scattered clouds, Light Rain + Scattered clouds",
		"Heavy Rain + Ice Pallets + Thunderstorm + Mist, Snow + Fog",
	}

	// DatasetSeasonNames is indexed by the historical dataset's season
	// code minus one. The dataset counts seasons from 1, unlike Season.
	DatasetSeasonNames = []string{"Winter", "Spring", "Summer", "Fall"}

	TimeOfDayNames = []string{"night", "morning", "afternoon", "evening"}

	BooleanLabels = []string{"No", "Yes"}
)

// Option is one selectable value of a discrete control.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Control describes one input of RawInput for a form.
type Control struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Options []Option `json:"options,omitempty"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step,omitempty"`
	Default float64  `json:"default"`
	Unit    string   `json:"unit,omitempty"`
}

func labelled(first int, labels []string) []Option {
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Value: first + i, Label: l}
	}
	return opts
}

func numbered(lo, hi int) []Option {
	opts := make([]Option, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		opts = append(opts, Option{Value: v, Label: strconv.Itoa(v)})
	}
	return opts
}

// Controls lists the inputs of RawInput with their ranges and labels.
// Slider defaults sit at the middle of each range.
func Controls() []Control {
	return []Control{
		{Field: "year", Label: "Year", Options: labelled(0, YearLabels), Max: 1},
		{Field: "month", Label: "Month", Options: labelled(1, MonthNames), Min: 1, Max: 12, Default: 1},
		{Field: "day", Label: "Day", Options: numbered(1, 31), Min: 1, Max: 31, Default: 1},
		{Field: "hour", Label: "Hour", Options: numbered(0, 23), Max: 23},
		{Field: "holiday", Label: "Holiday", Options: labelled(0, BooleanLabels), Max: 1},
		{Field: "weekday", Label: "Weekday", Options: labelled(0, WeekdayNames), Max: 6},
		{Field: "weather", Label: "Weather", Options: labelled(1, WeatherDescriptions), Min: 1, Max: 4, Default: 1},
		{Field: "humidity_pct", Label: "Humidity (%)", Max: HumidityMax, Step: 1, Default: 50, Unit: "%"},
		{Field: "temp_c", Label: "Temperature (°C)", Max: TempMax, Step: 1, Default: 20, Unit: "°C"},
		{Field: "windspeed_kmh", Label: "Wind Speed (km/h)", Max: WindspeedMax, Step: 1, Default: 33, Unit: "km/h"},
	}
}
