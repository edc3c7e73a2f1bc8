package features

import (
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// FeatureNames is the canonical field set of a FeatureRecord, in the order
// the models were trained with.
var FeatureNames = []string{
	"season", "yr", "mnth", "hr", "holiday", "weekday", "workingday",
	"weathersit", "atemp", "hum", "windspeed", "day", "time_of_day",
	"comfortable_temp", "comfortable_humidity",
}

// FeatureRecord is one inference-ready row.
type FeatureRecord struct {
	Season              int     `json:"season"`
	Yr                  int     `json:"yr"`
	Mnth                int     `json:"mnth"`
	Hr                  int     `json:"hr"`
	Holiday             int     `json:"holiday"`
	Weekday             int     `json:"weekday"`
	Workingday          int     `json:"workingday"`
	Weathersit          int     `json:"weathersit"`
	Atemp               float64 `json:"atemp"`
	Hum                 float64 `json:"hum"`
	Windspeed           float64 `json:"windspeed"`
	Day                 int     `json:"day"`
	TimeOfDay           int     `json:"time_of_day"`
	ComfortableTemp     int     `json:"comfortable_temp"`
	ComfortableHumidity int     `json:"comfortable_humidity"`
}

// Assemble validates in and derives the full FeatureRecord from it.
func Assemble(in RawInput) (FeatureRecord, error) {
	if err := in.Validate(); err != nil {
		return FeatureRecord{}, err
	}

	norm := in.Normalize()

	season, err := Season(in.Month)
	if err != nil {
		return FeatureRecord{}, err
	}
	tod, err := TimeOfDay(in.Hour)
	if err != nil {
		return FeatureRecord{}, err
	}
	comfTemp, err := ComfortableTemp(norm.Temp)
	if err != nil {
		return FeatureRecord{}, err
	}
	comfHum, err := ComfortableHumidity(norm.Humidity)
	if err != nil {
		return FeatureRecord{}, err
	}

	return FeatureRecord{
		Season:              season,
		Yr:                  in.Year,
		Mnth:                in.Month,
		Hr:                  in.Hour,
		Holiday:             in.Holiday,
		Weekday:             in.Weekday,
		Workingday:          1 - in.Holiday,
		Weathersit:          in.Weather,
		Atemp:               norm.Temp,
		Hum:                 norm.Humidity,
		Windspeed:           norm.Windspeed,
		Day:                 in.Day,
		TimeOfDay:           tod,
		ComfortableTemp:     comfTemp,
		ComfortableHumidity: comfHum,
	}, nil
}

// Get returns the value of the named field.
func (r FeatureRecord) Get(name string) (float64, bool) {
	switch name {
	case "season":
		return float64(r.Season), true
	case "yr":
		return float64(r.Yr), true
	case "mnth":
		return float64(r.Mnth), true
	case "hr":
		return float64(r.Hr), true
	case "holiday":
		return float64(r.Holiday), true
	case "weekday":
		return float64(r.Weekday), true
	case "workingday":
		return float64(r.Workingday), true
	case "weathersit":
		return float64(r.Weathersit), true
	case "atemp":
		return r.Atemp, true
	case "hum":
		return r.Hum, true
	case "windspeed":
		return r.Windspeed, true
	case "day":
		return float64(r.Day), true
	case "time_of_day":
		return float64(r.TimeOfDay), true
	case "comfortable_temp":
		return float64(r.ComfortableTemp), true
	case "comfortable_humidity":
		return float64(r.ComfortableHumidity), true
	}
	return 0, false
}

// Set assigns the named field, truncating v for integer fields. It reports
// false for names that are not FeatureRecord fields.
func (r *FeatureRecord) Set(name string, v float64) bool {
	switch name {
	case "season":
		r.Season = int(v)
	case "yr":
		r.Yr = int(v)
	case "mnth":
		r.Mnth = int(v)
	case "hr":
		r.Hr = int(v)
	case "holiday":
		r.Holiday = int(v)
	case "weekday":
		r.Weekday = int(v)
	case "workingday":
		r.Workingday = int(v)
	case "weathersit":
		r.Weathersit = int(v)
	case "atemp":
		r.Atemp = v
	case "hum":
		r.Hum = v
	case "windspeed":
		r.Windspeed = v
	case "day":
		r.Day = int(v)
	case "time_of_day":
		r.TimeOfDay = int(v)
	case "comfortable_temp":
		r.ComfortableTemp = int(v)
	case "comfortable_humidity":
		r.ComfortableHumidity = int(v)
	default:
		return false
	}
	return true
}

// Values returns the record as a row ordered by names. Names the record does
// not carry produce a SchemaMismatch error listing all of them.
func (r FeatureRecord) Values(names []string) ([]float64, error) {
	row := make([]float64, len(names))
	var missing []string
	for i, name := range names {
		v, ok := r.Get(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		row[i] = v
	}
	if len(missing) > 0 {
		return nil, bcErrors.NewSchemaMismatchError("FeatureRecord.Values", missing, nil)
	}
	return row, nil
}
