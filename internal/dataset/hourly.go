package dataset

import (
	"io"
	"time"
)

// HourlyColumns is the column set of the historical hourly dataset.
var HourlyColumns = []string{
	"instant", "dteday", "season", "yr", "mnth", "hr", "holiday", "weekday",
	"workingday", "weathersit", "temp", "atemp", "hum", "windspeed",
	"casual", "registered", "cnt",
}

// HourlyRecord is one row of the historical dataset. Season counts from 1
// (1 = winter) and the continuous columns are already normalized.
type HourlyRecord struct {
	Instant    int       `json:"instant"`
	Dteday     time.Time `json:"dteday"`
	Season     int       `json:"season"`
	Yr         int       `json:"yr"`
	Mnth       int       `json:"mnth"`
	Hr         int       `json:"hr"`
	Holiday    int       `json:"holiday"`
	Weekday    int       `json:"weekday"`
	Workingday int       `json:"workingday"`
	Weathersit int       `json:"weathersit"`
	Temp       float64   `json:"temp"`
	Atemp      float64   `json:"atemp"`
	Hum        float64   `json:"hum"`
	Windspeed  float64   `json:"windspeed"`
	Casual     int       `json:"casual"`
	Registered int       `json:"registered"`
	Cnt        int       `json:"cnt"`
}

// Hourly is the loaded historical dataset.
type Hourly struct {
	Records []HourlyRecord
	Columns []string // header order as read
	Nulls   int      // empty or NaN cells in the continuous columns
}

// LoadHourly reads the hourly dataset from a CSV file.
func LoadHourly(path string) (*Hourly, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadHourly(f)
}

// ReadHourly parses the hourly dataset. Columns are matched by header name;
// extra columns are ignored.
func ReadHourly(r io.Reader) (*Hourly, error) {
	t, err := openTable("dataset.ReadHourly", r, HourlyColumns)
	if err != nil {
		return nil, err
	}

	h := &Hourly{Columns: t.header}
	for {
		if err := t.next(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var rec HourlyRecord
		if rec.Dteday, err = t.dateCell("dteday"); err != nil {
			return nil, err
		}
		for _, f := range []struct {
			name string
			dst  *int
		}{
			{"instant", &rec.Instant},
			{"season", &rec.Season},
			{"yr", &rec.Yr},
			{"mnth", &rec.Mnth},
			{"hr", &rec.Hr},
			{"holiday", &rec.Holiday},
			{"weekday", &rec.Weekday},
			{"workingday", &rec.Workingday},
			{"weathersit", &rec.Weathersit},
			{"casual", &rec.Casual},
			{"registered", &rec.Registered},
			{"cnt", &rec.Cnt},
		} {
			if *f.dst, err = t.intCell(f.name); err != nil {
				return nil, err
			}
		}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"temp", &rec.Temp},
			{"atemp", &rec.Atemp},
			{"hum", &rec.Hum},
			{"windspeed", &rec.Windspeed},
		} {
			v, null, err := t.floatCell(f.name)
			if err != nil {
				return nil, err
			}
			if null {
				h.Nulls++
			}
			*f.dst = v
		}

		h.Records = append(h.Records, rec)
	}
	return h, nil
}
