// Package dataset loads the historical bike-sharing tables used for charts
// and backtesting. Both tables are read once and never modified.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// dateLayouts are tried in order for the dteday column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// table reads a header-addressed CSV row by row.
type table struct {
	r      *csv.Reader
	header []string
	index  map[string]int
	row    []string
	line   int
	op     string
}

func openTable(op string, r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, bcErrors.Wrapf(err, "%s: read header", op)
	}
	t := &table{
		r:      cr,
		header: append([]string(nil), header...),
		index:  make(map[string]int, len(header)),
		line:   1,
		op:     op,
	}
	for i, h := range t.header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.header[i] = h
		t.index[h] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := t.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, bcErrors.NewValidationError(op, "missing columns ["+strings.Join(missing, ", ")+"]", "header")
	}
	return t, nil
}

// next advances to the following row. It returns io.EOF at the end.
func (t *table) next() error {
	row, err := t.r.Read()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return bcErrors.Wrapf(err, "%s: line %d", t.op, t.line+1)
	}
	t.row = row
	t.line++
	return nil
}

func (t *table) cell(name string) string {
	return strings.TrimSpace(t.row[t.index[name]])
}

func (t *table) fail(name, value, reason string) error {
	return bcErrors.NewValidationError(t.op,
		"line "+strconv.Itoa(t.line)+": column "+name+" "+strconv.Quote(value)+": "+reason, name)
}

func (t *table) intCell(name string) (int, error) {
	s := t.cell(name)
	v, err := strconv.Atoi(s)
	if err != nil {
		// pandas writes integer columns as floats once they held a NaN
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, t.fail(name, s, "not an integer")
		}
		v = int(f)
	}
	return v, nil
}

// floatCell parses a float cell. Empty and NaN cells yield NaN and null=true.
func (t *table) floatCell(name string) (v float64, null bool, err error) {
	s := t.cell(name)
	if s == "" {
		return math.NaN(), true, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, t.fail(name, s, "not a number")
	}
	return v, math.IsNaN(v), nil
}

func (t *table) dateCell(name string) (time.Time, error) {
	s := t.cell(name)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, t.fail(name, s, "not a date")
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, bcErrors.Wrapf(err, "open dataset")
	}
	return f, nil
}
