package dataset

import (
	"io"
	"sort"
	"time"

	"github.com/ezoic/bikecast/internal/features"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// PreprocessedRecord is one row of the model's training table: a timestamp,
// the FeatureRecord and the observed count.
type PreprocessedRecord struct {
	Dteday   time.Time              `json:"dteday"`
	Features features.FeatureRecord `json:"features"`
	Cnt      float64                `json:"cnt"`
}

// LoadPreprocessed reads the preprocessed dataset from a CSV file.
func LoadPreprocessed(path string) ([]PreprocessedRecord, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadPreprocessed(f)
}

// ReadPreprocessed parses the preprocessed dataset. It needs dteday, cnt and
// every FeatureRecord field; other columns such as a saved index are
// ignored. Rows are returned sorted by dteday.
func ReadPreprocessed(r io.Reader) ([]PreprocessedRecord, error) {
	required := append([]string{"dteday", "cnt"}, features.FeatureNames...)
	t, err := openTable("dataset.ReadPreprocessed", r, required)
	if err != nil {
		return nil, err
	}

	var out []PreprocessedRecord
	for {
		if err := t.next(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		var rec PreprocessedRecord
		if rec.Dteday, err = t.dateCell("dteday"); err != nil {
			return nil, err
		}
		cnt, null, err := t.floatCell("cnt")
		if err != nil {
			return nil, err
		}
		if null {
			return nil, t.fail("cnt", "", "missing target")
		}
		rec.Cnt = cnt

		for _, name := range features.FeatureNames {
			v, null, err := t.floatCell(name)
			if err != nil {
				return nil, err
			}
			if null {
				return nil, t.fail(name, "", "missing feature")
			}
			rec.Features.Set(name, v)
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, bcErrors.NewModelError("dataset.ReadPreprocessed", "no rows", bcErrors.ErrEmptyData)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Dteday.Before(out[j].Dteday) })
	return out, nil
}

// SplitAt divides rows into those strictly before cutoff and the rest.
// rows must be sorted by Dteday.
func SplitAt(rows []PreprocessedRecord, cutoff time.Time) (train, test []PreprocessedRecord) {
	i := sort.Search(len(rows), func(i int) bool { return !rows[i].Dteday.Before(cutoff) })
	return rows[:i], rows[i:]
}
