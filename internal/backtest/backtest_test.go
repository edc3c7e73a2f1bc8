package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/internal/features"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// hourEcho predicts ten times the hour plus a fixed offset.
type hourEcho struct {
	offset float64
	err    error
	calls  int
}

func (h *hourEcho) PredictBatch(_ context.Context, recs []features.FeatureRecord) ([]float64, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = 10*float64(r.Hr) + h.offset
	}
	return out, nil
}

func rowsAround(cutoff time.Time) []dataset.PreprocessedRecord {
	var rows []dataset.PreprocessedRecord
	start := cutoff.Add(-3 * time.Hour)
	for i := 0; i < 8; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		rows = append(rows, dataset.PreprocessedRecord{
			Dteday:   ts,
			Features: features.FeatureRecord{Hr: ts.Hour()},
			Cnt:      10 * float64(ts.Hour()),
		})
	}
	return rows
}

func TestRunHonoursCutoff(t *testing.T) {
	rows := rowsAround(DefaultCutoff)
	p := &hourEcho{}

	rep, err := Run(context.Background(), p, rows, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, rep.NTrain)
	assert.Equal(t, 5, rep.NTest)
	assert.Equal(t, 1, p.calls)
	for _, pt := range rep.Train {
		assert.True(t, pt.Time.Before(DefaultCutoff))
	}
	for _, pt := range rep.Actual {
		assert.False(t, pt.Time.Before(DefaultCutoff))
	}
	assert.Equal(t, DefaultCutoff, rep.Actual[0].Time)

	assert.InDelta(t, 1.0, rep.R2, 1e-12)
	assert.InDelta(t, 0.0, rep.MAE, 1e-12)
	assert.InDelta(t, 100.0, rep.WithinTolerancePct, 1e-12)
}

func TestRunScoresOffsetPredictions(t *testing.T) {
	rows := rowsAround(DefaultCutoff)

	rep, err := Run(context.Background(), &hourEcho{offset: 25}, rows, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 25.0, rep.MAE, 1e-12)
	assert.InDelta(t, 25.0, rep.RMSE, 1e-12)
	// actual counts in the test period are 0..40, so 25 exceeds every tolerance
	assert.InDelta(t, 0.0, rep.WithinTolerancePct, 1e-12)
	assert.InDelta(t, 25.0, rep.Predicted[0].Value, 1e-12)
}

func TestRunWithoutTestRows(t *testing.T) {
	rows := rowsAround(DefaultCutoff)
	opts := DefaultOptions()
	opts.Cutoff = DefaultCutoff.AddDate(1, 0, 0)

	_, err := Run(context.Background(), &hourEcho{}, rows, opts)
	assert.ErrorIs(t, err, bcErrors.ErrEmptyData)
}

func TestRunPropagatesPredictorError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), &hourEcho{err: boom}, rowsAround(DefaultCutoff), DefaultOptions())
	assert.ErrorIs(t, err, boom)
}
