// Package backtest replays the held-out period of the preprocessed dataset
// through the predictor and scores the result.
package backtest

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/internal/features"
	"github.com/ezoic/bikecast/metrics"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

// DefaultCutoff separates the training period from the test period.
var DefaultCutoff = time.Date(2012, time.September, 1, 0, 0, 0, 0, time.UTC)

// Predictor is the part of predictor.Predictor the backtest needs.
type Predictor interface {
	PredictBatch(ctx context.Context, recs []features.FeatureRecord) ([]float64, error)
}

// Options tune a backtest run.
type Options struct {
	Cutoff    time.Time
	Tolerance metrics.Tolerance
}

// DefaultOptions uses DefaultCutoff and metrics.DefaultTolerance.
func DefaultOptions() Options {
	return Options{Cutoff: DefaultCutoff, Tolerance: metrics.DefaultTolerance()}
}

// Point is one timestamped value of a series.
type Point struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"v"`
}

// Report is the outcome of a backtest.
type Report struct {
	metrics.Summary
	Cutoff    time.Time `json:"cutoff"`
	NTrain    int       `json:"n_train"`
	NTest     int       `json:"n_test"`
	Train     []Point   `json:"train"`     // observed counts before the cutoff
	Actual    []Point   `json:"actual"`    // observed counts from the cutoff on
	Predicted []Point   `json:"predicted"` // raw model output from the cutoff on
}

// Run splits rows at opts.Cutoff, predicts every test row and scores the
// predictions. Rows must be sorted by Dteday, as returned by
// dataset.ReadPreprocessed.
func Run(ctx context.Context, p Predictor, rows []dataset.PreprocessedRecord, opts Options) (*Report, error) {
	logger := log.GetLoggerWithName("backtest")

	train, test := dataset.SplitAt(rows, opts.Cutoff)
	if len(test) == 0 {
		return nil, bcErrors.NewModelError("backtest.Run", "no rows on or after the cutoff", bcErrors.ErrEmptyData)
	}

	recs := make([]features.FeatureRecord, len(test))
	for i, r := range test {
		recs[i] = r.Features
	}
	preds, err := p.PredictBatch(ctx, recs)
	if err != nil {
		return nil, bcErrors.Wrap(err, "backtest: predict test period")
	}

	actual := mat.NewVecDense(len(test), nil)
	for i, r := range test {
		actual.SetVec(i, r.Cnt)
	}
	summary, err := metrics.Evaluate(actual, mat.NewVecDense(len(preds), preds), opts.Tolerance)
	if err != nil {
		return nil, bcErrors.Wrap(err, "backtest: score")
	}

	rep := &Report{
		Summary:   summary,
		Cutoff:    opts.Cutoff,
		NTrain:    len(train),
		NTest:     len(test),
		Train:     make([]Point, len(train)),
		Actual:    make([]Point, len(test)),
		Predicted: make([]Point, len(test)),
	}
	for i, r := range train {
		rep.Train[i] = Point{Time: r.Dteday, Value: r.Cnt}
	}
	for i, r := range test {
		rep.Actual[i] = Point{Time: r.Dteday, Value: r.Cnt}
		rep.Predicted[i] = Point{Time: r.Dteday, Value: preds[i]}
	}

	logger.Info("Backtest completed",
		log.OperationKey, log.OperationBacktest,
		log.PhaseKey, log.PhaseEvaluation,
		"n_train", rep.NTrain,
		"n_test", rep.NTest,
		"r2", rep.R2,
		"within_tolerance_pct", rep.WithinTolerancePct,
	)
	return rep, nil
}
