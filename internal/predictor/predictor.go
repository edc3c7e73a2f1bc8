// Package predictor turns a FeatureRecord into a rental count using one or
// more loaded model artifacts.
//
// A Predictor is built once at startup from its artifacts and is read-only
// afterwards, so it is safe to share between requests. The schema of every
// artifact is checked against the FeatureRecord field set when the Predictor
// is built and again on each call.
package predictor

import (
	"context"
	"math"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/bikecast/internal/features"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

// Result is the outcome of one prediction.
type Result struct {
	Count int     `json:"count"` // rounded, never negative
	Raw   float64 `json:"raw"`   // ensemble output before rounding
}

// Predictor averages the outputs of its members.
type Predictor struct {
	members []member
	clock   clockwork.Clock
	logger  log.Logger
}

type member struct {
	Regressor
	names []string
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithClock sets the clock used to time predictions.
func WithClock(c clockwork.Clock) Option {
	return func(p *Predictor) { p.clock = c }
}

// WithLogger replaces the default component logger.
func WithLogger(l log.Logger) Option {
	return func(p *Predictor) { p.logger = l }
}

// New builds a Predictor from loaded artifacts. It fails with a
// SchemaMismatch error if any artifact was trained on a different field set.
func New(regressors []Regressor, opts ...Option) (*Predictor, error) {
	if len(regressors) == 0 {
		return nil, bcErrors.NewValueError("predictor.New", "at least one model is required")
	}

	p := &Predictor{
		clock:  clockwork.NewRealClock(),
		logger: log.GetLoggerWithName("predictor"),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, r := range regressors {
		names := r.FeatureNames()
		if err := CheckSchema(names); err != nil {
			return nil, bcErrors.Wrapf(err, "model %s", r.Name())
		}
		p.members = append(p.members, member{Regressor: r, names: names})
	}

	p.logger.Info("Predictor ready",
		log.PhaseKey, log.PhaseStartup,
		"models", p.ModelNames(),
	)
	return p, nil
}

// CheckSchema compares a model's feature names with the FeatureRecord field
// set. Order does not matter; a repeated name counts as unknown.
func CheckSchema(names []string) error {
	seen := make(map[string]bool, len(features.FeatureNames))
	for _, n := range features.FeatureNames {
		seen[n] = false
	}

	var modelOnly []string
	for _, n := range names {
		if dup, ok := seen[n]; !ok || dup {
			modelOnly = append(modelOnly, n)
			continue
		}
		seen[n] = true
	}

	var recordOnly []string
	for _, n := range features.FeatureNames {
		if !seen[n] {
			recordOnly = append(recordOnly, n)
		}
	}

	if len(modelOnly) > 0 || len(recordOnly) > 0 {
		return bcErrors.NewSchemaMismatchError("predictor.CheckSchema", modelOnly, recordOnly)
	}
	return nil
}

// ModelNames lists the members in load order.
func (p *Predictor) ModelNames() []string {
	out := make([]string, len(p.members))
	for i, m := range p.members {
		out[i] = m.Name()
	}
	return out
}

// Size is the number of ensemble members.
func (p *Predictor) Size() int {
	return len(p.members)
}

// Predict returns max(0, round(raw)) for one record. Halves round to even.
func (p *Predictor) Predict(ctx context.Context, rec features.FeatureRecord) (Result, error) {
	raws, err := p.PredictBatch(ctx, []features.FeatureRecord{rec})
	if err != nil {
		return Result{}, err
	}
	return Result{Count: Round(raws[0]), Raw: raws[0]}, nil
}

// PredictRaw returns the unrounded ensemble output for one record.
func (p *Predictor) PredictRaw(ctx context.Context, rec features.FeatureRecord) (float64, error) {
	raws, err := p.PredictBatch(ctx, []features.FeatureRecord{rec})
	if err != nil {
		return 0, err
	}
	return raws[0], nil
}

// PredictBatch returns the unrounded ensemble output for every record.
func (p *Predictor) PredictBatch(ctx context.Context, recs []features.FeatureRecord) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, bcErrors.NewModelError("predictor.PredictBatch", "no records", bcErrors.ErrEmptyData)
	}

	start := p.clock.Now()
	sum := make([]float64, len(recs))

	for _, m := range p.members {
		if err := CheckSchema(m.names); err != nil {
			return nil, bcErrors.Wrapf(err, "model %s", m.Name())
		}

		X := mat.NewDense(len(recs), len(m.names), nil)
		for i, rec := range recs {
			row, err := rec.Values(m.names)
			if err != nil {
				return nil, err
			}
			X.SetRow(i, row)
		}

		out, err := m.Predict(X)
		if err != nil {
			return nil, bcErrors.Wrapf(err, "model %s", m.Name())
		}
		for i := range recs {
			v := out.At(i, 0)
			if err := bcErrors.CheckScalar(m.Name()+".Predict", v); err != nil {
				return nil, err
			}
			sum[i] += v
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	n := float64(len(p.members))
	for i := range sum {
		sum[i] /= n
	}

	p.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, len(recs),
		log.DurationMsKey, p.clock.Since(start).Milliseconds(),
	)
	return sum, nil
}

// Round converts a raw model output into a rental count: nearest integer,
// halves to even, never below zero. Outputs past the int range saturate.
func Round(raw float64) int {
	if math.IsNaN(raw) || raw <= 0 {
		return 0
	}
	if raw >= math.MaxInt {
		return math.MaxInt
	}
	return int(math.RoundToEven(raw))
}
