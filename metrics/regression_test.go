package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

func TestMetricsRejectBadInput(t *testing.T) {
	a := mat.NewVecDense(3, []float64{1, 2, 3})
	b := mat.NewVecDense(2, []float64{1, 2})

	fns := map[string]func(x, y *mat.VecDense) (float64, error){
		"MSE":     MSE,
		"RMSE":    RMSE,
		"MAE":     MAE,
		"R2Score": R2Score,
		"WithinTolerance": func(x, y *mat.VecDense) (float64, error) {
			return WithinTolerance(x, y, DefaultTolerance())
		},
	}

	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			_, err := fn(a, b)
			assert.ErrorIs(t, err, bcErrors.ErrDimensionMismatch)

			_, err = fn(nil, a)
			assert.Error(t, err)
		})
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	y := mat.NewVecDense(3, []float64{5, 5, 5})
	_, err := R2Score(y, y)
	assert.Error(t, err)
}

func TestToleranceAllows(t *testing.T) {
	tol := DefaultTolerance()
	tests := []struct {
		actual, pred float64
		want         bool
	}{
		{0, 20, true},
		{0, 20.5, false},
		{100, 120, true},
		{200, 240, true},
		{200, 241, false},
		{1000, 800, true},
		{1000, 799, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, tol.Allows(tt.actual, tt.pred), "actual=%v pred=%v", tt.actual, tt.pred)
	}
}

func TestWithinToleranceNegative(t *testing.T) {
	y := mat.NewVecDense(1, []float64{1})
	_, err := WithinTolerance(y, y, Tolerance{Abs: -1})
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{10, 20, 30, 40})
	yPred := mat.NewVecDense(4, []float64{12, 18, 33, 100})

	s, err := Evaluate(yTrue, yPred, DefaultTolerance())
	require.NoError(t, err)

	// residuals: -2, 2, -3, -60
	assert.InDelta(t, 67.0/4, s.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt((4+4+9+3600)/4.0), s.RMSE, 1e-12)
	assert.InDelta(t, 1-3617.0/500.0, s.R2, 1e-12)
	assert.InDelta(t, 75.0, s.WithinTolerancePct, 1e-12)
}
