// Package metrics provides the regression metrics used to judge hourly rental
// predictions against the observed counts.
//
// Metrics:
//   - MSE and RMSE: squared error and its square root, in rentals
//   - MAE: mean absolute error, in rentals
//   - R2Score: coefficient of determination
//   - WithinTolerance: share of predictions that are "almost correct"
//
// All functions take gonum vectors. Evaluate bundles them into one Summary
// for reporting:
//
//	s, err := metrics.Evaluate(actual, predicted, metrics.DefaultTolerance())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("R²=%.2f within=%.1f%%\n", s.R2, s.WithinTolerancePct)
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// checkPair validates that both vectors are non-empty and of equal length.
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, bcErrors.NewValueError(op, "input vectors cannot be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, bcErrors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, bcErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
//
// Example:
//
//	mse, err := metrics.MSE(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("MSE: %.4f\n", mse)
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE calculates the Root Mean Squared Error, expressed in the same units
// as the target (rentals per hour).
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
//
// MAE is less sensitive to the evening and morning peaks than MSE because
// errors are not squared.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination (R²) score.
//
// Values range from negative infinity to 1, where 1 indicates perfect
// predictions and 0 indicates predictions no better than the mean.
//
// Errors:
//   - ValueError: if input vectors are empty or yTrue has no variance
//   - DimensionError: if yTrue and yPred have different lengths
//
// Example:
//
//	r2, err := metrics.R2Score(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("R² Score: %.4f\n", r2)
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := stat.Mean(mat.Col(nil, 0, yTrue), nil)

	var tss, rss float64
	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	if tss == 0 {
		return 0, bcErrors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// Tolerance defines when a prediction counts as almost correct: the
// absolute error must not exceed max(Abs, Rel*actual).
type Tolerance struct {
	Abs float64 // rentals
	Rel float64 // fraction of the actual count
}

// DefaultTolerance accepts errors up to 20 rentals or 20% of the actual
// count, whichever is larger.
func DefaultTolerance() Tolerance {
	return Tolerance{Abs: 20, Rel: 0.2}
}

// Allows reports whether pred is within tolerance of actual.
func (t Tolerance) Allows(actual, pred float64) bool {
	return math.Abs(pred-actual) <= math.Max(t.Abs, t.Rel*math.Abs(actual))
}

// WithinTolerance returns the percentage (0-100) of predictions that are
// almost correct under tol.
//
// Errors:
//   - ValueError: if input vectors are empty or tol is negative
//   - DimensionError: if yTrue and yPred have different lengths
func WithinTolerance(yTrue, yPred *mat.VecDense, tol Tolerance) (float64, error) {
	n, err := checkPair("WithinTolerance", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if tol.Abs < 0 || tol.Rel < 0 {
		return 0, bcErrors.NewValueError("WithinTolerance", "tolerance must be non-negative")
	}

	hits := 0
	for i := 0; i < n; i++ {
		if tol.Allows(yTrue.AtVec(i), yPred.AtVec(i)) {
			hits++
		}
	}
	return 100 * float64(hits) / float64(n), nil
}

// Summary groups the metrics reported for a set of predictions.
type Summary struct {
	R2                 float64 `json:"r2"`
	MAE                float64 `json:"mae"`
	RMSE               float64 `json:"rmse"`
	WithinTolerancePct float64 `json:"within_tolerance_pct"`
}

// Evaluate computes every metric of Summary in one call.
func Evaluate(yTrue, yPred *mat.VecDense, tol Tolerance) (Summary, error) {
	var s Summary
	var err error
	if s.R2, err = R2Score(yTrue, yPred); err != nil {
		return Summary{}, err
	}
	if s.MAE, err = MAE(yTrue, yPred); err != nil {
		return Summary{}, err
	}
	if s.RMSE, err = RMSE(yTrue, yPred); err != nil {
		return Summary{}, err
	}
	if s.WithinTolerancePct, err = WithinTolerance(yTrue, yPred, tol); err != nil {
		return Summary{}, err
	}
	return s, nil
}
