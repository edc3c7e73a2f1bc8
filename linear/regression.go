// Package linear provides the ordinary least squares regressor used as a bike
// rental model artifact.
//
// A LinearRegression is normally loaded from a scikit-learn JSON export whose
// params carry the coefficient vector, the intercept and the feature names the
// coefficients were trained on:
//
//	lr := linear.NewLinearRegression()
//	if err := lr.LoadFromSKLearn("bike_rentals.json"); err != nil {
//		log.Fatal(err)
//	}
//	counts, err := lr.Predict(X) // X columns ordered as lr.FeatureNames()
//
// Models are never trained here. ExportToSKLearn writes a loaded model back
// out in the same JSON format.
package linear

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/bikecast/core/model"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

// LinearRegression is a linear regression model
type LinearRegression struct {
	State     *model.StateManager // State manager (composition instead of embedding)
	Weights   *mat.VecDense       // Model weights (coefficients)
	Intercept float64             // Model intercept
	NFeatures int                 // Number of features
	Names     []string            // Column names the weights apply to, in order
	logger    log.Logger          // Logger instance
}

// NewLinearRegression creates an empty model; load parameters before predicting.
func NewLinearRegression() *LinearRegression {
	lr := &LinearRegression{
		State: model.NewStateManager(),
	}

	lr.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "LinearRegression",
	)

	return lr
}

// FeatureNames returns the column order expected by Predict.
func (lr *LinearRegression) FeatureNames() []string {
	return append([]string(nil), lr.Names...)
}

// Predict computes X·w + b for every row of X.
//
// Errors:
//   - NotFittedError: if the model holds no parameters
//   - DimensionError: if X has a different number of columns than the model
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bcErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.State.IsFitted() {
		return nil, bcErrors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, bcErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	lr.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
	)

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// LoadFromSKLearn loads a model from a JSON file exported from scikit-learn
func (lr *LinearRegression) LoadFromSKLearn(filename string) (err error) {
	defer bcErrors.Recover(&err, "LinearRegression.LoadFromSKLearn")
	file, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return lr.LoadFromSKLearnReader(file)
}

// LoadFromSKLearnReader loads a scikit-learn model from a Reader
func (lr *LinearRegression) LoadFromSKLearnReader(r io.Reader) (err error) {
	defer bcErrors.Recover(&err, "LinearRegression.LoadFromSKLearnReader")
	skModel, err := model.LoadSKLearnModelFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to load sklearn model: %w", err)
	}

	params, err := model.LoadLinearRegressionParams(skModel)
	if err != nil {
		return fmt.Errorf("failed to load linear regression params: %w", err)
	}

	lr.NFeatures = params.NFeatures
	lr.Intercept = params.Intercept
	lr.Weights = mat.NewVecDense(len(params.Coefficients), params.Coefficients)
	lr.Names = append([]string(nil), params.FeatureNames...)

	lr.State.SetFitted()
	// sample count is not available when loading from file
	lr.State.SetDimensions(lr.NFeatures, 0)

	lr.logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.PhaseKey, log.PhaseStartup,
		log.FeaturesKey, lr.NFeatures,
	)

	return nil
}

// ExportToSKLearn exports the model in scikit-learn compatible JSON format
func (lr *LinearRegression) ExportToSKLearn(filename string) (err error) {
	defer bcErrors.Recover(&err, "LinearRegression.ExportToSKLearn")
	if !lr.State.IsFitted() {
		return bcErrors.NewNotFittedError("LinearRegression", "ExportToSKLearn")
	}

	file, err := os.Create(filepath.Clean(filename))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return lr.ExportToSKLearnWriter(file)
}

// ExportToSKLearnWriter exports the model to a Writer in scikit-learn compatible format
func (lr *LinearRegression) ExportToSKLearnWriter(w io.Writer) (err error) {
	defer bcErrors.Recover(&err, "LinearRegression.ExportToSKLearnWriter")
	if !lr.State.IsFitted() {
		return bcErrors.NewNotFittedError("LinearRegression", "ExportToSKLearnWriter")
	}

	coefs := make([]float64, lr.Weights.Len())
	for i := range coefs {
		coefs[i] = lr.Weights.AtVec(i)
	}

	params := model.SKLearnLinearRegressionParams{
		Coefficients: coefs,
		Intercept:    lr.Intercept,
		NFeatures:    lr.NFeatures,
		FeatureNames: lr.FeatureNames(),
	}

	return model.ExportSKLearnModel("LinearRegression", params, w)
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}

// Name identifies the artifact kind in logs and health output.
func (lr *LinearRegression) Name() string {
	return "LinearRegression"
}
