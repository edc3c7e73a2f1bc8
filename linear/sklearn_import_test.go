package linear_test

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/bikecast/core/model"
	"github.com/ezoic/bikecast/linear"
)

func TestLinearRegression_LoadFromSKLearn(t *testing.T) {
	params := model.SKLearnLinearRegressionParams{
		Coefficients: []float64{2.0, 3.0, -1.0},
		Intercept:    5.0,
		NFeatures:    3,
		FeatureNames: []string{"hr", "atemp", "hum"},
	}

	var buf bytes.Buffer
	if err := model.ExportSKLearnModel("LinearRegression", params, &buf); err != nil {
		t.Fatalf("Failed to encode model: %v", err)
	}

	lr := linear.NewLinearRegression()
	if err := lr.LoadFromSKLearnReader(&buf); err != nil {
		t.Fatalf("Failed to load from sklearn: %v", err)
	}

	if lr.NFeatures != 3 {
		t.Errorf("Expected NFeatures=3, got %d", lr.NFeatures)
	}
	if lr.Intercept != 5.0 {
		t.Errorf("Expected Intercept=5.0, got %f", lr.Intercept)
	}
	if got := strings.Join(lr.FeatureNames(), ","); got != "hr,atemp,hum" {
		t.Errorf("Expected feature names hr,atemp,hum, got %s", got)
	}
	if !lr.IsFitted() {
		t.Error("Model should be fitted after loading from sklearn")
	}

	pred, err := lr.Predict(mat.NewDense(1, 3, []float64{1, 1, 1}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got := pred.At(0, 0); got != 9 {
		t.Errorf("Expected prediction 9, got %v", got)
	}
}

func TestLinearRegression_ExportRoundTripFile(t *testing.T) {
	lr := linear.NewLinearRegression()
	if err := lr.LoadFromSKLearn(filepath.Join("testdata", "hour_temp.json")); err != nil {
		t.Fatalf("LoadFromSKLearn() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := lr.ExportToSKLearn(path); err != nil {
		t.Fatalf("ExportToSKLearn() error = %v", err)
	}

	loaded := linear.NewLinearRegression()
	if err := loaded.LoadFromSKLearn(path); err != nil {
		t.Fatalf("LoadFromSKLearn() error = %v", err)
	}
	if got := strings.Join(loaded.FeatureNames(), ","); got != "hr,atemp" {
		t.Errorf("feature names after round trip = %s", got)
	}

	X := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
		2, 1,
	})
	want, _ := lr.Predict(X)
	got, _ := loaded.Predict(X)
	for i := 0; i < 4; i++ {
		if math.Abs(want.At(i, 0)-got.At(i, 0)) > 1e-12 {
			t.Errorf("row %d: loaded prediction %v, original %v", i, got.At(i, 0), want.At(i, 0))
		}
	}
}

func TestLinearRegression_LoadFromSKLearnMissingFile(t *testing.T) {
	lr := linear.NewLinearRegression()
	if err := lr.LoadFromSKLearn(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLinearRegression_ExportNotFitted(t *testing.T) {
	var buf bytes.Buffer
	if err := linear.NewLinearRegression().ExportToSKLearnWriter(&buf); err == nil {
		t.Error("expected error exporting an unfitted model")
	}
}
