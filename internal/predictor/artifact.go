package predictor

import (
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/bikecast/linear"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/sklearn/lightgbm"
)

// Regressor is a loaded model artifact. Predict returns one output per row
// of X, whose columns are ordered as FeatureNames.
type Regressor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
	FeatureNames() []string
	Name() string
}

// Artifact formats, chosen from the file extension.
const (
	FormatLinear   = "linear"
	FormatLightGBM = "lightgbm"
)

// FormatOf returns the artifact format for path: ".json" files are
// scikit-learn linear exports, ".txt" files are LightGBM text models.
func FormatOf(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatLinear, true
	case ".txt":
		return FormatLightGBM, true
	}
	return "", false
}

// LoadArtifact reads one model artifact from path. Every failure is reported
// as a ModelLoadError.
func LoadArtifact(path string) (Regressor, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, bcErrors.NewModelLoadError(path, "", bcErrors.Newf("unsupported artifact extension %q", filepath.Ext(path)))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, bcErrors.NewModelLoadError(path, format, err)
	}

	switch format {
	case FormatLinear:
		lr := linear.NewLinearRegression()
		if err := lr.LoadFromSKLearn(path); err != nil {
			return nil, bcErrors.NewModelLoadError(path, format, err)
		}
		return lr, nil
	default:
		m, err := lightgbm.LoadFromFile(path)
		if err != nil {
			return nil, bcErrors.NewModelLoadError(path, format, err)
		}
		return m, nil
	}
}

// LoadArtifacts loads every path in order and stops at the first failure.
func LoadArtifacts(paths []string) ([]Regressor, error) {
	if len(paths) == 0 {
		return nil, bcErrors.NewModelLoadError("", "", bcErrors.New("no model paths configured"))
	}
	members := make([]Regressor, 0, len(paths))
	for _, p := range paths {
		r, err := LoadArtifact(p)
		if err != nil {
			return nil, err
		}
		members = append(members, r)
	}
	return members, nil
}
