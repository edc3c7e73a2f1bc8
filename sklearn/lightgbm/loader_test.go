package lightgbm

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "two_feature.txt"))
	require.NoError(t, err)
	return string(data)
}

func TestLoadFromFile(t *testing.T) {
	m, err := LoadFromFile(filepath.Join("testdata", "two_feature.txt"))
	require.NoError(t, err)

	assert.Equal(t, "v4", m.Version)
	assert.Equal(t, 2, m.NumFeatures)
	assert.Equal(t, RegressionL2, m.Objective)
	assert.Equal(t, []string{"hr", "atemp"}, m.FeatureNames())
	assert.Len(t, m.Trees, 2)
	assert.True(t, m.IsFitted())
	assert.False(t, m.AverageOutput)

	root := m.Trees[0].Nodes[0]
	assert.True(t, root.DefaultLeft)
	assert.Equal(t, MissingNone, root.MissingType)
}

func TestPredict(t *testing.T) {
	m, err := LoadFromString(readFixture(t))
	require.NoError(t, err)

	X := mat.NewDense(4, 2, []float64{
		3, 0.9,
		8, 0.4,
		8, 0.6,
		math.NaN(), 0.6,
	})
	preds, err := m.Predict(X)
	require.NoError(t, err)

	want := []float64{15, 55, 85, 15}
	for i, w := range want {
		assert.InDeltaf(t, w, preds.At(i, 0), 1e-12, "row %d", i)
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	m, err := LoadFromString(readFixture(t))
	require.NoError(t, err)

	_, err = m.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, bcErrors.ErrDimensionMismatch)
}

func TestAverageOutput(t *testing.T) {
	text := strings.Replace(readFixture(t), "tree_sizes=", "average_output\ntree_sizes=", 1)
	m, err := LoadFromString(text)
	require.NoError(t, err)
	assert.True(t, m.AverageOutput)
	assert.Equal(t, "LightGBM(rf)", m.Name())

	assert.InDelta(t, 7.5, m.PredictRow([]float64{3, 0.1}), 1e-12)
}

func TestPoissonObjective(t *testing.T) {
	text := strings.Replace(readFixture(t), "objective=regression", "objective=poisson", 1)
	m, err := LoadFromString(text)
	require.NoError(t, err)

	assert.InDelta(t, math.Exp(15), m.PredictRow([]float64{3, 0.1}), 1e-6)
}

func TestMissingNaNRouting(t *testing.T) {
	// decision_type 8: missing type NaN, default right
	text := strings.Replace(readFixture(t), "decision_type=2 2", "decision_type=8 2", 1)
	m, err := LoadFromString(text)
	require.NoError(t, err)
	assert.Equal(t, MissingNaN, m.Trees[0].Nodes[0].MissingType)
	assert.False(t, m.Trees[0].Nodes[0].DefaultLeft)

	// NaN goes right at the root, then atemp=0.6 goes right again
	assert.InDelta(t, 85.0, m.PredictRow([]float64{math.NaN(), 0.6}), 1e-12)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		errLike string
	}{
		{"multiclass", "num_class=1", "num_class=3", "num_class=3"},
		{"binary objective", "objective=regression", "objective=binary sigmoid:1", "unsupported objective"},
		{"feature names", "feature_names=hr atemp", "feature_names=hr", "feature_names"},
		{"categorical split", "decision_type=2 2", "decision_type=1 2", "categorical"},
		{"split out of range", "split_feature=0 1", "split_feature=0 7", "outside"},
		{"leaf count", "leaf_value=10 50 80", "leaf_value=10 50", "leaf values"},
		{"bad number", "threshold=6.5 0.5", "threshold=6.5 abc", "threshold"},
		{"child out of range", "right_child=1 -3", "right_child=1 -9", "child index"},
		{"self loop", "right_child=1 -3", "right_child=0 -3", "points back"},
		{"back edge", "right_child=1 -3", "right_child=1 0", "points back"},
		{"linear tree", "is_linear=0", "is_linear=1", "linear trees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Replace(readFixture(t), tt.old, tt.new, 1)
			_, err := LoadFromString(text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errLike)
		})
	}
}

func TestLoadRejectsEmptyModel(t *testing.T) {
	_, err := LoadFromString("tree\nversion=v4\nmax_feature_idx=1\nobjective=regression\n")
	assert.ErrorIs(t, err, bcErrors.ErrEmptyData)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
