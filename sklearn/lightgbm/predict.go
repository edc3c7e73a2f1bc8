package lightgbm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/bikecast/core/parallel"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

// Predict returns one regression output per row of X.
func (m *Model) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bcErrors.Recover(&err, "lightgbm.Predict")
	if !m.State.IsFitted() {
		return nil, bcErrors.NewNotFittedError("LightGBM", "Predict")
	}

	r, c := X.Dims()
	if c != m.NumFeatures {
		return nil, bcErrors.NewDimensionError("lightgbm.Predict", m.NumFeatures, c, 1)
	}

	m.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
	)

	out := mat.NewDense(r, 1, nil)
	const parallelThreshold = 512
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		row := make([]float64, c)
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				row[j] = X.At(i, j)
			}
			out.Set(i, 0, m.PredictRow(row))
		}
	})

	return out, nil
}

// PredictRow scores a single feature row. len(row) must equal NumFeatures.
func (m *Model) PredictRow(row []float64) float64 {
	var score float64
	for i := range m.Trees {
		score += m.Trees[i].predict(row)
	}
	if m.AverageOutput && len(m.Trees) > 0 {
		score /= float64(len(m.Trees))
	}
	if m.Objective.logLink() {
		return math.Exp(score)
	}
	return score
}

func (t *Tree) predict(row []float64) float64 {
	if len(t.Nodes) == 0 {
		return t.LeafValues[0]
	}
	idx := 0
	for idx >= 0 {
		idx = t.Nodes[idx].next(row[t.Nodes[idx].SplitFeature])
	}
	return t.LeafValues[^idx]
}

// next follows LightGBM's numerical decision rule.
func (n *Node) next(v float64) int {
	if math.IsNaN(v) && n.MissingType != MissingNaN {
		v = 0
	}
	if (n.MissingType == MissingZero && isZero(v)) || (n.MissingType == MissingNaN && math.IsNaN(v)) {
		if n.DefaultLeft {
			return n.LeftChild
		}
		return n.RightChild
	}
	if v <= n.Threshold {
		return n.LeftChild
	}
	return n.RightChild
}

const zeroThreshold = 1e-35

func isZero(v float64) bool {
	return v >= -zeroThreshold && v <= zeroThreshold
}
