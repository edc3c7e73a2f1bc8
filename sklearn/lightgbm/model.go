// Package lightgbm loads gradient-boosted and random-forest tree ensembles saved
// in LightGBM's text model format and evaluates them in pure Go.
//
// Only single-output regression models with numerical splits are supported,
// which covers models produced by LGBMRegressor and by lgb.train with
// boosting "gbdt" or "rf". The feature_names header is kept so callers can
// verify the column schema before predicting.
//
// Example:
//
//	m, err := lightgbm.LoadFromFile("bike_rentals.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//	preds, err := m.Predict(X) // columns ordered as m.FeatureNames()
package lightgbm

import (
	"github.com/ezoic/bikecast/core/model"
	"github.com/ezoic/bikecast/pkg/log"
)

// ObjectiveType is the objective string recorded in the model header.
type ObjectiveType string

const (
	RegressionL2 ObjectiveType = "regression"
	RegressionL1 ObjectiveType = "regression_l1"
	Huber        ObjectiveType = "huber"
	Fair         ObjectiveType = "fair"
	Quantile     ObjectiveType = "quantile"
	MAPE         ObjectiveType = "mape"
	Poisson      ObjectiveType = "poisson"
	Gamma        ObjectiveType = "gamma"
	Tweedie      ObjectiveType = "tweedie"
)

// logLink reports whether raw scores must be exponentiated.
func (o ObjectiveType) logLink() bool {
	switch o {
	case Poisson, Gamma, Tweedie:
		return true
	}
	return false
}

func (o ObjectiveType) supported() bool {
	switch o {
	case RegressionL2, RegressionL1, Huber, Fair, Quantile, MAPE, Poisson, Gamma, Tweedie:
		return true
	}
	return false
}

// MissingType controls how NaN and zero inputs are routed at a split.
type MissingType int

const (
	MissingNone MissingType = iota
	MissingZero
	MissingNaN
)

// Node is an internal split node. Child indices >= 0 refer to other nodes;
// negative indices encode leaf ^index.
type Node struct {
	SplitFeature int
	Threshold    float64
	LeftChild    int
	RightChild   int
	DefaultLeft  bool
	MissingType  MissingType
}

// Tree is one regression tree. A tree with a single leaf has no Nodes.
type Tree struct {
	TreeIndex     int
	NumLeaves     int
	ShrinkageRate float64
	Nodes         []Node
	LeafValues    []float64
}

// Model is a loaded LightGBM ensemble.
type Model struct {
	State         *model.StateManager
	Version       string
	NumClass      int
	NumFeatures   int
	Objective     ObjectiveType
	AverageOutput bool // random forest mode: scores are averaged, not summed
	Names         []string
	Trees         []Tree

	logger log.Logger
}

// NewModel returns an empty model ready to be populated by a loader.
func NewModel() *Model {
	return &Model{
		State:    model.NewStateManager(),
		NumClass: 1,
		logger: log.GetLoggerWithName("lightgbm").With(
			log.ModelNameKey, "LightGBM",
		),
	}
}

// FeatureNames returns the column order expected by Predict.
func (m *Model) FeatureNames() []string {
	return append([]string(nil), m.Names...)
}

// Name identifies the artifact kind in logs and health output.
func (m *Model) Name() string {
	if m.AverageOutput {
		return "LightGBM(rf)"
	}
	return "LightGBM"
}

// IsFitted reports whether trees were loaded.
func (m *Model) IsFitted() bool {
	return m.State.IsFitted()
}
