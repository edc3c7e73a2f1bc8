// Package model provides the shared building blocks for bikecast's regression
// artifacts: fitted-state tracking and the scikit-learn JSON interchange format.
//
// Model implementations hold a StateManager by composition and consult it
// before predicting:
//
//	type MyModel struct {
//		State *model.StateManager
//	}
//
//	func (m *MyModel) Predict(X mat.Matrix) (mat.Matrix, error) {
//		if !m.State.IsFitted() {
//			return nil, errors.NewNotFittedError("MyModel", "Predict")
//		}
//		...
//	}
package model

import "sync"

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model holds no parameters yet
	NotFitted EstimatorState = iota
	// Fitted indicates the model was trained or loaded
	Fitted
)

// StateManager tracks whether a model is usable and the shape it was fitted on.
// It is safe for concurrent use.
type StateManager struct {
	mu        sync.RWMutex
	State     EstimatorState
	NFeatures int
	NSamples  int
}

// NewStateManager returns a manager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{State: NotFitted}
}

// IsFitted reports whether the model may be used for prediction.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State == Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = Fitted
}

// Reset returns the model to the NotFitted state and clears its dimensions.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = NotFitted
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions records the training shape. nSamples is 0 for loaded artifacts.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// Dimensions returns the recorded feature and sample counts.
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}
