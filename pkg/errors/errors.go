// Package errors provides the error types used across bikecast.
//
// Every typed error carries the operation that produced it and integrates with
// the standard errors.Is / errors.As helpers. Stack traces and wrapping come from
// github.com/cockroachdb/errors, so "%+v" formatting prints the full chain.
//
// The three error kinds the prediction path distinguishes are:
//
//   - InvalidArgumentError: a derivation or assembly function was called outside
//     its documented domain (for example hour=24).
//   - SchemaMismatchError: the feature names of a model artifact do not match the
//     feature record.
//   - ModelLoadError: a model artifact is missing, unreadable or corrupt.
//
// Each kind matches a sentinel (ErrInvalidArgument, ErrSchemaMismatch,
// ErrModelLoad) so callers can branch without type assertions:
//
//	if errors.Is(err, errors.ErrSchemaMismatch) {
//		log.Fatal(err)
//	}
package errors

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	ErrEmptyData         = errors.New("empty data")
	ErrNotImplemented    = errors.New("not implemented")
	ErrSingularMatrix    = errors.New("singular matrix")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNotFitted         = errors.New("model not fitted")
	ErrNonFinite         = errors.New("non-finite value")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrModelLoad       = errors.New("model load failed")
)

// Re-exports so callers need a single errors import.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ValueError reports an argument with an unacceptable value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("bikecast: %s: %s", e.Op, e.Message)
}

// DimensionError reports a shape mismatch along Axis (0 rows, 1 columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("bikecast: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// Is lets errors.Is match ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }

// NotFittedError is returned when a model is used before it holds parameters.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("bikecast: %s: this %s instance is not fitted yet", e.Method, e.ModelName)
}

// Is lets errors.Is match ErrNotFitted.
func (e *NotFittedError) Is(target error) bool { return target == ErrNotFitted }

// ModelError wraps a lower level cause with the failing operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

// NewModelError creates a ModelError.
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("bikecast: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// ValidationError reports a structural problem with a named component.
type ValidationError struct {
	Op      string
	Message string
	Subject string
}

// NewValidationError creates a ValidationError.
func NewValidationError(op, message, subject string) error {
	return errors.WithStack(&ValidationError{Op: op, Message: message, Subject: subject})
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("bikecast: %s: %s (%s)", e.Op, e.Message, e.Subject)
}

// InvalidArgumentError reports a call outside a function's documented domain.
type InvalidArgumentError struct {
	Op     string
	Field  string
	Value  interface{}
	Reason string
}

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(op, field string, value interface{}, reason string) error {
	return errors.WithStack(&InvalidArgumentError{Op: op, Field: field, Value: value, Reason: reason})
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("bikecast: %s: invalid %s=%v: %s", e.Op, e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// SchemaMismatchError reports feature names that differ between a model and a record.
type SchemaMismatchError struct {
	Op         string
	Missing    []string // expected by the model, absent from the record
	Unexpected []string // present in the record, unknown to the model
}

// NewSchemaMismatchError creates a SchemaMismatchError.
func NewSchemaMismatchError(op string, missing, unexpected []string) error {
	return errors.WithStack(&SchemaMismatchError{Op: op, Missing: missing, Unexpected: unexpected})
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing ["+strings.Join(e.Missing, ", ")+"]")
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected ["+strings.Join(e.Unexpected, ", ")+"]")
	}
	if len(parts) == 0 {
		parts = append(parts, "feature sets differ")
	}
	return fmt.Sprintf("bikecast: %s: schema mismatch: %s", e.Op, strings.Join(parts, "; "))
}

// Is lets errors.Is match ErrSchemaMismatch.
func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// ModelLoadError reports an artifact that could not be deserialized.
type ModelLoadError struct {
	Path   string
	Format string
	Err    error
}

// NewModelLoadError creates a ModelLoadError.
func NewModelLoadError(path, format string, err error) error {
	return errors.WithStack(&ModelLoadError{Path: path, Format: format, Err: err})
}

func (e *ModelLoadError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("bikecast: load model %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("bikecast: load %s model %q: %v", e.Format, e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrModelLoad.
func (e *ModelLoadError) Is(target error) bool { return target == ErrModelLoad }

// CheckScalar returns an error if v is NaN or ±Inf.
func CheckScalar(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewModelError(name, fmt.Sprintf("got %v", v), ErrNonFinite)
	}
	return nil
}

// Recover converts a panic in the calling function into an error stored in *errp.
// It must be deferred directly:
//
//	func (m *Model) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
//		defer errors.Recover(&err, "Model.Predict")
//		...
//	}
func Recover(errp *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = errors.Newf("%v", v)
	}
	*errp = errors.Wrapf(cause, "%s: recovered from panic", op)
}
