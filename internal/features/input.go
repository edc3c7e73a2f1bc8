package features

import (
	"math"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// Normalization divisors are the maxima observed in the training data.
// They must change together with the model artifact, never on their own.
const (
	TempMax      = 41.0  // °C
	HumidityMax  = 100.0 // %
	WindspeedMax = 67.0  // km/h
)

// RawInput holds the values a user enters for one prediction.
type RawInput struct {
	Year         int     `json:"year" validate:"min=0,max=1"`
	Month        int     `json:"month" validate:"min=1,max=12"`
	Day          int     `json:"day" validate:"min=1,max=31"`
	Hour         int     `json:"hour" validate:"min=0,max=23"`
	Holiday      int     `json:"holiday" validate:"min=0,max=1"`
	Weekday      int     `json:"weekday" validate:"min=0,max=6"`
	Weather      int     `json:"weather" validate:"min=1,max=4"`
	HumidityPct  float64 `json:"humidity_pct" validate:"min=0,max=100"`
	TempC        float64 `json:"temp_c" validate:"min=0,max=41"`
	WindspeedKmh float64 `json:"windspeed_kmh" validate:"min=0,max=67"`
}

// NormalizedInput holds the continuous inputs scaled into [0, 1].
type NormalizedInput struct {
	Temp      float64
	Humidity  float64
	Windspeed float64
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its documented range. The first
// violation is reported as an InvalidArgument error naming the JSON field.
func (in RawInput) Validate() error {
	const op = "RawInput.Validate"

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"humidity_pct", in.HumidityPct},
		{"temp_c", in.TempC},
		{"windspeed_kmh", in.WindspeedKmh},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return bcErrors.NewInvalidArgumentError(op, f.name, f.v, "must be finite")
		}
	}

	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, op)
	}
	fe := verrs[0]
	return bcErrors.NewInvalidArgumentError(op, fe.Field(), fe.Value(), rangeReason(fe))
}

func rangeReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	}
	return "failed " + fe.Tag()
}

// Normalize divides the continuous inputs by the training maxima.
func (in RawInput) Normalize() NormalizedInput {
	return NormalizedInput{
		Temp:      in.TempC / TempMax,
		Humidity:  in.HumidityPct / HumidityMax,
		Windspeed: in.WindspeedKmh / WindspeedMax,
	}
}
