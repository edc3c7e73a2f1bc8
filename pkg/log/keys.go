package log

// Field keys shared by all components.
const (
	ComponentKey  = "component"
	ModelNameKey  = "model_name"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	PredsKey      = "predictions"
	DurationMsKey = "duration_ms"
	PathKey       = "path"
	FormatKey     = "format"
	RequestIDKey  = "request_id"
	ChartKey      = "chart"
	CountKey      = "count"
)

// Operation values.
const (
	OperationPredict  = "predict"
	OperationLoad     = "load"
	OperationBacktest = "backtest"
	OperationRender   = "render"
)

// Phase values.
const (
	PhaseInference  = "inference"
	PhaseStartup    = "startup"
	PhaseEvaluation = "evaluation"
)
