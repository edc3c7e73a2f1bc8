package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ezoic/bikecast/internal/backtest"
	"github.com/ezoic/bikecast/internal/charts"
	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/internal/features"
	"github.com/ezoic/bikecast/internal/observability"
	"github.com/ezoic/bikecast/internal/predictor"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

const summaryHeadRows = 5

// Predictor scores one assembled feature record.
type Predictor interface {
	Predict(ctx context.Context, rec features.FeatureRecord) (predictor.Result, error)
	ModelNames() []string
}

// Deps are the read-only handles shared by every request. Predictor and
// Metrics are required. Hourly, Charts and Report may be nil, in which case
// the routes that need them answer 503.
type Deps struct {
	Predictor Predictor
	Hourly    *dataset.Hourly
	Charts    *charts.Renderer
	Report    *backtest.Report
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Clock     clockwork.Clock
}

type handlers struct {
	Deps
	started time.Time
}

// predictionResponse is the body of a successful prediction.
type predictionResponse struct {
	RequestID string                 `json:"request_id"`
	Count     int                    `json:"count"`
	Raw       float64                `json:"raw"`
	Features  features.FeatureRecord `json:"features"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{Deps: d, started: d.Clock.Now()}

	app.Get("/health", h.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	v1 := app.Group("/api/v1")
	v1.Post("/predictions", h.predict)
	v1.Get("/options", h.options)
	v1.Get("/dataset/summary", h.summary)
	v1.Get("/charts", h.chartNames)
	v1.Get("/charts/:name", h.chart)
	v1.Get("/backtest", h.backtest)
}

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"service":        "bikecast",
		"uptime_seconds": h.Clock.Since(h.started).Seconds(),
		"models":         h.Predictor.ModelNames(),
	})
}

func (h *handlers) predict(c *fiber.Ctx) error {
	start := h.Clock.Now()

	var in features.RawInput
	if err := c.BodyParser(&in); err != nil {
		h.Metrics.Predictions.WithLabelValues("invalid_argument").Inc()
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	rec, err := features.Assemble(in)
	if err != nil {
		h.Metrics.Predictions.WithLabelValues(outcome(err)).Inc()
		return err
	}

	res, err := h.Predictor.Predict(c.UserContext(), rec)
	h.Metrics.Predictions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return err
	}
	h.Metrics.PredictionDuration.Observe(h.Clock.Since(start).Seconds())
	h.Metrics.PredictedCount.Observe(float64(res.Count))

	return c.JSON(predictionResponse{
		RequestID: requestID(c),
		Count:     res.Count,
		Raw:       res.Raw,
		Features:  rec,
	})
}

func (h *handlers) options(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"controls": features.Controls()})
}

func (h *handlers) summary(c *fiber.Ctx) error {
	if h.Hourly == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "historical dataset not loaded")
	}
	return c.JSON(h.Hourly.Summarize(summaryHeadRows))
}

func (h *handlers) chartNames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"charts": charts.Names()})
}

func (h *handlers) chart(c *fiber.Ctx) error {
	name := c.Params("name")
	format, err := charts.ParseFormat(c.Query("format"))
	if err != nil {
		return err
	}
	if h.Charts == nil {
		return bcErrors.Wrap(charts.ErrUnavailable, "charts disabled")
	}

	start := h.Clock.Now()
	img, err := h.Charts.Bytes(name, format)
	if err != nil {
		if !bcErrors.Is(err, charts.ErrUnknownChart) {
			h.Metrics.ChartRenders.WithLabelValues(name, string(format), "error").Inc()
		}
		return err
	}
	h.Metrics.ChartRenders.WithLabelValues(name, string(format), "success").Inc()
	h.Metrics.ChartRenderDuration.WithLabelValues(name).Observe(h.Clock.Since(start).Seconds())

	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(img)
}

func (h *handlers) backtest(c *fiber.Ctx) error {
	if h.Report == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "backtest not available")
	}
	return c.JSON(h.Report)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case bcErrors.Is(err, bcErrors.ErrSchemaMismatch):
		return "schema_mismatch"
	case bcErrors.Is(err, bcErrors.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}

// requestID returns the id assigned by the requestid middleware.
func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
