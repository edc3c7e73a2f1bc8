// Package httpapi exposes predictions, dataset exploration and model
// evaluation over HTTP.
package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ezoic/bikecast/internal/charts"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

// Config holds the fiber settings for NewApp.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       log.Logger
	Clock        clockwork.Clock
}

// NewApp returns a fiber app with the service's error handler and global
// middleware. Routes are added with RegisterRoutes.
func NewApp(cfg Config) *fiber.App {
	if cfg.Logger == nil {
		cfg.Logger = log.GetLoggerWithName("http")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	app := fiber.New(fiber.Config{
		AppName:               "bikecast",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          errorHandler(cfg.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(accessLog(cfg.Logger, cfg.Clock))

	return app
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case bcErrors.As(err, &fe):
		return fe.Code
	case bcErrors.Is(err, bcErrors.ErrInvalidArgument),
		bcErrors.Is(err, charts.ErrUnknownFormat):
		return fiber.StatusBadRequest
	case bcErrors.Is(err, charts.ErrUnknownChart):
		return fiber.StatusNotFound
	case bcErrors.Is(err, charts.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(logger log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusOf(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("Request failed", err,
				"method", c.Method(),
				log.PathKey, c.Path(),
				"status", code,
			)
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}

func accessLog(logger log.Logger, clock clockwork.Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := clock.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		logger.Debug("Request served",
			"method", c.Method(),
			log.PathKey, c.Path(),
			"status", status,
			log.RequestIDKey, c.GetRespHeader(fiber.HeaderXRequestID),
			log.DurationMsKey, clock.Since(start).Milliseconds(),
		)
		return err
	}
}
