// Command bikecast serves hourly bike-rental predictions and the
// exploratory charts of the historical dataset over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/ezoic/bikecast/internal/api/http"
	"github.com/ezoic/bikecast/internal/backtest"
	"github.com/ezoic/bikecast/internal/charts"
	"github.com/ezoic/bikecast/internal/config"
	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/internal/observability"
	"github.com/ezoic/bikecast/internal/predictor"
	"github.com/ezoic/bikecast/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.LogError(err, "failed to load config")
		os.Exit(1)
	}
	log.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err := run(cfg); err != nil {
		log.LogError(err, "bikecast stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := log.GetLoggerWithName("main")
	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Model artifacts are mandatory; any load or schema error aborts startup.
	regressors, err := predictor.LoadArtifacts(cfg.ModelPaths)
	if err != nil {
		return err
	}
	pred, err := predictor.New(regressors, predictor.WithClock(clock))
	if err != nil {
		return err
	}
	metrics.ModelsLoaded.Set(float64(pred.Size()))
	logger.Info("Models loaded", "models", pred.ModelNames())

	var hourly *dataset.Hourly
	if cfg.HourlyCSV != "" {
		if hourly, err = dataset.LoadHourly(cfg.HourlyCSV); err != nil {
			return err
		}
		logger.Info("Hourly dataset loaded",
			log.PathKey, cfg.HourlyCSV,
			log.SamplesKey, len(hourly.Records),
		)
	} else {
		logger.Warn("BIKECAST_HOURLY_CSV not set, charts disabled")
	}

	var report *backtest.Report
	if cfg.PreprocessedCSV != "" {
		rows, err := dataset.LoadPreprocessed(cfg.PreprocessedCSV)
		if err != nil {
			return err
		}
		report, err = backtest.Run(ctx, pred, rows, backtest.Options{
			Cutoff:    cfg.BacktestCutoff,
			Tolerance: cfg.Tolerance,
		})
		if err != nil {
			return err
		}
		metrics.BacktestR2.Set(report.R2)
		metrics.BacktestWithinTolerancePct.Set(report.WithinTolerancePct)
	} else {
		logger.Warn("BIKECAST_PREPROCESSED_CSV not set, backtest disabled")
	}

	var renderer *charts.Renderer
	if hourly != nil {
		renderer = charts.NewRenderer(hourly, report, charts.WithClock(clock))
	}

	app := httpapi.NewApp(httpapi.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Clock:        clock,
	})
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Predictor: pred,
		Hourly:    hourly,
		Charts:    renderer,
		Report:    report,
		Metrics:   metrics,
		Gatherer:  prometheus.DefaultGatherer,
		Clock:     clock,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		errc <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}
