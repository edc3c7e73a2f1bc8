// Package config loads service settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ezoic/bikecast/internal/backtest"
	"github.com/ezoic/bikecast/metrics"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Model artifacts, averaged when more than one is given.
	ModelPaths []string

	HourlyCSV       string // historical dataset for charts and summary
	PreprocessedCSV string // feature table for the backtest; empty disables it

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Tolerance      metrics.Tolerance
	BacktestCutoff time.Time
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !bcErrors.Is(err, fs.ErrNotExist) {
		return nil, bcErrors.Wrap(err, "load .env")
	}

	cfg := &Config{
		ModelPaths:      splitList(os.Getenv("BIKECAST_MODEL_PATHS")),
		HourlyCSV:       os.Getenv("BIKECAST_HOURLY_CSV"),
		PreprocessedCSV: os.Getenv("BIKECAST_PREPROCESSED_CSV"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.ReadTimeout, err = parseDuration("HTTP_READ_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = parseDuration("HTTP_WRITE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	def := metrics.DefaultTolerance()
	if cfg.Tolerance.Abs, err = parseNonNegative("BIKECAST_TOLERANCE_ABS", def.Abs); err != nil {
		return nil, err
	}
	if cfg.Tolerance.Rel, err = parseNonNegative("BIKECAST_TOLERANCE_REL", def.Rel); err != nil {
		return nil, err
	}

	cfg.BacktestCutoff = backtest.DefaultCutoff
	if s := os.Getenv("BIKECAST_BACKTEST_CUTOFF"); s != "" {
		if cfg.BacktestCutoff, err = time.Parse("2006-01-02", s); err != nil {
			return nil, bcErrors.Newf("invalid BIKECAST_BACKTEST_CUTOFF %q: want YYYY-MM-DD", s)
		}
	}

	if len(cfg.ModelPaths) == 0 {
		return nil, bcErrors.New("BIKECAST_MODEL_PATHS is required")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return nil, bcErrors.Newf("invalid LOG_FORMAT %q: want json or console", cfg.LogFormat)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, bcErrors.Newf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseNonNegative(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v != v {
		return 0, bcErrors.Newf("invalid %s: must be a non-negative number", key)
	}
	return v, nil
}
