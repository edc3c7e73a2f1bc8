// Command bikecast-charts writes every chart of the historical dataset to a
// directory. With -models and -preprocessed it also runs the backtest and
// writes the actual-vs-predicted chart.
//
// Usage:
//
//	go run ./cmd/bikecast-charts \
//	  -hourly data/hour.csv \
//	  -preprocessed data/preprocessed.csv \
//	  -models models/bike_linear.json,models/bike_lgbm.txt \
//	  -out charts -format svg
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezoic/bikecast/internal/backtest"
	"github.com/ezoic/bikecast/internal/charts"
	"github.com/ezoic/bikecast/internal/dataset"
	"github.com/ezoic/bikecast/internal/predictor"
	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

func main() {
	hourlyPath := flag.String("hourly", "", "path to the hourly rentals CSV")
	preprocessedPath := flag.String("preprocessed", "", "path to the preprocessed feature CSV (optional)")
	models := flag.String("models", "", "comma-separated model artifacts for the backtest chart (optional)")
	outDir := flag.String("out", "charts", "output directory")
	formatName := flag.String("format", "png", "image format: png or svg")
	flag.Parse()

	if *hourlyPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	log.SetupLogger("info")

	if err := run(*hourlyPath, *preprocessedPath, *models, *outDir, *formatName); err != nil {
		log.LogError(err, "chart export failed")
		os.Exit(1)
	}
}

func run(hourlyPath, preprocessedPath, models, outDir, formatName string) error {
	logger := log.GetLoggerWithName("bikecast-charts")

	format, err := charts.ParseFormat(formatName)
	if err != nil {
		return err
	}

	hourly, err := dataset.LoadHourly(hourlyPath)
	if err != nil {
		return err
	}

	var report *backtest.Report
	if preprocessedPath != "" && models != "" {
		if report, err = runBacktest(preprocessedPath, strings.Split(strings.ReplaceAll(models, " ", ""), ",")); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return bcErrors.Wrap(err, "create output directory")
	}

	r := charts.NewRenderer(hourly, report)
	written := 0
	for _, name := range charts.Names() {
		if name == "backtest" && report == nil {
			continue
		}
		path := filepath.Join(outDir, name+"."+string(format))
		if err := writeChart(r, name, format, path); err != nil {
			return err
		}
		logger.Info("Chart written", log.ChartKey, name, log.PathKey, path)
		written++
	}

	logger.Info("Export complete", log.CountKey, written, "dir", outDir)
	return nil
}

func runBacktest(preprocessedPath string, modelPaths []string) (*backtest.Report, error) {
	regressors, err := predictor.LoadArtifacts(modelPaths)
	if err != nil {
		return nil, err
	}
	pred, err := predictor.New(regressors)
	if err != nil {
		return nil, err
	}
	rows, err := dataset.LoadPreprocessed(preprocessedPath)
	if err != nil {
		return nil, err
	}
	return backtest.Run(context.Background(), pred, rows, backtest.DefaultOptions())
}

func writeChart(r *charts.Renderer, name string, format charts.Format, path string) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return bcErrors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return r.Render(f, name, format)
}
