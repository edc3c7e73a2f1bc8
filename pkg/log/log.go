// Package log provides structured logging for bikecast on top of zerolog.
//
// Components obtain a named Logger and log with alternating key/value pairs,
// using the field keys declared in keys.go so log lines stay greppable:
//
//	logger := log.GetLoggerWithName("predictor")
//	logger.Info("Prediction completed",
//		log.OperationKey, log.OperationPredict,
//		log.DurationMsKey, elapsed.Milliseconds(),
//	)
//
// SetupLogger configures the process-wide level and output once at startup.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the key/value logging interface used by bikecast components.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	// Error logs at error level. If the first field is an error it is
	// attached as the "error" field.
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out named loggers sharing one configuration.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// ToLogLevel parses a level name; unknown names map to info.
func ToLogLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetupLogger configures the global logger with JSON output on stderr.
func SetupLogger(level string) {
	Setup(level, "json", os.Stderr)
}

// Setup configures the global logger. format is "json" or "console".
func Setup(level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	defer mu.Unlock()
	global = zerolog.New(w).Level(ToLogLevel(level)).With().Timestamp().Logger()
}

// GetLogger returns the underlying zerolog logger for event-style logging.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// GetLoggerWithName returns a Logger tagged with the component name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zerologLogger{l: global.With().Str(ComponentKey, name).Logger()}
}

// LogError logs err at error level with a message.
func LogError(err error, msg string) {
	l := GetLogger()
	l.Error().Err(err).Msg(msg)
}

type zerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider returns a provider writing JSON to stderr at the given level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	return NewZerologProviderWithWriter(level, os.Stderr)
}

// NewZerologProviderWithWriter is NewZerologProvider with an explicit writer.
func NewZerologProviderWithWriter(level zerolog.Level, w io.Writer) LoggerProvider {
	return &zerologProvider{base: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{l: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{l: p.base.With().Str(ComponentKey, name).Logger()}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return &zerologLogger{l: zerolog.Nop()}
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...interface{}) {
	emit(z.l.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...interface{}) {
	emit(z.l.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...interface{}) {
	emit(z.l.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...interface{}) {
	ev := z.l.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			fields = fields[1:]
		}
	}
	emit(ev, msg, fields)
}

func (z *zerologLogger) With(fields ...interface{}) Logger {
	return &zerologLogger{l: z.l.With().Fields(normalize(fields)).Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	ev.Fields(normalize(fields)).Msg(msg)
}

// normalize turns alternating key/value pairs into a map. A dangling key is
// kept with an empty value; non-string keys are formatted with %v.
func normalize(fields []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, (len(fields)+1)/2)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		if i+1 < len(fields) {
			out[key] = fields[i+1]
		} else {
			out[key] = ""
		}
	}
	return out
}
