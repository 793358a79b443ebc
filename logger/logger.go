package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FieldService tags every line with the process name.
const FieldService = "service"

// Logger wraps zerolog.Logger with transcriptkit context helpers.
type Logger struct {
	logger zerolog.Logger
}

// Init replaces the global logger and drops every cached component logger,
// so later Get calls pick up the new configuration.
func Init(cfg Config, service string) {
	cfg.ApplyDefaults()
	l := New(&cfg, service)

	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
	registry.reset()
}

// New creates a logger writing to the configured output.
func New(cfg *Config, service string) *Logger {
	return NewWithWriter(cfg, service, outputWriter(cfg))
}

// NewWithWriter creates a logger that writes to w instead of the configured output.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var zc zerolog.Context
	if strings.ToLower(cfg.Format) == "json" {
		zc = zerolog.New(w).With().Str(FieldService, service)
	} else {
		zc = zerolog.New(consoleWriter(cfg, w)).With()
	}
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{logger: zc.Logger().Level(level)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithContext returns a logger enriched with the trace and span of the active span, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.with(func(zc zerolog.Context) zerolog.Context {
		return zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	})
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldComponent, name) })
}

// WithMeeting returns a logger tagged with a meeting id.
func (l *Logger) WithMeeting(id string) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldMeetingID, id) })
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Fields(fields) })
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldError, err.Error()) })
}

func (l *Logger) with(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{logger: fn(l.logger.With()).Logger()}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level zerolog.Level) bool {
	return l.logger.GetLevel() <= level
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	write(l.logger.Debug(), msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	write(l.logger.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	write(l.logger.Warn(), msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	write(l.logger.Error(), msg, fields)
}

func write(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	if event == nil {
		return
	}
	for _, fm := range fields {
		event.Fields(fm)
	}
	event.Msg(msg)
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Global returns the process logger, creating a default one before Init.
func Global() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		var cfg Config
		cfg.ApplyDefaults()
		globalLogger = New(&cfg, "transcriptkit")
	}
	return globalLogger
}

func outputWriter(cfg *Config) io.Writer {
	if cfg.isFileOutput() {
		return &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		}
	}
	if strings.ToLower(cfg.Output) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// consoleWriter renders "15:04:05 [INF] [component] message key:value".
func consoleWriter(cfg *Config, w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			return levelTag(fmt.Sprint(i), cfg.NoColor)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
		FormatPrepare: func(evt map[string]interface{}) error {
			if c, ok := evt[FieldComponent].(string); ok {
				msg, _ := evt[zerolog.MessageFieldName].(string)
				evt[zerolog.MessageFieldName] = "[" + c + "] " + msg
				delete(evt, FieldComponent)
			}
			return nil
		},
	}
}

var levelColors = map[string]string{
	"TRC": "\033[90m",
	"DBG": "\033[36m",
	"INF": "\033[32m",
	"WRN": "\033[33m",
	"ERR": "\033[31m",
	"FTL": "\033[35m",
}

func levelTag(level string, noColor bool) string {
	short := map[string]string{
		"trace": "TRC", "debug": "DBG", "info": "INF", "warn": "WRN", "error": "ERR", "fatal": "FTL",
	}[strings.ToLower(level)]
	if short == "" {
		return "[" + strings.ToUpper(level) + "]"
	}
	if noColor {
		return "[" + short + "]"
	}
	return levelColors[short] + "[" + short + "]\033[0m"
}
