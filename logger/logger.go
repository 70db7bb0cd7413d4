package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// Logger wraps zerolog.Logger with a service name.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init initializes the global logger from config.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	name := cfg.ServiceName
	if name == "" {
		name = "default"
	}
	SetGlobalLogger(New(cfg, name))
}

// New creates a logger writing to the configured output.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w instead of the configured output.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty:
		zl = zerolog.New(consoleWriter(cfg, serviceName, w))
	default:
		zl = zerolog.New(w).With().Str(FieldService, serviceName).Logger()
	}
	zl = zl.Level(level)

	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{logger: zl, service: serviceName}
}

// NewDefault creates a console logger at info level.
func NewDefault(serviceName string) *Logger {
	return New(&Config{
		Level:     "info",
		Format:    FormatConsole,
		Output:    "stdout",
		Timestamp: true,
	}, serviceName)
}

// NewFromEnv creates a logger configured from LOG_* environment variables.
// Unparseable values fall back to the defaults.
func NewFromEnv(serviceName string) *Logger {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		cfg = Config{}
		cfg.ApplyDefaults()
	}
	return New(&cfg, serviceName)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{logger: zc.Logger(), service: l.service}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		logger:  l.logger.With().Err(err).Logger(),
		service: l.service,
	}
}

// Service returns the service name the logger was created with.
func (l *Logger) Service() string {
	return l.service
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	event := l.logger.Error()
	addFields(event, fields...)
	event.Msg(msg)
}

// --- Global logger ---

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

// Package-level convenience functions delegate to the global logger.

func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

// WithComponent returns a component-tagged logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// --- internal helpers ---

func addFields(event *zerolog.Event, fields ...map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
}

func outputWriter(output string) io.Writer {
	if strings.ToLower(output) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func consoleWriter(cfg *Config, serviceName string, w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			lvl := levelTag(strings.ToUpper(fmt.Sprintf("%s", i)), cfg.NoColor)
			if serviceName == "" || serviceName == "default" || len(serviceName) < 3 {
				return lvl
			}
			tag := strings.ToUpper(serviceName[:3])
			if cfg.NoColor {
				return fmt.Sprintf("[%s]%s", tag, lvl)
			}
			return fmt.Sprintf("\033[34m[%s]\033[0m%s", tag, lvl)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}

var levelColors = map[string]string{
	"TRACE": "\033[37m",
	"DEBUG": "\033[36m",
	"INFO":  "\033[32m",
	"WARN":  "\033[33m",
	"ERROR": "\033[31m",
	"FATAL": "\033[35m",
}

var levelShort = map[string]string{
	"TRACE": "TRC",
	"DEBUG": "DBG",
	"INFO":  "INF",
	"WARN":  "WRN",
	"ERROR": "ERR",
	"FATAL": "FTL",
}

func levelTag(lvl string, noColor bool) string {
	short, ok := levelShort[lvl]
	if !ok {
		return fmt.Sprintf("[%s]", lvl)
	}
	if noColor {
		return "[" + short + "]"
	}
	return levelColors[lvl] + "[" + short + "]\033[0m"
}
