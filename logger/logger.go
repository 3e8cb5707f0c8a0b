package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a structured logger backed by zerolog. Construct instances with
// New or NewDefault; the zero value is not usable.
type Logger struct {
	zl zerolog.Logger
}

// Init builds the global logger from cfg and applies the configured level
// process-wide. Components that are not handed a logger explicitly fall back
// to it through GetGlobalLogger.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	name := cfg.ServiceName
	if name == "" {
		name = "default"
	}
	globalLogger = New(cfg, name)
}

// New creates a logger for serviceName according to cfg. An unparseable
// level falls back to info.
func New(cfg *Config, serviceName string) *Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var zl zerolog.Logger
	if isConsoleFormat(cfg.Format) {
		zl = zerolog.New(consoleWriter(cfg, serviceName))
	} else {
		zl = zerolog.New(outputFor(cfg.Output))
	}
	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}
	return &Logger{zl: zl}
}

// NewDefault creates a console logger at info level. It is the fallback for
// components constructed without a logger.
func NewDefault(serviceName string) *Logger {
	return New(&Config{
		Level:     "info",
		Format:    "console",
		Output:    "stdout",
		Timestamp: true,
	}, serviceName)
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

// WithFields returns a child logger carrying fields on every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.zl.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{zl: zc.Logger()}
}

// Debug logs msg at debug level with optional field maps.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

// Info logs msg at info level with optional field maps.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

// Warn logs msg at warn level with optional field maps.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

// Error logs msg at error level with optional field maps.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			ev = ev.Interface(k, v)
		}
	}
	ev.Msg(msg)
}

// --- Global logger ---

var globalLogger *Logger

// GetGlobalLogger returns the process-wide logger, creating a default one on
// first use.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

// Debug logs through the global logger.
func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

// Info logs through the global logger.
func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

// Warn logs through the global logger.
func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

// Error logs through the global logger.
func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

// --- Console formatting ---

// levelStyle is the compact tag and ANSI color for one level.
type levelStyle struct {
	tag   string
	color string
}

var levelStyles = map[string]levelStyle{
	"trace": {tag: "[TRC]", color: "90"},
	"debug": {tag: "[DBG]", color: "36"},
	"info":  {tag: "[INF]", color: "32"},
	"warn":  {tag: "[WRN]", color: "33"},
	"error": {tag: "[ERR]", color: "31"},
	"fatal": {tag: "[FTL]", color: "35"},
}

func consoleWriter(cfg *Config, serviceName string) zerolog.ConsoleWriter {
	prefix := serviceTag(serviceName, cfg.NoColor)
	return zerolog.ConsoleWriter{
		Out:        outputFor(cfg.Output),
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			return prefix + levelTag(fmt.Sprintf("%s", i), cfg.NoColor)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}

func levelTag(level string, noColor bool) string {
	st, ok := levelStyles[strings.ToLower(level)]
	if !ok {
		return fmt.Sprintf("[%s]", strings.ToUpper(level))
	}
	if noColor {
		return st.tag
	}
	return "\033[" + st.color + "m" + st.tag + "\033[0m"
}

// serviceTag derives a three-letter prefix from the service name so
// interleaved output from multiple processes stays attributable.
func serviceTag(name string, noColor bool) string {
	if name == "" || name == "default" || len(name) < 3 {
		return ""
	}
	tag := strings.ToUpper(name[:3])
	if noColor {
		return "[" + tag + "]"
	}
	return "\033[34m[" + tag + "]\033[0m"
}

// --- helpers ---

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

func isConsoleFormat(format string) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	}
	return false
}

func outputFor(output string) *os.File {
	if strings.ToLower(output) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}
