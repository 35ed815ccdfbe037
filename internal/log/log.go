// Package log provides the structured logger used throughout the node.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Level is a logging severity level.
type Level = log.Level

const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
	FatalLevel = log.FatalLevel
)

// Logger wraps charmbracelet/log with a component prefix.
type Logger struct {
	*log.Logger
}

// Config configures a Logger.
type Config struct {
	Level  string
	Prefix string
	Output io.Writer
}

// DefaultConfig returns the node's default logging configuration: info level,
// to stderr, no prefix.
func DefaultConfig() *Config {
	return &Config{Level: "info", Output: os.Stderr}
}

// New builds a Logger from cfg. A nil cfg is equivalent to DefaultConfig.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	l := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          cfg.Prefix,
	})
	l.SetLevel(ParseLevel(cfg.Level))
	return &Logger{Logger: l}
}

// ParseLevel parses a case-insensitive level name, defaulting to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// Component returns a child logger prefixed with name.
func (l *Logger) Component(name string) *Logger {
	child := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          name,
	})
	child.SetLevel(l.GetLevel())
	return &Logger{Logger: child}
}

var def = New(DefaultConfig())

// Default returns the process-wide default logger.
func Default() *Logger { return def }

// SetDefault replaces the process-wide default logger.
func SetDefault(l *Logger) { def = l }

func Debug(msg interface{}, keyvals ...interface{}) { def.Debug(msg, keyvals...) }
func Info(msg interface{}, keyvals ...interface{})  { def.Info(msg, keyvals...) }
func Warn(msg interface{}, keyvals ...interface{})  { def.Warn(msg, keyvals...) }
func Error(msg interface{}, keyvals ...interface{}) { def.Error(msg, keyvals...) }
func Fatal(msg interface{}, keyvals ...interface{}) { def.Fatal(msg, keyvals...) }

func Debugf(format string, args ...interface{}) { def.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { def.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { def.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { def.Errorf(format, args...) }
