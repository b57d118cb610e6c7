// Package logger holds the global firecrown logger and the component loggers
// derived from it. Everything writes to stderr unless a log file is configured.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout firecrown.
var Logger *log.Logger

// output is where the global and component loggers write.
var output io.Writer = os.Stderr

func init() {
	Logger = log.New(os.Stderr)

	// Sampler logs are read line by line; timestamps only add noise.
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure applies the log level and destination. An empty logLevel falls
// back to FIRECROWN_LOG_LEVEL, then info.
func Configure(logLevel string, logFile string, testMode bool) error {
	level := logLevel
	if level == "" {
		level = strings.ToLower(os.Getenv("FIRECROWN_LOG_LEVEL"))
	}
	if level == "" {
		level = "info"
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		out = file
	}
	SetOutput(out)
	Logger.SetLevel(ParseLevel(level))

	if testMode {
		Logger.SetLevel(log.InfoLevel)
	}

	return nil
}

// SetOutput redirects the global logger, keeping its level.
func SetOutput(w io.Writer) {
	level := Logger.GetLevel()
	output = w
	Logger = log.New(w)
	Logger.SetTimeFormat("")
	Logger.SetLevel(level)
}

// ParseLevel converts a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// TypeResolution logs a registry lookup of a declared type string.
func TypeResolution(category string, declared string, err error) {
	if err != nil {
		Error("Type cannot be resolved", "category", category, "type", declared, "error", err)
		return
	}
	Debug("Type resolved", "category", category, "type", declared)
}

// levelBadges are the background colors of the level badge on component lines.
var levelBadges = []struct {
	level log.Level
	label string
	color string
}{
	{log.DebugLevel, "DEBUG", "240"},
	{log.InfoLevel, "INFO", "33"},
	{log.WarnLevel, "WARN", "214"},
	{log.ErrorLevel, "ERROR", "196"},
	{log.FatalLevel, "FATAL", "88"},
}

// keyColors highlights the keys that show up on every pipeline line.
var keyColors = map[string]string{
	"state":      "99",
	"analysis":   "39",
	"source":     "214",
	"systematic": "51",
	"error":      "196",
	"component":  "46",
}

// NewStyledLogger creates a component logger (e.g. "Calculator",
// "Pipeline") writing where the global logger writes, at its level.
func NewStyledLogger(prefix string) *log.Logger {
	styles := log.DefaultStyles()
	for _, b := range levelBadges {
		styles.Levels[b.level] = lipgloss.NewStyle().
			SetString(b.label).
			Padding(0, 1, 0, 1).
			Background(lipgloss.Color(b.color)).
			Foreground(lipgloss.Color("15"))
	}
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	styles.Values["state"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(keyColors["state"]))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(keyColors["error"]))

	l := log.NewWithOptions(output, log.Options{Prefix: prefix + " "})
	l.SetStyles(styles)
	l.SetLevel(Logger.GetLevel())
	return l
}
