// Package logger provides centralized logging functionality for appcaller.
// It configures structured logging with support for different output destinations and log levels.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout appcaller.
var Logger *log.Logger

func init() {
	// Create new logger instance with default settings
	Logger = log.New(os.Stderr)

	// No timestamps until Configure decides otherwise
	Logger.SetTimeFormat("")

	// Keep the wrapped program's output readable by default
	Logger.SetLevel(log.WarnLevel)
}

// Configure sets up the logger based on CLI flags and environment variables.
// CLI flags take precedence over the CALLER_LOG_LEVEL environment variable.
func Configure(logLevel string, logFile string, testMode bool) error {
	// Set log level with precedence: CLI flag > env var > default
	level := logLevel
	if level == "" {
		level = strings.ToLower(os.Getenv("CALLER_LOG_LEVEL"))
	}

	// Set log output destination
	var output io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = file
	}

	// Create new logger with configured output
	Logger = log.New(output)
	Logger.SetLevel(parseLogLevel(level))

	if testMode {
		// In test mode, ensure deterministic output
		Logger.SetTimeFormat("")
	} else {
		// Timestamps only when writing to a file
		Logger.SetReportTimestamp(logFile != "")
		Logger.SetTimeFormat(time.DateTime)
	}

	return nil
}

// parseLogLevel converts string to log level. Unknown values fall back to warn.
func parseLogLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
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

// Fatal logs a fatal message with optional key-value pairs and exits.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}

// CommandLine logs a compiled command line.
func CommandLine(command string) {
	Debug("Compiled command line", "command", command)
}

// Resolution logs the outcome of resolving parameter values.
func Resolution(positionals int, options map[string]any) {
	Debug("Resolved parameters", "positionals", positionals, "options", options)
}

// Invocation logs a finished process invocation.
func Invocation(id string, command string, exitCode int, elapsed time.Duration) {
	Debug("Process finished", "id", id, "command", command, "exit_code", exitCode, "duration", elapsed)
}

// ServiceOperation logs service operation details for debugging.
func ServiceOperation(service string, operation string, details ...interface{}) {
	Debug("Service operation", "service", service, "operation", operation, "details", details)
}

// NewStyledLogger creates a new logger with custom styles and prefix for component-specific logging.
// The prefix parameter names the component (e.g., "Executor", "Catalog").
func NewStyledLogger(prefix string) *log.Logger {
	// Create custom styles for component logger
	styles := log.DefaultStyles()

	// Custom level styling without prefix (already added via log.Options)
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("33")). // Blue background
		Foreground(lipgloss.Color("15"))  // White text

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("196")). // Red background
		Foreground(lipgloss.Color("15"))   // White text

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("240")). // Gray background
		Foreground(lipgloss.Color("15"))   // White text

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("214")). // Orange background
		Foreground(lipgloss.Color("15"))   // White text

	// Custom key styling for common component keys
	styles.Keys["command"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))    // Green
	styles.Keys["tool"] = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))       // Cyan
	styles.Keys["exit_code"] = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // Orange
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))     // Red

	// Custom value styling
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	// Component loggers always write to stderr
	componentLogger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: prefix + " ",
	})

	// Apply custom styles
	componentLogger.SetStyles(styles)

	// Match the global logger's level
	componentLogger.SetLevel(Logger.GetLevel())

	return componentLogger
}
