// Package logger provides a logging utility based on log/slog
//
// DEBUG logging can be enabled by setting the MCP_CALC_DEBUG environment variable:
//
//	export MCP_CALC_DEBUG=1
//
// Output always goes to stderr (or a configured file) because stdout carries
// the MCP stdio protocol.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DebugEnv is the environment variable that turns on debug logging.
const DebugEnv = "MCP_CALC_DEBUG"

var (
	// Logger is the global logger instance
	Logger *slog.Logger

	level = new(slog.LevelVar)
)

func init() {
	if debugEnabled(os.Getenv(DebugEnv)) {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	setOutput(os.Stderr)
}

func debugEnabled(v string) bool {
	return v != "" && strings.ToLower(v) != "false" && v != "0"
}

func setOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	Logger = slog.New(handler)

	// Replace the default slog logger too
	slog.SetDefault(Logger)
}

// ParseLevel converts a config level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", name)
}

// Configure sets the level and, when w is non-nil, the output of the global
// logger. MCP_CALC_DEBUG still forces debug level.
func Configure(levelName string, w io.Writer) error {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	if debugEnabled(os.Getenv(DebugEnv)) {
		lvl = slog.LevelDebug
	}
	level.Set(lvl)

	if w != nil {
		setOutput(w)
	}
	return nil
}

// Level returns the current minimum level.
func Level() slog.Level {
	return level.Level()
}

// Debug logs a debug message if debug logging is enabled
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
