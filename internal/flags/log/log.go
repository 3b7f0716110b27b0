// Package log wires the logging flags into a slog handler.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
)

const (
	LevelFlag  = "loglevel"
	FormatFlag = "logformat"
)

// RegisterLoggingFlags registers the logging flags on the given flag set.
func RegisterLoggingFlags(flags *pflag.FlagSet) {
	flags.String(LevelFlag, "warn", "set the log level (debug, info, warn, error)")
	flags.String(FormatFlag, "text", "set the log format (text, json)")
}

// GetBaseLogger builds the base logger from the registered flags.
func GetBaseLogger(flags *pflag.FlagSet, out io.Writer) (*slog.Logger, error) {
	level, err := getLevel(flags)
	if err != nil {
		return nil, err
	}

	format, err := flags.GetString(FormatFlag)
	if err != nil {
		return nil, err
	}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

func getLevel(flags *pflag.FlagSet) (slog.Level, error) {
	name, err := flags.GetString(LevelFlag)
	if err != nil {
		return slog.LevelWarn, err
	}
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", name)
	}
}
