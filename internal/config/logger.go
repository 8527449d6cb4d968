package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// EnvPrefix prefixes every environment variable the CLI reads
const EnvPrefix = "LECTUREGRAB_"

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool

	out io.Writer
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars(EnvPrefix + "LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars(EnvPrefix + "LOG_JSON"),
		},
	}
}

// Configure configures and returns a logger. Cookie values never reach the
// log output.
func (c *Logger) Configure() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("invalid log level", goerr.V("level", c.Level))
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: masq.New(
			masq.WithFieldName("Cookie"),
			masq.WithFieldName("cookie"),
		),
	}

	out := c.out
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), nil
}
