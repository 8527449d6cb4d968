package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ytget/lecturegrab/internal/config"
)

// Version is set during build via -ldflags "-X github.com/ytget/lecturegrab/internal/cli.Version=X.Y.Z"
var Version = "dev"

// runtime is what every subcommand shares once the root Before hook ran
type runtime struct {
	cfg    config.File
	logger *slog.Logger
	out    io.Writer
	in     io.Reader
}

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var configPath string
	rt := &runtime{out: os.Stdout, in: os.Stdin}

	flags := append(loggerCfg.Flags(), &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to a TOML configuration file",
		Destination: &configPath,
		Sources:     cli.EnvVars(config.EnvPrefix + "CONFIG"),
	})

	app := &cli.Command{
		Name:    "lecturegrab",
		Usage:   "Capture, download and transcribe recorded lectures",
		Version: Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			slog.SetDefault(logger)
			rt.logger = logger

			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return nil, err
			}
			rt.cfg = cfg
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdDownload(rt),
			cmdPanel(rt),
			cmdTranscribe(rt),
			cmdBoth(rt),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logger := rt.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
