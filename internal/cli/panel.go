package cli

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/urfave/cli/v3"

	"github.com/ytget/lecturegrab/internal/capture"
	"github.com/ytget/lecturegrab/internal/config"
	"github.com/ytget/lecturegrab/internal/control"
	"github.com/ytget/lecturegrab/internal/download"
	"github.com/ytget/lecturegrab/internal/platform"
	"github.com/ytget/lecturegrab/internal/queue"
	"github.com/ytget/lecturegrab/internal/ui"
)

func cmdPanel(rt *runtime) *cli.Command {
	var opts downloadOptions

	return &cli.Command{
		Name:    "panel",
		Aliases: []string{"p"},
		Usage:   "Open the desktop panel to record, queue and download lectures",
		Flags:   opts.sourceFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return runPanel(ctx, rt, opts)
		},
	}
}

func runPanel(ctx context.Context, rt *runtime, opts downloadOptions) error {
	logger := rt.logger

	a := app.NewWithID(ui.AppID)
	a.Settings().SetTheme(ui.NewCompactTheme())

	cfg := rt.cfg
	settings := config.NewSettings(a, cfg.Download.Dir)
	settings.Apply(&cfg)
	opts.apply(&cfg)

	if err := platform.CreateDirectoryIfNotExists(cfg.Download.Dir); err != nil {
		return err
	}
	headers, err := cfg.RequestHeaders()
	if err != nil {
		return err
	}

	window := a.NewWindow(ui.AppName)
	window.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))
	panel := ui.NewPanel(window, settings, logger)

	fetcher := download.NewExecFetcher(cfg.Download.Fetcher, logger)
	fetcher.ExtraArgs = cfg.Download.ExtraArgs
	runner := download.NewRunner(download.RunnerConfig{
		Fetcher:   fetcher,
		OutputDir: cfg.Download.Dir,
		Headers:   headers,
		Reporter:  panel,
		Logger:    logger,
	})
	q := queue.New(queue.Config{Runner: runner, Reporter: panel, Logger: logger})

	ctrl := control.New(control.Config{
		Surface: panel,
		Session: capture.NewLogSession(cfg.Capture.PerformanceLog, logger),
		Queue:   q,
		Markers: cfg.Markers(),
		Logger:  logger,
	})

	logger.Info("panel starting",
		slog.String("download_dir", cfg.Download.Dir),
		slog.String("performance_log", cfg.Capture.PerformanceLog),
	)

	ctrlErr := make(chan error, 1)
	go func() {
		err := ctrl.Run(ctx)
		ctrlErr <- err
		fyne.Do(a.Quit)
	}()

	window.ShowAndRun()

	panel.Close()
	return <-ctrlErr
}
