package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ytget/lecturegrab/internal/capture"
	"github.com/ytget/lecturegrab/internal/config"
	"github.com/ytget/lecturegrab/internal/download"
	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/platform"
	"github.com/ytget/lecturegrab/internal/queue"
)

// DefaultNamePrefix names sources the user did not name
const DefaultNamePrefix = "lecture"

type downloadOptions struct {
	perfLog string
	output  string
	fetcher string
	cookies string
	names   []string
	prefix  string
	list    bool
}

// sourceFlags configure where captured traffic is read and downloads go
func (o *downloadOptions) sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "perf-log",
			Aliases:     []string{"l"},
			Usage:       "Browser performance log (JSON lines) to read captured traffic from",
			Destination: &o.perfLog,
			Sources:     cli.EnvVars(config.EnvPrefix + "PERF_LOG"),
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Download directory",
			Destination: &o.output,
			Sources:     cli.EnvVars(config.EnvPrefix + "DOWNLOAD_DIR"),
		},
		&cli.StringFlag{
			Name:        "fetcher",
			Usage:       "Stream fetcher command",
			Destination: &o.fetcher,
			Sources:     cli.EnvVars(config.EnvPrefix + "FETCHER"),
		},
		&cli.StringFlag{
			Name:        "cookies",
			Usage:       "Netscape cookies file sent with every download",
			Destination: &o.cookies,
			Sources:     cli.EnvVars(config.EnvPrefix + "COOKIES"),
		},
	}
}

func (o *downloadOptions) flags() []cli.Flag {
	return append(o.sourceFlags(),
		&cli.StringSliceFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Filename for the found videos, in order (repeatable)",
			Destination: &o.names,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "Filename prefix for videos without --name",
			Value:       DefaultNamePrefix,
			Destination: &o.prefix,
		},
		&cli.BoolFlag{
			Name:        "list",
			Usage:       "Only list the found videos",
			Destination: &o.list,
		},
	)
}

// apply copies the flags that were set over cfg
func (o *downloadOptions) apply(cfg *config.File) {
	if o.perfLog != "" {
		cfg.Capture.PerformanceLog = o.perfLog
	}
	if o.output != "" {
		cfg.Download.Dir = o.output
	}
	if o.fetcher != "" {
		cfg.Download.Fetcher = o.fetcher
	}
	if o.cookies != "" {
		cfg.Portal.CookiesFile = o.cookies
	}
}

func cmdDownload(rt *runtime) *cli.Command {
	var opts downloadOptions

	return &cli.Command{
		Name:    "download",
		Aliases: []string{"d"},
		Usage:   "Download every video found in a captured performance log",
		Flags:   opts.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			opts.apply(&rt.cfg)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err := runDownload(ctx, rt, opts)
			return err
		},
	}
}

// runDownload reads the performance log, queues every source found and
// downloads them in order
func runDownload(ctx context.Context, rt *runtime, opts downloadOptions) ([]model.Job, error) {
	cfg := rt.cfg
	logger := rt.logger

	if cfg.Capture.PerformanceLog == "" {
		return nil, goerr.New("no performance log given, use --perf-log or capture.performance_log")
	}

	records, err := capture.ReadLogFile(cfg.Capture.PerformanceLog, logger)
	if err != nil {
		return nil, err
	}
	sources := capture.Sources(records, cfg.Markers())
	logger.Info("performance log processed", slog.Int("records", len(records)), slog.Int("sources", len(sources)))

	if len(sources) == 0 {
		color.New(color.FgYellow).Fprintln(rt.out, "No videos found in the performance log.")
		return nil, nil
	}

	names := assignNames(len(sources), opts.names, opts.prefix)
	fmt.Fprintf(rt.out, "Found %d video(s):\n", len(sources))
	for i, s := range sources {
		fmt.Fprintf(rt.out, "  %2d. [%s] %s -> %s\n", i+1, s.Kind, s.URL, names[i])
	}
	if opts.list {
		return nil, nil
	}

	if err := platform.CreateDirectoryIfNotExists(cfg.Download.Dir); err != nil {
		return nil, err
	}
	headers, err := cfg.RequestHeaders()
	if err != nil {
		return nil, err
	}

	out := newConsole(rt.out)
	fetcher := download.NewExecFetcher(cfg.Download.Fetcher, logger)
	fetcher.ExtraArgs = cfg.Download.ExtraArgs

	runner := download.NewRunner(download.RunnerConfig{
		Fetcher:   fetcher,
		OutputDir: cfg.Download.Dir,
		Headers:   headers,
		Reporter:  out,
		Logger:    logger,
	})
	q := queue.New(queue.Config{Runner: runner, Reporter: out, Logger: logger})

	for i, src := range sources {
		if _, err := q.Enqueue(src, names[i]); err != nil {
			logger.Warn("source skipped", slog.String("url", src.URL), slog.Any("error", err))
			color.New(color.FgYellow).Fprintf(rt.out, "Skipping %s: %v\n", names[i], err)
		}
	}

	err = q.ProcessAll(ctx)
	jobs := q.Jobs()
	out.printJobs(jobs)
	if err != nil && ctx.Err() == nil {
		return jobs, err
	}
	return jobs, nil
}

// assignNames returns count filenames: the given names first, then
// prefix-NN for the rest
func assignNames(count int, names []string, prefix string) []string {
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	result := make([]string, count)
	for i := range result {
		if i < len(names) && names[i] != "" {
			result[i] = names[i]
			continue
		}
		result[i] = fmt.Sprintf("%s-%02d", prefix, i+1)
	}
	return result
}
