package download

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/platform"
)

// Result is the outcome of one Run
type Result struct {
	State      model.JobState
	Detail     string // last non-progress fetcher line, for failed jobs
	OutputPath string
}

// RunnerConfig configures a Runner
type RunnerConfig struct {
	Fetcher   Fetcher
	OutputDir string
	Headers   model.RequestHeaders // defaults merged with each source's captured headers
	Reporter  ProgressReporter
	Logger    *slog.Logger
}

// Runner runs the stream fetcher for one job at a time
type Runner struct {
	fetcher   Fetcher
	outputDir string
	headers   model.RequestHeaders
	reporter  ProgressReporter
	logger    *slog.Logger

	cancelled atomic.Bool

	mu      sync.Mutex
	proc    Process
	current string
}

// NewRunner creates a job runner
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{
		fetcher:   cfg.Fetcher,
		outputDir: cfg.OutputDir,
		headers:   cfg.Headers,
		reporter:  cfg.Reporter,
		logger:    cfg.Logger,
	}
	if r.fetcher == nil {
		r.fetcher = NewExecFetcher("", cfg.Logger)
	}
	if r.reporter == nil {
		r.reporter = nopReporter{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// OutputDir returns the directory downloads are written to
func (r *Runner) OutputDir() string {
	return r.outputDir
}

// Current returns the filename of the job being run, if any
func (r *Runner) Current() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != ""
}

// Reset clears a previous cancellation. The queue calls it before it makes
// the next job active, so a Cancel that lands after that point is kept for
// the coming Run.
func (r *Runner) Reset() {
	r.cancelled.Store(false)
}

// Cancel asks the running job to stop. The fetcher is terminated right away
// so a blocked read returns; Run notices the flag on its next line iteration.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)

	r.mu.Lock()
	proc := r.proc
	r.mu.Unlock()

	if proc != nil {
		if err := proc.Terminate(); err != nil {
			r.logger.Warn("failed to terminate fetcher", slog.Any("error", err))
		}
	}
}

func (r *Runner) isCancelled(ctx context.Context) bool {
	return r.cancelled.Load() || ctx.Err() != nil
}

// Run downloads job and returns its terminal state. The returned error is
// non-nil only when the progress reporter failed; the job is then stopped and
// reported as Cancelled. A Cancel since the last Reset stops the job at its
// first output line.
func (r *Runner) Run(ctx context.Context, job *model.Job) (Result, error) {
	name := job.Filename()
	r.mu.Lock()
	r.current = name
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.proc = nil
		r.current = ""
		r.mu.Unlock()
	}()

	logger := r.logger.With(slog.String("job", job.ID), slog.String("filename", name))

	req := Request{
		URL:       job.Source.URL,
		Headers:   HeadersFor(job.Source, r.headers),
		OutputDir: r.outputDir,
		Filename:  name,
	}

	proc, err := r.fetcher.Start(ctx, req)
	if err != nil {
		logger.Error("fetcher did not start", slog.Any("error", err))
		r.cleanup(name)
		return Result{State: model.JobFailed, Detail: err.Error()}, nil
	}

	r.mu.Lock()
	r.proc = proc
	r.mu.Unlock()

	// Cancel may have landed between Start and publishing proc
	if r.cancelled.Load() {
		_ = proc.Terminate()
	}

	var (
		detail    string
		reportErr error
		readErr   error
		stopped   bool
	)

	lines := newLineReader(proc.Output())
	for {
		line, err := lines.Next()
		if r.isCancelled(ctx) {
			stopped = true
			break
		}
		if errors.Is(err, ErrLineTooLong) {
			logger.Debug("skipped over-long fetcher output line")
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}

		update, ok := platform.ParseProgress(line)
		if !ok {
			if line != "" {
				detail = line
				logger.Debug("fetcher output", slog.String("line", line))
			}
			continue
		}

		snapshot := model.ProgressSnapshot{
			JobID:    job.ID,
			Filename: name,
			Percent:  update.Percent,
			Stats:    update.Stats,
		}
		if err := r.reporter.ReportProgress(snapshot); err != nil {
			reportErr = goerr.Wrap(err, "failed to report progress", goerr.V("job", job.ID))
			break
		}
	}

	if stopped || reportErr != nil || r.isCancelled(ctx) {
		if err := proc.Terminate(); err != nil {
			logger.Warn("failed to terminate fetcher", slog.Any("error", err))
		}
		_, _ = proc.Wait()
		r.cleanup(name)
		logger.Info("download cancelled")
		return Result{State: model.JobCancelled}, reportErr
	}

	if readErr != nil {
		logger.Error("failed to read fetcher output", slog.Any("error", readErr))
		if err := proc.Terminate(); err != nil {
			logger.Warn("failed to terminate fetcher", slog.Any("error", err))
		}
		_, _ = proc.Wait()
		r.cleanup(name)
		return Result{State: model.JobFailed, Detail: readErr.Error()}, nil
	}

	code, waitErr := proc.Wait()
	switch {
	case waitErr != nil:
		logger.Error("fetcher wait failed", slog.Any("error", waitErr))
		r.cleanup(name)
		return Result{State: model.JobFailed, Detail: waitErr.Error()}, nil
	case r.cancelled.Load():
		// cancelled after the last line was read
		r.cleanup(name)
		return Result{State: model.JobCancelled}, nil
	case code != 0:
		logger.Warn("fetcher exited with error", slog.Int("exit_code", code), slog.String("last_line", detail))
		r.cleanup(name)
		return Result{State: model.JobFailed, Detail: detail}, nil
	}

	final := model.ProgressSnapshot{
		JobID:    job.ID,
		Filename: name,
		Percent:  model.MaxPercent,
		Message:  model.StatsCompleted,
	}
	if err := r.reporter.ReportProgress(final); err != nil {
		return Result{State: model.JobCompleted}, goerr.Wrap(err, "failed to report completion", goerr.V("job", job.ID))
	}

	result := Result{State: model.JobCompleted}
	if path, err := platform.FindDownloadedFile(r.outputDir, name); err == nil {
		result.OutputPath = path
	} else {
		logger.Debug("downloaded file not located", slog.Any("error", err))
	}

	logger.Info("download completed", slog.String("path", result.OutputPath))
	return result, nil
}

func (r *Runner) cleanup(name string) {
	if name == "" {
		return
	}
	platform.CleanupPartialFiles(r.outputDir, name, r.logger)
}
