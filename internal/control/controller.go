package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/capture"
	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/queue"
)

// ErrSurfaceClosed is returned by Run when the presentation surface is lost
var ErrSurfaceClosed = errors.New("presentation surface closed")

// DefaultLivenessInterval is how often the surface is probed
const DefaultLivenessInterval = 2 * time.Second

// Status lines
const (
	StatusRecording       = "Recording... play the video, then press Stop."
	StatusProcessing      = "Processing captured data..."
	StatusCaptureFailed   = "Network capture failed. Try again."
	StatusFound           = "Found %d video(s). Select one and enter a filename."
	StatusNoneFound       = "No videos found. Try recording again."
	StatusUnknownSource   = "Selected video is no longer available. Record again."
	StatusEnqueueFailed   = "Could not add %q: %s"
	StatusQueued          = "Added to queue: %s"
	StatusBusy            = "A download is already running."
	StatusQueueLocked     = "Cannot change the queue while a download is running."
	StatusNothingToCancel = "No download is running."
	StatusStopping        = "Download stopped and cleaned up."
	StatusCancelling      = "Cancelling current download..."
)

// Config configures a Controller
type Config struct {
	Surface          Surface
	Session          capture.Session
	Queue            *queue.Queue
	Markers          capture.Markers
	LivenessInterval time.Duration
	Logger           *slog.Logger
}

// Controller dispatches surface commands
type Controller struct {
	surface  Surface
	session  capture.Session
	queue    *queue.Queue
	markers  capture.Markers
	interval time.Duration
	logger   *slog.Logger

	sources []*model.StreamSource

	wg      sync.WaitGroup
	workErr chan error
	busy    bool
}

// New creates a controller
func New(cfg Config) *Controller {
	c := &Controller{
		surface:  cfg.Surface,
		session:  cfg.Session,
		queue:    cfg.Queue,
		markers:  cfg.Markers,
		interval: cfg.LivenessInterval,
		logger:   cfg.Logger,
		workErr:  make(chan error, 1),
	}
	if c.interval <= 0 {
		c.interval = DefaultLivenessInterval
	}
	if c.markers == (capture.Markers{}) {
		c.markers = capture.DefaultMarkers()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

var errCloseRequested = errors.New("close requested")

// Run handles commands until the surface asks to close (nil), the surface is
// lost (ErrSurfaceClosed), queue work fails fatally or ctx is done. Any
// running download is stopped before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	workCtx, cancel := context.WithCancel(ctx)
	defer func() {
		c.queue.RequestStop()
		c.queue.CancelCurrent()
		cancel()
		c.wg.Wait()
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	commands := c.surface.Commands()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd, ok := <-commands:
			if !ok {
				return goerr.Wrap(ErrSurfaceClosed, "command channel closed")
			}
			err := c.handle(workCtx, cmd)
			if errors.Is(err, errCloseRequested) {
				c.logger.Info("panel closed by user")
				return nil
			}
			if err != nil {
				return err
			}

		case err := <-c.workErr:
			c.busy = false
			if err != nil && !errors.Is(err, queue.ErrQueueBusy) && !errors.Is(err, context.Canceled) {
				return err
			}

		case <-ticker.C:
			if err := c.surface.Alive(ctx); err != nil {
				return goerr.Wrap(ErrSurfaceClosed, "surface liveness check failed", goerr.V("cause", err.Error()))
			}
		}
	}
}

func (c *Controller) handle(ctx context.Context, cmd Command) error {
	c.logger.Debug("command", slog.String("kind", cmd.Kind.String()))

	switch cmd.Kind {
	case CmdStartCapture:
		return c.startCapture(ctx)
	case CmdStopCapture:
		return c.stopCapture(ctx)
	case CmdEnqueue:
		_, err := c.enqueue(cmd)
		return err
	case CmdDownloadNow:
		return c.downloadNow(ctx, cmd)
	case CmdProcessQueue:
		if c.busy {
			return c.surface.ReportStatus(StatusBusy)
		}
		c.startWork(ctx, c.queue.ProcessAll)
		return nil
	case CmdCancel:
		if !c.queue.CancelCurrent() {
			return c.surface.ReportStatus(StatusNothingToCancel)
		}
		return c.surface.ReportStatus(StatusCancelling)
	case CmdHalt:
		c.queue.RequestStop()
		if c.queue.CancelCurrent() {
			return c.surface.ReportStatus(StatusStopping)
		}
		return nil
	case CmdRemove:
		return c.changeQueue(c.queue.RemoveAt(cmd.Index))
	case CmdClear:
		return c.changeQueue(c.queue.Clear())
	case CmdClose:
		return errCloseRequested
	default:
		c.logger.Warn("unknown command", slog.String("kind", cmd.Kind.String()))
		return nil
	}
}

func (c *Controller) startCapture(ctx context.Context) error {
	if c.session == nil {
		return c.surface.ReportStatus(StatusCaptureFailed)
	}
	if err := c.session.Start(ctx); err != nil {
		c.logger.Error("capture start failed", slog.Any("error", err))
		return c.surface.ReportStatus(StatusCaptureFailed)
	}
	return c.surface.ReportStatus(StatusRecording)
}

func (c *Controller) stopCapture(ctx context.Context) error {
	if err := c.surface.ReportStatus(StatusProcessing); err != nil {
		return err
	}

	if c.session == nil {
		return c.surface.ReportStatus(StatusCaptureFailed)
	}
	records, err := c.session.Stop(ctx)
	if err != nil {
		c.logger.Error("capture stop failed", slog.Any("error", err))
		return c.surface.ReportStatus(StatusCaptureFailed)
	}

	c.sources = capture.Sources(records, c.markers)
	c.logger.Info("capture processed", slog.Int("records", len(records)), slog.Int("sources", len(c.sources)))

	if err := c.surface.ShowSources(c.sources); err != nil {
		return err
	}
	if len(c.sources) == 0 {
		return c.surface.ReportStatus(StatusNoneFound)
	}
	return c.surface.ReportStatus(fmt.Sprintf(StatusFound, len(c.sources)))
}

func (c *Controller) findSource(url string) *model.StreamSource {
	for _, s := range c.sources {
		if s.URL == url {
			return s
		}
	}
	return nil
}

// enqueue returns the new job, or nil with a nil error when the request was
// rejected and reported to the surface
func (c *Controller) enqueue(cmd Command) (*model.Job, error) {
	src := c.findSource(cmd.SourceURL)
	if src == nil {
		return nil, c.surface.ReportStatus(StatusUnknownSource)
	}

	job, err := c.queue.Enqueue(src, cmd.Filename)
	if err != nil {
		c.logger.Warn("enqueue rejected", slog.Any("error", err))
		return nil, c.surface.ReportStatus(fmt.Sprintf(StatusEnqueueFailed, cmd.Filename, reason(err)))
	}

	if err := c.surface.ReportQueue(c.queue.Jobs()); err != nil {
		return nil, err
	}
	if err := c.surface.ReportStatus(fmt.Sprintf(StatusQueued, job.Filename())); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Controller) downloadNow(ctx context.Context, cmd Command) error {
	if c.busy {
		return c.surface.ReportStatus(StatusBusy)
	}
	job, err := c.enqueue(cmd)
	if err != nil || job == nil {
		return err
	}
	id := job.ID
	c.startWork(ctx, func(ctx context.Context) error {
		return c.queue.ProcessJob(ctx, id)
	})
	return nil
}

func (c *Controller) changeQueue(err error) error {
	if errors.Is(err, queue.ErrQueueBusy) {
		return c.surface.ReportStatus(StatusQueueLocked)
	}
	if err != nil {
		c.logger.Warn("queue change rejected", slog.Any("error", err))
	}
	return c.surface.ReportQueue(c.queue.Jobs())
}

// startWork runs fn beside the command loop; its error arrives on workErr
func (c *Controller) startWork(ctx context.Context, fn func(context.Context) error) {
	c.busy = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := fn(ctx)
		select {
		case c.workErr <- err:
		case <-ctx.Done():
		}
	}()
}

func reason(err error) string {
	switch {
	case errors.Is(err, queue.ErrEmptyFilename):
		return "enter a filename"
	case errors.Is(err, queue.ErrDuplicateFilename):
		return "that filename is already queued"
	default:
		return err.Error()
	}
}
