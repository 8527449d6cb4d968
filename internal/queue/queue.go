package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/platform"
)

// Status lines shown on the panel
const (
	StatusQueueEmpty    = "Queue is empty."
	StatusProcessing    = "Processing %d downloads..."
	StatusDownloadingN  = "Downloading %d/%d: %s"
	StatusDownloading   = "Downloading %s..."
	StatusFailed        = "Download failed: %s"
	StatusCancelled     = "Download cancelled: %s"
	StatusHalted        = "Queue halted. %d download(s) left pending."
	StatusAllCompleted  = "All downloads completed! Queue shows completion status."
	StatusSingleSuccess = "Download completed! Ready for next video."
)

// ID prefixes
const (
	JobIDPrefix    = "job-"
	SourceIDPrefix = "src-"
)

// Config configures a Queue
type Config struct {
	Runner   JobRunner
	Reporter Reporter
	Logger   *slog.Logger
}

// Queue is the ordered list of download jobs. It is the only place that
// changes Job.State.
type Queue struct {
	runner   JobRunner
	reporter Reporter
	logger   *slog.Logger

	stop atomic.Bool

	mu      sync.Mutex
	jobs    []*model.Job
	running bool // a ProcessAll or ProcessJob is in progress
	active  *model.Job
}

// New creates an empty queue
func New(cfg Config) *Queue {
	q := &Queue{
		runner:   cfg.Runner,
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
	}
	if q.reporter == nil {
		q.reporter = nopReporter{}
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	return q
}

// Enqueue appends a Pending job for source saved under filename. The source
// is copied; later changes by the caller do not affect the job.
func (q *Queue) Enqueue(source *model.StreamSource, filename string) (model.Job, error) {
	if source == nil || source.URL == "" {
		return model.Job{}, goerr.Wrap(ErrNoSource, "cannot enqueue")
	}

	name := platform.SanitizeFilename(filename)
	if name == "" {
		return model.Job{}, goerr.Wrap(ErrEmptyFilename, "cannot enqueue", goerr.V("url", source.URL))
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if !j.State.IsFinished() && j.Filename() == name {
			return model.Job{}, goerr.Wrap(ErrDuplicateFilename, "cannot enqueue", goerr.V("filename", name))
		}
	}

	src := *source
	src.Filename = name
	if src.ID == "" {
		src.ID = generateID(SourceIDPrefix)
	}

	job := &model.Job{
		ID:       generateID(JobIDPrefix),
		Source:   &src,
		State:    model.JobPending,
		QueuedAt: time.Now(),
	}
	q.jobs = append(q.jobs, job)

	q.logger.Info("job queued",
		slog.String("job", job.ID),
		slog.String("filename", name),
		slog.String("kind", src.Kind.String()),
	)
	return job.Clone(), nil
}

// RemoveAt removes the job at index. It is rejected while a job is running.
func (q *Queue) RemoveAt(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return goerr.Wrap(ErrQueueBusy, "cannot remove job", goerr.V("index", index))
	}
	if index < 0 || index >= len(q.jobs) {
		return goerr.Wrap(ErrIndexOutOfRange, "cannot remove job", goerr.V("index", index), goerr.V("len", len(q.jobs)))
	}

	removed := q.jobs[index]
	q.jobs = append(q.jobs[:index], q.jobs[index+1:]...)
	q.logger.Info("job removed", slog.String("job", removed.ID), slog.String("filename", removed.Filename()))
	return nil
}

// Clear removes every job. It is rejected while a job is running.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return goerr.Wrap(ErrQueueBusy, "cannot clear queue")
	}
	q.jobs = nil
	return nil
}

// Jobs returns a snapshot of the queue in order
func (q *Queue) Jobs() []model.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Queue) snapshotLocked() []model.Job {
	jobs := make([]model.Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		jobs = append(jobs, j.Clone())
	}
	return jobs
}

// Len returns the number of jobs in the queue
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Running reports whether a job is being processed
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Active returns the running job, if any
func (q *Queue) Active() (model.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active == nil {
		return model.Job{}, false
	}
	return q.active.Clone(), true
}

// CancelCurrent cancels the running job only. It reports whether there was
// one to cancel.
func (q *Queue) CancelCurrent() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active == nil {
		return false
	}
	q.logger.Info("cancelling job", slog.String("job", q.active.ID))
	q.runner.Cancel()
	return true
}

// RequestStop asks ProcessAll to stop before starting the next job. The
// running job is left to finish.
func (q *Queue) RequestStop() {
	q.stop.Store(true)
}

// ProcessAll runs every Pending job in order, one at a time, including jobs
// enqueued while it runs. Failed and cancelled jobs do not stop the batch. A
// stop request leaves the remaining jobs Pending. The returned error is
// ErrQueueBusy, a reporter failure or the context error.
func (q *Queue) ProcessAll(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return goerr.Wrap(ErrQueueBusy, "cannot process queue")
	}
	pending := q.countLocked(model.JobPending)
	if pending == 0 {
		q.mu.Unlock()
		return q.status(StatusQueueEmpty)
	}
	q.running = true
	q.stop.Store(false)
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}()

	q.logger.Info("processing queue", slog.Int("pending", pending))
	if err := q.status(fmt.Sprintf(StatusProcessing, pending)); err != nil {
		return err
	}

	attempted := 0
	for {
		if q.stop.Load() {
			left := q.Pending()
			q.logger.Info("queue halted", slog.Int("pending", left))
			return q.status(fmt.Sprintf(StatusHalted, left))
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		q.mu.Lock()
		job := q.nextPendingLocked()
		total := attempted + q.countLocked(model.JobPending)
		q.mu.Unlock()
		if job == nil {
			break
		}
		attempted++

		if err := q.status(fmt.Sprintf(StatusDownloadingN, attempted, total, job.Filename())); err != nil {
			return err
		}
		if err := q.runJob(ctx, job); err != nil {
			return err
		}
	}

	if err := q.reportQueue(); err != nil {
		return err
	}
	return q.status(StatusAllCompleted)
}

// ProcessJob runs the Pending job with the given ID right away
func (q *Queue) ProcessJob(ctx context.Context, id string) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return goerr.Wrap(ErrQueueBusy, "cannot start job", goerr.V("job", id))
	}
	var job *model.Job
	for _, j := range q.jobs {
		if j.ID == id && j.State == model.JobPending {
			job = j
			break
		}
	}
	if job == nil {
		q.mu.Unlock()
		return goerr.Wrap(ErrJobNotFound, "cannot start job", goerr.V("job", id))
	}
	q.running = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
	}()

	if err := q.status(fmt.Sprintf(StatusDownloading, job.Filename())); err != nil {
		return err
	}
	if err := q.runJob(ctx, job); err != nil {
		return err
	}

	q.mu.Lock()
	state := job.State
	q.mu.Unlock()
	if state == model.JobCompleted {
		return q.status(StatusSingleSuccess)
	}
	return nil
}

// runJob moves job through Running to its terminal state. Only reporter
// failures are returned.
func (q *Queue) runJob(ctx context.Context, job *model.Job) error {
	q.mu.Lock()
	q.runner.Reset()
	job.State = model.JobRunning
	job.StartedAt = time.Now()
	q.active = job
	q.mu.Unlock()

	if err := q.reportQueue(); err != nil {
		q.finish(job, model.JobCancelled, "")
		return err
	}

	result, runErr := q.runner.Run(ctx, job)

	q.mu.Lock()
	job.OutputPath = result.OutputPath
	q.mu.Unlock()
	q.finish(job, result.State, result.Detail)

	if runErr != nil {
		return goerr.Wrap(runErr, "job aborted", goerr.V("job", job.ID))
	}

	switch result.State {
	case model.JobFailed:
		q.logger.Warn("download failed", slog.String("job", job.ID), slog.String("detail", result.Detail))
		if err := q.status(fmt.Sprintf(StatusFailed, job.Filename())); err != nil {
			return err
		}
	case model.JobCancelled:
		if err := q.status(fmt.Sprintf(StatusCancelled, job.Filename())); err != nil {
			return err
		}
	}

	return q.reportQueue()
}

func (q *Queue) finish(job *model.Job, state model.JobState, detail string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !state.IsFinished() {
		state = model.JobFailed
	}
	job.State = state
	job.LastError = detail
	job.FinishedAt = time.Now()
	q.active = nil
}

// Pending returns the number of jobs waiting to run
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.countLocked(model.JobPending)
}

func (q *Queue) countLocked(state model.JobState) int {
	n := 0
	for _, j := range q.jobs {
		if j.State == state {
			n++
		}
	}
	return n
}

func (q *Queue) nextPendingLocked() *model.Job {
	for _, j := range q.jobs {
		if j.State == model.JobPending {
			return j
		}
	}
	return nil
}

func (q *Queue) status(msg string) error {
	if err := q.reporter.ReportStatus(msg); err != nil {
		return goerr.Wrap(err, "failed to report status", goerr.V("status", msg))
	}
	return nil
}

func (q *Queue) reportQueue() error {
	q.mu.Lock()
	jobs := q.snapshotLocked()
	q.mu.Unlock()

	if err := q.reporter.ReportQueue(jobs); err != nil {
		return goerr.Wrap(err, "failed to report queue")
	}
	return nil
}

// generateID generates a unique prefixed ID using UUID v7 so IDs sort by
// creation time
func generateID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	}
	return prefix + id.String()
}
