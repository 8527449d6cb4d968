package queue

import (
	"context"
	"errors"

	"github.com/ytget/lecturegrab/internal/download"
	"github.com/ytget/lecturegrab/internal/model"
)

var (
	// ErrQueueBusy is returned when the queue cannot be changed or started
	// because a job is running
	ErrQueueBusy = errors.New("queue is busy")

	ErrEmptyFilename     = errors.New("filename is empty")
	ErrDuplicateFilename = errors.New("filename already queued")
	ErrIndexOutOfRange   = errors.New("queue index out of range")
	ErrJobNotFound       = errors.New("job not found")
	ErrNoSource          = errors.New("stream source is missing")
)

// JobRunner runs one job to a terminal state. *download.Runner implements it.
// Reset clears the cancellation left by a previous job; Cancel applies to the
// job that is running or about to run.
type JobRunner interface {
	Run(ctx context.Context, job *model.Job) (download.Result, error)
	Reset()
	Cancel()
}

// Reporter receives status lines and queue snapshots. An error from either
// method means the presentation surface is gone and stops processing.
type Reporter interface {
	ReportStatus(status string) error
	ReportQueue(jobs []model.Job) error
}

type nopReporter struct{}

func (nopReporter) ReportStatus(string) error       { return nil }
func (nopReporter) ReportQueue([]model.Job) error { return nil }
