package download

import (
	"context"
	"io"

	"github.com/ytget/lecturegrab/internal/model"
)

// Request is everything the fetcher needs to download one stream
type Request struct {
	URL       string
	Headers   model.RequestHeaders
	OutputDir string
	Filename  string // output stem, without extension
}

// Fetcher launches the external stream fetcher.
type Fetcher interface {
	Start(ctx context.Context, req Request) (Process, error)
}

// Process is a running fetcher. Output carries stdout and stderr combined and
// reaches EOF when the process exits or is terminated.
type Process interface {
	Output() io.Reader
	Wait() (exitCode int, err error)
	Terminate() error
}

// ProgressReporter receives live progress of the running job.
type ProgressReporter interface {
	ReportProgress(snapshot model.ProgressSnapshot) error
}

// ProgressReporterFunc adapts a function to ProgressReporter
type ProgressReporterFunc func(model.ProgressSnapshot) error

// ReportProgress calls f(snapshot)
func (f ProgressReporterFunc) ReportProgress(snapshot model.ProgressSnapshot) error {
	return f(snapshot)
}

type nopReporter struct{}

func (nopReporter) ReportProgress(model.ProgressSnapshot) error { return nil }
