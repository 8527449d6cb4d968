package download

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/ytget/lecturegrab/internal/model"
)

type fakeProcess struct {
	out      io.Reader
	exitCode int
	waitErr  error

	mu         sync.Mutex
	terminated bool
}

func (p *fakeProcess) Output() io.Reader { return p.out }

func (p *fakeProcess) Wait() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.terminated {
		return -1, nil
	}
	return p.exitCode, p.waitErr
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true
	return nil
}

func (p *fakeProcess) wasTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

type fakeFetcher struct {
	proc     *fakeProcess
	startErr error
	requests []Request
}

func (f *fakeFetcher) Start(_ context.Context, req Request) (Process, error) {
	f.requests = append(f.requests, req)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.proc, nil
}

func newFakeFetcher(output string, exitCode int) *fakeFetcher {
	return &fakeFetcher{proc: &fakeProcess{out: strings.NewReader(output), exitCode: exitCode}}
}

type recordingReporter struct {
	mu        sync.Mutex
	snapshots []model.ProgressSnapshot
	onReport  func(model.ProgressSnapshot)
	err       error
}

func (r *recordingReporter) ReportProgress(s model.ProgressSnapshot) error {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	hook := r.onReport
	r.mu.Unlock()
	if hook != nil {
		hook(s)
	}
	return r.err
}

func (r *recordingReporter) all() []model.ProgressSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ProgressSnapshot(nil), r.snapshots...)
}

var errSurfaceGone = errors.New("surface gone")

func testJob(name string) *model.Job {
	return &model.Job{
		ID:    "job-1",
		State: model.JobRunning,
		Source: &model.StreamSource{
			ID:       "src-1",
			URL:      "https://cdn.kaltura.example/p/1/index.m3u8",
			Kind:     model.SourceManifest,
			Filename: name,
			Headers:  map[string]string{"Referer": "https://portal.example/course"},
		},
	}
}
