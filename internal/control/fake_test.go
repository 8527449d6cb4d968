package control

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/lecturegrab/internal/download"
	"github.com/ytget/lecturegrab/internal/model"
)

type fakeSurface struct {
	cmds chan Command

	mu        sync.Mutex
	statuses  []string
	sources   [][]*model.StreamSource
	queues    [][]model.Job
	snapshots []model.ProgressSnapshot
	aliveErr  error
	statusErr error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{cmds: make(chan Command, 16)}
}

func (s *fakeSurface) Commands() <-chan Command { return s.cmds }

func (s *fakeSurface) ShowSources(sources []*model.StreamSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, sources)
	return nil
}

func (s *fakeSurface) ReportStatus(status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return s.statusErr
}

func (s *fakeSurface) ReportQueue(jobs []model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues = append(s.queues, jobs)
	return nil
}

func (s *fakeSurface) ReportProgress(snapshot model.ProgressSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func (s *fakeSurface) Alive(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveErr
}

func (s *fakeSurface) setAliveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliveErr = err
}

func (s *fakeSurface) hasStatus(want string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if strings.Contains(st, want) {
			return true
		}
	}
	return false
}

func (s *fakeSurface) lastSources() []*model.StreamSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sources) == 0 {
		return nil
	}
	return s.sources[len(s.sources)-1]
}

func (s *fakeSurface) lastQueue() []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queues) == 0 {
		return nil
	}
	return s.queues[len(s.queues)-1]
}

func waitForStatus(t *testing.T, s *fakeSurface, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.hasStatus(want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Fatalf("Status %q never reported; got %q", want, s.statuses)
}

type fakeSession struct {
	records  []model.NetworkRecord
	startErr error
	started  bool
}

func (s *fakeSession) Start(context.Context) error {
	s.started = true
	return s.startErr
}

func (s *fakeSession) Stop(context.Context) ([]model.NetworkRecord, error) {
	return s.records, nil
}

// blockingRunner runs until cancelled when block is set
type blockingRunner struct {
	block     bool
	started   chan string
	cancelled chan struct{}
	once      sync.Once
}

func newBlockingRunner(block bool) *blockingRunner {
	return &blockingRunner{
		block:     block,
		started:   make(chan string, 8),
		cancelled: make(chan struct{}),
	}
}

func (r *blockingRunner) Run(ctx context.Context, job *model.Job) (download.Result, error) {
	r.started <- job.Filename()
	if !r.block {
		return download.Result{State: model.JobCompleted}, nil
	}
	select {
	case <-r.cancelled:
		return download.Result{State: model.JobCancelled}, nil
	case <-ctx.Done():
		return download.Result{State: model.JobCancelled}, nil
	}
}

func (r *blockingRunner) Reset() {}

func (r *blockingRunner) Cancel() {
	r.once.Do(func() { close(r.cancelled) })
}

var capturedRecords = []model.NetworkRecord{
	{URL: "https://toledo.kuleuven.be/portal", Direction: model.DirectionRequest},
	{URL: "https://cdnapisec.kaltura.com/p/1/playManifest/a.m3u8", Direction: model.DirectionResponse,
		Headers: map[string]string{"Referer": "https://toledo.kuleuven.be"}},
	{URL: "https://cdnapisec.kaltura.com/p/1/playManifest/a.m3u8", Direction: model.DirectionRequest},
	{URL: "https://cdnapisec.kaltura.com/p/1/serveFlavor/entryId/b.m3u8", Direction: model.DirectionResponse},
}
