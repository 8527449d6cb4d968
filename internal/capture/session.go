package capture

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/model"
)

// Session is a bounded capture interval: records observed between Start and
// Stop are returned by Stop
type Session interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) ([]model.NetworkRecord, error)
}

// LogSession captures from a browser performance log that the browser keeps
// appending to (one JSON entry per line). Start remembers the current end of
// the file; Stop decodes everything written since.
type LogSession struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	offset  int64
	started bool
}

// NewLogSession creates a capture session over the performance log at path
func NewLogSession(path string, logger *slog.Logger) *LogSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSession{path: path, logger: logger}
}

// Start marks the beginning of the capture interval. A log that does not
// exist yet is captured from its first byte.
func (s *LogSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	switch {
	case os.IsNotExist(err):
		s.offset = 0
	case err != nil:
		return goerr.Wrap(err, "failed to stat performance log", goerr.V("path", s.path))
	default:
		s.offset = info.Size()
	}
	s.started = true

	s.logger.Info("capture started", slog.String("log", s.path), slog.Int64("offset", s.offset))
	return nil
}

// Stop ends the capture interval and returns the records written since Start.
// Stop without Start reads the whole log.
func (s *LogSession) Stop(ctx context.Context) ([]model.NetworkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open performance log", goerr.V("path", s.path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat performance log", goerr.V("path", s.path))
	}

	offset := s.offset
	if !s.started || info.Size() < offset {
		// log was truncated or rotated since Start
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, goerr.Wrap(err, "failed to seek performance log", goerr.V("offset", offset))
	}

	records, err := ParsePerformanceLog(io.LimitReader(f, info.Size()-offset), s.logger)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse performance log", goerr.V("path", s.path))
	}

	s.offset = info.Size()
	s.started = false

	s.logger.Info("capture stopped", slog.String("log", s.path), slog.Int("records", len(records)))
	return records, nil
}

// ReadLogFile decodes a complete performance log file
func ReadLogFile(path string, logger *slog.Logger) ([]model.NetworkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open performance log", goerr.V("path", path))
	}
	defer f.Close()

	records, err := ParsePerformanceLog(f, logger)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse performance log", goerr.V("path", path))
	}
	return records, nil
}
