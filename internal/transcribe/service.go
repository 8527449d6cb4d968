package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/model"
)

// Directory defaults
const (
	DefaultInputDir       = "downloads"
	DefaultOutputDir      = "transcriptions"
	DefaultCacheDirName   = "_cache"
	DefaultStableInterval = 2 * time.Second
	DirPermissions        = 0o755
)

// VideoExtensions are the files picked up from the input directory
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".flv", ".wmv", ".m4v", ".3gp", ".ts"}

// ErrInputDirMissing is returned when the input directory does not exist
var ErrInputDirMissing = errors.New("input directory does not exist")

// Options configures a Service
type Options struct {
	InputDir       string
	OutputDir      string
	CacheDir       string
	StableInterval time.Duration // watch mode: how long a file size must stay unchanged
}

// FileResult describes one transcribed (or skipped) file
type FileResult struct {
	Path     string
	Skipped  bool
	Language string
	Segments int
	Outputs  []string
}

// Summary is the outcome of a batch run
type Summary struct {
	Successful int
	Failed     int
	Skipped    int
	Elapsed    time.Duration
	Failures   []string
}

// Service transcribes video files from the input directory
type Service struct {
	engine Engine
	media  Media
	opts   Options
	out    io.Writer
	logger *slog.Logger
	slots  *SlotAllocator

	mu       sync.Mutex
	inflight map[string]bool
}

// NewService creates a transcription service. Progress bars and per-file
// results are written to out.
func NewService(engine Engine, media Media, opts Options, out io.Writer, logger *slog.Logger) *Service {
	if opts.InputDir == "" {
		opts.InputDir = DefaultInputDir
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.CacheDir == "" {
		opts.CacheDir = filepath.Join(opts.OutputDir, DefaultCacheDirName)
	}
	if opts.StableInterval <= 0 {
		opts.StableInterval = DefaultStableInterval
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:   engine,
		media:    media,
		opts:     opts,
		out:      out,
		logger:   logger,
		slots:    NewSlotAllocator(),
		inflight: make(map[string]bool),
	}
}

// Options returns the effective options
func (s *Service) Options() Options {
	return s.opts
}

// IsVideoFile reports whether path has one of VideoExtensions, ignoring case
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// VideoFiles returns the video files directly inside dir, sorted by name
func VideoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, goerr.Wrap(ErrInputDirMissing, "cannot list videos", goerr.V("dir", dir))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input directory", goerr.V("dir", dir))
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsVideoFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// OutputBase returns the output path of videoPath without extension
func (s *Service) OutputBase(videoPath string) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(s.opts.OutputDir, stem)
}

// HasTranscripts reports whether all output files already exist for videoPath
func (s *Service) HasTranscripts(videoPath string) bool {
	base := s.OutputBase(videoPath)
	for _, ext := range OutputExtensions {
		if _, err := os.Stat(base + ext); err != nil {
			return false
		}
	}
	return true
}

// TranscribeFile transcribes one video and writes TXT, SRT and VTT files.
// Videos that already have all three are skipped.
func (s *Service) TranscribeFile(ctx context.Context, videoPath string) (FileResult, error) {
	name := filepath.Base(videoPath)
	result := FileResult{Path: videoPath}
	logger := s.logger.With(slog.String("file", name))

	if err := os.MkdirAll(s.opts.OutputDir, DirPermissions); err != nil {
		return result, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", s.opts.OutputDir))
	}

	if s.HasTranscripts(videoPath) {
		logger.Info("transcription already exists")
		fmt.Fprintf(s.out, "[SKIP] Transcription already exists: %s\n", name)
		result.Skipped = true
		return result, nil
	}

	fmt.Fprintf(s.out, "Transcribing: %s\n", name)

	audioPath, err := s.extractAudio(ctx, videoPath)
	if err != nil {
		return result, err
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove cached audio", slog.String("path", audioPath), slog.Any("error", err))
		}
	}()

	total, ok := s.media.Duration(ctx, videoPath)
	if !ok {
		total = 0
		logger.Debug("duration unknown")
	}

	slot := s.slots.Acquire()
	defer s.slots.Release(slot)
	bar := NewProgress(s.out, name, slot, total)

	transcript, err := s.engine.Transcribe(ctx, audioPath, func(seg model.Segment) {
		bar.Advance(seg.End)
	})
	if err != nil {
		return result, goerr.Wrap(err, "transcription failed", goerr.V("file", name))
	}
	if transcript == nil {
		transcript = &model.Transcript{}
	}
	bar.Finish(transcript.LastEnd())

	result.Language = transcript.Language
	result.Segments = len(transcript.Segments)
	if transcript.Language != "" {
		logger.Info("detected language",
			slog.String("language", transcript.Language),
			slog.Float64("probability", transcript.LanguageProbability),
		)
	}

	base := s.OutputBase(videoPath)
	writers := []struct {
		ext   string
		write func(io.Writer) error
	}{
		{ExtTXT, func(w io.Writer) error { return WriteTXT(w, name, transcript.Segments) }},
		{ExtSRT, func(w io.Writer) error { return WriteSRT(w, transcript.Segments) }},
		{ExtVTT, func(w io.Writer) error { return WriteVTT(w, transcript.Segments) }},
	}
	for _, wr := range writers {
		path := base + wr.ext
		if err := writeFile(path, wr.write); err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, path)
	}

	names := make([]string, len(result.Outputs))
	for i, p := range result.Outputs {
		names[i] = filepath.Base(p)
	}
	color.New(color.FgGreen).Fprintf(s.out, "✓ Saved transcriptions: %s\n", strings.Join(names, ", "))
	return result, nil
}

// extractAudio reuses a cached WAV if one is already there
func (s *Service) extractAudio(ctx context.Context, videoPath string) (string, error) {
	if err := os.MkdirAll(s.opts.CacheDir, DirPermissions); err != nil {
		return "", goerr.Wrap(err, "failed to create cache directory", goerr.V("dir", s.opts.CacheDir))
	}

	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(s.opts.CacheDir, stem+AudioSuffix)
	if _, err := os.Stat(audioPath); err == nil {
		return audioPath, nil
	}

	if err := s.media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		os.Remove(audioPath)
		return "", goerr.Wrap(err, "failed to extract audio", goerr.V("file", filepath.Base(videoPath)))
	}
	return audioPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create output file", goerr.V("path", path))
	}
	if err := write(f); err != nil {
		f.Close()
		return goerr.Wrap(err, "failed to write output file", goerr.V("path", path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close output file", goerr.V("path", path))
	}
	return nil
}

// RunBatch transcribes files one after another. Skipped files count as
// successful. A cancelled context stops the batch before the next file.
func (s *Service) RunBatch(ctx context.Context, files []string) Summary {
	var summary Summary
	start := time.Now()

	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(s.out, "\n[%d/%d] Processing...\n", i+1, len(files))

		result, err := s.TranscribeFile(ctx, path)
		switch {
		case err != nil:
			s.logger.Error("transcription failed", slog.String("file", path), slog.Any("error", err))
			color.New(color.FgRed).Fprintf(s.out, "✗ Error transcribing %s: %v\n", filepath.Base(path), err)
			summary.Failed++
			summary.Failures = append(summary.Failures, path)
		case result.Skipped:
			summary.Skipped++
			summary.Successful++
		default:
			summary.Successful++
		}
	}

	summary.Elapsed = time.Since(start)
	return summary
}

// Watch transcribes video files as they are created in the input directory
// until ctx is done. Each new file is handled in its own goroutine once its
// size has stopped changing.
func (s *Service) Watch(ctx context.Context) error {
	if err := os.MkdirAll(s.opts.InputDir, DirPermissions); err != nil {
		return goerr.Wrap(err, "failed to create input directory", goerr.V("dir", s.opts.InputDir))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(s.opts.InputDir); err != nil {
		return goerr.Wrap(err, "failed to watch input directory", goerr.V("dir", s.opts.InputDir))
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	s.logger.Info("watching for video files", slog.String("dir", s.opts.InputDir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) || !IsVideoFile(event.Name) {
				continue
			}
			if !s.claim(event.Name) {
				continue
			}

			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				defer s.unclaim(path)

				if !WaitStable(ctx, path, s.opts.StableInterval) {
					return
				}
				if _, err := s.TranscribeFile(ctx, path); err != nil {
					s.logger.Error("transcription failed", slog.String("file", path), slog.Any("error", err))
					color.New(color.FgRed).Fprintf(s.out, "✗ Error transcribing %s: %v\n", filepath.Base(path), err)
				}
			}(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", slog.Any("error", err))
		}
	}
}

func (s *Service) claim(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[path] {
		return false
	}
	s.inflight[path] = true
	return true
}

func (s *Service) unclaim(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, path)
}

// WaitStable blocks until the size of path is unchanged across one interval.
// It returns false if the file disappears or ctx is done.
func WaitStable(ctx context.Context, path string, interval time.Duration) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() == last {
			return true
		}
		last = info.Size()

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
