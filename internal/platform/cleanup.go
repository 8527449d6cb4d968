package platform

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Patterns for artifacts yt-dlp leaves behind for "<name>" ("%s" is the
// glob-escaped file name)
var (
	PartialPatterns = []string{
		"%s.*.part",
		"%s.*.part-Frag*",
		"%s.*.frag*",
		"%s.f*.ts",
		"%s.*.tmp",
		"%s.*.ytdl",
		"%s.temp.*",
	}
)

// Removal retry policy; a killed fetcher may still hold handles briefly
const (
	RemoveAttempts   = 3
	RemoveRetryDelay = 200 * time.Millisecond
)

// CleanupPartialFiles removes partial download artifacts for filename in dir
// along with any fragment directory whose name starts with filename. It is
// safe to call repeatedly and when nothing exists; failures are logged and
// never returned. The number of removed entries is returned.
func CleanupPartialFiles(dir, filename string, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		logger.Warn("refusing to clean up invalid file name", slog.String("filename", filename))
		return 0
	}

	escaped := escapeGlob(filename)
	removed := 0

	for _, pattern := range PartialPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, strings.ReplaceAll(pattern, "%s", escaped)))
		if err != nil {
			logger.Warn("bad cleanup pattern", slog.String("pattern", pattern), slog.Any("error", err))
			continue
		}
		for _, m := range matches {
			info, err := os.Lstat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if err := removeWithRetry(m, os.Remove); err != nil {
				logger.Warn("could not remove partial file", slog.String("path", m), slog.Any("error", err))
				continue
			}
			logger.Info("cleaned up", slog.String("path", m))
			removed++
		}
	}

	dirs, err := filepath.Glob(filepath.Join(dir, escaped+"*"))
	if err != nil {
		logger.Warn("bad cleanup pattern", slog.String("filename", filename), slog.Any("error", err))
		return removed
	}
	for _, d := range dirs {
		info, err := os.Lstat(d)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := removeWithRetry(d, os.RemoveAll); err != nil {
			logger.Warn("could not remove directory", slog.String("path", d), slog.Any("error", err))
			continue
		}
		logger.Info("cleaned up directory", slog.String("path", d))
		removed++
	}

	return removed
}

func removeWithRetry(path string, remove func(string) error) error {
	var err error
	for attempt := 0; attempt < RemoveAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(RemoveRetryDelay)
		}
		err = remove(path)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
	}
	return err
}
