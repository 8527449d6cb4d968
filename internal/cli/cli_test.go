package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ytget/lecturegrab/internal/config"
	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/transcribe"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestRuntime(t *testing.T, input string) (*runtime, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return &runtime{
		cfg:    config.DefaultFile(),
		logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		out:    &buf,
		in:     strings.NewReader(input),
	}, &buf
}

func TestAssignNames(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		names  []string
		prefix string
		want   []string
	}{
		{"generated", 3, nil, "week", []string{"week-01", "week-02", "week-03"}},
		{"named first", 3, []string{"intro", "", "recap"}, "lecture", []string{"intro", "lecture-02", "recap"}},
		{"more names than sources", 1, []string{"a", "b"}, "", []string{"a"}},
		{"default prefix", 1, nil, "", []string{"lecture-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assignNames(tt.count, tt.names, tt.prefix)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("assignNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(tt.input), &out, "Proceed? "); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Proceed? " {
			t.Errorf("Expected prompt, got %q", out.String())
		}
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf)

	if err := c.ReportProgress(model.ProgressSnapshot{Filename: "week1", Percent: 42, Stats: model.ProgressStats{ETA: "00:10"}}); err != nil {
		t.Fatalf("ReportProgress failed: %v", err)
	}
	if err := c.ReportStatus("Download failed: week1"); err != nil {
		t.Fatalf("ReportStatus failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "week1   42.0%  ETA: 00:10") {
		t.Errorf("Expected progress line, got %q", out)
	}
	if !strings.Contains(out, "\nDownload failed: week1\n") {
		t.Errorf("Expected status on its own line, got %q", out)
	}

	buf.Reset()
	c.printJobs([]model.Job{
		{State: model.JobCompleted, OutputPath: "/dl/a.mp4", Source: &model.StreamSource{Filename: "a"}},
		{State: model.JobFailed, LastError: "HTTP 403", Source: &model.StreamSource{Filename: "b"}},
	})
	out = buf.String()
	if !strings.Contains(out, "/dl/a.mp4") || !strings.Contains(out, "HTTP 403") {
		t.Errorf("Unexpected job summary %q", out)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, transcribe.Summary{
		Successful: 3,
		Skipped:    1,
		Failed:     1,
		Elapsed:    90 * time.Second,
		Failures:   []string{"/in/broken.mp4"},
	}, "transcriptions")

	out := buf.String()
	for _, want := range []string{"Successful: 3", "(1 already transcribed)", "Failed: 1", "broken.mp4", "Total time: 1m30s", "Output: transcriptions"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q: %s", want, out)
		}
	}
}

func TestRunDownload_List(t *testing.T) {
	dir := t.TempDir()
	perfLog := filepath.Join(dir, "perf.log")
	lines := []string{
		`{"method":"Network.requestWillBeSent","params":{"request":{"url":"https://cdn.kaltura.com/p/1/index.m3u8"}}}`,
		`{"method":"Network.requestWillBeSent","params":{"request":{"url":"https://cdn.kaltura.com/p/1/index.m3u8"}}}`,
		`{"method":"Network.requestWillBeSent","params":{"request":{"url":"https://example.com/style.css"}}}`,
	}
	if err := os.WriteFile(perfLog, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	rt, buf := newTestRuntime(t, "")
	rt.cfg.Capture.PerformanceLog = perfLog
	rt.cfg.Download.Dir = filepath.Join(dir, "downloads")

	jobs, err := runDownload(context.Background(), rt, downloadOptions{list: true, names: []string{"intro"}})
	if err != nil {
		t.Fatalf("runDownload failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("List mode should not download, got %d jobs", len(jobs))
	}

	out := buf.String()
	if !strings.Contains(out, "Found 1 video(s)") || !strings.Contains(out, "-> intro") {
		t.Errorf("Unexpected listing %q", out)
	}
	if _, err := os.Stat(rt.cfg.Download.Dir); !os.IsNotExist(err) {
		t.Error("List mode should not create the download directory")
	}
}

func TestRunDownload_Errors(t *testing.T) {
	rt, _ := newTestRuntime(t, "")

	if _, err := runDownload(context.Background(), rt, downloadOptions{}); err == nil {
		t.Error("Expected error without a performance log")
	}

	rt.cfg.Capture.PerformanceLog = filepath.Join(t.TempDir(), "missing.log")
	if _, err := runDownload(context.Background(), rt, downloadOptions{}); err == nil {
		t.Error("Expected error for a missing performance log")
	}
}

func TestRunDownload_NoSources(t *testing.T) {
	perfLog := filepath.Join(t.TempDir(), "perf.log")
	if err := os.WriteFile(perfLog, []byte(`{"method":"Page.loadEventFired","params":{}}`), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	rt, buf := newTestRuntime(t, "")
	rt.cfg.Capture.PerformanceLog = perfLog

	jobs, err := runDownload(context.Background(), rt, downloadOptions{})
	if err != nil || jobs != nil {
		t.Fatalf("Expected nothing to do, got %v, %v", jobs, err)
	}
	if !strings.Contains(buf.String(), "No videos found") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestRunBatch(t *testing.T) {
	t.Run("missing input directory", func(t *testing.T) {
		rt, _ := newTestRuntime(t, "")
		rt.cfg.Transcribe.InputDir = filepath.Join(t.TempDir(), "missing")

		err := runBatch(context.Background(), rt, true)
		if !errors.Is(err, transcribe.ErrInputDirMissing) {
			t.Errorf("Expected ErrInputDirMissing, got %v", err)
		}
	})

	t.Run("no videos", func(t *testing.T) {
		rt, buf := newTestRuntime(t, "")
		rt.cfg.Transcribe.InputDir = t.TempDir()

		if err := runBatch(context.Background(), rt, true); err != nil {
			t.Fatalf("runBatch failed: %v", err)
		}
		if !strings.Contains(buf.String(), "No video files found") {
			t.Errorf("Unexpected output %q", buf.String())
		}
	})

	t.Run("declined", func(t *testing.T) {
		rt, buf := newTestRuntime(t, "n\n")
		dir := t.TempDir()
		rt.cfg.Transcribe.InputDir = dir
		rt.cfg.Transcribe.OutputDir = filepath.Join(dir, "out")
		if err := os.WriteFile(filepath.Join(dir, "week1.mp4"), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to write video: %v", err)
		}

		if err := runBatch(context.Background(), rt, false); err != nil {
			t.Fatalf("runBatch failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "week1.mp4") || !strings.Contains(out, "Cancelled.") {
			t.Errorf("Unexpected output %q", out)
		}
	})
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := Run(context.Background(), []string{"lecturegrab", "--log-level", "loud", "download", "--list"})
	if err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")
	err := Run(context.Background(), []string{"lecturegrab", "--config", missing, "download", "--list"})
	if err == nil {
		t.Error("Expected error for a missing config file")
	}
}

func TestRun_UnknownMode(t *testing.T) {
	err := Run(context.Background(), []string{"lecturegrab", "transcribe", "--mode", "stream", "--input", t.TempDir()})
	if err == nil {
		t.Error("Expected error for unknown mode")
	}
}
