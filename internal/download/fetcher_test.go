package download

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ytget/lecturegrab/internal/model"
)

func TestBuildArgs(t *testing.T) {
	fetcher := NewExecFetcher("", nil)
	if fetcher.Command != DefaultFetcherCommand {
		t.Fatalf("Expected default command %q, got %q", DefaultFetcherCommand, fetcher.Command)
	}

	args := fetcher.BuildArgs(Request{
		URL: "https://cdn.example/a.m3u8",
		Headers: model.RequestHeaders{
			Cookie:  "a=1; b=2",
			Referer: "https://toledo.kuleuven.be",
			Origin:  "https://kaltura-kaf.edu.kuleuven.cloud",
		},
		OutputDir: "/tmp/dl",
		Filename:  "lecture-01",
	})

	expectedArgs := []string{
		"--add-header", "Cookie: a=1; b=2",
		"--referer", "https://toledo.kuleuven.be",
		"--add-header", "Origin: https://kaltura-kaf.edu.kuleuven.cloud",
		"-o", filepath.Join("/tmp/dl", "lecture-01") + ".%(ext)s",
		"--no-write-info-json",
		"--no-write-thumbnail",
		"--newline",
		"https://cdn.example/a.m3u8",
	}

	if !reflect.DeepEqual(args, expectedArgs) {
		t.Errorf("BuildArgs() =\n%q\nexpected\n%q", args, expectedArgs)
	}
}

func TestBuildArgs_OmitsEmptyHeaders(t *testing.T) {
	fetcher := &ExecFetcher{Command: "yt-dlp", ExtraArgs: []string{"--concurrent-fragments", "4"}}
	args := fetcher.BuildArgs(Request{URL: "u", OutputDir: "d", Filename: "f"})

	expectedArgs := []string{
		"-o", filepath.Join("d", "f") + ".%(ext)s",
		"--no-write-info-json",
		"--no-write-thumbnail",
		"--newline",
		"--concurrent-fragments", "4",
		"u",
	}
	if !reflect.DeepEqual(args, expectedArgs) {
		t.Errorf("BuildArgs() = %q, expected %q", args, expectedArgs)
	}
}

func TestHeadersFor(t *testing.T) {
	defaults := model.RequestHeaders{
		Referer: "https://toledo.kuleuven.be",
		Origin:  "https://kaltura-kaf.edu.kuleuven.cloud",
	}

	tests := []struct {
		name     string
		source   *model.StreamSource
		defaults model.RequestHeaders
		expected model.RequestHeaders
	}{
		{
			name:     "nil source keeps defaults",
			defaults: defaults,
			expected: defaults,
		},
		{
			name: "captured headers override",
			source: &model.StreamSource{Headers: map[string]string{
				"referer":    "https://portal/x",
				"cookie":     "s=1",
				"User-Agent": "Mozilla",
			}},
			defaults: defaults,
			expected: model.RequestHeaders{
				Cookie:    "s=1",
				Referer:   "https://portal/x",
				Origin:    "https://kaltura-kaf.edu.kuleuven.cloud",
				UserAgent: "Mozilla",
			},
		},
		{
			name:     "configured cookie wins",
			source:   &model.StreamSource{Headers: map[string]string{"Cookie": "captured=1"}},
			defaults: model.RequestHeaders{Cookie: "file=1"},
			expected: model.RequestHeaders{Cookie: "file=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeadersFor(tt.source, tt.defaults); got != tt.expected {
				t.Errorf("HeadersFor() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}
