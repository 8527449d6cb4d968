package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
}

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	err := OpenFileInManager(filepath.Join(t.TempDir(), "nonexistent.txt"))
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}

	if !strings.Contains(err.Error(), "file does not exist:") {
		t.Errorf("Error message should contain 'file does not exist:', got: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lecture-01", "lecture-01"},
		{"  Week 3: Intro  ", "Week 3_ Intro"},
		{"../etc/passwd", "_etc_passwd"},
		{"a\\b/c", "a_b_c"},
		{"tab\there", "tabhere"},
		{"...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindDownloadedFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "lecture.mp4.part"))
	touch(t, filepath.Join(dir, "lecture.f137.mp4"))
	touch(t, filepath.Join(dir, "lecture-extra.mp4"))

	if _, err := FindDownloadedFile(dir, "lecture"); err == nil {
		t.Error("Expected no finished file yet")
	}

	touch(t, filepath.Join(dir, "lecture.mp4"))

	found, err := FindDownloadedFile(dir, "lecture")
	if err != nil {
		t.Fatalf("Expected finished file, got error: %v", err)
	}
	if found != filepath.Join(dir, "lecture.mp4") {
		t.Errorf("Expected lecture.mp4, got %s", found)
	}

	if _, err := FindDownloadedFile(dir, ""); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("a*b?c[d"); got != "a[*]b[?]c[[]d" {
		t.Errorf("escapeGlob = %q", got)
	}
}
