package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanupPartialFiles(t *testing.T) {
	dir := t.TempDir()

	partials := []string{
		"lecture.mp4.part",
		"lecture.mp4.part-Frag12",
		"lecture.mp4.frag3",
		"lecture.f137.ts",
		"lecture.mp4.tmp",
		"lecture.mp4.ytdl",
		"lecture.temp.mp4",
	}
	for _, name := range partials {
		touch(t, filepath.Join(dir, name))
	}
	touch(t, filepath.Join(dir, "lecture-frags", "Frag1"))

	kept := []string{"lecture.mp4", "other.mp4.part", "notes.txt"}
	for _, name := range kept {
		touch(t, filepath.Join(dir, name))
	}

	removed := CleanupPartialFiles(dir, "lecture", nil)
	if removed != len(partials)+1 {
		t.Errorf("Expected %d removals, got %d", len(partials)+1, removed)
	}

	for _, name := range partials {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("Partial file %s still exists", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "lecture-frags")); !os.IsNotExist(err) {
		t.Error("Fragment directory still exists")
	}
	for _, name := range kept {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("File %s should be kept: %v", name, err)
		}
	}
}

func TestCleanupPartialFiles_Idempotent(t *testing.T) {
	dir := t.TempDir()

	if removed := CleanupPartialFiles(dir, "lecture", nil); removed != 0 {
		t.Errorf("Expected nothing removed, got %d", removed)
	}
	if removed := CleanupPartialFiles(dir, "lecture", nil); removed != 0 {
		t.Errorf("Expected nothing removed on second call, got %d", removed)
	}
	if removed := CleanupPartialFiles(filepath.Join(dir, "missing"), "lecture", nil); removed != 0 {
		t.Errorf("Expected nothing removed for missing dir, got %d", removed)
	}
}

func TestCleanupPartialFiles_RejectsUnsafeNames(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "keep", "file.part"))

	for _, name := range []string{"", "../x", `a\b`} {
		if removed := CleanupPartialFiles(dir, name, nil); removed != 0 {
			t.Errorf("Expected no removal for %q, got %d", name, removed)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "keep")); err != nil {
		t.Errorf("Directory should be untouched: %v", err)
	}
}

func TestCleanupPartialFiles_GlobMetacharacters(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "week[1].mp4.part"))
	touch(t, filepath.Join(dir, "week1.mp4.part"))

	if removed := CleanupPartialFiles(dir, "week[1]", nil); removed != 1 {
		t.Errorf("Expected exactly one removal, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "week1.mp4.part")); err != nil {
		t.Errorf("week1.mp4.part must not match week[1]: %v", err)
	}
}
