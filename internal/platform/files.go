package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// File extensions that mark an unfinished download
var (
	SkippedExtensions = []string{".part", ".ytdl", ".tmp"}
)

// Characters that are not allowed in a user-chosen filename
const (
	ForbiddenFilenameChars = `/\:*?"<>|`
	FilenameReplacement    = "_"
)

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return goerr.Wrap(err, "file does not exist", goerr.V("path", filePath))
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return goerr.Wrap(err, "failed to get absolute path", goerr.V("path", filePath))
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return goerr.New("unsupported operating system", goerr.V("os", runtime.GOOS))
	}
}

// openFileInManagerLinux opens directory containing file on Linux
// Note: File selection is not standardized on Linux, so we open the parent directory
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return goerr.New("no suitable file manager found", goerr.V("dir", dir))
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// SanitizeFilename makes a user-chosen name safe to use as a file stem
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	for _, c := range ForbiddenFilenameChars {
		name = strings.ReplaceAll(name, string(c), FilenameReplacement)
	}
	name = strings.Trim(name, ". ")
	return name
}

// FindDownloadedFile returns the finished output for filename in dir, i.e. a
// regular file named "<filename>.<ext>" that is not a partial artifact
func FindDownloadedFile(dir, filename string) (string, error) {
	if filename == "" {
		return "", goerr.New("file name is empty", goerr.V("dir", dir))
	}

	matches, err := filepath.Glob(filepath.Join(dir, escapeGlob(filename)+".*"))
	if err != nil {
		return "", goerr.Wrap(err, "failed to search directory", goerr.V("dir", dir))
	}
	sort.Strings(matches)

	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		rest := strings.TrimPrefix(filepath.Base(m), filename+".")
		if strings.Contains(rest, ".") || isSkippedExtension(m) {
			// "<name>.f137.mp4", "<name>.mp4.part" and friends
			continue
		}
		return m, nil
	}

	return "", goerr.New("file not found", goerr.V("path", filepath.Join(dir, filename)))
}

func isSkippedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, skipped := range SkippedExtensions {
		if ext == skipped {
			return true
		}
	}
	return false
}

// escapeGlob quotes glob metacharacters so a literal name can prefix a pattern
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
