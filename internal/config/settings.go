package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/lecturegrab/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
	KeyCookiesFile        = "cookies_file"
	KeyLastFilename       = "last_filename"
)

// Default values
const (
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = false
)

// Settings manages the panel's persisted preferences
type Settings struct {
	app        fyne.App
	defaultDir string
}

// NewSettings creates a new settings manager. defaultDir is used until the
// user picks a download directory; empty means the home Downloads folder.
func NewSettings(app fyne.App, defaultDir string) *Settings {
	return &Settings{app: app, defaultDir: defaultDir}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir != "" {
		return dir
	}

	dir = s.defaultDir
	if dir == "" {
		home, err := platform.GetHomeDownloadsDir()
		if err != nil {
			home = DefaultDownloadDir
		}
		dir = home
	}
	s.SetDownloadDirectory(dir)
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"nl":     "Nederlands",
	}
}

// GetAutoRevealOnComplete returns whether to reveal finished downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal finished downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetCookiesFile returns the Netscape cookies file, empty if none
func (s *Settings) GetCookiesFile() string {
	return s.app.Preferences().String(KeyCookiesFile)
}

// SetCookiesFile sets the Netscape cookies file
func (s *Settings) SetCookiesFile(path string) {
	s.app.Preferences().SetString(KeyCookiesFile, path)
}

// GetLastFilename returns the filename last entered in the panel
func (s *Settings) GetLastFilename() string {
	return s.app.Preferences().String(KeyLastFilename)
}

// SetLastFilename remembers the filename last entered in the panel
func (s *Settings) SetLastFilename(name string) {
	s.app.Preferences().SetString(KeyLastFilename, name)
}

// Apply copies preferences over the file configuration. Empty preferences
// leave cfg unchanged.
func (s *Settings) Apply(cfg *File) {
	if dir := s.app.Preferences().String(KeyDownloadDir); dir != "" {
		cfg.Download.Dir = dir
	}
	if cookies := s.GetCookiesFile(); cookies != "" {
		cfg.Portal.CookiesFile = cookies
	}
}
