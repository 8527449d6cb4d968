package config

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "")

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "lectures")

	// Test default value
	if dir := settings.GetDownloadDirectory(); dir != "lectures" {
		t.Errorf("Expected default directory lectures, got %s", dir)
	}

	// Test setting custom value
	customDir := "/custom/downloads"
	settings.SetDownloadDirectory(customDir)

	retrievedDir := settings.GetDownloadDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, retrievedDir)
	}
}

func TestDownloadDirectoryHomeFallback(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "")

	if dir := settings.GetDownloadDirectory(); dir == "" {
		t.Error("Download directory should not be empty")
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "")

	// Test default value
	lang := settings.GetLanguage()
	if lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	settings.SetLanguage("nl")

	retrievedLang := settings.GetLanguage()
	if retrievedLang != "nl" {
		t.Errorf("Expected language 'nl', got %s", retrievedLang)
	}
}

func TestGetLanguageOptions(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "")

	options := settings.GetLanguageOptions()

	expectedLangs := []string{"system", "en", "nl"}
	for _, lang := range expectedLangs {
		if _, exists := options[lang]; !exists {
			t.Errorf("Expected language option '%s' to exist", lang)
		}
	}

	if len(options) != len(expectedLangs) {
		t.Errorf("Expected %d language options, got %d", len(expectedLangs), len(options))
	}
}

func TestAutoReveal(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "")

	if settings.GetAutoRevealOnComplete() != DefaultAutoRevealComplete {
		t.Error("Expected default auto-reveal value")
	}

	settings.SetAutoRevealOnComplete(true)
	if !settings.GetAutoRevealOnComplete() {
		t.Error("Expected auto-reveal to be enabled")
	}
}

func TestApply(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app, "")
	cfg := DefaultFile()

	settings.Apply(&cfg)
	if cfg.Download.Dir != DefaultDownloadDir {
		t.Errorf("Unset preferences should keep %s, got %s", DefaultDownloadDir, cfg.Download.Dir)
	}

	settings.SetDownloadDirectory("/srv/lectures")
	settings.SetCookiesFile("/srv/cookies.txt")
	settings.Apply(&cfg)

	if cfg.Download.Dir != "/srv/lectures" {
		t.Errorf("Expected /srv/lectures, got %s", cfg.Download.Dir)
	}
	if cfg.Portal.CookiesFile != "/srv/cookies.txt" {
		t.Errorf("Expected cookies file to be applied, got %s", cfg.Portal.CookiesFile)
	}
}
