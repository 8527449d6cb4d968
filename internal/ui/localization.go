package ui

import (
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyRecord            = "record"
	KeyStopRecording     = "stop_recording"
	KeySources           = "sources"
	KeyQueue             = "queue"
	KeyFilename          = "filename"
	KeyEnqueue           = "enqueue"
	KeyDownloadNow       = "download_now"
	KeyStartQueue        = "start_queue"
	KeyCancelDownload    = "cancel_download"
	KeyHaltQueue         = "halt_queue"
	KeyRemove            = "remove"
	KeyClear             = "clear"
	KeyReveal            = "reveal"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyDownloadDirectory = "download_directory"
	KeyCookiesFile       = "cookies_file"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyRestartRequired   = "restart_required"
	KeySelectSource      = "select_source"
	KeySelectJob         = "select_job"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyIdle              = "idle"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" follows LANG.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			if strings.HasPrefix(strings.ToLower(v), "nl") {
				return "nl"
			}
			return "en"
		}
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"nl": "Nederlands",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Lecture Grab",
		KeyRecord:            "Record",
		KeyStopRecording:     "Stop recording",
		KeySources:           "Found videos",
		KeyQueue:             "Download queue",
		KeyFilename:          "Filename (without extension)",
		KeyEnqueue:           "Add to queue",
		KeyDownloadNow:       "Download now",
		KeyStartQueue:        "Start queue",
		KeyCancelDownload:    "Cancel download",
		KeyHaltQueue:         "Stop queue",
		KeyRemove:            "Remove",
		KeyClear:             "Clear",
		KeyReveal:            "Show",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyDownloadDirectory: "Download Directory",
		KeyCookiesFile:       "Cookies File (Netscape format)",
		KeyAutoReveal:        "Show finished downloads in file manager",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyRestartRequired:   "Directory and cookie changes apply after a restart.",
		KeySelectSource:      "Select a video first.",
		KeySelectJob:         "Select a queued download first.",
		KeyErrorOpeningFile:  "Error opening file",
		KeyIdle:              "Press Record, play the lecture, then press Stop recording.",
	}

	l.texts["nl"] = map[string]string{
		KeyAppTitle:          "Lecture Grab",
		KeyRecord:            "Opnemen",
		KeyStopRecording:     "Opname stoppen",
		KeySources:           "Gevonden video's",
		KeyQueue:             "Downloadwachtrij",
		KeyFilename:          "Bestandsnaam (zonder extensie)",
		KeyEnqueue:           "Aan wachtrij toevoegen",
		KeyDownloadNow:       "Nu downloaden",
		KeyStartQueue:        "Wachtrij starten",
		KeyCancelDownload:    "Download annuleren",
		KeyHaltQueue:         "Wachtrij stoppen",
		KeyRemove:            "Verwijderen",
		KeyClear:             "Leegmaken",
		KeyReveal:            "Tonen",
		KeySettings:          "Instellingen",
		KeyFile:              "Bestand",
		KeyLanguage:          "Taal",
		KeyDownloadDirectory: "Downloadmap",
		KeyCookiesFile:       "Cookiebestand (Netscape-formaat)",
		KeyAutoReveal:        "Voltooide downloads tonen in bestandsbeheer",
		KeySave:              "Opslaan",
		KeyCancel:            "Annuleren",
		KeyBrowse:            "Bladeren",
		KeySettingsSaved:     "Instellingen opgeslagen!",
		KeyRestartRequired:   "Wijzigingen aan map en cookies gelden na een herstart.",
		KeySelectSource:      "Selecteer eerst een video.",
		KeySelectJob:         "Selecteer eerst een download in de wachtrij.",
		KeyErrorOpeningFile:  "Fout bij openen van bestand",
		KeyIdle:              "Druk op Opnemen, speel het college af en druk dan op Opname stoppen.",
	}
}
