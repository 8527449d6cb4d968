package ui

import (
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/lecturegrab/internal/config"
)

// SettingsDialog edits the panel preferences
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog

	downloadDirEntry *widget.Entry
	cookiesEntry     *widget.Entry
	languageSelect   *widget.Select
	autoRevealCheck  *widget.Check

	languageCodes map[string]string // display name -> code
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings:      settings,
		localization:  localization,
		window:        window,
		languageCodes: make(map[string]string),
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	sd.cookiesEntry = widget.NewEntry()
	sd.cookiesEntry.SetPlaceHolder("cookies.txt")
	browseCookiesBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseCookies)
	cookiesRow := container.NewBorder(nil, nil, nil, browseCookiesBtn, sd.cookiesEntry)

	var names []string
	for code, name := range sd.settings.GetLanguageOptions() {
		sd.languageCodes[name] = code
		names = append(names, name)
	}
	sort.Strings(names)
	sd.languageSelect = widget.NewSelect(names, nil)

	sd.autoRevealCheck = widget.NewCheck(l.GetText(KeyAutoReveal), nil)

	form := container.NewVBox(
		widget.NewLabel(l.GetText(KeyDownloadDirectory)+":"),
		downloadDirRow,
		widget.NewLabel(l.GetText(KeyCookiesFile)+":"),
		cookiesRow,
		widget.NewSeparator(),
		widget.NewLabel(l.GetText(KeyLanguage)+":"),
		sd.languageSelect,
		sd.autoRevealCheck,
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.cookiesEntry.SetText(sd.settings.GetCookiesFile())
	sd.languageSelect.SetSelected(sd.settings.GetLanguageOptions()[sd.settings.GetLanguage()])
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onBrowseCookies() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		sd.cookiesEntry.SetText(rc.URI().Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.save()
	dialog.ShowInformation(
		sd.localization.GetText(KeySettings),
		sd.localization.GetText(KeySettingsSaved)+"\n"+sd.localization.GetText(KeyRestartRequired),
		sd.window,
	)
}

// save writes the form back to the preferences
func (sd *SettingsDialog) save() {
	if dir := sd.downloadDirEntry.Text; dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}
	sd.settings.SetCookiesFile(sd.cookiesEntry.Text)
	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
	}
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)
}
