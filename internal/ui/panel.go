package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/ytget/lecturegrab/internal/config"
	"github.com/ytget/lecturegrab/internal/control"
	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/platform"
)

// ErrPanelClosed is returned by every surface method once the window is gone
var ErrPanelClosed = errors.New("panel window closed")

// Panel is the desktop presentation surface
type Panel struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	logger       *slog.Logger
	reveal       func(path string) error
	redraw       *rate.Limiter

	commands  chan control.Command
	done      chan struct{}
	closeOnce sync.Once

	mu             sync.Mutex
	sources        []*model.StreamSource
	jobs           []model.Job
	selectedSource int
	selectedJob    int
	recording      bool
	revealed       map[string]bool

	recordBtn      *widget.Button
	settingsBtn    *widget.Button
	sourcesLabel   *widget.Label
	sourceList     *widget.List
	filenameEntry  *widget.Entry
	enqueueBtn     *widget.Button
	downloadNowBtn *widget.Button
	queueLabel     *widget.Label
	queueList      *widget.List
	startBtn       *widget.Button
	cancelBtn      *widget.Button
	haltBtn        *widget.Button
	removeBtn      *widget.Button
	clearBtn       *widget.Button
	progressBar    *widget.ProgressBar
	statsLabel     *widget.Label
	statusLabel    *widget.Label
}

var _ control.Surface = (*Panel)(nil)

// NewPanel builds the panel into window
func NewPanel(window fyne.Window, settings *config.Settings, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.Default()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	p := &Panel{
		window:         window,
		settings:       settings,
		localization:   localization,
		logger:         logger,
		reveal:         platform.OpenFileInManager,
		redraw:         rate.NewLimiter(rate.Every(ProgressRedrawInterval), 1),
		commands:       make(chan control.Command, CommandBuffer),
		done:           make(chan struct{}),
		selectedSource: -1,
		selectedJob:    -1,
		revealed:       make(map[string]bool),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	window.SetCloseIntercept(p.Close)

	p.setupUI()
	return p
}

func (p *Panel) setupUI() {
	p.createMenu()

	p.recordBtn = widget.NewButton("", p.onRecordClick)
	p.recordBtn.Importance = widget.HighImportance

	p.settingsBtn = widget.NewButton(IconSettings, p.onShowSettings)
	p.settingsBtn.Importance = widget.LowImportance

	p.sourcesLabel = widget.NewLabel("")
	p.sourcesLabel.TextStyle = fyne.TextStyle{Bold: true}

	p.sourceList = widget.NewList(
		func() int {
			p.mu.Lock()
			defer p.mu.Unlock()
			return len(p.sources)
		},
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			p.mu.Lock()
			var text string
			if id >= 0 && id < len(p.sources) {
				s := p.sources[id]
				text = "[" + s.Kind.String() + "] " + shortenURL(s.URL)
			}
			p.mu.Unlock()
			obj.(*widget.Label).SetText(text)
		},
	)
	p.sourceList.OnSelected = func(id widget.ListItemID) {
		p.mu.Lock()
		p.selectedSource = id
		p.mu.Unlock()
		p.updateButtons()
	}
	p.sourceList.OnUnselected = func(widget.ListItemID) {
		p.mu.Lock()
		p.selectedSource = -1
		p.mu.Unlock()
		p.updateButtons()
	}

	p.filenameEntry = widget.NewEntry()
	p.filenameEntry.SetText(p.settings.GetLastFilename())
	p.filenameEntry.OnSubmitted = func(string) { p.onEnqueueClick() }

	p.enqueueBtn = widget.NewButton("", p.onEnqueueClick)
	p.downloadNowBtn = widget.NewButton("", p.onDownloadNowClick)
	p.downloadNowBtn.Importance = widget.HighImportance

	p.queueLabel = widget.NewLabel("")
	p.queueLabel.TextStyle = fyne.TextStyle{Bold: true}

	p.queueList = widget.NewList(
		func() int {
			p.mu.Lock()
			defer p.mu.Unlock()
			return len(p.jobs)
		},
		func() fyne.CanvasObject { return NewJobRow(p.localization, p.onRevealFile) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			p.mu.Lock()
			if id < 0 || id >= len(p.jobs) {
				p.mu.Unlock()
				return
			}
			job := p.jobs[id]
			p.mu.Unlock()
			obj.(*JobRow).Update(id, job)
		},
	)
	p.queueList.OnSelected = func(id widget.ListItemID) {
		p.mu.Lock()
		p.selectedJob = id
		p.mu.Unlock()
		p.updateButtons()
	}
	p.queueList.OnUnselected = func(widget.ListItemID) {
		p.mu.Lock()
		p.selectedJob = -1
		p.mu.Unlock()
		p.updateButtons()
	}

	p.startBtn = widget.NewButton("", func() { p.send(control.Command{Kind: control.CmdProcessQueue}) })
	p.cancelBtn = widget.NewButton("", func() { p.send(control.Command{Kind: control.CmdCancel}) })
	p.haltBtn = widget.NewButton("", func() { p.send(control.Command{Kind: control.CmdHalt}) })
	p.removeBtn = widget.NewButton("", p.onRemoveClick)
	p.clearBtn = widget.NewButton("", func() { p.send(control.Command{Kind: control.CmdClear}) })
	p.cancelBtn.Importance = widget.WarningImportance
	p.haltBtn.Importance = widget.DangerImportance

	p.progressBar = widget.NewProgressBar()
	p.statsLabel = widget.NewLabel("")
	p.statsLabel.TextStyle = fyne.TextStyle{Monospace: true}
	p.statusLabel = widget.NewLabel("")
	p.statusLabel.Wrapping = fyne.TextWrapWord

	p.refreshTexts()
	p.updateButtons()

	top := container.NewBorder(nil, nil, p.settingsBtn, nil, p.recordBtn)
	sources := container.NewBorder(p.sourcesLabel, nil, nil, nil, container.NewGridWrap(fyne.NewSize(WindowWidth, ListMinHeight), p.sourceList))
	entryRow := container.NewBorder(nil, nil, nil, container.NewHBox(p.enqueueBtn, p.downloadNowBtn), p.filenameEntry)
	queueButtons := container.NewHBox(p.startBtn, p.cancelBtn, p.haltBtn, p.removeBtn, p.clearBtn)
	progress := container.NewVBox(p.progressBar, p.statsLabel)

	content := container.NewBorder(
		container.NewVBox(top, sources, entryRow, p.queueLabel),
		container.NewVBox(queueButtons, progress, widget.NewSeparator(), p.statusLabel),
		nil,
		nil,
		p.queueList,
	)
	p.window.SetContent(content)
}

func (p *Panel) createMenu() {
	settingsItem := fyne.NewMenuItem(p.localization.GetText(KeySettings), p.onShowSettings)

	languageMenu := fyne.NewMenu(p.localization.GetText(KeyLanguage))
	for code, name := range p.localization.GetAvailableLanguages() {
		langCode := code
		item := fyne.NewMenuItem(name, func() { p.onLanguageChange(langCode) })
		item.Checked = p.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	p.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(p.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (p *Panel) onLanguageChange(lang string) {
	p.localization.SetLanguage(lang)
	p.settings.SetLanguage(lang)
	p.refreshTexts()
	p.createMenu()
}

// refreshTexts sets every translatable widget text
func (p *Panel) refreshTexts() {
	l := p.localization
	p.window.SetTitle(l.GetText(KeyAppTitle))

	p.mu.Lock()
	recording := p.recording
	p.mu.Unlock()
	if recording {
		p.recordBtn.SetText(IconRecord + " " + l.GetText(KeyStopRecording))
	} else {
		p.recordBtn.SetText(l.GetText(KeyRecord))
	}

	p.sourcesLabel.SetText(l.GetText(KeySources))
	p.filenameEntry.SetPlaceHolder(l.GetText(KeyFilename))
	p.enqueueBtn.SetText(l.GetText(KeyEnqueue))
	p.downloadNowBtn.SetText(l.GetText(KeyDownloadNow))
	p.queueLabel.SetText(l.GetText(KeyQueue))
	p.startBtn.SetText(l.GetText(KeyStartQueue))
	p.cancelBtn.SetText(l.GetText(KeyCancelDownload))
	p.haltBtn.SetText(l.GetText(KeyHaltQueue))
	p.removeBtn.SetText(l.GetText(KeyRemove))
	p.clearBtn.SetText(l.GetText(KeyClear))
	if p.statusLabel.Text == "" {
		p.statusLabel.SetText(l.GetText(KeyIdle))
	}
	p.queueList.Refresh()
}

// updateButtons enables actions that make sense for the current selection
func (p *Panel) updateButtons() {
	p.mu.Lock()
	hasSource := p.selectedSource >= 0 && p.selectedSource < len(p.sources)
	hasJob := p.selectedJob >= 0 && p.selectedJob < len(p.jobs)
	hasJobs := len(p.jobs) > 0
	p.mu.Unlock()

	setEnabled(p.enqueueBtn, hasSource)
	setEnabled(p.downloadNowBtn, hasSource)
	setEnabled(p.removeBtn, hasJob)
	setEnabled(p.clearBtn, hasJobs)
	setEnabled(p.startBtn, hasJobs)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (p *Panel) onRecordClick() {
	p.mu.Lock()
	p.recording = !p.recording
	recording := p.recording
	p.mu.Unlock()

	if recording {
		p.send(control.Command{Kind: control.CmdStartCapture})
	} else {
		p.send(control.Command{Kind: control.CmdStopCapture})
	}
	p.refreshTexts()
}

// selection returns the URL of the selected source and the entered filename
func (p *Panel) selection() (string, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selectedSource < 0 || p.selectedSource >= len(p.sources) {
		return "", "", false
	}
	return p.sources[p.selectedSource].URL, strings.TrimSpace(p.filenameEntry.Text), true
}

func (p *Panel) onEnqueueClick() {
	p.submitSource(control.CmdEnqueue)
}

func (p *Panel) onDownloadNowClick() {
	p.submitSource(control.CmdDownloadNow)
}

func (p *Panel) submitSource(kind control.CommandKind) {
	url, filename, ok := p.selection()
	if !ok {
		p.statusLabel.SetText(p.localization.GetText(KeySelectSource))
		return
	}
	p.settings.SetLastFilename(filename)
	p.send(control.Command{Kind: kind, SourceURL: url, Filename: filename})
	p.filenameEntry.SetText("")
}

func (p *Panel) onRemoveClick() {
	p.mu.Lock()
	index := p.selectedJob
	valid := index >= 0 && index < len(p.jobs)
	p.mu.Unlock()

	if !valid {
		p.statusLabel.SetText(p.localization.GetText(KeySelectJob))
		return
	}
	p.send(control.Command{Kind: control.CmdRemove, Index: index})
	p.queueList.UnselectAll()
}

func (p *Panel) onShowSettings() {
	NewSettingsDialog(p.settings, p.localization, p.window).Show()
}

func (p *Panel) onRevealFile(path string) {
	if err := p.reveal(path); err != nil {
		p.logger.Warn("failed to reveal file", slog.String("path", path), slog.Any("error", err))
		dialog.ShowError(goerr.Wrap(err, p.localization.GetText(KeyErrorOpeningFile)), p.window)
	}
}

// send forwards a command to the controller. Commands are dropped, not
// blocked on, if the controller has fallen behind.
func (p *Panel) send(cmd control.Command) {
	select {
	case <-p.done:
		return
	default:
	}

	select {
	case p.commands <- cmd:
	default:
		p.logger.Warn("command dropped", slog.String("kind", cmd.Kind.String()))
	}
}

// Close asks the controller to shut down and closes the window
func (p *Panel) Close() {
	p.closeOnce.Do(func() {
		p.send(control.Command{Kind: control.CmdClose})
		close(p.done)
		p.window.Close()
	})
}

func (p *Panel) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Commands returns the stream of user actions
func (p *Panel) Commands() <-chan control.Command {
	return p.commands
}

// ShowSources replaces the list of found videos
func (p *Panel) ShowSources(sources []*model.StreamSource) error {
	if p.closed() {
		return ErrPanelClosed
	}

	p.mu.Lock()
	p.sources = append([]*model.StreamSource(nil), sources...)
	p.selectedSource = -1
	p.recording = false
	p.mu.Unlock()

	fyne.Do(func() {
		p.sourceList.UnselectAll()
		p.sourceList.Refresh()
		p.refreshTexts()
		p.updateButtons()
	})
	return nil
}

// ReportStatus shows a status line
func (p *Panel) ReportStatus(status string) error {
	if p.closed() {
		return ErrPanelClosed
	}
	fyne.Do(func() {
		p.statusLabel.SetText(status)
	})
	return nil
}

// ReportQueue replaces the queue view. Newly completed jobs are revealed in
// the file manager when the preference is on.
func (p *Panel) ReportQueue(jobs []model.Job) error {
	if p.closed() {
		return ErrPanelClosed
	}

	autoReveal := p.settings.GetAutoRevealOnComplete()
	var toReveal []string

	p.mu.Lock()
	p.jobs = append([]model.Job(nil), jobs...)
	if p.selectedJob >= len(p.jobs) {
		p.selectedJob = -1
	}
	for _, j := range p.jobs {
		if j.State != model.JobCompleted || j.OutputPath == "" || p.revealed[j.ID] {
			continue
		}
		p.revealed[j.ID] = true
		if autoReveal {
			toReveal = append(toReveal, j.OutputPath)
		}
	}
	p.mu.Unlock()

	fyne.Do(func() {
		p.queueList.Refresh()
		p.updateButtons()
	})

	for _, path := range toReveal {
		if err := p.reveal(path); err != nil {
			p.logger.Warn("failed to reveal file", slog.String("path", path), slog.Any("error", err))
		}
	}
	return nil
}

// ReportProgress shows the running job's progress. Intermediate updates
// are dropped when they arrive faster than ProgressRedrawInterval.
func (p *Panel) ReportProgress(snapshot model.ProgressSnapshot) error {
	if p.closed() {
		return ErrPanelClosed
	}
	final := snapshot.Message != "" || snapshot.Percent >= model.MaxPercent
	if !final && !p.redraw.Allow() {
		return nil
	}
	fyne.Do(func() {
		p.progressBar.SetValue(snapshot.Percent / model.MaxPercent)
		p.statsLabel.SetText(snapshot.Filename + "  " + snapshot.PercentLabel() + "  " + snapshot.StatsText())
	})
	return nil
}

// Alive reports ErrPanelClosed once the window has been closed
func (p *Panel) Alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.closed() {
		return ErrPanelClosed
	}
	return nil
}
