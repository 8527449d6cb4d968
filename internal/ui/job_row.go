package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/lecturegrab/internal/model"
)

// JobRow renders one queued download: position, filename, state and a
// reveal button once the file is on disk
type JobRow struct {
	widget.BaseWidget

	job          model.Job
	index        int
	localization *Localization

	titleLabel  *widget.Label
	statusLabel *widget.Label
	detailLabel *widget.Label
	revealBtn   *widget.Button

	onReveal func(path string)
}

// NewJobRow creates an empty row; list items are filled in with Update
func NewJobRow(localization *Localization, onReveal func(path string)) *JobRow {
	r := &JobRow{localization: localization, onReveal: onReveal}
	r.ExtendBaseWidget(r)
	r.createUI()
	return r
}

func (r *JobRow) createUI() {
	r.titleLabel = widget.NewLabel("")
	r.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	r.titleLabel.Truncation = fyne.TextTruncateEllipsis

	r.statusLabel = widget.NewLabel("")
	r.statusLabel.Alignment = fyne.TextAlignTrailing

	r.detailLabel = widget.NewLabel("")
	r.detailLabel.TextStyle = fyne.TextStyle{Monospace: true}
	r.detailLabel.Truncation = fyne.TextTruncateEllipsis

	r.revealBtn = widget.NewButton(r.localization.GetText(KeyReveal), func() {
		if r.onReveal != nil && r.job.OutputPath != "" {
			r.onReveal(r.job.OutputPath)
		}
	})
	r.revealBtn.Importance = widget.LowImportance
}

// Update shows job at position index (zero-based)
func (r *JobRow) Update(index int, job model.Job) {
	r.index = index
	r.job = job

	r.titleLabel.SetText(fmt.Sprintf("%d. %s", index+1, cleanText(job.GetDisplayTitle())))

	switch job.State {
	case model.JobFailed:
		r.statusLabel.Importance = widget.DangerImportance
	case model.JobCompleted:
		r.statusLabel.Importance = widget.SuccessImportance
	case model.JobRunning:
		r.statusLabel.Importance = widget.HighImportance
	default:
		r.statusLabel.Importance = widget.MediumImportance
	}
	r.statusLabel.SetText(strings.TrimSpace(stateIcon(job.State) + " " + job.State.String()))

	switch {
	case job.State == model.JobFailed && job.LastError != "":
		r.detailLabel.SetText(cleanText(job.LastError))
	case job.OutputPath != "":
		r.detailLabel.SetText(job.OutputPath)
	default:
		r.detailLabel.SetText("")
	}

	if job.State == model.JobCompleted && job.OutputPath != "" {
		r.revealBtn.Enable()
	} else {
		r.revealBtn.Disable()
	}
}

// CreateRenderer creates the widget renderer
func (r *JobRow) CreateRenderer() fyne.WidgetRenderer {
	top := container.NewBorder(nil, nil, nil, container.NewHBox(r.statusLabel, r.revealBtn), r.titleLabel)
	return widget.NewSimpleRenderer(container.NewVBox(top, r.detailLabel))
}

// cleanText keeps list rows on one line
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

// shortenURL trims long stream URLs for the sources list
func shortenURL(url string) string {
	if len(url) <= SourceURLMaxChars {
		return url
	}
	return url[:SourceURLMaxChars-3] + "..."
}
