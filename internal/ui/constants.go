package ui

import (
	"time"

	"github.com/ytget/lecturegrab/internal/model"
)

// Window
const (
	AppID        = "be.kuleuven.lecturegrab"
	AppName      = "Lecture Grab"
	WindowWidth  = 760
	WindowHeight = 640
)

// State icons
const (
	IconSettings = "⚙"
	IconRecord   = "●"
	IconPending  = "⏳"
	IconRunning  = "▶"
	IconDone     = "✓"
	IconError    = "❌"
	IconStopped  = "⏹"
)

// Layout sizing
const (
	ListMinHeight     float32 = 140
	SourceURLMaxChars         = 90
	CommandBuffer             = 16

	ProgressRedrawInterval = 100 * time.Millisecond

	SettingsDialogWidth  float32 = 520
	SettingsDialogHeight float32 = 360
)

// stateIcon returns the icon shown before a job's state
func stateIcon(state model.JobState) string {
	switch state {
	case model.JobPending:
		return IconPending
	case model.JobRunning:
		return IconRunning
	case model.JobCompleted:
		return IconDone
	case model.JobFailed:
		return IconError
	case model.JobCancelled:
		return IconStopped
	default:
		return ""
	}
}
