package model

import (
	"fmt"
	"strings"
	"time"
)

// Progress stats rendering
const (
	StatsSeparator   = " | "
	StatsPlaceholder = "Downloading..."
	StatsCompleted   = "Completed!"
	MaxPercent       = 100.0
)

// Job is one queued download
type Job struct {
	ID         string
	Source     *StreamSource
	State      JobState
	LastError  string
	OutputPath string
	QueuedAt   time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Filename returns the user-assigned filename of the job's source
func (j *Job) Filename() string {
	if j == nil || j.Source == nil {
		return ""
	}
	return j.Source.Filename
}

// Clone returns a copy of the job safe to hand to presentation code
func (j *Job) Clone() Job {
	c := *j
	if j.Source != nil {
		src := *j.Source
		c.Source = &src
	}
	return c
}

// GetDisplayTitle returns filename or URL in order of preference
func (j *Job) GetDisplayTitle() string {
	if name := j.Filename(); name != "" {
		return name
	}
	if j.Source != nil {
		return j.Source.URL
	}
	return j.ID
}

// ProgressStats holds the optional fields decoded from a fetcher progress line
type ProgressStats struct {
	Speed string
	ETA   string
	Size  string
}

// IsZero reports whether no stat was decoded
func (s ProgressStats) IsZero() bool {
	return s == ProgressStats{}
}

// String renders the stats the way the panel shows them, e.g.
// "Speed: 1.2MiB/s | ETA: 00:07 | Size: 10MiB"
func (s ProgressStats) String() string {
	parts := make([]string, 0, 3)
	if s.Speed != "" {
		parts = append(parts, "Speed: "+s.Speed)
	}
	if s.ETA != "" {
		parts = append(parts, "ETA: "+s.ETA)
	}
	if s.Size != "" {
		parts = append(parts, "Size: "+s.Size)
	}
	if len(parts) == 0 {
		return StatsPlaceholder
	}
	return strings.Join(parts, StatsSeparator)
}

// ProgressUpdate is what the progress parser extracts from one line
type ProgressUpdate struct {
	Percent float64
	Stats   ProgressStats
}

// ProgressSnapshot is the live status of the running job
type ProgressSnapshot struct {
	JobID    string
	Filename string
	Percent  float64
	Stats    ProgressStats
	Message  string // overrides the rendered stats when set
}

// StatsText returns the free-text summary shown next to the progress bar
func (p ProgressSnapshot) StatsText() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Stats.String()
}

// PercentLabel returns the percent formatted for display
func (p ProgressSnapshot) PercentLabel() string {
	return fmt.Sprintf("%.1f%%", p.Percent)
}
