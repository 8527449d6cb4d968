package model

import "testing"

func TestProgressStats_String(t *testing.T) {
	tests := []struct {
		name     string
		stats    ProgressStats
		expected string
	}{
		{"all fields", ProgressStats{Speed: "1.2MiB/s", ETA: "00:07", Size: "10MiB"}, "Speed: 1.2MiB/s | ETA: 00:07 | Size: 10MiB"},
		{"speed only", ProgressStats{Speed: "1.2MiB/s"}, "Speed: 1.2MiB/s"},
		{"eta and size", ProgressStats{ETA: "00:07", Size: "10MiB"}, "ETA: 00:07 | Size: 10MiB"},
		{"empty", ProgressStats{}, StatsPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestProgressSnapshot_StatsText(t *testing.T) {
	snap := ProgressSnapshot{Percent: 100, Stats: ProgressStats{Speed: "1MiB/s"}, Message: StatsCompleted}
	if got := snap.StatsText(); got != StatsCompleted {
		t.Errorf("StatsText() = %q, expected %q", got, StatsCompleted)
	}

	snap.Message = ""
	if got := snap.StatsText(); got != "Speed: 1MiB/s" {
		t.Errorf("StatsText() = %q, expected stats rendering", got)
	}

	if got := snap.PercentLabel(); got != "100.0%" {
		t.Errorf("PercentLabel() = %q, expected 100.0%%", got)
	}
}

func TestJob_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		job      *Job
		expected string
	}{
		{&Job{ID: "job-1", Source: &StreamSource{URL: "https://a/b.m3u8", Filename: "lecture-01"}}, "lecture-01"},
		{&Job{ID: "job-2", Source: &StreamSource{URL: "https://a/b.m3u8"}}, "https://a/b.m3u8"},
		{&Job{ID: "job-3"}, "job-3"},
	}

	for _, test := range tests {
		if got := test.job.GetDisplayTitle(); got != test.expected {
			t.Errorf("GetDisplayTitle() = %q, expected %q", got, test.expected)
		}
	}
}

func TestJob_Clone(t *testing.T) {
	job := &Job{ID: "job-1", State: JobPending, Source: &StreamSource{Filename: "a"}}
	clone := job.Clone()
	clone.Source.Filename = "b"
	clone.State = JobFailed

	if job.Source.Filename != "a" {
		t.Errorf("Clone shares source with original: %q", job.Source.Filename)
	}
	if job.State != JobPending {
		t.Errorf("Clone shares state with original: %s", job.State)
	}
}

func TestStreamSource_Header(t *testing.T) {
	src := &StreamSource{Headers: map[string]string{"Referer": "https://portal"}}
	if got := src.Header("referer"); got != "https://portal" {
		t.Errorf("Header(referer) = %q", got)
	}
	if got := src.Header("origin"); got != "" {
		t.Errorf("Header(origin) = %q, expected empty", got)
	}
}

func TestTranscript_LastEnd(t *testing.T) {
	var empty *Transcript
	if empty.LastEnd() != 0 {
		t.Error("nil transcript should report 0")
	}
	tr := &Transcript{Segments: []Segment{{Start: 0, End: 1.5}, {Start: 1.5, End: 4.25}}}
	if tr.LastEnd() != 4.25 {
		t.Errorf("LastEnd() = %v, expected 4.25", tr.LastEnd())
	}
}
