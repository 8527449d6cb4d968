package model

import "strings"

// Segment is one timed piece of transcribed text, times in seconds
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// CleanText returns the segment text without surrounding whitespace
func (s Segment) CleanText() string {
	return strings.TrimSpace(s.Text)
}

// Transcript is the result of transcribing one media file
type Transcript struct {
	Language            string
	LanguageProbability float64
	Segments            []Segment
}

// LastEnd returns the end time of the final segment, or 0 when empty
func (t *Transcript) LastEnd() float64 {
	if t == nil || len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}
