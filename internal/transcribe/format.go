package transcribe

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ytget/lecturegrab/internal/model"
)

// Output formats
const (
	ExtTXT = ".txt"
	ExtSRT = ".srt"
	ExtVTT = ".vtt"

	VTTHeader        = "WEBVTT"
	TXTTitlePrefix   = "Transcription of: "
	TXTRuleWidth     = 50
	TimestampArrow   = " --> "
	srtMillisSep     = ","
	vttMillisSep     = "."
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// OutputExtensions are written for every transcribed file
var OutputExtensions = []string{ExtTXT, ExtSRT, ExtVTT}

// FormatSRTTimestamp renders seconds as HH:MM:SS,mmm
func FormatSRTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, srtMillisSep)
}

// FormatVTTTimestamp renders seconds as HH:MM:SS.mmm
func FormatVTTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, vttMillisSep)
}

// formatTimestamp truncates to whole milliseconds
func formatTimestamp(t float64, sep string) string {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		t = 0
	}
	h := int(t / secondsPerHour)
	m := int(math.Mod(t, secondsPerHour) / secondsPerMinute)
	s := int(math.Mod(t, secondsPerMinute))
	ms := int((t - math.Trunc(t)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}

// WriteTXT writes the plain-text transcript: a title, a rule and one line
// per segment
func WriteTXT(w io.Writer, sourceName string, segments []model.Segment) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s%s\n", TXTTitlePrefix, sourceName)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", TXTRuleWidth))
	for _, s := range segments {
		fmt.Fprintf(bw, "%s\n", s.CleanText())
	}
	return bw.Flush()
}

// WriteSRT writes numbered SubRip cues
func WriteSRT(w io.Writer, segments []model.Segment) error {
	bw := bufio.NewWriter(w)
	for i, s := range segments {
		fmt.Fprintf(bw, "%d\n%s%s%s\n%s\n\n",
			i+1,
			FormatSRTTimestamp(s.Start), TimestampArrow, FormatSRTTimestamp(s.End),
			s.CleanText(),
		)
	}
	return bw.Flush()
}

// WriteVTT writes a WebVTT document
func WriteVTT(w io.Writer, segments []model.Segment) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n\n", VTTHeader)
	for _, s := range segments {
		fmt.Fprintf(bw, "%s%s%s\n%s\n\n",
			FormatVTTTimestamp(s.Start), TimestampArrow, FormatVTTTimestamp(s.End),
			s.CleanText(),
		)
	}
	return bw.Flush()
}
