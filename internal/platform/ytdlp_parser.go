package platform

import (
	"math"
	"strconv"
	"strings"

	"github.com/ytget/lecturegrab/internal/model"
)

// yt-dlp progress line tokens
const (
	ProgressMarker = "[download]"
	PercentSign    = "%"
	SpeedToken     = "at"
	ETAToken       = "ETA"
	SizeToken      = "of"
	EstimateToken  = "~"
)

// ParseProgress decodes one line of yt-dlp output such as
//
//	[download]  42.5% of 10MiB at 1.2MiB/s ETA 00:07
//
// It reports false for lines without progress information, including
// qualifying lines whose percent token is not a number.
func ParseProgress(line string) (model.ProgressUpdate, bool) {
	if !strings.Contains(line, ProgressMarker) || !strings.Contains(line, PercentSign) {
		return model.ProgressUpdate{}, false
	}

	parts := strings.Fields(line)

	var percentToken string
	for _, part := range parts {
		if strings.Contains(part, PercentSign) {
			percentToken = part
			break
		}
	}

	percent, err := strconv.ParseFloat(strings.ReplaceAll(percentToken, PercentSign, ""), 64)
	if err != nil || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return model.ProgressUpdate{}, false
	}
	percent = math.Max(0, math.Min(model.MaxPercent, percent))

	return model.ProgressUpdate{
		Percent: percent,
		Stats: model.ProgressStats{
			Speed: valueAfter(parts, SpeedToken),
			ETA:   valueAfter(parts, ETAToken),
			Size:  sizeAfter(parts),
		},
	}, true
}

// valueAfter returns the token following the first occurrence of marker
func valueAfter(parts []string, marker string) string {
	for i, part := range parts {
		if part == marker {
			if i+1 < len(parts) {
				return parts[i+1]
			}
			return ""
		}
	}
	return ""
}

// sizeAfter handles yt-dlp's estimated sizes, printed as "of ~ 200MiB"
func sizeAfter(parts []string) string {
	size := valueAfter(parts, SizeToken)
	if size != EstimateToken {
		return size
	}
	for i, part := range parts {
		if part == SizeToken {
			if i+2 < len(parts) {
				return EstimateToken + parts[i+2]
			}
			break
		}
	}
	return size
}
