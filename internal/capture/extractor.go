package capture

import (
	"strings"

	"github.com/ytget/lecturegrab/internal/model"
)

// Default substring markers, matched case-insensitively
const (
	DefaultManifestMarker = ".m3u8"
	DefaultProviderMarker = "kaltura"
	DefaultDirectMarker   = "serveflavor"
)

// Markers selects and classifies stream URLs
type Markers struct {
	Manifest string // file extension marker a candidate URL must contain
	Provider string // provider domain marker a candidate URL must contain
	Direct   string // marks a URL as a direct asset rather than a manifest
}

// DefaultMarkers returns the markers for the Kaltura-backed portal
func DefaultMarkers() Markers {
	return Markers{
		Manifest: DefaultManifestMarker,
		Provider: DefaultProviderMarker,
		Direct:   DefaultDirectMarker,
	}
}

// Matches reports whether url carries both the manifest and provider markers
func (m Markers) Matches(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	return strings.Contains(lower, strings.ToLower(m.Manifest)) &&
		strings.Contains(lower, strings.ToLower(m.Provider))
}

// Extract selects the records whose URL matches the markers and returns them
// as candidates in encounter order. Records without a URL are skipped.
func Extract(records []model.NetworkRecord, markers Markers) []model.StreamCandidate {
	candidates := make([]model.StreamCandidate, 0)
	for _, rec := range records {
		if !markers.Matches(rec.URL) {
			continue
		}
		candidates = append(candidates, model.StreamCandidate{
			URL:     rec.URL,
			Headers: copyHeaders(rec.Headers),
		})
	}
	return candidates
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
