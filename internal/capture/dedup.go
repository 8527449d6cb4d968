package capture

import (
	"strings"

	"github.com/ytget/lecturegrab/internal/model"
)

// Classify tags url as Direct when it contains the direct-asset marker and as
// Manifest otherwise. Headers never influence the result.
func Classify(url string, markers Markers) model.SourceKind {
	if markers.Direct != "" && strings.Contains(strings.ToLower(url), strings.ToLower(markers.Direct)) {
		return model.SourceDirect
	}
	return model.SourceManifest
}

// Deduplicate collapses candidates into one source per distinct URL. The first
// occurrence wins for headers and output keeps first-seen order.
func Deduplicate(candidates []model.StreamCandidate, markers Markers) []*model.StreamSource {
	sources := make([]*model.StreamSource, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, c := range candidates {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}

		sources = append(sources, &model.StreamSource{
			URL:     c.URL,
			Headers: c.Headers,
			Kind:    Classify(c.URL, markers),
		})
	}
	return sources
}

// Sources runs extraction and deduplication over one capture batch
func Sources(records []model.NetworkRecord, markers Markers) []*model.StreamSource {
	return Deduplicate(Extract(records, markers), markers)
}
