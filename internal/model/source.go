package model

import "strings"

// Direction tells whether a network record was observed on the request or the
// response side of an exchange
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// NetworkRecord is one observed network event from a capture session
type NetworkRecord struct {
	URL       string
	Headers   map[string]string
	Direction Direction
}

// StreamCandidate is a manifest-looking URL pulled out of a NetworkRecord
type StreamCandidate struct {
	URL     string
	Headers map[string]string
}

// SourceKind classifies a deduplicated stream source
type SourceKind string

const (
	// SourceManifest is an adaptive playlist (HLS .m3u8)
	SourceManifest SourceKind = "Manifest"

	// SourceDirect is a single media asset served as-is
	SourceDirect SourceKind = "Direct"
)

// String returns the string representation of SourceKind
func (k SourceKind) String() string {
	return string(k)
}

// StreamSource is a unique, user-facing stream found during one capture
type StreamSource struct {
	ID       string // assigned when queued
	URL      string
	Headers  map[string]string
	Kind     SourceKind
	Filename string // chosen by the user, without extension
}

// Header returns the value of the captured header with the given name,
// matched case-insensitively
func (s *StreamSource) Header(name string) string {
	for k, v := range s.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// RequestHeaders are the HTTP headers the stream fetcher must send. Empty
// fields are omitted from the fetcher invocation.
type RequestHeaders struct {
	Cookie    string
	Referer   string
	Origin    string
	UserAgent string
}

// IsZero reports whether no header is set
func (h RequestHeaders) IsZero() bool {
	return h == RequestHeaders{}
}
