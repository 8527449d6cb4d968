package download

import "github.com/ytget/lecturegrab/internal/model"

// Captured header names
const (
	headerCookie    = "Cookie"
	headerReferer   = "Referer"
	headerOrigin    = "Origin"
	headerUserAgent = "User-Agent"
)

// HeadersFor merges the headers captured with source over the configured
// defaults. A configured cookie (from a cookies file) wins over a captured one.
func HeadersFor(source *model.StreamSource, defaults model.RequestHeaders) model.RequestHeaders {
	h := defaults
	if source == nil {
		return h
	}

	if h.Cookie == "" {
		h.Cookie = source.Header(headerCookie)
	}
	if v := source.Header(headerReferer); v != "" {
		h.Referer = v
	}
	if v := source.Header(headerOrigin); v != "" {
		h.Origin = v
	}
	if v := source.Header(headerUserAgent); v != "" {
		h.UserAgent = v
	}
	return h
}
