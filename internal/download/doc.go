// Package download drives the external stream fetcher (yt-dlp) for a single
// queued job. It builds the fetcher invocation, streams the combined output
// through the progress parser, honours cooperative cancellation at line
// granularity and removes partial artifacts when a job does not complete.
package download
