package platform

// Package platform contains OS/platform integration and external tooling glue:
// yt-dlp output parsing, partial download cleanup, cookie files, filesystem
// helpers, and OS open/reveal.
