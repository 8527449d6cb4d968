package model

// Package model defines domain data structures shared across the app: captured
// network records, stream sources, queued jobs, progress snapshots, and
// transcription segments. Structures are plain values with explicit state
// transitions so they can be rendered by any presentation surface.
