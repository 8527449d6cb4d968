package capture

// Package capture turns noisy captured browser network traffic into a clean
// list of stream sources: it decodes performance-log entries into network
// records, keeps the ones that look like provider manifests, and collapses them
// into unique, classified sources ready to be queued.
