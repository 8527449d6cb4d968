// Package control connects a presentation surface to the capture session and
// the download queue. Every user action arrives as one Command on a channel
// and is handled exactly once; long-running queue work runs beside the
// command loop so Cancel and Halt stay responsive.
package control
