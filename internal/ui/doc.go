// Package ui contains the Fyne desktop panel. The panel is the presentation
// surface of the controller: it turns button presses into control commands
// and renders the sources, queue, progress and status lines it is sent.
// All UI strings are localized via Localization.
package ui
