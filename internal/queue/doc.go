// Package queue keeps the ordered list of download jobs and processes it
// strictly one job at a time, reporting aggregate status to the panel.
package queue
