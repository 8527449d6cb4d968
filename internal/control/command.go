package control

import (
	"context"

	"github.com/ytget/lecturegrab/internal/model"
)

// CommandKind identifies a user action
type CommandKind string

const (
	CmdStartCapture CommandKind = "start_capture"
	CmdStopCapture  CommandKind = "stop_capture"
	CmdEnqueue      CommandKind = "enqueue"
	CmdDownloadNow  CommandKind = "download_now"
	CmdProcessQueue CommandKind = "process_queue"
	CmdCancel       CommandKind = "cancel"
	CmdHalt         CommandKind = "halt"
	CmdRemove       CommandKind = "remove"
	CmdClear        CommandKind = "clear"
	CmdClose        CommandKind = "close"
)

// String returns the string representation of CommandKind
func (k CommandKind) String() string {
	return string(k)
}

// Command is one user action. SourceURL and Filename are used by Enqueue and
// DownloadNow, Index by Remove.
type Command struct {
	Kind      CommandKind
	SourceURL string
	Filename  string
	Index     int
}

// Surface is the presentation side: it emits commands and shows what the
// controller reports. Any error returned by a Surface method is fatal.
type Surface interface {
	Commands() <-chan Command
	ShowSources(sources []*model.StreamSource) error
	ReportStatus(status string) error
	ReportQueue(jobs []model.Job) error
	ReportProgress(snapshot model.ProgressSnapshot) error

	// Alive reports an error once the surface has gone away
	Alive(ctx context.Context) error
}
