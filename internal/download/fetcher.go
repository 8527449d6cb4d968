package download

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// yt-dlp invocation constants
const (
	DefaultFetcherCommand = "yt-dlp"
	OutputTemplateSuffix  = ".%(ext)s"
	HeaderFlag            = "--add-header"
	RefererFlag           = "--referer"
	UserAgentFlag         = "--user-agent"
	OutputFlag            = "-o"
	NoInfoJSONFlag        = "--no-write-info-json"
	NoThumbnailFlag       = "--no-write-thumbnail"
	NewlineFlag           = "--newline"
	CookieHeaderName      = "Cookie"
	OriginHeaderName      = "Origin"
)

// TerminateWaitDelay bounds how long Wait blocks on output held open by
// processes that outlived the fetcher
const TerminateWaitDelay = 2 * time.Second

// ErrFetcherStart is returned when the fetcher process could not be spawned
var ErrFetcherStart = errors.New("failed to start stream fetcher")

// ExecFetcher runs yt-dlp (or a compatible binary) as a child process
type ExecFetcher struct {
	Command   string
	ExtraArgs []string
	Logger    *slog.Logger
}

// NewExecFetcher creates a fetcher for the given binary; an empty command
// means yt-dlp from PATH.
func NewExecFetcher(command string, logger *slog.Logger) *ExecFetcher {
	if command == "" {
		command = DefaultFetcherCommand
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecFetcher{Command: command, Logger: logger}
}

// BuildArgs builds the fetcher command arguments
func (f *ExecFetcher) BuildArgs(req Request) []string {
	args := make([]string, 0, 16)

	if req.Headers.Cookie != "" {
		args = append(args, HeaderFlag, CookieHeaderName+": "+req.Headers.Cookie)
	}
	if req.Headers.Referer != "" {
		args = append(args, RefererFlag, req.Headers.Referer)
	}
	if req.Headers.Origin != "" {
		args = append(args, HeaderFlag, OriginHeaderName+": "+req.Headers.Origin)
	}
	if req.Headers.UserAgent != "" {
		args = append(args, UserAgentFlag, req.Headers.UserAgent)
	}

	args = append(args,
		OutputFlag, OutputTemplate(req.OutputDir, req.Filename),
		NoInfoJSONFlag,
		NoThumbnailFlag,
		NewlineFlag, // one progress line per update
	)
	args = append(args, f.ExtraArgs...)

	return append(args, req.URL)
}

// OutputTemplate returns the fetcher output pattern "<dir>/<filename>.%(ext)s"
func OutputTemplate(dir, filename string) string {
	return filepath.Join(dir, filename) + OutputTemplateSuffix
}

// Start spawns the fetcher for req
func (f *ExecFetcher) Start(ctx context.Context, req Request) (Process, error) {
	args := f.BuildArgs(req)
	cmd := exec.CommandContext(ctx, f.Command, args...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessTree(cmd) }
	cmd.WaitDelay = TerminateWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, goerr.Wrap(ErrFetcherStart, "failed to create output pipe", goerr.V("cause", err.Error()))
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, goerr.Wrap(ErrFetcherStart, "failed to spawn fetcher",
			goerr.V("command", f.Command),
			goerr.V("cause", err.Error()),
		)
	}

	f.Logger.Debug("fetcher started",
		slog.String("command", f.Command),
		slog.Int("pid", cmd.Process.Pid),
		slog.String("url", req.URL),
		slog.Any("headers", req.Headers),
	)

	return &execProcess{cmd: cmd, out: stdout}, nil
}

type execProcess struct {
	cmd *exec.Cmd
	out io.ReadCloser

	closeOnce sync.Once
}

func (p *execProcess) Output() io.Reader {
	return p.out
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, goerr.Wrap(err, "failed to wait for fetcher")
}

// Terminate kills the fetcher with its children and closes the output so a
// blocked read returns even if a child still holds the pipe.
func (p *execProcess) Terminate() error {
	if p.cmd.Process == nil {
		return nil
	}
	killErr := killProcessTree(p.cmd)
	p.closeOnce.Do(func() { _ = p.out.Close() })
	if killErr != nil {
		return goerr.Wrap(killErr, "failed to terminate fetcher", goerr.V("pid", p.cmd.Process.Pid))
	}
	return nil
}
