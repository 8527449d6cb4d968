package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/ytget/lecturegrab/internal/model"
)

// console reports queue and download progress to a terminal
type console struct {
	out io.Writer

	mu       sync.Mutex
	inLine   bool
	lastName string
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

// endLine terminates an in-place progress line
func (c *console) endLine() {
	if c.inLine {
		fmt.Fprintln(c.out)
		c.inLine = false
	}
}

// ReportStatus prints a status line
func (c *console) ReportStatus(status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	_, err := color.New(color.FgCyan).Fprintln(c.out, status)
	return err
}

// ReportQueue does nothing; final states are printed by printJobs
func (c *console) ReportQueue(jobs []model.Job) error {
	return nil
}

// ReportProgress rewrites the current progress line
func (c *console) ReportProgress(snapshot model.ProgressSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inLine && snapshot.Filename != c.lastName {
		c.endLine()
	}
	c.lastName = snapshot.Filename

	_, err := fmt.Fprintf(c.out, "\r%s %7s  %s\033[K", snapshot.Filename, snapshot.PercentLabel(), snapshot.StatsText())
	c.inLine = true
	if snapshot.Message != "" {
		c.endLine()
	}
	return err
}

// printJobs prints the final state of every job
func (c *console) printJobs(jobs []model.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()

	for i, j := range jobs {
		line := fmt.Sprintf("%2d. %-40s %s", i+1, j.GetDisplayTitle(), j.State)
		switch j.State {
		case model.JobCompleted:
			color.New(color.FgGreen).Fprintf(c.out, "%s  %s\n", line, j.OutputPath)
		case model.JobFailed:
			color.New(color.FgRed).Fprintf(c.out, "%s  %s\n", line, j.LastError)
		default:
			color.New(color.FgYellow).Fprintln(c.out, line)
		}
	}
}
