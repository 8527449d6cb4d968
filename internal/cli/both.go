package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func cmdBoth(rt *runtime) *cli.Command {
	var (
		dlOpts downloadOptions
		trOpts transcribeOptions
	)

	flags := dlOpts.flags()
	for _, f := range trOpts.flags() {
		switch f.Names()[0] {
		case "input", "mode", "yes":
			// input is the download directory; both always runs one batch
			continue
		}
		flags = append(flags, f)
	}

	return &cli.Command{
		Name:  "both",
		Usage: "Download every captured video, then transcribe the downloads",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dlOpts.apply(&rt.cfg)
			trOpts.apply(&rt.cfg)
			rt.cfg.Transcribe.InputDir = rt.cfg.Download.Dir

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := runDownload(ctx, rt, dlOpts); err != nil {
				return err
			}
			if ctx.Err() != nil || dlOpts.list {
				return nil
			}
			return runBatch(ctx, rt, true)
		},
	}
}
