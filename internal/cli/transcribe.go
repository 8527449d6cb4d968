package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ytget/lecturegrab/internal/config"
	"github.com/ytget/lecturegrab/internal/transcribe"
)

// Transcription modes
const (
	ModeBatch = "batch"
	ModeWatch = "watch"

	// LanguageAuto lets the engine detect the spoken language
	LanguageAuto = "auto"

	summaryRule = 50
)

type transcribeOptions struct {
	input    string
	output   string
	cache    string
	model    string
	language string
	device   string
	mode     string
	yes      bool
}

func (o *transcribeOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Directory with video files",
			Destination: &o.input,
			Sources:     cli.EnvVars(config.EnvPrefix + "TRANSCRIBE_INPUT"),
		},
		&cli.StringFlag{
			Name:        "transcripts",
			Aliases:     []string{"t"},
			Usage:       "Directory transcripts are written to",
			Destination: &o.output,
			Sources:     cli.EnvVars(config.EnvPrefix + "TRANSCRIBE_OUTPUT"),
		},
		&cli.StringFlag{
			Name:        "cache",
			Usage:       "Directory for extracted audio",
			Destination: &o.cache,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Speech model name (tiny, base, small, medium, large)",
			Destination: &o.model,
			Sources:     cli.EnvVars(config.EnvPrefix + "MODEL"),
		},
		&cli.StringFlag{
			Name:        "language",
			Usage:       "Spoken language code, or auto",
			Destination: &o.language,
			Sources:     cli.EnvVars(config.EnvPrefix + "LANGUAGE"),
		},
		&cli.StringFlag{
			Name:        "device",
			Usage:       "Compute device (cuda or cpu)",
			Destination: &o.device,
			Sources:     cli.EnvVars(config.EnvPrefix + "DEVICE"),
		},
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "batch: transcribe existing files; watch: transcribe new files as they appear",
			Value:       ModeBatch,
			Destination: &o.mode,
		},
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Do not ask for confirmation in batch mode",
			Destination: &o.yes,
		},
	}
}

// apply copies the flags that were set over cfg
func (o *transcribeOptions) apply(cfg *config.File) {
	if o.input != "" {
		cfg.Transcribe.InputDir = o.input
	}
	if o.output != "" {
		cfg.Transcribe.OutputDir = o.output
	}
	if o.cache != "" {
		cfg.Transcribe.CacheDir = o.cache
	}
	if o.model != "" {
		cfg.Transcribe.Model = o.model
	}
	if o.language != "" {
		cfg.Transcribe.Language = o.language
	}
	if o.device != "" {
		cfg.Transcribe.Device = o.device
	}
}

func cmdTranscribe(rt *runtime) *cli.Command {
	var opts transcribeOptions

	return &cli.Command{
		Name:    "transcribe",
		Aliases: []string{"t"},
		Usage:   "Transcribe downloaded lectures to TXT, SRT and VTT",
		Flags:   opts.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			opts.apply(&rt.cfg)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			switch opts.mode {
			case ModeBatch:
				return runBatch(ctx, rt, opts.yes)
			case ModeWatch:
				return newTranscriber(rt).Watch(ctx)
			default:
				return goerr.New("unknown transcription mode", goerr.V("mode", opts.mode))
			}
		},
	}
}

func newTranscriber(rt *runtime) *transcribe.Service {
	cfg := rt.cfg.Transcribe

	language := cfg.Language
	if strings.EqualFold(language, LanguageAuto) {
		language = ""
	}

	engine := transcribe.NewWhisperEngine(transcribe.WhisperOptions{
		Command:  cfg.Command,
		Model:    cfg.Model,
		Language: language,
		Device:   cfg.Device,
		WorkDir:  cfg.CacheDir,
	}, rt.logger)
	media := &transcribe.FFmpeg{FFmpegPath: cfg.FFmpeg, FFprobePath: cfg.FFprobe}

	return transcribe.NewService(engine, media, transcribe.Options{
		InputDir:       cfg.InputDir,
		OutputDir:      cfg.OutputDir,
		CacheDir:       cfg.CacheDir,
		StableInterval: rt.cfg.StableInterval(),
	}, rt.out, rt.logger)
}

// runBatch transcribes every video in the input directory
func runBatch(ctx context.Context, rt *runtime, yes bool) error {
	svc := newTranscriber(rt)
	opts := svc.Options()

	files, err := transcribe.VideoFiles(opts.InputDir)
	if errors.Is(err, transcribe.ErrInputDirMissing) {
		color.New(color.FgRed).Fprintf(rt.out, "Input directory does not exist: %s\n", opts.InputDir)
		return err
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.New(color.FgYellow).Fprintf(rt.out, "No video files found in %s\n", opts.InputDir)
		return nil
	}

	fmt.Fprintf(rt.out, "Found %d video file(s):\n", len(files))
	for _, f := range files {
		fmt.Fprintf(rt.out, "  - %s\n", filepath.Base(f))
	}

	if !yes && !confirm(rt.in, rt.out, "\nProceed with transcription? (y/N): ") {
		fmt.Fprintln(rt.out, "Cancelled.")
		return nil
	}

	summary := svc.RunBatch(ctx, files)
	printSummary(rt.out, summary, opts.OutputDir)
	return nil
}

// confirm asks a yes/no question; anything but y or yes is no
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printSummary(out io.Writer, s transcribe.Summary, outputDir string) {
	rule := strings.Repeat("=", summaryRule)
	fmt.Fprintf(out, "\n%s\nTranscription complete!\n", rule)
	color.New(color.FgGreen).Fprintf(out, "✓ Successful: %d", s.Successful)
	if s.Skipped > 0 {
		fmt.Fprintf(out, " (%d already transcribed)", s.Skipped)
	}
	fmt.Fprintln(out)
	if s.Failed > 0 {
		color.New(color.FgRed).Fprintf(out, "✗ Failed: %d\n", s.Failed)
		for _, f := range s.Failures {
			fmt.Fprintf(out, "    %s\n", filepath.Base(f))
		}
	}
	fmt.Fprintf(out, "Total time: %s\n", s.Elapsed.Round(time.Second))
	fmt.Fprintf(out, "Output: %s\n%s\n", outputDir, rule)
}
