package transcribe

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/model"
)

// Whisper CLI defaults
const (
	WhisperCommand   = "whisper"
	DefaultModel     = "medium"
	DefaultLanguage  = "nl"
	DefaultDevice    = "cuda"
	DefaultBeamSize  = 5
	WhisperTask      = "transcribe"
	WhisperOutFormat = "json"
	DetectedPrefix   = "Detected language:"
)

// ErrNoTranscript is returned when the engine exits without writing output
var ErrNoTranscript = errors.New("engine produced no transcript")

// "[00:01.000 --> 00:04.500]  text" and "[01:00:01.000 --> ...]"
var verboseSegment = regexp.MustCompile(`^\[([0-9:.]+) --> ([0-9:.]+)\]\s*(.*)$`)

// WhisperOptions configures the whisper CLI
type WhisperOptions struct {
	Command  string
	Model    string
	Language string // empty means autodetect
	Device   string
	BeamSize int
	WorkDir  string // where the JSON result is written
}

// WhisperEngine runs the openai-whisper command line tool
type WhisperEngine struct {
	opts   WhisperOptions
	logger *slog.Logger
}

// NewWhisperEngine creates an engine, filling in defaults
func NewWhisperEngine(opts WhisperOptions, logger *slog.Logger) *WhisperEngine {
	if opts.Command == "" {
		opts.Command = WhisperCommand
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Device == "" {
		opts.Device = DefaultDevice
	}
	if opts.BeamSize <= 0 {
		opts.BeamSize = DefaultBeamSize
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WhisperEngine{opts: opts, logger: logger}
}

// BuildArgs builds the whisper command arguments
func (e *WhisperEngine) BuildArgs(audioPath string) []string {
	args := []string{
		audioPath,
		"--model", e.opts.Model,
		"--device", e.opts.Device,
		"--task", WhisperTask,
		"--beam_size", strconv.Itoa(e.opts.BeamSize),
		"--output_format", WhisperOutFormat,
		"--output_dir", e.opts.WorkDir,
		"--verbose", "True",
	}
	if e.opts.Language != "" {
		args = append(args, "--language", e.opts.Language)
	}
	if e.opts.Device == "cpu" {
		args = append(args, "--fp16", "False")
	}
	return args
}

// Transcribe runs whisper on audioPath
func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath string, onSegment func(model.Segment)) (*model.Transcript, error) {
	cmd := exec.CommandContext(ctx, e.opts.Command, e.BuildArgs(audioPath)...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1") // segment lines as they are decoded
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create stdout pipe")
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, goerr.Wrap(err, "failed to start whisper", goerr.V("command", e.opts.Command))
	}

	var language string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if seg, ok := ParseVerboseSegment(line); ok {
			if onSegment != nil {
				onSegment(seg)
			}
			continue
		}
		if strings.HasPrefix(line, DetectedPrefix) {
			language = strings.TrimSpace(strings.TrimPrefix(line, DetectedPrefix))
			e.logger.Info("detected language", slog.String("language", language))
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, goerr.Wrap(err, "whisper failed", goerr.V("audio", audioPath))
	}

	resultPath := filepath.Join(e.opts.WorkDir, strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))+".json")
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, goerr.Wrap(ErrNoTranscript, "failed to read whisper output", goerr.V("path", resultPath))
	}
	defer os.Remove(resultPath)

	transcript, err := ParseWhisperJSON(data)
	if err != nil {
		return nil, err
	}
	if transcript.Language == "" {
		transcript.Language = language
	}
	return transcript, nil
}

type whisperResult struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// ParseWhisperJSON decodes the JSON file whisper writes with
// --output_format json
func ParseWhisperJSON(data []byte) (*model.Transcript, error) {
	var result whisperResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse whisper output")
	}

	t := &model.Transcript{
		Language: result.Language,
		Segments: make([]model.Segment, 0, len(result.Segments)),
	}
	for _, s := range result.Segments {
		t.Segments = append(t.Segments, model.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return t, nil
}

// ParseVerboseSegment decodes one segment line of whisper's verbose output
func ParseVerboseSegment(line string) (model.Segment, bool) {
	m := verboseSegment.FindStringSubmatch(line)
	if m == nil {
		return model.Segment{}, false
	}
	start, ok := parseClock(m[1])
	if !ok {
		return model.Segment{}, false
	}
	end, ok := parseClock(m[2])
	if !ok {
		return model.Segment{}, false
	}
	return model.Segment{Start: start, End: end, Text: m[3]}, true
}

// parseClock parses "ss.mmm", "mm:ss.mmm" or "hh:mm:ss.mmm" into seconds
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}
