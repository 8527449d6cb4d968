package transcribe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// FFmpeg constants for audio extraction
const (
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"

	AudioCodec      = "pcm_s16le"
	AudioSampleRate = "16000"
	AudioChannels   = "1"

	FFprobeLogLevel    = "error"
	FFprobePrintFormat = "json"
	AudioSuffix        = "_audio.wav"
)

// FFmpeg implements Media with the ffmpeg and ffprobe binaries
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpeg returns Media backed by ffmpeg/ffprobe from PATH
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{FFmpegPath: FFmpegCommand, FFprobePath: FFprobeCommand}
}

// BuildExtractArgs builds the ffmpeg command arguments
func BuildExtractArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn", // drop video
		"-acodec", AudioCodec,
		"-ar", AudioSampleRate,
		"-ac", AudioChannels,
		outputPath,
	}
}

// BuildProbeArgs builds the ffprobe command arguments
func BuildProbeArgs(path string) []string {
	return []string{
		"-v", FFprobeLogLevel,
		"-print_format", FFprobePrintFormat,
		"-show_format",
		"-show_streams",
		path,
	}
}

// ExtractAudio writes a 16 kHz mono WAV of inputPath to outputPath
func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath, BuildExtractArgs(inputPath, outputPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return goerr.Wrap(err, "ffmpeg failed",
			goerr.V("input", inputPath),
			goerr.V("output", tail(string(out), 500)),
		)
	}
	return nil
}

// Duration gets the duration of a media file using ffprobe
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, bool) {
	out, err := exec.CommandContext(ctx, f.FFprobePath, BuildProbeArgs(path)...).Output()
	if err != nil {
		return 0, false
	}
	return ParseProbeDuration(out)
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Duration string `json:"duration"`
	} `json:"streams"`
}

// ParseProbeDuration reads the duration from ffprobe JSON output, preferring
// the container duration over the first stream that has one
func ParseProbeDuration(data []byte) (float64, bool) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, false
	}

	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && d > 0 {
		return d, true
	}
	for _, st := range probe.Streams {
		if d, err := strconv.ParseFloat(st.Duration, 64); err == nil && d > 0 {
			return d, true
		}
	}
	return 0, false
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
