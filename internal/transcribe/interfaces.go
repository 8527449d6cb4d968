package transcribe

import (
	"context"

	"github.com/ytget/lecturegrab/internal/model"
)

// Engine transcribes a 16 kHz mono WAV file. onSegment, when set, is called
// for every segment as soon as the engine reports it.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, onSegment func(model.Segment)) (*model.Transcript, error)
}

// Media prepares input for the engine
type Media interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error

	// Duration returns the media duration in seconds; ok is false when it
	// cannot be determined
	Duration(ctx context.Context, path string) (seconds float64, ok bool)
}
