package stt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voxhold/voxhold/internal/config"
)

// ErrTranscription marks a failed model invocation. The controller logs it
// and returns to idle; it never propagates out of the finalize path.
var ErrTranscription = errors.New("transcription failed")

// Result is the immutable output of one transcription call.
type Result struct {
	Text     string
	Language string
}

// Transcriber abstracts the speech-to-text engine. Implementations are
// loaded once and reused for many calls; a call may take seconds and must
// therefore never run under the controller's lock.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (Result, error)
}

// New builds the configured backend.
func New(cfg config.STTConfig, sampleRate int, log *slog.Logger) (Transcriber, error) {
	switch cfg.Mode {
	case "whisper":
		return NewWhisperTranscriber(cfg, sampleRate, log)
	case "exec":
		return NewExecTranscriber(cfg)
	case "mock":
		return NewMockTranscriber(), nil
	default:
		return nil, fmt.Errorf("unknown stt mode %q", cfg.Mode)
	}
}
