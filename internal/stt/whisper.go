package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/voxhold/voxhold/internal/config"
)

// whisperTranscriber runs whisper.cpp in-process. The model is loaded once at
// startup and held for the daemon's lifetime; a load failure is the one fatal
// resource error the daemon has. Calls are serialized: whisper contexts are
// not safe for concurrent use and dictation produces one clip at a time anyway.
type whisperTranscriber struct {
	model whisper.Model
	log   *slog.Logger
	mu    sync.Mutex
}

func NewWhisperTranscriber(cfg config.STTConfig, sampleRate int, log *slog.Logger) (Transcriber, error) {
	if sampleRate != whisper.SampleRate {
		return nil, fmt.Errorf("whisper requires %d Hz input, configured %d", whisper.SampleRate, sampleRate)
	}
	model, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %s: %w", cfg.ModelPath, err)
	}
	log.Info("whisper model loaded", slog.String("path", cfg.ModelPath))
	return &whisperTranscriber{
		model: model,
		log:   log.With(slog.String("component", "whisper")),
	}, nil
}

func (t *whisperTranscriber) Transcribe(ctx context.Context, samples []float32, _ int, language string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("%w: new context: %v", ErrTranscription, err)
	}

	if language == "" {
		language = "auto"
	}
	if err := wctx.SetLanguage(language); err != nil {
		return Result{}, fmt.Errorf("%w: set language %q: %v", ErrTranscription, language, err)
	}
	wctx.SetTranslate(false)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Result{}, fmt.Errorf("%w: read segment: %v", ErrTranscription, err)
			}
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(segment.Text))
	}

	detected := language
	if language == "auto" {
		detected = wctx.DetectedLanguage()
	}
	return Result{Text: strings.TrimSpace(sb.String()), Language: detected}, nil
}

func (t *whisperTranscriber) Close() error {
	return t.model.Close()
}
