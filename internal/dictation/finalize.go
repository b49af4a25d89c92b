package dictation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voxhold/voxhold/internal/trim"
)

const transcribeTimeout = 60 * time.Second

// finalize runs the trim -> transcribe -> inject pipeline for a detached
// session. Every failure is converted into a log entry and a return to idle;
// nothing on this path may crash the controller or leave it finalizing.
func (c *Controller) finalize(sess *session, cause Cause) {
	trimmed, language, transcribed := c.process(sess)
	c.recordSession(sess, cause, trimmed, transcribed, language)

	c.mu.Lock()
	if c.state == StateFinalizing {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// process returns the trimmed sample count, the detected language, and
// whether a transcript was produced and injected.
func (c *Controller) process(sess *session) (int, string, bool) {
	samples := concat(sess.frames, sess.samples)

	if err := c.checkUsable(samples); err != nil {
		c.log.Info("session discarded", slog.String("session_id", sess.id), slog.String("reason", err.Error()))
		return 0, "", false
	}

	pad := trim.PadSamples(c.cfg.Recording.TrimPaddingMS, c.cfg.SampleRate)
	trimmed := trim.Silence(samples, c.cfg.Recording.SilenceThreshold, pad)
	c.log.Info("silence trimmed",
		slog.String("session_id", sess.id),
		slog.Int("samples", len(samples)),
		slog.Int("trimmed", len(trimmed)))

	ctx, cancel := context.WithTimeout(c.runCtx, transcribeTimeout)
	defer cancel()

	result, err := c.deps.Transcriber.Transcribe(ctx, trimmed, c.cfg.SampleRate, c.cfg.Language)
	if err != nil {
		c.log.Error("transcription failed", slog.String("session_id", sess.id), slog.String("error", err.Error()))
		c.metrics.transcriptionErrors(ctx)
		return len(trimmed), "", false
	}
	if result.Text == "" {
		c.log.Info("no speech detected", slog.String("session_id", sess.id))
		return len(trimmed), result.Language, false
	}
	if isHallucination(result.Text) {
		c.log.Warn("filtered model hallucination",
			slog.String("session_id", sess.id),
			slog.String("text", result.Text))
		return len(trimmed), result.Language, false
	}

	c.log.Info("transcribed",
		slog.String("session_id", sess.id),
		slog.String("language", result.Language),
		slog.Int("chars", len(result.Text)))
	c.metrics.transcribed(ctx)

	if c.deps.Notifier != nil {
		c.deps.Notifier.Transcript(sess.id, result.Text, result.Language)
	}

	if err := c.deps.Injector.Inject(ctx, result.Text); err != nil {
		c.log.Error("failed to inject text", slog.String("session_id", sess.id), slog.String("error", err.Error()))
		c.metrics.injectionErrors(ctx)
		return len(trimmed), result.Language, true
	}
	c.log.Info("text injected", slog.String("session_id", sess.id))
	return len(trimmed), result.Language, true
}

func (c *Controller) checkUsable(samples []float32) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no frames captured", ErrEmptyAudio)
	}
	minSamples := c.cfg.Recording.MinRecordingMS * c.cfg.SampleRate / 1000
	if len(samples) < minSamples {
		return fmt.Errorf("%w: recording too short", ErrEmptyAudio)
	}
	if trim.MeanAbs(samples) < c.cfg.Recording.LevelFloor {
		return fmt.Errorf("%w: audio level below floor", ErrEmptyAudio)
	}
	return nil
}

func concat(frames [][]float32, total int) []float32 {
	samples := make([]float32, 0, total)
	for _, frame := range frames {
		samples = append(samples, frame...)
	}
	return samples
}
