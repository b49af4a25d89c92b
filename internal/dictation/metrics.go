package dictation

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	started     metric.Int64Counter
	ended       metric.Int64Counter
	watchdog    metric.Int64Counter
	transcripts metric.Int64Counter
	deviceErrs  metric.Int64Counter
	sttErrs     metric.Int64Counter
	injectErrs  metric.Int64Counter
}

func newMetrics(log *slog.Logger) metrics {
	meter := otel.Meter("github.com/voxhold/voxhold/dictation")
	var m metrics
	var err error
	if m.started, err = meter.Int64Counter("voxhold.sessions.started"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	if m.ended, err = meter.Int64Counter("voxhold.sessions.ended"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	if m.watchdog, err = meter.Int64Counter("voxhold.watchdog.fired"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	if m.transcripts, err = meter.Int64Counter("voxhold.transcriptions"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	if m.deviceErrs, err = meter.Int64Counter("voxhold.errors.device"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	if m.sttErrs, err = meter.Int64Counter("voxhold.errors.transcription"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	if m.injectErrs, err = meter.Int64Counter("voxhold.errors.injection"); err != nil {
		log.Warn("failed to create metric", slog.String("error", err.Error()))
	}
	return m
}

func (m metrics) sessionStarted(ctx context.Context) {
	if m.started != nil {
		m.started.Add(ctx, 1)
	}
}

func (m metrics) sessionEnded(ctx context.Context, cause Cause) {
	if m.ended != nil {
		m.ended.Add(ctx, 1, metric.WithAttributes(attribute.String("cause", string(cause))))
	}
}

func (m metrics) watchdogFired(ctx context.Context) {
	if m.watchdog != nil {
		m.watchdog.Add(ctx, 1)
	}
}

func (m metrics) transcribed(ctx context.Context) {
	if m.transcripts != nil {
		m.transcripts.Add(ctx, 1)
	}
}

func (m metrics) deviceErrors(ctx context.Context) {
	if m.deviceErrs != nil {
		m.deviceErrs.Add(ctx, 1)
	}
}

func (m metrics) transcriptionErrors(ctx context.Context) {
	if m.sttErrs != nil {
		m.sttErrs.Add(ctx, 1)
	}
}

func (m metrics) injectionErrors(ctx context.Context) {
	if m.injectErrs != nil {
		m.injectErrs.Add(ctx, 1)
	}
}
