// Package runtime assembles the daemon: telemetry, session history, the
// optional event bus, the audio/STT/injection pipeline, and the dictation
// controller, with one ordered teardown path.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voxhold/voxhold/internal/audio"
	"github.com/voxhold/voxhold/internal/bus"
	"github.com/voxhold/voxhold/internal/config"
	"github.com/voxhold/voxhold/internal/dictation"
	"github.com/voxhold/voxhold/internal/history"
	"github.com/voxhold/voxhold/internal/hotkey"
	"github.com/voxhold/voxhold/internal/inject"
	"github.com/voxhold/voxhold/internal/natsserver"
	"github.com/voxhold/voxhold/internal/stt"
)

type Runtime struct {
	cfg         config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	tracerClose func(context.Context) error
	ready       atomic.Bool
	wg          sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

// Start brings every component up, runs until ctx is cancelled, and tears
// down in reverse order: hotkey source first so no new session can start,
// then the controller so the microphone is released, then the rest.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	store, err := history.Open(ctx, r.cfg.History, r.logger.With(slog.String("component", "history")))
	if err != nil {
		return fmt.Errorf("failed to open session history: %w", err)
	}
	defer store.Close()

	var (
		embedded  *natsserver.EmbeddedServer
		busClient *bus.Client
		notifier  dictation.Notifier
	)
	if r.cfg.Bus.Enabled {
		embedded, err = natsserver.Start(r.cfg.Bus, r.logger)
		if err != nil {
			return fmt.Errorf("failed to start embedded bus: %w", err)
		}
		defer embedded.Shutdown()

		busCfg := r.cfg.Bus
		if embedded != nil {
			busCfg.Servers = []string{fmt.Sprintf("nats://127.0.0.1:%d", busCfg.Port)}
		}
		busClient, err = bus.Connect(busCfg, r.logger.With(slog.String("component", "bus")))
		if err != nil {
			return fmt.Errorf("failed to connect to bus: %w", err)
		}
		defer busClient.Close()
		notifier = newBusNotifier(busClient, r.logger)
	}

	capture, err := buildCapture(r.cfg.Audio, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build audio capture: %w", err)
	}

	transcriber, err := stt.New(r.cfg.STT, r.cfg.Audio.SampleRate, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build transcriber: %w", err)
	}

	injector, err := inject.NewExecInjector(r.cfg.Inject, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build injector: %w", err)
	}

	source, err := hotkey.NewComboSource(r.cfg.Hotkey, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build hotkey source: %w", err)
	}
	if err := source.Start(ctx); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}

	controller := dictation.New(dictation.Config{
		Recording:  r.cfg.Recording,
		Watchdog:   r.cfg.Watchdog,
		SampleRate: r.cfg.Audio.SampleRate,
		Language:   r.cfg.STT.Language,
	}, dictation.Deps{
		Capture:     capture,
		Transcriber: transcriber,
		Injector:    injector,
		Source:      source,
		History:     store,
		Notifier:    notifier,
		Logger:      r.logger,
	})

	controllerDone := make(chan struct{})
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(controllerDone)
		if err := controller.Run(ctx); err != nil {
			r.logger.Error("dictation controller failed", slog.String("error", err.Error()))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if metricHandler != nil {
		mux.Handle("/metrics", metricHandler)
	}

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("daemon started",
		slog.String("addr", addr),
		slog.String("hotkey", r.cfg.Hotkey.Modifier+"+"+r.cfg.Hotkey.Key),
		slog.String("stt_mode", r.cfg.STT.Mode))

	<-ctx.Done()
	r.ready.Store(false)
	r.logger.Info("daemon stopping")

	// No new sessions: unregister the hotkey, then wait for the controller to
	// stop the stream and drain any in-flight finalization.
	source.Stop()
	<-controllerDone

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func buildCapture(cfg config.AudioConfig, logger *slog.Logger) (audio.Capture, error) {
	switch cfg.Mode {
	case "script":
		return audio.NewScriptCapture(), nil
	default:
		return audio.NewExecCapture(cfg, logger)
	}
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
