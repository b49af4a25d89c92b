// Package dictation implements the recording lifecycle state machine: key
// edges in, transcribed text out, with the guarantee that the microphone is
// never left open or closed twice no matter how a session ends.
package dictation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxhold/voxhold/internal/audio"
	"github.com/voxhold/voxhold/internal/config"
	"github.com/voxhold/voxhold/internal/history"
	"github.com/voxhold/voxhold/internal/hotkey"
	"github.com/voxhold/voxhold/internal/inject"
	"github.com/voxhold/voxhold/internal/stt"
	"github.com/voxhold/voxhold/internal/trim"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return "shutting-down"
	}
}

// Cause records why a session stopped capturing.
type Cause string

const (
	CauseReleased Cause = "released"
	CauseWatchdog Cause = "watchdog-timeout"
	CauseShutdown Cause = "shutdown"
	CauseError    Cause = "error"
)

// ErrEmptyAudio is the normal "nothing to transcribe" outcome: no frames, a
// too-short clip, or a buffer below the level floor.
var ErrEmptyAudio = errors.New("no usable audio captured")

// session is one hold-to-record gesture. Owned exclusively by the controller;
// frames are appended under the controller mutex, everything else happens
// after the session has been detached from the controller.
type session struct {
	id           string
	startedAt    time.Time
	frames       [][]float32
	samples      int
	lastActivity time.Time
}

// Recorder persists completed sessions. Satisfied by *history.Store.
type Recorder interface {
	Append(ctx context.Context, s history.Session) error
}

// Notifier broadcasts session lifecycle to local observers. May be nil.
type Notifier interface {
	SessionStarted(id string, at time.Time)
	SessionEnded(id string, cause Cause, at time.Time, duration time.Duration, samples int)
	Transcript(id, text, language string)
}

// Config is the slice of daemon configuration the controller acts on.
type Config struct {
	Recording  config.RecordingConfig
	Watchdog   config.WatchdogConfig
	SampleRate int
	Language   string
}

// Deps are the controller's collaborators.
type Deps struct {
	Capture     audio.Capture
	Transcriber stt.Transcriber
	Injector    inject.Injector
	Source      hotkey.Source
	History     Recorder
	Notifier    Notifier
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Controller consumes key edges from the hotkey source, drives the capture
// stream and the watchdog, and finalizes each session on its own goroutine so
// the key-event path never waits on the model.
type Controller struct {
	cfg   Config
	deps  Deps
	log   *slog.Logger
	clock func() time.Time

	runCtx context.Context

	mu           sync.Mutex
	state        State
	modifierHeld bool
	triggerHeld  bool
	sess         *session
	watchGen     uint64

	finalizeWG sync.WaitGroup
	metrics    metrics
}

func New(cfg Config, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	c := &Controller{
		cfg:    cfg,
		deps:   deps,
		log:    deps.Logger.With(slog.String("component", "dictation")),
		clock:  deps.Clock,
		state:  StateIdle,
		runCtx: context.Background(),
	}
	c.metrics = newMetrics(c.log)
	return c
}

// Run processes key edges and watchdog ticks until ctx is cancelled or the
// hotkey source closes. On exit any active stream is stopped, the watchdog is
// disarmed, and in-flight finalization is allowed to complete.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	ticker := time.NewTicker(time.Duration(c.cfg.Watchdog.IntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Shutdown()
			return nil
		case ev, ok := <-c.deps.Source.Events():
			if !ok {
				c.Shutdown()
				return nil
			}
			c.handleKeyEvent(ev)
		case <-ticker.C:
			c.watchdogCheck()
		}
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) handleKeyEvent(ev hotkey.Event) {
	c.mu.Lock()

	bothBefore := c.modifierHeld && c.triggerHeld
	switch ev.Key {
	case hotkey.KeyModifier:
		c.modifierHeld = ev.Pressed
	case hotkey.KeyTrigger:
		c.triggerHeld = ev.Pressed
	}
	bothNow := c.modifierHeld && c.triggerHeld

	if ev.Pressed {
		// A session starts only on the transition into "both held";
		// re-deliveries (key repeat) while both stay held are ignored.
		if bothNow && !bothBefore {
			switch c.state {
			case StateIdle:
				c.startSessionLocked()
			case StateFinalizing:
				c.log.Info("hotkey engaged while transcribing, rejected")
			case StateRecording:
				// already recording, nothing to do
			case StateShuttingDown:
			}
		}
		c.mu.Unlock()
		return
	}

	// Either key going up ends the session, even if the other is still held.
	sess, ok := c.endLocked()
	c.mu.Unlock()
	if ok {
		c.finish(sess, CauseReleased)
	}
}

// startSessionLocked opens the stream and arms the watchdog. Called with the
// controller lock held and state Idle.
func (c *Controller) startSessionLocked() {
	now := c.clock()
	sess := &session{
		id:           uuid.NewString(),
		startedAt:    now,
		lastActivity: now,
	}
	c.sess = sess
	c.state = StateRecording
	c.watchGen++

	if err := c.deps.Capture.Start(c.runCtx, c.onFrame); err != nil {
		// Device failure is non-fatal: log and stay idle.
		c.sess = nil
		c.state = StateIdle
		c.watchGen++
		c.log.Error("failed to open audio stream", slog.String("error", err.Error()))
		c.metrics.deviceErrors(c.runCtx)
		return
	}

	c.log.Info("recording started", slog.String("session_id", sess.id))
	c.metrics.sessionStarted(c.runCtx)
	if c.deps.Notifier != nil {
		c.deps.Notifier.SessionStarted(sess.id, now)
	}
}

// onFrame runs on the capture's reader goroutine: append and timestamp, no
// I/O, no transcription.
func (c *Controller) onFrame(samples []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording || c.sess == nil {
		// Frames racing a stop (or arriving while finalizing) are dropped.
		return
	}
	c.sess.frames = append(c.sess.frames, samples)
	c.sess.samples += len(samples)
	if trim.Peak(samples) > c.cfg.Watchdog.SpeechThreshold {
		c.sess.lastActivity = c.clock()
	}
}

// endLocked flips Recording to Finalizing and disarms the watchdog in the
// same critical section, detaching the session. Returns false when there is
// nothing to end, which makes every stop path idempotent.
func (c *Controller) endLocked() (*session, bool) {
	if c.state != StateRecording || c.sess == nil {
		return nil, false
	}
	sess := c.sess
	c.sess = nil
	c.state = StateFinalizing
	c.watchGen++
	return sess, true
}

// finish closes the stream and hands the session to the finalize goroutine.
// Called without the lock so a concurrent frame callback can drain.
func (c *Controller) finish(sess *session, cause Cause) {
	if err := c.deps.Capture.Stop(); err != nil {
		c.log.Warn("failed to stop audio stream", slog.String("error", err.Error()))
	}
	c.log.Info("recording stopped",
		slog.String("session_id", sess.id),
		slog.String("cause", string(cause)),
		slog.Int("samples", sess.samples))

	c.finalizeWG.Add(1)
	go func() {
		defer c.finalizeWG.Done()
		c.finalize(sess, cause)
	}()
}

// Shutdown synchronously stops any active stream, disarms the watchdog, and
// waits for an in-flight finalization. A session cut off by shutdown is
// recorded but never transcribed.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.state == StateShuttingDown {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	wasRecording := c.state == StateRecording && sess != nil
	c.sess = nil
	c.state = StateShuttingDown
	c.watchGen++
	c.mu.Unlock()

	if err := c.deps.Capture.Stop(); err != nil {
		c.log.Warn("failed to stop audio stream on shutdown", slog.String("error", err.Error()))
	}
	if wasRecording {
		c.log.Info("recording aborted by shutdown", slog.String("session_id", sess.id))
		c.recordSession(sess, CauseShutdown, 0, false, "")
	}
	c.finalizeWG.Wait()
	c.log.Info("dictation controller stopped")
}

func (c *Controller) recordSession(sess *session, cause Cause, trimmed int, transcribed bool, language string) {
	endedAt := c.clock()
	if c.deps.History != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := c.deps.History.Append(ctx, history.Session{
			ID:              sess.id,
			StartedAt:       sess.startedAt,
			EndedAt:         endedAt,
			Cause:           string(cause),
			CapturedSamples: sess.samples,
			TrimmedSamples:  trimmed,
			Transcribed:     transcribed,
			Language:        language,
		})
		if err != nil {
			c.log.Warn("failed to record session history", slog.String("error", err.Error()))
		}
	}
	c.metrics.sessionEnded(context.Background(), cause)
	if c.deps.Notifier != nil {
		c.deps.Notifier.SessionEnded(sess.id, cause, endedAt, endedAt.Sub(sess.startedAt), sess.samples)
	}
}
