package dictation

import (
	"log/slog"
	"time"
)

// watchdogCheck force-ends a stuck session. Two independent triggers, both
// covering the failure mode where the OS never delivers a key release:
// no speech-level audio for the silence window, and an absolute cap on
// session duration that no signal can extend.
func (c *Controller) watchdogCheck() {
	c.mu.Lock()
	if c.state != StateRecording || c.sess == nil {
		c.mu.Unlock()
		return
	}

	now := c.clock()
	elapsed := now.Sub(c.sess.startedAt)
	quiet := now.Sub(c.sess.lastActivity)
	maxDur := time.Duration(c.cfg.Watchdog.MaxRecordingMS) * time.Millisecond
	silence := time.Duration(c.cfg.Watchdog.SilenceMS) * time.Millisecond

	var reason string
	switch {
	case elapsed >= maxDur:
		reason = "max recording duration reached"
	case quiet >= silence:
		reason = "no speech detected"
	default:
		c.mu.Unlock()
		return
	}

	// The release events for this gesture were lost; clear the held flags so
	// stale state cannot restart a session without a fresh press.
	c.modifierHeld = false
	c.triggerHeld = false

	sess, ok := c.endLocked()
	c.mu.Unlock()
	if !ok {
		return
	}

	c.log.Warn("watchdog force-stopping session",
		slog.String("session_id", sess.id),
		slog.String("reason", reason),
		slog.Duration("elapsed", elapsed),
		slog.Duration("quiet", quiet))
	c.metrics.watchdogFired(c.runCtx)
	c.finish(sess, CauseWatchdog)
}
