package dictation

import (
	"testing"
	"time"

	"github.com/voxhold/voxhold/internal/hotkey"
)

func TestWatchdogSilenceTimeout(t *testing.T) {
	f := newFixture(t)

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	f.feedSpeech(time.Second)

	// below the 15s silence window, nothing happens
	f.clock.Advance(10 * time.Second)
	f.ctrl.watchdogCheck()
	if f.ctrl.State() != StateRecording {
		t.Fatalf("watchdog fired early, state %v", f.ctrl.State())
	}

	f.clock.Advance(6 * time.Second)
	f.ctrl.watchdogCheck()
	if f.ctrl.State() == StateRecording {
		t.Fatal("watchdog must force-end a silent session")
	}
	if f.capture.Stops != 1 {
		t.Fatalf("expected stream stopped once, got %d", f.capture.Stops)
	}

	// a second tick racing the first must not double-close
	f.ctrl.watchdogCheck()
	if f.capture.Stops != 1 {
		t.Fatalf("duplicate watchdog close, got %d stops", f.capture.Stops)
	}

	f.ctrl.finalizeWG.Wait()
	sessions := f.recorder.recorded()
	if len(sessions) != 1 || sessions[0].Cause != string(CauseWatchdog) {
		t.Fatalf("expected watchdog-timeout history row, got %+v", sessions)
	}
}

func TestWatchdogSpeechExtendsSilenceWindow(t *testing.T) {
	f := newFixture(t)

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	f.feedSpeech(time.Second)
	f.clock.Advance(12 * time.Second)
	// fresh speech resets the quiet clock
	f.feedSpeech(500 * time.Millisecond)
	f.clock.Advance(12 * time.Second)

	f.ctrl.watchdogCheck()
	if f.ctrl.State() != StateRecording {
		t.Fatal("recent speech must keep the session alive")
	}

	f.release(hotkey.KeyTrigger)
	f.ctrl.finalizeWG.Wait()
}

func TestWatchdogMaxDurationCapsLoudSessions(t *testing.T) {
	f := newFixture(t)

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	// keep feeding speech so the silence trigger never arms
	for i := 0; i < 36; i++ {
		f.feedSpeech(100 * time.Millisecond)
		f.clock.Advance(5 * time.Second)
		if i < 35 {
			f.ctrl.watchdogCheck()
			if f.ctrl.State() != StateRecording {
				t.Fatalf("watchdog fired before the cap at iteration %d", i)
			}
			// speech right before each check keeps quiet time near zero
			f.feedSpeech(100 * time.Millisecond)
		}
	}

	f.ctrl.watchdogCheck()
	if f.ctrl.State() == StateRecording {
		t.Fatal("session must be capped at the max duration even with continuous speech")
	}
	f.ctrl.finalizeWG.Wait()
}

func TestReleaseAfterWatchdogFireIsNoOp(t *testing.T) {
	f := newFixture(t)

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	f.feedSpeech(time.Second)
	f.clock.Advance(16 * time.Second)
	f.ctrl.watchdogCheck()
	f.ctrl.finalizeWG.Wait()

	// the user lets go after the watchdog already ended the session
	f.release(hotkey.KeyTrigger)
	f.release(hotkey.KeyModifier)
	if f.capture.Stops != 1 {
		t.Fatalf("late release double-closed the stream, got %d stops", f.capture.Stops)
	}
	if got := f.recorder.recorded(); len(got) != 1 {
		t.Fatalf("late release produced an extra history row: %d", len(got))
	}

	// and a fresh gesture starts cleanly
	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	if f.ctrl.State() != StateRecording {
		t.Fatalf("expected a new session after watchdog recovery, state %v", f.ctrl.State())
	}
	f.release(hotkey.KeyTrigger)
	f.ctrl.finalizeWG.Wait()
}

func TestWatchdogClearsHeldFlags(t *testing.T) {
	f := newFixture(t)

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	f.clock.Advance(16 * time.Second)
	f.ctrl.watchdogCheck()
	f.ctrl.finalizeWG.Wait()

	// only a repeat press arrives; without a fresh modifier press this must
	// not look like the combo transitioning to held
	f.press(hotkey.KeyTrigger)
	if f.capture.Opens != 1 {
		t.Fatalf("stale held flags restarted a session, got %d opens", f.capture.Opens)
	}
}

func TestWatchdogIdleIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(time.Hour)
	f.ctrl.watchdogCheck()
	if f.ctrl.State() != StateIdle || f.capture.Stops != 0 {
		t.Fatal("watchdog acted on an idle controller")
	}
}
