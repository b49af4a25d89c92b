package dictation

import (
	"errors"
	"testing"
	"time"

	"github.com/voxhold/voxhold/internal/hotkey"
	"github.com/voxhold/voxhold/internal/stt"
)

func TestIsHallucination(t *testing.T) {
	filtered := []string{
		"Thanks for watching!",
		"thank you for watching",
		" you ",
		"You.",
		"Bye-bye.",
		"Transcribed by https://otter.ai",
		"Please subscribe",
		"THE END.",
	}
	for _, text := range filtered {
		if !isHallucination(text) {
			t.Errorf("expected %q to be filtered", text)
		}
	}

	kept := []string{
		"thank you for watching the dog while I was away",
		"I said bye to everyone",
		"can you hear me",
		"the end of the street",
		"",
	}
	for _, text := range kept {
		if isHallucination(text) {
			t.Errorf("expected %q to pass through", text)
		}
	}
}

func TestCheckUsable(t *testing.T) {
	f := newFixture(t)

	loud := make([]float32, 16000)
	for i := range loud {
		loud[i] = 0.1
	}
	if err := f.ctrl.checkUsable(loud); err != nil {
		t.Fatalf("one second of speech must be usable: %v", err)
	}

	if err := f.ctrl.checkUsable(nil); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio for no frames, got %v", err)
	}

	short := loud[:4000] // 250ms, below the 500ms floor
	if err := f.ctrl.checkUsable(short); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio for short clip, got %v", err)
	}

	quiet := make([]float32, 16000)
	for i := range quiet {
		quiet[i] = 0.00001
	}
	if err := f.ctrl.checkUsable(quiet); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio for quiet clip, got %v", err)
	}
}

func TestHallucinatedTranscriptNotInjected(t *testing.T) {
	f := newFixture(t)
	f.transcriber.result = stt.Result{Text: "Thanks for watching!", Language: "en"}

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	f.feedSpeech(time.Second)
	f.release(hotkey.KeyTrigger)
	f.ctrl.finalizeWG.Wait()

	if len(f.injector.injected()) != 0 {
		t.Fatal("hallucinated transcript must not be injected")
	}
	sessions := f.recorder.recorded()
	if len(sessions) != 1 || sessions[0].Transcribed {
		t.Fatalf("expected untranscribed history row, got %+v", sessions)
	}
}

func TestEmptyTranscriptNotInjected(t *testing.T) {
	f := newFixture(t)
	f.transcriber.result = stt.Result{Text: "", Language: "en"}

	f.press(hotkey.KeyModifier)
	f.press(hotkey.KeyTrigger)
	f.feedSpeech(time.Second)
	f.release(hotkey.KeyTrigger)
	f.ctrl.finalizeWG.Wait()

	if len(f.injector.injected()) != 0 {
		t.Fatal("empty transcript must not be injected")
	}
	if f.ctrl.State() != StateIdle {
		t.Fatalf("expected idle, state %v", f.ctrl.State())
	}
}

func TestConcat(t *testing.T) {
	frames := [][]float32{{1, 2}, {3}, {}, {4, 5, 6}}
	got := concat(frames, 6)
	want := []float32{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("length %d != %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: %v != %v", i, got[i], want[i])
		}
	}
}
