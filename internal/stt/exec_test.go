package stt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWriteSamplesToWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	samples := []float32{0, 0.5, -0.5, 1.5, -1.5}
	if err := writeSamplesToWav(file, samples, 16000); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	file.Close()

	reopened, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()

	dec := wav.NewDecoder(reopened)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode wav: %v", err)
	}
	if buf.Format.SampleRate != 16000 || buf.Format.NumChannels != 1 {
		t.Fatalf("unexpected format %+v", buf.Format)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(buf.Data))
	}
	// out-of-range input must clip, not wrap
	if buf.Data[3] != 32767 {
		t.Fatalf("expected positive clip to 32767, got %d", buf.Data[3])
	}
	if buf.Data[4] != -32767 {
		t.Fatalf("expected negative clip to -32767, got %d", buf.Data[4])
	}
}

func TestMockTranscriber(t *testing.T) {
	result, err := NewMockTranscriber().Transcribe(t.Context(), make([]float32, 16000), 16000, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text == "" {
		t.Fatal("expected non-empty mock transcript")
	}
	if result.Language != "en" {
		t.Fatalf("expected fallback language en, got %q", result.Language)
	}
}
