package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodePCMFloat32(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw[0:], math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(-0.25))
	samples := decodePCM(raw, "f32le")
	if len(samples) != 2 || samples[0] != 0.5 || samples[1] != -0.25 {
		t.Fatalf("unexpected samples %v", samples)
	}
}

func TestDecodePCMInt16(t *testing.T) {
	raw := make([]byte, 4)
	pos := int16(16384)
	neg := int16(-32768)
	binary.LittleEndian.PutUint16(raw[0:], uint16(pos))
	binary.LittleEndian.PutUint16(raw[2:], uint16(neg))
	samples := decodePCM(raw, "s16le")
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0] != 0.5 {
		t.Fatalf("expected 0.5, got %f", samples[0])
	}
	if samples[1] != -1.0 {
		t.Fatalf("expected -1.0, got %f", samples[1])
	}
}

func TestScriptCaptureContract(t *testing.T) {
	c := NewScriptCapture()
	var got [][]float32
	if err := c.Start(t.Context(), func(samples []float32) {
		got = append(got, samples)
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Start(t.Context(), nil); err == nil {
		t.Fatal("expected second start to fail while running")
	}
	c.Feed([]float32{0.1, 0.2})
	if err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("second stop must be a no-op, got %v", err)
	}
	c.Feed([]float32{0.3})
	if len(got) != 1 {
		t.Fatalf("expected exactly one delivered frame, got %d", len(got))
	}
	if c.Opens != 1 || c.Stops != 1 {
		t.Fatalf("unexpected open/stop counts: %d/%d", c.Opens, c.Stops)
	}
}
