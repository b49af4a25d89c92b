package stt

import (
	"context"
	"fmt"
)

type mockTranscriber struct{}

func NewMockTranscriber() Transcriber {
	return &mockTranscriber{}
}

func (m *mockTranscriber) Transcribe(_ context.Context, samples []float32, sampleRate int, language string) (Result, error) {
	if language == "" {
		language = "en"
	}
	return Result{
		Text:     fmt.Sprintf("[transcript %dms]", len(samples)*1000/sampleRate),
		Language: language,
	}, nil
}
