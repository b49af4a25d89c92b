package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/voxhold/voxhold/internal/config"
)

// execTranscriber shells out to an external recognizer (whisper-cli, a python
// wrapper, ...). The clip is handed over as a 16-bit WAV temp file and the
// command is expected to print {"text": ..., "language": ...} on stdout.
type execTranscriber struct {
	cmd []string
	cfg config.STTConfig
	mu  sync.Mutex
}

type execResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func NewExecTranscriber(cfg config.STTConfig) (Transcriber, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse stt command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("stt command is empty")
	}
	return &execTranscriber{cmd: args, cfg: cfg}, nil
}

func (t *execTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int, language string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	file, err := os.CreateTemp(os.TempDir(), "voxhold_stt_*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if err := writeSamplesToWav(file, samples, sampleRate); err != nil {
		return Result{}, err
	}

	cmdArgs := append([]string{}, t.cmd[1:]...)
	cmdArgs = append(cmdArgs, "--audio", file.Name())
	if t.cfg.ModelPath != "" {
		cmdArgs = append(cmdArgs, "--model", t.cfg.ModelPath)
	}
	if language != "" {
		cmdArgs = append(cmdArgs, "--language", language)
	}

	command := exec.CommandContext(ctx, t.cmd[0], cmdArgs...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return Result{}, fmt.Errorf("%w: %v: %s", ErrTranscription, err, stderr.String())
	}

	var resp execResult
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}
	return Result{Text: resp.Text, Language: resp.Language}, nil
}

func writeSamplesToWav(file *os.File, samples []float32, sampleRate int) error {
	buffer := &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate}}
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}
	buffer.Data = data

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
