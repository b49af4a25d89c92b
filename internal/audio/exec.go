package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"sync"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/voxhold/voxhold/internal/config"
)

// ExecCapture drives a recorder command (parec, sox, ffmpeg, rec ...) that
// writes raw PCM to stdout, and slices the byte stream into fixed-size
// sample frames.
type ExecCapture struct {
	cfg config.AudioConfig
	log *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewExecCapture(cfg config.AudioConfig, log *slog.Logger) (*ExecCapture, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse capture command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("capture command is empty")
	}
	return &ExecCapture{
		cfg: cfg,
		log: log.With(slog.String("component", "audio-capture")),
	}, nil
}

func (c *ExecCapture) Start(ctx context.Context, onFrame FrameFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errors.New("capture already running")
	}

	parser := shellwords.NewParser()
	args, err := parser.Parse(c.cfg.Command)
	if err != nil {
		return fmt.Errorf("parse capture command: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %v", ErrDevice, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: start %s: %v", ErrDevice, args[0], err)
	}

	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done

	go func() {
		defer close(done)
		c.readFrames(stdout, onFrame)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			c.log.Warn("recorder command exited", slog.String("error", err.Error()))
		}
	}()

	c.log.Info("capture started",
		slog.String("command", args[0]),
		slog.Int("sample_rate", c.cfg.SampleRate),
		slog.Int("frame_size", c.cfg.FrameSize))
	return nil
}

// Stop tears the stream down and waits for the reader goroutine, so no frame
// callback is in flight once it returns. Calling it again is a no-op.
func (c *ExecCapture) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	cancel()
	<-done
	c.log.Info("capture stopped")
	return nil
}

func (c *ExecCapture) readFrames(r io.Reader, onFrame FrameFunc) {
	bytesPerSample := 4
	if c.cfg.Format == "s16le" {
		bytesPerSample = 2
	}
	buf := make([]byte, c.cfg.FrameSize*bytesPerSample)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.ErrClosedPipe) {
				c.log.Warn("capture read failed", slog.String("error", err.Error()))
			}
			return
		}
		onFrame(decodePCM(buf, c.cfg.Format))
	}
}

func decodePCM(raw []byte, format string) []float32 {
	if format == "s16le" {
		samples := make([]float32, len(raw)/2)
		for i := range samples {
			samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
		}
		return samples
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples
}
