package audio

import (
	"context"
	"errors"
	"sync"
)

// ScriptCapture is a capture backend driven by the caller: tests (and the
// audio.mode=script smoke configuration) feed frames in explicitly. It
// enforces the same single-stream and idempotent-stop contract as the real
// backend and counts opens so tests can assert exclusivity.
type ScriptCapture struct {
	mu      sync.Mutex
	running bool
	onFrame FrameFunc

	Opens        int
	Stops        int
	DoubleStarts int
	FailStart    bool
}

func NewScriptCapture() *ScriptCapture {
	return &ScriptCapture{}
}

func (c *ScriptCapture) Start(_ context.Context, onFrame FrameFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailStart {
		return ErrDevice
	}
	if c.running {
		c.DoubleStarts++
		return errors.New("capture already running")
	}
	c.running = true
	c.onFrame = onFrame
	c.Opens++
	return nil
}

func (c *ScriptCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.running = false
	c.onFrame = nil
	c.Stops++
	return nil
}

// Feed delivers one frame to the active callback; dropped when stopped,
// mirroring a real device that no longer invokes its callback after close.
func (c *ScriptCapture) Feed(samples []float32) {
	c.mu.Lock()
	onFrame := c.onFrame
	c.mu.Unlock()
	if onFrame != nil {
		buf := make([]float32, len(samples))
		copy(buf, samples)
		onFrame(buf)
	}
}

func (c *ScriptCapture) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
