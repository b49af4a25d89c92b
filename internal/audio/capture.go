package audio

import (
	"context"
	"errors"
)

// ErrDevice marks failures to open or read the audio input device. The
// controller treats it as non-fatal: log and stay idle.
var ErrDevice = errors.New("audio device unavailable")

// FrameFunc receives one captured frame of mono samples. It is invoked from
// the capture's reader goroutine and must return quickly; heavy work belongs
// to whoever consumes the buffered session.
type FrameFunc func(samples []float32)

// Capture owns the microphone input stream. At most one stream is open per
// Capture; Start on an already-open capture fails, Stop is idempotent and
// safe to call from any teardown path. After Stop returns, no further
// FrameFunc invocation is in flight.
type Capture interface {
	Start(ctx context.Context, onFrame FrameFunc) error
	Stop() error
}
