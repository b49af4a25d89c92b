package hotkey

import (
	"context"
	"sync"
)

// ChanSource is a Source fed by the caller, used by tests to drive the
// controller through arbitrary interleavings of independent key edges.
type ChanSource struct {
	events chan Event
	once   sync.Once
}

func NewChanSource() *ChanSource {
	return &ChanSource{events: make(chan Event, 64)}
}

func (s *ChanSource) Start(context.Context) error { return nil }

func (s *ChanSource) Events() <-chan Event { return s.events }

func (s *ChanSource) Stop() {
	s.once.Do(func() { close(s.events) })
}

func (s *ChanSource) Press(k Key)   { s.events <- Event{Key: k, Pressed: true} }
func (s *ChanSource) Release(k Key) { s.events <- Event{Key: k, Pressed: false} }
