// Package hotkey turns OS keyboard delivery into a stream of press/release
// edges for the two keys the daemon cares about: the modifier and the
// trigger key. The controller tracks both flags itself, so sources only have
// to report edges, never combined state.
package hotkey

import "context"

// Key identifies one of the two tracked keys.
type Key int

const (
	KeyModifier Key = iota
	KeyTrigger
)

func (k Key) String() string {
	if k == KeyModifier {
		return "modifier"
	}
	return "trigger"
}

// Event is a single press or release edge.
type Event struct {
	Key     Key
	Pressed bool
}

// Source delivers key edges until Stop is called. After Stop returns the
// events channel is closed and no callback-context state is touched again.
type Source interface {
	Start(ctx context.Context) error
	Events() <-chan Event
	Stop()
}
