package hotkey

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gdhotkey "golang.design/x/hotkey"

	"github.com/voxhold/voxhold/internal/config"
)

// ComboSource registers the modifier+trigger combination with the OS global
// hotkey facility and maps its engage/disengage notifications onto the
// two-flag edge model: engage reports both keys pressed, disengage reports
// both released. The OS only tells us about the combo as a whole, so the
// per-key edges are synthesized in that order.
type ComboSource struct {
	cfg    config.HotkeyConfig
	log    *slog.Logger
	hk     *gdhotkey.Hotkey
	events chan Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewComboSource(cfg config.HotkeyConfig, log *slog.Logger) (*ComboSource, error) {
	mod, err := lookupModifier(cfg.Modifier)
	if err != nil {
		return nil, err
	}
	key, err := lookupKey(cfg.Key)
	if err != nil {
		return nil, err
	}
	return &ComboSource{
		cfg:    cfg,
		log:    log.With(slog.String("component", "hotkey")),
		hk:     gdhotkey.New([]gdhotkey.Modifier{mod}, key),
		events: make(chan Event, 64),
	}, nil
}

func (s *ComboSource) Start(ctx context.Context) error {
	if err := s.hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %s+%s: %w", s.cfg.Modifier, s.cfg.Key, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.hk.Keydown():
				s.emit(ctx, Event{Key: KeyModifier, Pressed: true})
				s.emit(ctx, Event{Key: KeyTrigger, Pressed: true})
			case <-s.hk.Keyup():
				s.emit(ctx, Event{Key: KeyTrigger, Pressed: false})
				s.emit(ctx, Event{Key: KeyModifier, Pressed: false})
			}
		}
	}()

	s.log.Info("hotkey registered",
		slog.String("modifier", s.cfg.Modifier),
		slog.String("key", s.cfg.Key))
	return nil
}

func (s *ComboSource) Events() <-chan Event { return s.events }

// Stop unregisters the hotkey and waits for the forwarding goroutine, so no
// event is emitted after it returns.
func (s *ComboSource) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if err := s.hk.Unregister(); err != nil {
		s.log.Warn("failed to unregister hotkey", slog.String("error", err.Error()))
	}
	close(s.events)
}

func (s *ComboSource) emit(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func lookupKey(name string) (gdhotkey.Key, error) {
	keys := map[string]gdhotkey.Key{
		"space": gdhotkey.KeySpace,
		"a":     gdhotkey.KeyA, "b": gdhotkey.KeyB, "c": gdhotkey.KeyC,
		"d": gdhotkey.KeyD, "e": gdhotkey.KeyE, "f": gdhotkey.KeyF,
		"g": gdhotkey.KeyG, "h": gdhotkey.KeyH, "i": gdhotkey.KeyI,
		"j": gdhotkey.KeyJ, "k": gdhotkey.KeyK, "l": gdhotkey.KeyL,
		"m": gdhotkey.KeyM, "n": gdhotkey.KeyN, "o": gdhotkey.KeyO,
		"p": gdhotkey.KeyP, "q": gdhotkey.KeyQ, "r": gdhotkey.KeyR,
		"s": gdhotkey.KeyS, "t": gdhotkey.KeyT, "u": gdhotkey.KeyU,
		"v": gdhotkey.KeyV, "w": gdhotkey.KeyW, "x": gdhotkey.KeyX,
		"y": gdhotkey.KeyY, "z": gdhotkey.KeyZ,
		"0": gdhotkey.Key0, "1": gdhotkey.Key1, "2": gdhotkey.Key2,
		"3": gdhotkey.Key3, "4": gdhotkey.Key4, "5": gdhotkey.Key5,
		"6": gdhotkey.Key6, "7": gdhotkey.Key7, "8": gdhotkey.Key8,
		"9": gdhotkey.Key9,
	}
	key, ok := keys[name]
	if !ok {
		return 0, fmt.Errorf("unsupported hotkey key %q", name)
	}
	return key, nil
}
