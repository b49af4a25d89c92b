//go:build linux

package hotkey

import (
	"fmt"

	gdhotkey "golang.design/x/hotkey"
)

func lookupModifier(name string) (gdhotkey.Modifier, error) {
	switch name {
	case "ctrl":
		return gdhotkey.ModCtrl, nil
	case "shift":
		return gdhotkey.ModShift, nil
	case "alt":
		return gdhotkey.Mod1, nil
	case "super":
		return gdhotkey.Mod4, nil
	}
	return 0, fmt.Errorf("unsupported hotkey modifier %q", name)
}
