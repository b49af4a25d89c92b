//go:build windows

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
		return gdhotkey.ModAlt, nil
	case "super":
		return gdhotkey.ModWin, nil
	}
	return 0, fmt.Errorf("unsupported hotkey modifier %q", name)
}
