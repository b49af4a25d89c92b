//go:build darwin

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
		return gdhotkey.ModOption, nil
	case "super":
		return gdhotkey.ModCmd, nil
	}
	return 0, fmt.Errorf("unsupported hotkey modifier %q", name)
}
