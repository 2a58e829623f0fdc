package core

import (
	"fmt"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeySpace        = int(glfw.KeySpace)
	KeyA            = int(glfw.KeyA)
	KeyD            = int(glfw.KeyD)
	KeyS            = int(glfw.KeyS)
	KeyW            = int(glfw.KeyW)
	KeyX            = int(glfw.KeyX)
	KeyZ            = int(glfw.KeyZ)
	KeyEscape       = int(glfw.KeyEscape)
	KeyEnter        = int(glfw.KeyEnter)
	KeyTab          = int(glfw.KeyTab)
	KeyRight        = int(glfw.KeyRight)
	KeyLeft         = int(glfw.KeyLeft)
	KeyDown         = int(glfw.KeyDown)
	KeyUp           = int(glfw.KeyUp)
	KeyF1           = int(glfw.KeyF1)
	KeyLeftShift    = int(glfw.KeyLeftShift)
	KeyLeftControl  = int(glfw.KeyLeftControl)
	KeyLeftAlt      = int(glfw.KeyLeftAlt)
	KeyRightShift   = int(glfw.KeyRightShift)
	KeyRightControl = int(glfw.KeyRightControl)
	KeyRightAlt     = int(glfw.KeyRightAlt)

	keyLimit = int(glfw.KeyLast) + 1
)

var namedKeys = map[string]int{
	"SPACE":         KeySpace,
	"ESCAPE":        KeyEscape,
	"ENTER":         KeyEnter,
	"TAB":           KeyTab,
	"RIGHT":         KeyRight,
	"LEFT":          KeyLeft,
	"DOWN":          KeyDown,
	"UP":            KeyUp,
	"F1":            KeyF1,
	"LEFT_SHIFT":    KeyLeftShift,
	"LEFT_CONTROL":  KeyLeftControl,
	"LEFT_ALT":      KeyLeftAlt,
	"RIGHT_SHIFT":   KeyRightShift,
	"RIGHT_CONTROL": KeyRightControl,
	"RIGHT_ALT":     KeyRightAlt,
}

// KeyByName resolves a config key name such as "X", "7" or "LEFT_SHIFT".
// Letter and digit codes equal their ASCII value.
func KeyByName(name string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if len(n) == 1 && (n[0] >= 'A' && n[0] <= 'Z' || n[0] >= '0' && n[0] <= '9') {
		return int(n[0]), nil
	}
	if k, ok := namedKeys[n]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}
