package main

import (
	"fmt"
	"strings"
)

// titleRefresh is how often, in seconds, the title overlay is rebuilt.
const titleRefresh = 0.5

// DebugOverlay collects frame statistics for the window title.
type DebugOverlay struct {
	lines []string

	frames  int
	elapsed float32
	fps     float32
}

func (do *DebugOverlay) AddLine(format string, args ...any) {
	do.lines = append(do.lines, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.lines = do.lines[:0]
}

func (do *DebugOverlay) GetText() string {
	return strings.Join(do.lines, " | ")
}

// Tick counts one frame of dt seconds and reports whether the overlay is
// due for a refresh. FPS is averaged over the refresh window.
func (do *DebugOverlay) Tick(dt float32) bool {
	do.frames++
	do.elapsed += dt
	if do.elapsed < titleRefresh {
		return false
	}
	do.fps = float32(do.frames) / do.elapsed
	do.frames = 0
	do.elapsed = 0
	return true
}

func (do *DebugOverlay) FPS() float32 { return do.fps }
