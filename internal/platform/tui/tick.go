// Package tui drives engines from a Bubble Tea program: it ticks frames,
// maps terminal keys to engine input and renders the engine screen.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is sent to trigger an engine frame.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends one frame message after interval.
func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
