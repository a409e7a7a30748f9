package tui

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridstage/internal/input"
)

// KeyMap holds the bindings the driver handles itself. Every other key is
// forwarded to the engine.
type KeyMap struct {
	Move       key.Binding // help only, forwarded
	Pause      key.Binding // help only, forwarded
	Screenshot key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Pause},
		{k.Screenshot, k.Quit},
	}
}

// DefaultKeyMap returns the default driver bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Move: key.NewBinding(
			key.WithKeys("up", "down", "left", "right", "w", "a", "s", "d"),
			key.WithHelp("arrows/wasd", "move"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "screenshot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Translate maps a terminal key message to an engine key.
func Translate(msg tea.KeyMsg) input.Key {
	return input.ParseKey(msg.String())
}

// heldKeys synthesizes key releases. Terminals report presses and
// auto-repeat only, so a key counts as released once no repeat arrived
// for releaseAfter.
type heldKeys struct {
	releaseAfter time.Duration
	lastSeen     map[input.Key]time.Time
}

func newHeldKeys(releaseAfter time.Duration) *heldKeys {
	return &heldKeys{releaseAfter: releaseAfter, lastSeen: make(map[input.Key]time.Time)}
}

// press records k and reports whether it was already held.
func (h *heldKeys) press(k input.Key, now time.Time) bool {
	_, held := h.lastSeen[k]
	h.lastSeen[k] = now
	return held
}

// expire drops and returns the keys not seen since now-releaseAfter.
func (h *heldKeys) expire(now time.Time) []input.Key {
	var out []input.Key
	for k, seen := range h.lastSeen {
		if now.Sub(seen) >= h.releaseAfter {
			out = append(out, k)
			delete(h.lastSeen, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// all drops and returns every held key.
func (h *heldKeys) all() []input.Key {
	out := make([]input.Key, 0, len(h.lastSeen))
	for k := range h.lastSeen {
		out = append(out, k)
	}
	clear(h.lastSeen)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
