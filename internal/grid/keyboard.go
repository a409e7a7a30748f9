package grid

import (
	"strings"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
	"github.com/vovakirdan/gridstage/internal/input"
)

// Trigger selects which key events start hops.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerOnKeyDown
	TriggerOnKeyUp
	TriggerOnKeyHeld
	TriggerOnKeyDownHeld
)

// ParseTrigger maps a config name (none, down, up, held, downheld) to a
// Trigger.
func ParseTrigger(name string) (Trigger, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return TriggerNone, true
	case "down":
		return TriggerOnKeyDown, true
	case "up":
		return TriggerOnKeyUp, true
	case "held":
		return TriggerOnKeyHeld, true
	case "downheld", "down_held":
		return TriggerOnKeyDownHeld, true
	}
	return TriggerNone, false
}

// KeyBinding maps keys to the four straight directions.
type KeyBinding struct {
	Left, Right, Up, Down input.Key
}

// Predefined bindings.
var (
	ArrowKeys = KeyBinding{Left: input.KeyLeft, Right: input.KeyRight, Up: input.KeyUp, Down: input.KeyDown}
	WASDKeys  = KeyBinding{Left: input.KeyA, Right: input.KeyD, Up: input.KeyW, Down: input.KeyS}
	VimKeys   = KeyBinding{Left: input.KeyH, Right: input.KeyL, Up: input.KeyK, Down: input.KeyJ}
)

func (b KeyBinding) direction(k input.Key) core.Direction {
	switch k {
	case b.Left:
		return core.DirLeft
	case b.Right:
		return core.DirRight
	case b.Up:
		return core.DirUp
	case b.Down:
		return core.DirDown
	}
	return core.DirUnknown
}

func (b KeyBinding) keys() [4]input.Key {
	return [4]input.Key{b.Left, b.Right, b.Up, b.Down}
}

// KeyboardMover moves its target in response to key events.
type KeyboardMover struct {
	*Mover

	input     *input.Manager
	bindings  []KeyBinding
	trigger   Trigger
	listeners []event.ListenerID
	onInput   func(input.Key) bool
}

// NewKeyboardMover creates a mover driven by in, using the arrow keys.
func NewKeyboardMover(g *Grid, in *input.Manager, trigger Trigger) *KeyboardMover {
	km := &KeyboardMover{
		Mover:    newMover(g, KeyboardControlled),
		input:    in,
		bindings: []KeyBinding{ArrowKeys},
	}
	km.tick = km.poll
	km.onDestroy = append(km.onDestroy, km.detach)
	km.SetTrigger(trigger)
	return km
}

// SetBindings replaces the key bindings. Several bindings may be active
// at once, e.g. arrows and WASD.
func (km *KeyboardMover) SetBindings(bindings ...KeyBinding) {
	km.bindings = append([]KeyBinding(nil), bindings...)
}

// Trigger returns the current trigger.
func (km *KeyboardMover) Trigger() Trigger { return km.trigger }

// SetTrigger detaches the listeners of the old trigger and attaches the
// ones the new trigger needs.
func (km *KeyboardMover) SetTrigger(t Trigger) {
	km.detach()
	km.trigger = t
	if km.input == nil {
		return
	}
	if t == TriggerOnKeyDown || t == TriggerOnKeyDownHeld {
		km.listeners = append(km.listeners, km.input.OnAnyKeyDown(km.MoveTarget))
	}
	if t == TriggerOnKeyUp {
		km.listeners = append(km.listeners, km.input.OnAnyKeyUp(km.MoveTarget))
	}
}

func (km *KeyboardMover) detach() {
	if km.input == nil {
		return
	}
	for _, id := range km.listeners {
		km.input.Remove(id)
	}
	km.listeners = nil
}

// OnInput installs a veto: a key only moves the target when cb returns
// true. A nil cb removes the veto.
func (km *KeyboardMover) OnInput(cb func(input.Key) bool) {
	km.onInput = cb
}

func (km *KeyboardMover) keyDirection(k input.Key) core.Direction {
	for _, b := range km.bindings {
		if d := b.direction(k); d.IsValid() {
			return d
		}
	}
	return core.DirUnknown
}

// MoveTarget requests a hop for key. A held key on the other axis turns
// the move into a diagonal.
func (km *KeyboardMover) MoveTarget(k input.Key) {
	d := km.keyDirection(k)
	if !d.IsValid() {
		return
	}
	if km.onInput != nil && !km.onInput(k) {
		return
	}
	if km.input != nil {
		for _, held := range km.input.PressedKeys() {
			h := km.keyDirection(held)
			if d.X == 0 && h.X != 0 && h.Y == 0 {
				d.X = h.X
			}
			if d.Y == 0 && h.Y != 0 && h.X == 0 {
				d.Y = h.Y
			}
		}
	}
	km.RequestMove(d)
}

// poll implements the held triggers by checking key state every frame.
func (km *KeyboardMover) poll(core.Time) {
	if km.input == nil || (km.trigger != TriggerOnKeyHeld && km.trigger != TriggerOnKeyDownHeld) {
		return
	}
	var d core.Direction
	for _, b := range km.bindings {
		for _, k := range b.keys() {
			if !km.input.IsKeyPressed(k) {
				continue
			}
			if km.onInput != nil && !km.onInput(k) {
				continue
			}
			kd := b.direction(k)
			if d.X == 0 {
				d.X = kd.X
			}
			if d.Y == 0 {
				d.Y = kd.Y
			}
		}
	}
	if d.IsValid() {
		km.RequestMove(d)
	}
}
