// Package input turns platform key events into per-scene key state and
// listener callbacks.
package input

import "strings"

// Key is a physical key, independent of the platform that reported it.
type Key int

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyW
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyP
	KeyR
	KeyQ
	KeyH
	KeyJ
	KeyK
	KeyL
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	keyCount
)

var keyNames = [...]string{
	KeyUnknown:   "unknown",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyW:         "w",
	KeyA:         "a",
	KeyS:         "s",
	KeyD:         "d",
	KeySpace:     "space",
	KeyEnter:     "enter",
	KeyEscape:    "esc",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyP:         "p",
	KeyR:         "r",
	KeyQ:         "q",
	KeyH:         "h",
	KeyJ:         "j",
	KeyK:         "k",
	KeyL:         "l",
	Key0:         "0",
	Key1:         "1",
	Key2:         "2",
	Key3:         "3",
	Key4:         "4",
	Key5:         "5",
	Key6:         "6",
	Key7:         "7",
	Key8:         "8",
	Key9:         "9",
}

// String returns the lower-case key name.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "unknown"
	}
	return keyNames[k]
}

// ParseKey maps a key name (case-insensitive) to a Key. " " is an alias
// for space and "escape" for esc.
func ParseKey(name string) Key {
	switch name {
	case " ":
		return KeySpace
	case "escape":
		return KeyEscape
	}
	name = strings.ToLower(name)
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if keyNames[k] == name {
			return k
		}
	}
	return KeyUnknown
}

// EventType classifies an input Event.
type EventType int

const (
	KeyPressed EventType = iota
	KeyReleased
	Resized
	Closed
)

func (t EventType) String() string {
	switch t {
	case KeyPressed:
		return "keyPressed"
	case KeyReleased:
		return "keyReleased"
	case Resized:
		return "resized"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is a single system event delivered to scenes.
type Event struct {
	Type   EventType
	Key    Key
	Width  int // Resized only
	Height int // Resized only
}

// Press builds a key-down event.
func Press(k Key) Event { return Event{Type: KeyPressed, Key: k} }

// Release builds a key-up event.
func Release(k Key) Event { return Event{Type: KeyReleased, Key: k} }
