package input

import (
	"github.com/vovakirdan/gridstage/internal/event"
)

const (
	eventAnyKeyDown = "anyKeyDown"
	eventAnyKeyUp   = "anyKeyUp"
	eventSystem     = "systemEvent"
)

func keyDownEvent(k Key) string { return "keyDown_" + k.String() }
func keyUpEvent(k Key) string   { return "keyUp_" + k.String() }

// Manager tracks which keys are held and notifies key listeners. Each
// scene owns one.
type Manager struct {
	events  *event.Emitter
	held    [keyCount]bool
	enabled bool
}

// NewManager creates an enabled manager with no keys held.
func NewManager() *Manager {
	return &Manager{events: event.NewEmitter(), enabled: true}
}

// SetEnabled turns event processing on or off. Disabling releases every
// held key without notifying listeners.
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled = enabled
	if !enabled {
		m.held = [keyCount]bool{}
	}
}

// IsEnabled reports whether events are processed.
func (m *Manager) IsEnabled() bool { return m.enabled }

// OnKeyDown calls cb when key is pressed.
func (m *Manager) OnKeyDown(key Key, cb func(Key)) event.ListenerID {
	return m.events.On(keyDownEvent(key), cb)
}

// OnKeyUp calls cb when key is released.
func (m *Manager) OnKeyUp(key Key, cb func(Key)) event.ListenerID {
	return m.events.On(keyUpEvent(key), cb)
}

// OnAnyKeyDown calls cb for every key press.
func (m *Manager) OnAnyKeyDown(cb func(Key)) event.ListenerID {
	return m.events.On(eventAnyKeyDown, cb)
}

// OnAnyKeyUp calls cb for every key release.
func (m *Manager) OnAnyKeyUp(cb func(Key)) event.ListenerID {
	return m.events.On(eventAnyKeyUp, cb)
}

// OnEvent calls cb for every event the manager handles, key or not.
func (m *Manager) OnEvent(cb func(Event)) event.ListenerID {
	return m.events.On(eventSystem, cb)
}

// Remove unregisters a listener.
func (m *Manager) Remove(id event.ListenerID) bool {
	return m.events.Remove(id)
}

// Suspend pauses or resumes a listener without removing it.
func (m *Manager) Suspend(id event.ListenerID, suspend bool) bool {
	return m.events.Suspend(id, suspend)
}

// HandleEvent updates key state and notifies listeners. Repeated presses
// of a held key are delivered again, matching terminal auto-repeat.
func (m *Manager) HandleEvent(ev Event) error {
	if !m.enabled {
		return nil
	}
	var errs []error
	switch ev.Type {
	case KeyPressed:
		if valid(ev.Key) {
			m.held[ev.Key] = true
		}
		errs = append(errs,
			m.events.Emit(keyDownEvent(ev.Key), ev.Key),
			m.events.Emit(eventAnyKeyDown, ev.Key))
	case KeyReleased:
		if valid(ev.Key) {
			m.held[ev.Key] = false
		}
		errs = append(errs,
			m.events.Emit(keyUpEvent(ev.Key), ev.Key),
			m.events.Emit(eventAnyKeyUp, ev.Key))
	}
	errs = append(errs, m.events.Emit(eventSystem, ev))
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func valid(k Key) bool {
	return k > KeyUnknown && k < keyCount
}

// IsKeyPressed reports whether key is currently held.
func (m *Manager) IsKeyPressed(key Key) bool {
	return valid(key) && m.held[key]
}

// PressedKeys returns every held key in enum order.
func (m *Manager) PressedKeys() []Key {
	var out []Key
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if m.held[k] {
			out = append(out, k)
		}
	}
	return out
}

// ReleaseAll marks every key as released and emits key-up for each.
func (m *Manager) ReleaseAll() {
	for _, k := range m.PressedKeys() {
		//nolint:errcheck // key listeners are typed func(Key)
		m.HandleEvent(Release(k))
	}
}

// Clear drops every listener.
func (m *Manager) Clear() {
	m.events.Clear()
}
