package timer

import (
	"github.com/vovakirdan/gridstage/internal/core"
)

// Manager owns a set of timers. Timers returned by SetTimeout and
// SetInterval stay valid until the PreUpdate after they stop.
type Manager struct {
	timers []*Timer
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add takes ownership of t.
func (m *Manager) Add(t *Timer) {
	m.timers = append(m.timers, t)
}

// SetTimeout starts a one-shot timer firing cb after delay.
func (m *Manager) SetTimeout(delay core.Time, cb Callback) (*Timer, error) {
	return m.start(delay, 0, cb)
}

// SetInterval starts a timer firing cb every delay, repeat extra times
// (Forever for no limit).
func (m *Manager) SetInterval(delay core.Time, cb Callback, repeat int) (*Timer, error) {
	return m.start(delay, repeat, cb)
}

func (m *Manager) start(delay core.Time, repeat int, cb Callback) (*Timer, error) {
	if cb == nil {
		return nil, ErrTimerNotArmed
	}
	t, err := New(delay, repeat)
	if err != nil {
		return nil, err
	}
	t.OnTimeout(cb)
	if err := t.Start(); err != nil {
		return nil, err
	}
	m.timers = append(m.timers, t)
	return t, nil
}

// PreUpdate destroys stopped timers.
func (m *Manager) PreUpdate() {
	kept := m.timers[:0]
	for _, t := range m.timers {
		if !t.IsStopped() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = kept
}

// Update advances every timer. Timers added by callbacks during the
// update start ticking next frame.
func (m *Manager) Update(dt core.Time) {
	n := len(m.timers)
	for i := 0; i < n && i < len(m.timers); i++ {
		m.timers[i].Update(dt)
	}
}

// Count returns the number of owned timers, stopped ones included.
func (m *Manager) Count() int {
	return len(m.timers)
}

// StopAll stops every running or paused timer.
func (m *Manager) StopAll() {
	for _, t := range m.timers {
		t.Stop()
	}
}

// Clear drops every timer without firing callbacks.
func (m *Manager) Clear() {
	m.timers = nil
}
