package input

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"left", KeyLeft},
		{"W", KeyW},
		{" ", KeySpace},
		{"space", KeySpace},
		{"escape", KeyEscape},
		{"esc", KeyEscape},
		{"7", Key7},
		{"f13", KeyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseKey(tt.name); got != tt.want {
				t.Errorf("ParseKey(%q) = %s, expected %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestQueueFIFO(t *testing.T) {
	var q Queue
	q.Push(Press(KeyA), Release(KeyA))
	q.Push(Event{Type: Resized, Width: 80, Height: 24})

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", q.Len())
	}
	first, _ := q.Poll()
	if first.Type != KeyPressed || first.Key != KeyA {
		t.Errorf("Poll() = %+v, expected press of a", first)
	}
	rest := q.Drain()
	if len(rest) != 2 || rest[1].Type != Resized {
		t.Errorf("Drain() = %+v", rest)
	}
	if _, ok := q.Poll(); ok {
		t.Error("Poll() on empty queue returned an event")
	}
}

func TestManagerHeldState(t *testing.T) {
	m := NewManager()
	_ = m.HandleEvent(Press(KeyLeft))
	_ = m.HandleEvent(Press(KeyUp))

	if !m.IsKeyPressed(KeyLeft) || !m.IsKeyPressed(KeyUp) {
		t.Error("pressed keys not reported as held")
	}
	_ = m.HandleEvent(Release(KeyLeft))
	if m.IsKeyPressed(KeyLeft) {
		t.Error("released key still held")
	}
	if got := m.PressedKeys(); len(got) != 1 || got[0] != KeyUp {
		t.Errorf("PressedKeys() = %v, expected [up]", got)
	}
}

func TestManagerListeners(t *testing.T) {
	m := NewManager()
	var downs, ups, all []Key
	m.OnKeyDown(KeySpace, func(k Key) { downs = append(downs, k) })
	m.OnKeyUp(KeySpace, func(k Key) { ups = append(ups, k) })
	m.OnAnyKeyDown(func(k Key) { all = append(all, k) })

	_ = m.HandleEvent(Press(KeySpace))
	_ = m.HandleEvent(Press(KeyEnter))
	_ = m.HandleEvent(Release(KeySpace))

	if len(downs) != 1 || len(ups) != 1 {
		t.Errorf("space down=%d up=%d, expected 1 and 1", len(downs), len(ups))
	}
	if len(all) != 2 || all[1] != KeyEnter {
		t.Errorf("any key downs = %v", all)
	}
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager()
	calls := 0
	m.OnAnyKeyDown(func(Key) { calls++ })
	_ = m.HandleEvent(Press(KeyA))
	m.SetEnabled(false)
	_ = m.HandleEvent(Press(KeyD))

	if calls != 1 {
		t.Errorf("listener called %d times, expected 1", calls)
	}
	if m.IsKeyPressed(KeyA) {
		t.Error("disabling did not release held keys")
	}
}

func TestManagerSignatureMismatch(t *testing.T) {
	m := NewManager()
	m.OnAnyKeyDown(func(Key) {})
	m.events.On(keyDownEvent(KeyA), func(s string) {})
	if err := m.HandleEvent(Press(KeyA)); err == nil {
		t.Error("HandleEvent() error = nil for mismatched listener")
	}
}

func TestReleaseAll(t *testing.T) {
	m := NewManager()
	released := 0
	m.OnAnyKeyUp(func(Key) { released++ })
	_ = m.HandleEvent(Press(KeyW))
	_ = m.HandleEvent(Press(KeyS))
	m.ReleaseAll()
	if released != 2 || len(m.PressedKeys()) != 0 {
		t.Errorf("ReleaseAll(): released=%d held=%v", released, m.PressedKeys())
	}
}
