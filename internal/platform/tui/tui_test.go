package tui

import (
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/engine"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/scene"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want input.Key
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, input.KeyUp},
		{tea.KeyMsg{Type: tea.KeyLeft}, input.KeyLeft},
		{tea.KeyMsg{Type: tea.KeySpace}, input.KeySpace},
		{tea.KeyMsg{Type: tea.KeyEnter}, input.KeyEnter},
		{tea.KeyMsg{Type: tea.KeyEsc}, input.KeyEscape},
		{runes("w"), input.KeyW},
		{runes("7"), input.Key7},
		{runes("z"), input.KeyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if got := Translate(tt.msg); got != tt.want {
				t.Errorf("Translate(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestHeldKeysExpire(t *testing.T) {
	h := newHeldKeys(100 * time.Millisecond)
	start := time.Unix(0, 0)

	if h.press(input.KeyUp, start) {
		t.Error("first press reported as repeat")
	}
	h.press(input.KeyA, start.Add(50*time.Millisecond))
	if !h.press(input.KeyUp, start.Add(60*time.Millisecond)) {
		t.Error("auto-repeat not reported as repeat")
	}

	if got := h.expire(start.Add(140 * time.Millisecond)); len(got) != 0 {
		t.Errorf("expire(140ms) = %v, expected nothing", got)
	}
	if got := h.expire(start.Add(155 * time.Millisecond)); !reflect.DeepEqual(got, []input.Key{input.KeyA}) {
		t.Errorf("expire(155ms) = %v, expected [a]", got)
	}
	if got := h.all(); !reflect.DeepEqual(got, []input.Key{input.KeyUp}) {
		t.Errorf("all() = %v, expected [up]", got)
	}
	if got := h.all(); len(got) != 0 {
		t.Errorf("all() after drain = %v", got)
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(5, 2)
	s.DrawText(0, 0, "ab", core.ColorRed)
	s.DrawText(2, 0, "c", core.ColorDefault)
	s.DrawText(0, 1, "xyz", core.Color(200))

	lines := strings.Split(RenderScreen(s), "\n")
	if len(lines) != 2 {
		t.Fatalf("RenderScreen() lines = %d, expected 2", len(lines))
	}
	if lipgloss.Width(lines[0]) != 5 || lipgloss.Width(lines[1]) != 5 {
		t.Errorf("line widths = %d,%d, expected 5", lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	}
	if !strings.Contains(lines[0], "ab") || !strings.Contains(lines[1], "xyz") {
		t.Errorf("RenderScreen() = %q", lines)
	}
}

type keyLog struct {
	pressed  []input.Key
	released []input.Key
	frames   int
}

func newTestEngine(t *testing.T, log *keyLog) *engine.Engine {
	t.Helper()
	cfg := config.DefaultEngineConfig()
	cfg.Screen.Width = 8
	cfg.Screen.Height = 2
	cfg.Input.ReleaseAfterMS = 100
	e, err := engine.New(cfg, nil)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	s := scene.New("main", &scene.Funcs{
		Update: func(*scene.Scene, core.Time) { log.frames++ },
		HandleEvent: func(_ *scene.Scene, ev input.Event) {
			switch ev.Type {
			case input.KeyPressed:
				log.pressed = append(log.pressed, ev.Key)
			case input.KeyReleased:
				log.released = append(log.released, ev.Key)
			}
		},
	})
	if err := e.PushScene(s); err != nil {
		t.Fatalf("PushScene() error = %v", err)
	}
	return e
}

func TestModelForwardsKeysAndReleases(t *testing.T) {
	var log keyLog
	e := newTestEngine(t, &log)
	var m tea.Model = NewModel(e)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(runes("z"))
	if e.PendingEvents() != 1 {
		t.Fatalf("PendingEvents() = %d, expected the one known key", e.PendingEvents())
	}

	now := time.Now()
	m, cmd := m.Update(FrameMsg(now))
	if cmd == nil {
		t.Error("frame did not schedule the next frame")
	}
	if !reflect.DeepEqual(log.pressed, []input.Key{input.KeyRight}) || log.frames != 1 {
		t.Fatalf("after frame: pressed %v, frames %d", log.pressed, log.frames)
	}

	_, _ = m.Update(FrameMsg(now.Add(time.Second)))
	if !reflect.DeepEqual(log.released, []input.Key{input.KeyRight}) {
		t.Errorf("released = %v, expected a synthesized release", log.released)
	}
}

func TestModelResize(t *testing.T) {
	var log keyLog
	e := newTestEngine(t, &log)
	var m tea.Model = NewModel(e)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	m.Update(FrameMsg(time.Now()))
	if e.Screen().Width() != 20 || e.Screen().Height() != 10-statusLines {
		t.Errorf("screen = %dx%d, expected 20x%d", e.Screen().Width(), e.Screen().Height(), 10-statusLines)
	}
}

func TestModelQuit(t *testing.T) {
	var log keyLog
	e := newTestEngine(t, &log)
	m, cmd := NewModel(e).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not quit the program")
	}
	if e.IsRunning() || !m.(Model).Done() {
		t.Error("engine still running after quit key")
	}
	if m.View() != "" {
		t.Errorf("View() after quit = %q", m.View())
	}
}

func TestEmbeddedModelReturnsWhenEngineStops(t *testing.T) {
	var log keyLog
	e := newTestEngine(t, &log)
	model := NewModel(e)
	model.embedded = true

	e.PostEvent(input.Event{Type: input.Closed})
	m, cmd := model.Update(FrameMsg(time.Now()))
	if cmd != nil {
		t.Error("embedded model issued a command after the engine stopped")
	}
	if !m.(Model).Done() {
		t.Error("Done() = false after the engine stopped")
	}
}

func TestMenuSelection(t *testing.T) {
	m := NewMenuModel(40, 10)
	m.items = []registry.Info{{ID: "one", Title: "One"}, {ID: "two", Title: "Two"}}

	var model tea.Model = m
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("selection did not quit the standalone menu")
	}
	got := model.(MenuModel).Selected()
	if got == nil || got.ID != "two" {
		t.Errorf("Selected() = %v, expected two", got)
	}
	if !strings.Contains(model.View(), "Two") {
		t.Error("View() does not list the scenes")
	}
}
