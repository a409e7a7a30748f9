package scene

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/render"
)

func newMarker() *render.Sprite { return render.NewSprite('u', core.ColorDefault) }

func TestSceneStackLifecycle(t *testing.T) {
	e := newFakeEngine()
	m := e.scenes
	var calls []string
	a, b, c := recorded("A", &calls), recorded("B", &calls), recorded("C", &calls)

	m.Push(a, false) //nolint:errcheck // fresh scene
	m.Push(b, false) //nolint:errcheck // fresh scene
	m.Push(c, true)  //nolint:errcheck // fresh scene
	expectLog(t, &calls, "A.init", "B.init", "C.init", "C.enter")

	m.Pop(false)
	expectLog(t, &calls, "C.exit")
	if b.IsEntered() {
		t.Error("B entered before EnterTopScene()")
	}

	m.EnterTopScene()
	expectLog(t, &calls, "B.enter")
	m.EnterTopScene()
	expectLog(t, &calls)

	m.Pop(true)
	expectLog(t, &calls, "B.exit", "A.enter")
	if m.Top() != a || m.Count() != 1 {
		t.Errorf("Top() = %v Count() = %d, expected A and 1", m.Top(), m.Count())
	}
}

func TestEnterPausesPrevious(t *testing.T) {
	e := newFakeEngine()
	m := e.scenes
	var calls []string
	a, b := recorded("A", &calls), recorded("B", &calls)

	m.Push(a, true) //nolint:errcheck // fresh scene
	m.Push(b, true) //nolint:errcheck // fresh scene
	expectLog(t, &calls, "A.init", "A.enter", "B.init", "A.pause", "B.enter")
	if !a.IsPaused() || !b.IsActive() {
		t.Error("A not paused or B not active")
	}

	m.Pop(true)
	expectLog(t, &calls, "B.exit", "A.resume")
	if !a.IsActive() {
		t.Error("A not active after pop")
	}
}

func TestEnterExitOncePerLifetime(t *testing.T) {
	e := newFakeEngine()
	m := e.scenes
	enters, exits := 0, 0
	s := New("s", &Funcs{
		Enter: func(*Scene) { enters++ },
		Exit:  func(*Scene) { exits++ },
	})
	m.Push(s, true) //nolint:errcheck // fresh scene
	if err := m.PopToCache("saved"); err != nil {
		t.Fatalf("PopToCache() error = %v", err)
	}
	if err := m.PushCached("saved", true); err != nil {
		t.Fatalf("PushCached() error = %v", err)
	}
	m.EnterTopScene()
	m.Pop(true)
	m.Pop(true)
	if enters != 1 || exits != 1 {
		t.Errorf("enters = %d exits = %d, expected 1 and 1", enters, exits)
	}
	if err := m.Push(s, true); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Push() of an exited scene error = %v, expected ErrInvalidArgument", err)
	}
}

func TestPushValidation(t *testing.T) {
	m := newFakeEngine().scenes
	s := New("s", nil)
	if err := m.Push(nil, true); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Push(nil) error = %v", err)
	}
	m.Push(s, true) //nolint:errcheck // fresh scene
	if err := m.Push(s, true); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Push() twice error = %v, expected ErrInvalidArgument", err)
	}
}

func TestDeferredOperationsDuringFrame(t *testing.T) {
	e := newFakeEngine()
	m := e.scenes
	var calls []string
	base := recorded("base", &calls)
	m.Push(base, true) //nolint:errcheck // fresh scene
	calls = nil

	a, b := recorded("A", &calls), recorded("B", &calls)
	m.BeginFrame()
	m.Push(a, true) //nolint:errcheck // fresh scene
	m.Push(b, true) //nolint:errcheck // fresh scene
	if m.Count() != 1 || !m.HasPending() {
		t.Fatalf("Count() = %d during frame, expected the push deferred", m.Count())
	}
	m.Update(&Frame{Delta: time.Millisecond})
	m.EndFrame()

	expectLog(t, &calls,
		"base.update", "base.postUpdate",
		"A.init", "B.init", "base.pause", "B.enter")
	if a.IsEntered() {
		t.Error("A entered although B was pushed over it in the same frame")
	}
	if m.Top() != b || m.Count() != 3 {
		t.Errorf("Top() = %v Count() = %d, expected B and 3", m.Top(), m.Count())
	}

	// pops are deferred too; the exposed scene is entered at frame end
	m.BeginFrame()
	m.Pop(true)
	if m.Top() != b {
		t.Error("Pop() during frame applied immediately")
	}
	m.EndFrame()
	expectLog(t, &calls, "B.exit", "A.enter")
}

func TestClearIsImmediateDuringFrame(t *testing.T) {
	m := newFakeEngine().scenes
	var calls []string
	a := recorded("A", &calls)
	m.Push(a, true) //nolint:errcheck // fresh scene
	calls = nil

	m.BeginFrame()
	m.Push(New("late", nil), true) //nolint:errcheck // fresh scene
	m.Clear()
	expectLog(t, &calls, "A.exit")
	if !m.IsEmpty() || m.HasPending() || !a.IsDestroyed() {
		t.Error("Clear() did not empty the stack immediately")
	}
	m.EndFrame()
	if !m.IsEmpty() {
		t.Error("deferred push survived Clear()")
	}
}

func TestPopNResumesOnlyLast(t *testing.T) {
	m := newFakeEngine().scenes
	var calls []string
	scenes := []*Scene{recorded("A", &calls), recorded("B", &calls), recorded("C", &calls), recorded("D", &calls)}
	for _, s := range scenes {
		m.Push(s, true) //nolint:errcheck // fresh scene
	}
	calls = nil

	m.PopN(2, true)
	expectLog(t, &calls, "D.exit", "C.exit", "B.resume")
	if m.Top() != scenes[1] {
		t.Errorf("Top() = %v, expected B", m.Top())
	}
}

func TestPoppedScenesDestroyedNextFrame(t *testing.T) {
	m := newFakeEngine().scenes
	a, b := New("a", nil), New("b", nil)
	m.Push(a, true) //nolint:errcheck // fresh scene
	m.Push(b, true) //nolint:errcheck // fresh scene

	m.Pop(true)
	if b.IsDestroyed() {
		t.Error("popped scene destroyed before the next frame")
	}
	m.BeginFrame()
	if !b.IsDestroyed() {
		t.Error("popped scene not destroyed at BeginFrame()")
	}
	m.EndFrame()
}

func TestClearAllExceptActive(t *testing.T) {
	m := newFakeEngine().scenes
	var calls []string
	a, b, c := recorded("A", &calls), recorded("B", &calls), recorded("C", &calls)
	m.Push(a, true) //nolint:errcheck // fresh scene
	m.Push(b, true) //nolint:errcheck // fresh scene
	m.Push(c, true) //nolint:errcheck // fresh scene
	calls = nil

	m.ClearAllExceptActive()
	expectLog(t, &calls, "B.exit", "A.exit")
	if m.Count() != 1 || m.Top() != c || !c.IsActive() {
		t.Error("ClearAllExceptActive() disturbed the top scene")
	}
}

func TestSceneCache(t *testing.T) {
	m := newFakeEngine().scenes
	var calls []string
	a, b := recorded("A", &calls), recorded("B", &calls)
	m.Push(a, true) //nolint:errcheck // fresh scene
	m.Push(b, true) //nolint:errcheck // fresh scene
	calls = nil

	if err := m.PopToCache("level"); err != nil {
		t.Fatalf("PopToCache() error = %v", err)
	}
	expectLog(t, &calls, "B.cache", "A.resume")
	if !m.IsCached("level") || !b.IsCached() || b.IsExited() {
		t.Error("B not cached intact")
	}
	if err := m.PopToCache("level"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PopToCache() with a used name error = %v, expected ErrInvalidArgument", err)
	}

	if err := m.PushCached("level", true); err != nil {
		t.Fatalf("PushCached() error = %v", err)
	}
	expectLog(t, &calls, "B.resumeFromCache", "A.pause")
	if m.Top() != b || !b.IsActive() || b.IsCached() {
		t.Error("B not back on top and active")
	}
	if err := m.PushCached("level", true); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PushCached() of a missing name error = %v, expected ErrInvalidArgument", err)
	}

	side := New("side", nil)
	if err := m.Cache("side", side); err != nil {
		t.Fatalf("Cache() error = %v", err)
	}
	if err := m.Cache("side2", side); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("caching twice error = %v, expected ErrInvalidArgument", err)
	}
	if got := m.CachedNames(); !reflect.DeepEqual(got, []string{"side"}) {
		t.Errorf("CachedNames() = %v", got)
	}
	got, ok := m.GetCached("side")
	if !ok || got != side || side.IsCached() || m.IsCached("side") {
		t.Error("GetCached() did not hand the scene over")
	}

	m.Cache("again", side) //nolint:errcheck // free name
	m.ClearCache()
	if !side.IsDestroyed() {
		t.Error("ClearCache() did not destroy the scene")
	}
}

func TestDeferredPushCachedKeepsSceneOnFailure(t *testing.T) {
	m := newFakeEngine().scenes
	var calls []string
	a, b := recorded("A", &calls), recorded("B", &calls)
	m.Push(a, true)       //nolint:errcheck // fresh scene
	m.Push(b, true)       //nolint:errcheck // fresh scene
	m.PopToCache("level") //nolint:errcheck // free name

	m.BeginFrame()
	if err := m.PushCached("level", true); err != nil {
		t.Fatalf("PushCached() error = %v", err)
	}
	if !m.IsCached("level") {
		t.Error("scene left the cache before EndFrame()")
	}
	// B becomes a background before the push is applied.
	if err := a.SetBackgroundScene(b); err != nil {
		t.Fatalf("SetBackgroundScene() error = %v", err)
	}
	calls = nil
	m.EndFrame()

	if m.Top() != a || m.Count() != 1 {
		t.Errorf("Top() = %v Count() = %d, expected A alone", m.Top(), m.Count())
	}
	if !m.IsCached("level") || !b.IsCached() {
		t.Error("scene lost after the deferred push was dropped")
	}
	expectLog(t, &calls)

	side := New("side", nil)
	m.Cache("side", side) //nolint:errcheck // free name
	m.BeginFrame()
	m.PushCached("side", true) //nolint:errcheck // cached
	got, ok := m.GetCached("side")
	m.EndFrame()
	if !ok || got != side || m.contains(side) {
		t.Error("scene taken with GetCached() was still pushed")
	}
}

func TestCacheRejectsExitedScenes(t *testing.T) {
	m := newFakeEngine().scenes
	exited := New("exited", nil)
	m.Push(exited, true) //nolint:errcheck // fresh scene
	m.Pop(false)
	if err := m.Cache("exited", exited); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Cache() of an exited scene error = %v, expected ErrInvalidArgument", err)
	}

	destroyed := New("destroyed", nil)
	m.Cache("first", destroyed) //nolint:errcheck // free name
	m.ClearCache()
	if err := m.Cache("second", destroyed); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Cache() of a destroyed scene error = %v, expected ErrInvalidArgument", err)
	}
	if m.IsCached("exited") || m.IsCached("second") {
		t.Error("rejected scene was cached")
	}
}

func TestPauseActions(t *testing.T) {
	tests := []struct {
		name   string
		action PauseAction
		calls  []string
		shown  bool
	}{
		{"default", PauseDefault, nil, false},
		{"show", PauseShow, nil, true},
		{"time", PauseUpdateTime, []string{"under.update", "under.postUpdate"}, false},
		{"system", PauseUpdateSystem, []string{"under.event"}, false},
		{"all", PauseUpdateAll, []string{"under.event", "under.update", "under.postUpdate"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFakeEngine().scenes
			var calls []string
			under := recorded("under", &calls)
			under.SetOnPauseAction(tt.action)
			m.Push(under, true)                //nolint:errcheck // fresh scene
			m.Push(New("top", &Funcs{}), true) //nolint:errcheck // fresh scene
			under.AddSprite(newMarker(), 0)
			calls = nil

			m.BeginFrame()
			m.Update(&Frame{Events: []input.Event{input.Press(input.KeyP)}, Delta: time.Millisecond})
			screen := core.NewScreen(1, 1)
			m.Render(screen)
			m.EndFrame()

			var got []string
			for _, c := range calls {
				if c != "under.preRender" && c != "under.postRender" {
					got = append(got, c)
				}
			}
			if !reflect.DeepEqual(got, tt.calls) {
				t.Errorf("under hooks = %v, expected %v", got, tt.calls)
			}
			if shown := screen.Get(0, 0) == 'u'; shown != tt.shown {
				t.Errorf("under shown = %v, expected %v", shown, tt.shown)
			}
		})
	}
}
