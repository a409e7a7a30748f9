package scene

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/input"
)

// A scene's behaviour is any value passed to New. The engine calls the
// hooks below on it when it implements them; missing hooks are no-ops.

// Initializer runs once after the scene is bound to the engine.
type Initializer interface{ OnInit(s *Scene) }

// Enterer runs once when the scene first becomes the active scene.
type Enterer interface{ OnEnter(s *Scene) }

// Pauser runs when another scene is entered on top of this one.
type Pauser interface{ OnPause(s *Scene) }

// Resumer runs when the scene becomes active again after a pause.
type Resumer interface{ OnResume(s *Scene) }

// Cacher runs when the scene is moved from the stack into the cache.
type Cacher interface{ OnCache(s *Scene) }

// CacheResumer runs when a cached scene is pushed back.
type CacheResumer interface{ OnResumeFromCache(s *Scene) }

// Exiter runs once when an entered scene leaves the stack for good.
type Exiter interface{ OnExit(s *Scene) }

// EventHandler receives every system event delivered to the scene.
type EventHandler interface {
	OnHandleEvent(s *Scene, ev input.Event)
}

// FixedUpdater runs zero or more times per frame with the fixed delta.
type FixedUpdater interface {
	OnFixedUpdate(s *Scene, dt core.Time)
}

// Updater runs once per frame with the variable delta.
type Updater interface {
	OnUpdate(s *Scene, dt core.Time)
}

// PostUpdater runs after Updater.
type PostUpdater interface {
	OnPostUpdate(s *Scene, dt core.Time)
}

// PreRenderer runs before the scene's layers are painted.
type PreRenderer interface{ OnPreRender(s *Scene) }

// PostRenderer runs after the scene's layers and GUI are painted.
type PostRenderer interface{ OnPostRender(s *Scene) }

// Funcs adapts plain functions to the hook interfaces. Nil fields are
// skipped.
type Funcs struct {
	Init            func(s *Scene)
	Enter           func(s *Scene)
	Pause           func(s *Scene)
	Resume          func(s *Scene)
	Cache           func(s *Scene)
	ResumeFromCache func(s *Scene)
	Exit            func(s *Scene)
	HandleEvent     func(s *Scene, ev input.Event)
	FixedUpdate     func(s *Scene, dt core.Time)
	Update          func(s *Scene, dt core.Time)
	PostUpdate      func(s *Scene, dt core.Time)
	PreRender       func(s *Scene)
	PostRender      func(s *Scene)
}

func call(fn func(*Scene), s *Scene) {
	if fn != nil {
		fn(s)
	}
}

func callDt(fn func(*Scene, core.Time), s *Scene, dt core.Time) {
	if fn != nil {
		fn(s, dt)
	}
}

func (f *Funcs) OnInit(s *Scene)            { call(f.Init, s) }
func (f *Funcs) OnEnter(s *Scene)           { call(f.Enter, s) }
func (f *Funcs) OnPause(s *Scene)           { call(f.Pause, s) }
func (f *Funcs) OnResume(s *Scene)          { call(f.Resume, s) }
func (f *Funcs) OnCache(s *Scene)           { call(f.Cache, s) }
func (f *Funcs) OnResumeFromCache(s *Scene) { call(f.ResumeFromCache, s) }
func (f *Funcs) OnExit(s *Scene)            { call(f.Exit, s) }
func (f *Funcs) OnPreRender(s *Scene)       { call(f.PreRender, s) }
func (f *Funcs) OnPostRender(s *Scene)      { call(f.PostRender, s) }

func (f *Funcs) OnFixedUpdate(s *Scene, dt core.Time) { callDt(f.FixedUpdate, s, dt) }
func (f *Funcs) OnUpdate(s *Scene, dt core.Time)      { callDt(f.Update, s, dt) }
func (f *Funcs) OnPostUpdate(s *Scene, dt core.Time)  { callDt(f.PostUpdate, s, dt) }

func (f *Funcs) OnHandleEvent(s *Scene, ev input.Event) {
	if f.HandleEvent != nil {
		f.HandleEvent(s, ev)
	}
}
