// Package engine runs the scene stack: it owns the frame loop, the
// engine-wide dispatcher, global timers and caches, and hands them to scenes
// through scene.Context.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/object"
	"github.com/vovakirdan/gridstage/internal/pref"
	"github.com/vovakirdan/gridstage/internal/render"
	"github.com/vovakirdan/gridstage/internal/scene"
	"github.com/vovakirdan/gridstage/internal/timer"
)

// EventShutdown is emitted on the dispatcher right before the engine tears
// its scenes down.
const EventShutdown = "shutdown"

// Engine drives scenes with a fixed-step accumulator.
//
// Frame, Render and the scene proxies must be called from one goroutine.
// PostEvent and Quit may be called from anywhere.
type Engine struct {
	cfg        config.EngineConfig
	log        *log.Logger
	scenes     *scene.Manager
	dispatcher *event.Dispatcher
	timers     *timer.Manager
	cache      *object.PropertyContainer
	prefs      *pref.Container
	prefsPath  string
	queue      input.Queue
	screen     *core.Screen

	fixedDt     core.Time
	maxSteps    int
	accumulator core.Time
	elapsed     core.Time
	frames      uint64
	quit        atomic.Bool
}

// New creates an engine from a validated config. A nil logger logs nowhere.
// The preference file named by cfg.Prefs is loaded if it exists.
func New(cfg config.EngineConfig, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		cfg:       cfg,
		log:       logger,
		timers:    timer.NewManager(),
		cache:     object.NewPropertyContainer(),
		prefs:     pref.NewContainer(),
		prefsPath: cfg.Prefs,
		screen:    core.NewScreen(cfg.Screen.Width, cfg.Screen.Height),
		fixedDt:   cfg.Loop.FixedDelta(),
		maxSteps:  cfg.Loop.MaxFixedSteps,
	}
	e.scenes = scene.NewManager(e)

	if e.prefsPath != "" {
		if err := e.prefs.Load(e.prefsPath); err != nil && !errors.Is(err, pref.ErrFileNotFound) {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	e.log.Info("engine created",
		"title", cfg.Title,
		"screen", fmt.Sprintf("%dx%d", cfg.Screen.Width, cfg.Screen.Height),
		"fps", cfg.Loop.FrameRate,
		"fixed", cfg.Loop.FixedRate,
	)
	return e, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() config.EngineConfig { return e.cfg }

// Dispatcher returns the engine-wide dispatcher, creating it on first use.
func (e *Engine) Dispatcher() *event.Dispatcher {
	if e.dispatcher == nil {
		e.dispatcher = event.NewDispatcher()
	}
	return e.dispatcher
}

func (e *Engine) GlobalTimers() *timer.Manager      { return e.timers }
func (e *Engine) Cache() *object.PropertyContainer  { return e.cache }
func (e *Engine) SavableCache() *pref.Container     { return e.prefs }
func (e *Engine) Logger() *log.Logger               { return e.log }
func (e *Engine) Scenes() *scene.Manager            { return e.scenes }
func (e *Engine) Screen() *core.Screen              { return e.screen }
func (e *Engine) Elapsed() core.Time                { return e.elapsed }
func (e *Engine) FrameCount() uint64                { return e.frames }
func (e *Engine) IsRunning() bool                   { return !e.quit.Load() }
func (e *Engine) PostEvent(events ...input.Event)   { e.queue.Push(events...) }
func (e *Engine) PendingEvents() int                { return e.queue.Len() }
func (e *Engine) SetPrefsPath(path string)          { e.prefsPath = path }
func (e *Engine) PushScene(s *scene.Scene) error    { return e.scenes.Push(s, true) }
func (e *Engine) PopScene()                         { e.scenes.Pop(true) }
func (e *Engine) PushCachedScene(name string) error { return e.scenes.PushCached(name, true) }
func (e *Engine) CacheScene(name string, s *scene.Scene) error {
	return e.scenes.Cache(name, s)
}

// PopScenes pops n scenes; only the scene exposed by the last pop resumes.
func (e *Engine) PopScenes(n int) {
	e.scenes.PopN(n, true)
}

// Quit stops the main loop. The current frame finishes its update but is
// not rendered; scenes are torn down by Shutdown.
func (e *Engine) Quit() {
	if e.quit.CompareAndSwap(false, true) {
		e.log.Info("engine quit", "frames", e.frames, "elapsed", e.elapsed)
	}
}

// Frame runs one frame of dt: events, fixed steps, update, render.
func (e *Engine) Frame(dt core.Time) {
	if e.quit.Load() {
		return
	}
	if dt < 0 {
		dt = 0
	}
	e.frames++
	e.elapsed += dt

	e.scenes.BeginFrame()
	defer e.afterFrame()
	defer e.scenes.EndFrame()
	e.timers.PreUpdate()

	events := e.systemEvents(e.queue.Drain())
	if e.quit.Load() {
		return
	}

	e.scenes.Update(&scene.Frame{
		Events:     events,
		FixedSteps: e.fixedSteps(dt),
		FixedDelta: e.fixedDt,
		Delta:      dt,
	})
	e.timers.Update(core.ScaleTime(dt, e.cfg.Loop.Timescale))
	if e.quit.Load() {
		return
	}

	e.screen.Clear()
	e.scenes.Render(e.screen)
}

// afterFrame runs once deferred stack operations are applied.
func (e *Engine) afterFrame() {
	if e.cfg.Loop.QuitWhenEmpty && e.scenes.IsEmpty() && !e.scenes.HasPending() {
		e.Quit()
	}
}

// fixedSteps consumes whole fixed steps from the accumulator. Backlog past
// maxSteps is dropped so a long stall cannot spiral.
func (e *Engine) fixedSteps(dt core.Time) int {
	e.accumulator += dt
	steps := int(e.accumulator / e.fixedDt)
	if steps > e.maxSteps {
		e.log.Debug("fixed steps dropped", "steps", steps-e.maxSteps)
		steps = e.maxSteps
		e.accumulator %= e.fixedDt
		return steps
	}
	e.accumulator -= time.Duration(steps) * e.fixedDt
	return steps
}

// systemEvents handles resize and close, returning what scenes should see.
func (e *Engine) systemEvents(events []input.Event) []input.Event {
	out := events[:0]
	for _, ev := range events {
		switch ev.Type {
		case input.Closed:
			e.Quit()
			return nil
		case input.Resized:
			if ev.Width > 0 && ev.Height > 0 {
				e.screen.Resize(ev.Width, ev.Height)
			}
		}
		out = append(out, ev)
	}
	return out
}

// Render paints the active scenes onto t.
func (e *Engine) Render(t render.Target) {
	e.scenes.Render(t)
}

// Run drives Frame at the configured frame rate until Quit or ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.Loop.FrameDuration()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info("engine started", "interval", interval)
	last := time.Now()
	for e.IsRunning() {
		select {
		case <-ctx.Done():
			e.Quit()
			return ctx.Err()
		case now := <-ticker.C:
			e.Frame(now.Sub(last))
			last = now
		}
	}
	return nil
}

// Shutdown tears every scene down, saves the preference cache and drops
// the engine's dispatcher reference.
func (e *Engine) Shutdown() error {
	e.Quit()
	if e.dispatcher != nil {
		//nolint:errcheck // listener signature errors are not fatal at shutdown
		e.dispatcher.Emit(EventShutdown)
	}
	e.scenes.Clear()
	e.scenes.ClearCache()
	e.timers.Clear()
	e.queue.Clear()

	var err error
	if e.prefsPath != "" {
		if err = e.prefs.Save(e.prefsPath); err != nil {
			err = fmt.Errorf("engine: saving preferences: %w", err)
			e.log.Error("shutdown", "err", err)
		}
	}
	if e.dispatcher != nil {
		e.dispatcher.Release()
		e.dispatcher = nil
	}
	return err
}
