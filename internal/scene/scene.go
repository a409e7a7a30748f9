// Package scene implements scenes and the scene stack.
//
// A Scene owns everything that lives and dies with one screen of a game:
// cameras, render layers, sprites, shapes, grid objects, grid movers, at
// most one grid, a lazily created physics world, timers, input, audio and
// GUI. User behaviour is attached through the optional hook interfaces in
// hooks.go. The Manager drives the per-frame orchestration of the stack.
package scene

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/object"
	"github.com/vovakirdan/gridstage/internal/physics"
	"github.com/vovakirdan/gridstage/internal/pref"
	"github.com/vovakirdan/gridstage/internal/render"
	"github.com/vovakirdan/gridstage/internal/timer"
)

// Errors reported by scenes and the scene manager.
var (
	ErrAccessViolation = errors.New("scene: access violation")
	ErrInvalidArgument = errors.New("scene: invalid argument")
)

// EventPostStep is emitted on the scene after every fixed step (core.Time).
const EventPostStep = "postStep"

// GridLayer is the render layer the grid's tile map is drawn on.
const GridLayer = 0

// PauseAction selects what a paused scene keeps doing while another scene
// is active on top of it.
type PauseAction uint8

const (
	// PauseShow keeps the paused scene rendered under the active one.
	PauseShow PauseAction = 1 << iota
	// PauseUpdateTime keeps timers, physics, movers and updates running.
	PauseUpdateTime
	// PauseUpdateSystem keeps delivering system events.
	PauseUpdateSystem

	// PauseDefault freezes and hides the paused scene.
	PauseDefault PauseAction = 0
	// PauseUpdateAll keeps the paused scene fully alive.
	PauseUpdateAll = PauseShow | PauseUpdateTime | PauseUpdateSystem
)

// Has reports whether every bit of b is set.
func (a PauseAction) Has(b PauseAction) bool { return a&b == b && b != 0 }

// Context is the engine state a bound scene can reach.
type Context interface {
	Dispatcher() *event.Dispatcher
	GlobalTimers() *timer.Manager
	Cache() *object.PropertyContainer
	SavableCache() *pref.Container
	Logger() *log.Logger
	Scenes() *Manager
	Quit()
}

// Mover is a grid mover owned by a scene.
type Mover interface {
	object.Identifiable
	Update(dt core.Time)
	SetClock(c grid.Clock)
	Destroy()
}

// Scene is one entry of the scene stack.
type Scene struct {
	object.Object

	name       string
	hooks      any
	ctx        Context
	log        *log.Logger
	dispatcher *event.Dispatcher

	timescale   float64
	initialized bool
	entered     bool
	paused      bool
	exited      bool
	cached      bool
	pauseAction PauseAction

	background *Scene
	parent     *Scene
	bgUpdates  bool
	bgEvents   bool

	timers  *timer.Manager
	input   *input.Manager
	audio   AudioManager
	gui     GUIContainer
	cameras *render.Cameras
	layers  *render.Layers
	objects *object.Container[*grid.Object]
	sprites *object.Container[*render.Sprite]
	shapes  *object.Container[*render.Shape]
	movers  *object.Container[Mover]
	grid    *grid.Grid
	tilemap *render.TileMap
	physics physics.Engine
}

// New creates an unbound scene. hooks may implement any of the hook
// interfaces and may be nil.
func New(name string, hooks any) *Scene {
	s := &Scene{
		Object:    object.New("Scene"),
		name:      name,
		hooks:     hooks,
		log:       log.New(io.Discard),
		timescale: 1,
		bgUpdates: true,
		timers:    timer.NewManager(),
		input:     input.NewManager(),
		audio:     NewSilentAudio(),
		gui:       NewGUI(),
		cameras:   render.NewCameras(render.NewCamera(core.V2f(1, 1))),
		layers:    render.NewLayers(),
		objects:   object.NewContainer[*grid.Object](),
		sprites:   object.NewContainer[*render.Sprite](),
		shapes:    object.NewContainer[*render.Shape](),
		movers:    object.NewContainer[Mover](),
	}
	s.SetTag(name)
	return s
}

// Name returns the name the scene was created with.
func (s *Scene) Name() string { return s.name }

// Hooks returns the value passed to New.
func (s *Scene) Hooks() any { return s.hooks }

// Engine returns the engine the scene is bound to. Calling it before the
// scene is initialized panics with ErrAccessViolation.
func (s *Scene) Engine() Context {
	if s.ctx == nil {
		panic(fmt.Errorf("%w: scene %q used before initialization", ErrAccessViolation, s.name))
	}
	return s.ctx
}

// Dispatcher returns the engine-wide event dispatcher.
func (s *Scene) Dispatcher() *event.Dispatcher { return s.Engine().Dispatcher() }

// Cache returns the engine's read-mostly cache.
func (s *Scene) Cache() *object.PropertyContainer { return s.Engine().Cache() }

// SavableCache returns the engine's preference cache, saved on shutdown.
func (s *Scene) SavableCache() *pref.Container { return s.Engine().SavableCache() }

// Logger returns the scene logger. Unbound scenes log nowhere.
func (s *Scene) Logger() *log.Logger { return s.log }

func (s *Scene) IsInitialized() bool { return s.initialized }
func (s *Scene) IsEntered() bool     { return s.entered }
func (s *Scene) IsPaused() bool      { return s.paused }
func (s *Scene) IsExited() bool      { return s.exited }
func (s *Scene) IsCached() bool      { return s.cached }

// IsActive reports whether the scene is entered and neither paused nor
// exited.
func (s *Scene) IsActive() bool { return s.entered && !s.paused && !s.exited }

// Timescale returns the scene's time multiplier.
func (s *Scene) Timescale() float64 { return s.timescale }

// SetTimescale changes the scene's time multiplier. 0 freezes timers,
// animations, physics and grid movers while events still flow.
func (s *Scene) SetTimescale(ts float64) error {
	if ts < 0 {
		return fmt.Errorf("scene: timescale %g: %w", ts, ErrInvalidArgument)
	}
	s.timescale = ts
	s.EmitChange(object.NewProperty(object.PropTimescale, ts))
	return nil
}

// OnPauseAction returns what the scene does while paused.
func (s *Scene) OnPauseAction() PauseAction { return s.pauseAction }

// SetOnPauseAction sets what the scene does while paused.
func (s *Scene) SetOnPauseAction(a PauseAction) { s.pauseAction = a }

// Timers returns the scene timer manager. Timers advance by the scaled
// frame delta and die with the scene.
func (s *Scene) Timers() *timer.Manager { return s.timers }

// Input returns the scene input manager.
func (s *Scene) Input() *input.Manager { return s.input }

// Audio returns the scene audio manager.
func (s *Scene) Audio() AudioManager { return s.audio }

// SetAudio replaces the audio manager.
func (s *Scene) SetAudio(a AudioManager) {
	if a != nil {
		s.audio = a
	}
}

// GUI returns the scene GUI container.
func (s *Scene) GUI() GUIContainer { return s.gui }

// SetGUI replaces the GUI container.
func (s *Scene) SetGUI(g GUIContainer) {
	if g != nil {
		s.gui = g
	}
}

// Camera returns the main camera.
func (s *Scene) Camera() *render.Camera { return s.cameras.Main() }

// Cameras returns the camera container.
func (s *Scene) Cameras() *render.Cameras { return s.cameras }

// Layers returns the render layer container.
func (s *Scene) Layers() *render.Layers { return s.layers }

// AddSprite takes ownership of sp and draws it on layer.
func (s *Scene) AddSprite(sp *render.Sprite, layer int) bool {
	if !s.sprites.Add(sp) {
		return false
	}
	s.layers.Add(sp, layer)
	return true
}

// RemoveSprite destroys sp.
func (s *Scene) RemoveSprite(sp *render.Sprite) bool { return s.sprites.Remove(sp.ID()) }

// Sprites returns the owned sprites.
func (s *Scene) Sprites() *object.Container[*render.Sprite] { return s.sprites }

// AddShape takes ownership of sh and draws it on layer.
func (s *Scene) AddShape(sh *render.Shape, layer int) bool {
	if !s.shapes.Add(sh) {
		return false
	}
	s.layers.Add(sh, layer)
	return true
}

// RemoveShape destroys sh.
func (s *Scene) RemoveShape(sh *render.Shape) bool { return s.shapes.Remove(sh.ID()) }

// Shapes returns the owned shapes.
func (s *Scene) Shapes() *object.Container[*render.Shape] { return s.shapes }

// AddGameObject takes ownership of obj. Placing it on the grid is up to
// the caller. Movers driving obj follow this scene's timescale.
func (s *Scene) AddGameObject(obj *grid.Object) bool {
	if !s.objects.Add(obj) {
		return false
	}
	obj.SetClock(s)
	return true
}

// RemoveGameObject destroys obj, which also takes it off its grid.
func (s *Scene) RemoveGameObject(obj *grid.Object) bool {
	if !s.objects.Remove(obj.ID()) {
		return false
	}
	obj.SetClock(nil)
	return true
}

// GameObjects returns the owned grid objects.
func (s *Scene) GameObjects() *object.Container[*grid.Object] { return s.objects }

// AddMover takes ownership of m. The scene advances it every fixed step
// and its speed follows the scene timescale.
func (s *Scene) AddMover(m Mover) bool {
	if !s.movers.Add(m) {
		return false
	}
	m.SetClock(s)
	return true
}

// RemoveMover destroys m.
func (s *Scene) RemoveMover(m Mover) bool { return s.movers.Remove(m.ID()) }

// Movers returns the owned grid movers.
func (s *Scene) Movers() *object.Container[Mover] { return s.movers }

// CreateGrid creates the scene grid and puts its tile map on GridLayer.
func (s *Scene) CreateGrid(rows, cols int, tileID rune, tileSize core.Vector2f) (*grid.Grid, error) {
	g, err := grid.New(rows, cols, tileID, tileSize)
	if err != nil {
		return nil, err
	}
	if err := s.SetGrid(g); err != nil {
		return nil, err
	}
	return g, nil
}

// SetGrid installs g as the scene grid. A scene has at most one grid.
func (s *Scene) SetGrid(g *grid.Grid) error {
	if g == nil {
		return fmt.Errorf("scene: set grid: %w: nil grid", ErrInvalidArgument)
	}
	if s.grid != nil {
		return fmt.Errorf("scene %q: %w: grid already set", s.name, ErrAccessViolation)
	}
	s.grid = g
	s.tilemap = render.NewTileMap(g)
	s.layers.Add(s.tilemap, GridLayer)
	return nil
}

// Grid returns the scene grid, or nil.
func (s *Scene) Grid() *grid.Grid { return s.grid }

// TileMap returns the drawable of the scene grid, or nil.
func (s *Scene) TileMap() *render.TileMap { return s.tilemap }

// CreateKeyboardMover creates a keyboard mover on the scene grid wired to
// the scene input, and takes ownership of it.
func (s *Scene) CreateKeyboardMover(trigger grid.Trigger) (*grid.KeyboardMover, error) {
	if s.grid == nil {
		return nil, fmt.Errorf("scene %q: keyboard mover: %w: no grid", s.name, ErrAccessViolation)
	}
	km := grid.NewKeyboardMover(s.grid, s.input, trigger)
	s.AddMover(km)
	return km, nil
}

// Physics returns the scene physics engine, creating a gravity-free world
// bounded by the grid on first use.
func (s *Scene) Physics() physics.Engine {
	if s.physics == nil {
		w := physics.NewWorld(core.Vector2f{})
		if s.grid != nil {
			size := s.grid.PixelSize()
			pos := s.grid.Position()
			w.SetBounds(core.NewRect(int(pos.X), int(pos.Y), int(size.X), int(size.Y)))
		}
		s.physics = w
	}
	return s.physics
}

// HasPhysics reports whether a physics engine exists.
func (s *Scene) HasPhysics() bool { return s.physics != nil }

// SetPhysics installs a custom physics engine.
func (s *Scene) SetPhysics(e physics.Engine) { s.physics = e }

// BackgroundScene returns the background scene, or nil.
func (s *Scene) BackgroundScene() *Scene { return s.background }

// IsBackgroundScene reports whether s is the background of another scene.
func (s *Scene) IsBackgroundScene() bool { return s.parent != nil }

// SetBackgroundScene installs bg to render beneath s. bg is initialized and
// entered. A previous background exits and is destroyed; nil removes it.
//
// The scene must be initialized and entered, bg must not have a background
// of its own, and bg must not be the background of another scene.
func (s *Scene) SetBackgroundScene(bg *Scene) error {
	if !s.initialized || !s.entered {
		return fmt.Errorf("scene %q: set background: %w: scene not entered", s.name, ErrAccessViolation)
	}
	if bg != nil {
		switch {
		case bg == s:
			return fmt.Errorf("scene %q: set background: %w: scene is its own background", s.name, ErrAccessViolation)
		case s.parent != nil:
			return fmt.Errorf("scene %q: set background: %w: background scenes cannot nest", s.name, ErrAccessViolation)
		case bg.background != nil:
			return fmt.Errorf("scene %q: set background %q: %w: background has a background", s.name, bg.name, ErrAccessViolation)
		case bg.parent != nil && bg.parent != s:
			return fmt.Errorf("scene %q: set background %q: %w: already a background", s.name, bg.name, ErrAccessViolation)
		}
		if bg == s.background {
			return nil
		}
	}

	if old := s.background; old != nil {
		s.background = nil
		old.parent = nil
		old.exit()
		old.destroy()
	}
	if bg == nil {
		return nil
	}
	bg.parent = s
	s.background = bg
	bg.init(s.ctx)
	bg.enter()
	s.log.Debug("background scene set", "background", bg.name)
	return nil
}

// BackgroundSceneUpdates reports whether the background receives time
// updates. Defaults to true.
func (s *Scene) BackgroundSceneUpdates() bool { return s.bgUpdates }

// SetBackgroundSceneUpdates toggles background time updates.
func (s *Scene) SetBackgroundSceneUpdates(on bool) { s.bgUpdates = on }

// BackgroundSceneEvents reports whether the background receives system
// events. Defaults to false.
func (s *Scene) BackgroundSceneEvents() bool { return s.bgEvents }

// SetBackgroundSceneEvents toggles background event delivery.
func (s *Scene) SetBackgroundSceneEvents(on bool) { s.bgEvents = on }

func (s *Scene) init(ctx Context) {
	if s.initialized {
		return
	}
	s.ctx = ctx
	if ctx != nil {
		if l := ctx.Logger(); l != nil {
			s.log = l.With("scene", s.name)
		}
		if d := ctx.Dispatcher(); d != nil {
			s.dispatcher = d.Acquire()
		}
	}
	s.initialized = true
	if h, ok := s.hooks.(Initializer); ok {
		h.OnInit(s)
	}
}

func (s *Scene) enter() {
	if s.entered {
		return
	}
	s.entered = true
	s.paused = false
	s.log.Debug("scene entered")
	if h, ok := s.hooks.(Enterer); ok {
		h.OnEnter(s)
	}
}

func (s *Scene) pause() {
	if !s.entered || s.paused || s.exited {
		return
	}
	s.paused = true
	s.audio.Pause()
	s.input.ReleaseAll()
	if h, ok := s.hooks.(Pauser); ok {
		h.OnPause(s)
	}
}

func (s *Scene) resume() {
	if !s.paused {
		return
	}
	s.paused = false
	s.audio.Resume()
	if h, ok := s.hooks.(Resumer); ok {
		h.OnResume(s)
	}
}

// activate makes s the running top scene: first entry, or a resume.
func (s *Scene) activate() {
	if !s.entered {
		s.enter()
		return
	}
	s.resume()
}

func (s *Scene) cache() {
	s.cached = true
	s.audio.Pause()
	s.input.ReleaseAll()
	if h, ok := s.hooks.(Cacher); ok {
		h.OnCache(s)
	}
}

func (s *Scene) resumeFromCache() {
	s.cached = false
	if h, ok := s.hooks.(CacheResumer); ok {
		h.OnResumeFromCache(s)
	}
}

func (s *Scene) exit() {
	if !s.entered || s.exited {
		return
	}
	s.exited = true
	s.audio.StopAll()
	if s.background != nil {
		s.background.exit()
	}
	s.log.Debug("scene exited")
	if h, ok := s.hooks.(Exiter); ok {
		h.OnExit(s)
	}
}

// destroy releases everything the scene owns. It is idempotent.
func (s *Scene) destroy() {
	if s.IsDestroyed() {
		return
	}
	if bg := s.background; bg != nil {
		s.background = nil
		bg.parent = nil
		bg.destroy()
	}
	s.movers.Clear()
	if s.grid != nil {
		s.grid.RemoveAllChildren()
	}
	s.objects.Clear()
	s.sprites.Clear()
	s.shapes.Clear()
	s.layers.Clear()
	s.cameras.Clear()
	s.gui.Clear()
	s.timers.Clear()
	s.input.Clear()
	if s.dispatcher != nil {
		s.dispatcher.Release()
		s.dispatcher = nil
	}
	s.Object.Destroy()
}

func (s *Scene) handleEvent(ev input.Event) {
	if s.gui.HandleEvent(ev) {
		return
	}
	if err := s.input.HandleEvent(ev); err != nil {
		s.log.Warn("input listener skipped", "err", err)
	}
	if h, ok := s.hooks.(EventHandler); ok {
		h.OnHandleEvent(s, ev)
	}
}

func (s *Scene) preUpdate() {
	s.timers.PreUpdate()
}

func (s *Scene) fixedUpdate(dt core.Time) {
	if h, ok := s.hooks.(FixedUpdater); ok {
		h.OnFixedUpdate(s, dt)
	}
	if s.physics != nil {
		s.physics.Step(core.ScaleTime(dt, s.timescale))
	}
	s.movers.ForEach(func(m Mover) { m.Update(dt) })
	if err := s.Events().Emit(EventPostStep, dt); err != nil {
		s.log.Warn("postStep listener skipped", "err", err)
	}
}

func (s *Scene) update(dt core.Time) {
	scaled := core.ScaleTime(dt, s.timescale)
	s.timers.Update(scaled)
	s.layers.Update(scaled)
	if h, ok := s.hooks.(Updater); ok {
		h.OnUpdate(s, dt)
	}
}

// postUpdate reconciles grid objects driven by rigid bodies with their
// simulated position, then runs the user hook.
func (s *Scene) postUpdate(dt core.Time) {
	if s.physics != nil {
		for _, b := range s.physics.Bodies() {
			if o, ok := b.UserData.(*grid.Object); ok && o.Position() != b.Position {
				o.SetPosition(b.Position)
			}
		}
	}
	if h, ok := s.hooks.(PostUpdater); ok {
		h.OnPostUpdate(s, dt)
	}
}

// frame runs one frame of updates. events and time select which halves
// run, for paused and background scenes.
func (s *Scene) frame(f *Frame, events, time bool) {
	if events {
		for _, ev := range f.Events {
			s.handleEvent(ev)
		}
	}
	if !time {
		return
	}
	s.preUpdate()
	for i := 0; i < f.FixedSteps; i++ {
		s.fixedUpdate(f.FixedDelta)
	}
	s.update(f.Delta)
	s.postUpdate(f.Delta)
}

func (s *Scene) render(t render.Target) {
	if s.background != nil {
		s.background.render(t)
	}
	if h, ok := s.hooks.(PreRenderer); ok {
		h.OnPreRender(s)
	}
	s.cameras.Update(t.Width(), t.Height())
	for _, cam := range s.cameras.All() {
		s.layers.Render(t, cam)
	}
	s.gui.Render(t)
	if h, ok := s.hooks.(PostRenderer); ok {
		h.OnPostRender(s)
	}
}

// String returns the scene name.
func (s *Scene) String() string { return s.name }
