package scene

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/render"
)

// Frame carries one frame's worth of input and time to the scene stack.
type Frame struct {
	Events     []input.Event
	FixedSteps int
	FixedDelta core.Time
	Delta      core.Time
}

type opKind int

const (
	opPush opKind = iota
	opPop
	opPopToCache
)

type op struct {
	kind      opKind
	scene     *Scene
	enter     bool
	fromCache bool
	n         int
	name      string
}

// Manager is the scene stack. The top scene is the active one.
//
// Stack operations issued between BeginFrame and EndFrame are deferred to
// EndFrame and applied in issue order; when several pushes land in one
// frame only the final top is entered. Clear is always immediate. Popped
// scenes are destroyed at the next BeginFrame.
type Manager struct {
	ctx     Context
	log     *log.Logger
	stack   []*Scene
	cached  map[string]*Scene
	pending []op
	reap    []*Scene
	inFrame bool
}

// NewManager creates an empty stack binding pushed scenes to ctx.
// ctx may be nil in tests; scenes then log nowhere.
func NewManager(ctx Context) *Manager {
	m := &Manager{
		ctx:    ctx,
		log:    log.New(io.Discard),
		cached: make(map[string]*Scene),
	}
	if ctx != nil && ctx.Logger() != nil {
		m.log = ctx.Logger().With("component", "scenes")
	}
	return m
}

// Top returns the scene on top of the stack, or nil.
func (m *Manager) Top() *Scene {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// Count returns the stack depth.
func (m *Manager) Count() int { return len(m.stack) }

// IsEmpty reports whether the stack is empty.
func (m *Manager) IsEmpty() bool { return len(m.stack) == 0 }

// HasPending reports whether deferred operations are waiting for EndFrame.
func (m *Manager) HasPending() bool { return len(m.pending) > 0 }

// Scenes returns the stack bottom to top.
func (m *Manager) Scenes() []*Scene {
	out := make([]*Scene, len(m.stack))
	copy(out, m.stack)
	return out
}

// Find returns the topmost stacked scene with the given name.
func (m *Manager) Find(name string) (*Scene, bool) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].name == name {
			return m.stack[i], true
		}
	}
	return nil, false
}

func (m *Manager) contains(s *Scene) bool {
	for _, x := range m.stack {
		if x == s {
			return true
		}
	}
	return false
}

// Push adds s on top of the stack and initializes it. With enter, the
// previous top is paused and s is entered; otherwise s stays dormant until
// EnterTopScene.
func (m *Manager) Push(s *Scene, enter bool) error {
	if err := m.checkPushable(s); err != nil {
		return err
	}
	if m.inFrame {
		m.pending = append(m.pending, op{kind: opPush, scene: s, enter: enter})
		return nil
	}
	m.push(s, enter)
	return nil
}

func (m *Manager) checkPushable(s *Scene) error {
	switch {
	case s == nil:
		return fmt.Errorf("scene: push: %w: nil scene", ErrInvalidArgument)
	case s.IsDestroyed() || s.exited:
		return fmt.Errorf("scene: push %q: %w: scene has exited", s.name, ErrInvalidArgument)
	case s.parent != nil:
		return fmt.Errorf("scene: push %q: %w: scene is a background", s.name, ErrAccessViolation)
	case s.cached:
		return fmt.Errorf("scene: push %q: %w: scene is cached", s.name, ErrInvalidArgument)
	case m.contains(s):
		return fmt.Errorf("scene: push %q: %w: scene already stacked", s.name, ErrInvalidArgument)
	}
	return nil
}

func (m *Manager) push(s *Scene, enter bool) {
	prev := m.Top()
	s.init(m.ctx)
	m.stack = append(m.stack, s)
	m.log.Debug("scene pushed", "scene", s.name, "depth", len(m.stack), "enter", enter)
	if !enter {
		return
	}
	if prev != nil {
		prev.pause()
	}
	s.activate()
}

// Pop exits the top scene. With resumePrev the new top is resumed, or
// entered if it never was.
func (m *Manager) Pop(resumePrev bool) {
	m.PopN(1, resumePrev)
}

// PopN pops n scenes. Only the scene exposed by the last pop is resumed.
func (m *Manager) PopN(n int, resumePrev bool) {
	if n <= 0 {
		return
	}
	if m.inFrame {
		m.pending = append(m.pending, op{kind: opPop, n: n, enter: resumePrev})
		return
	}
	m.popN(n, resumePrev)
}

func (m *Manager) popN(n int, resumePrev bool) {
	for i := 0; i < n && len(m.stack) > 0; i++ {
		top := m.stack[len(m.stack)-1]
		m.stack[len(m.stack)-1] = nil
		m.stack = m.stack[:len(m.stack)-1]
		top.exit()
		m.reap = append(m.reap, top)
		m.log.Debug("scene popped", "scene", top.name, "depth", len(m.stack))
	}
	if resumePrev {
		if top := m.Top(); top != nil {
			top.activate()
		}
	}
}

// EnterTopScene enters the top scene if it has never been entered.
func (m *Manager) EnterTopScene() {
	if top := m.Top(); top != nil && !top.entered {
		top.enter()
	}
}

// Cache stores s under name outside the stack. Cached scenes receive no
// updates.
func (m *Manager) Cache(name string, s *Scene) error {
	if err := m.checkCacheName(name); err != nil {
		return err
	}
	if s == nil || m.contains(s) || s.cached || s.parent != nil {
		return fmt.Errorf("scene: cache %q: %w: scene cannot be cached", name, ErrInvalidArgument)
	}
	if s.IsDestroyed() || s.exited {
		return fmt.Errorf("scene: cache %q: %w: scene has exited", name, ErrInvalidArgument)
	}
	s.cache()
	m.cached[name] = s
	m.log.Debug("scene cached", "scene", s.name, "alias", name)
	return nil
}

func (m *Manager) checkCacheName(name string) error {
	if name == "" {
		return fmt.Errorf("scene: cache: %w: empty name", ErrInvalidArgument)
	}
	if _, ok := m.cached[name]; ok {
		return fmt.Errorf("scene: cache %q: %w: name in use", name, ErrInvalidArgument)
	}
	return nil
}

// GetCached removes the scene cached under name and hands it to the caller.
func (m *Manager) GetCached(name string) (*Scene, bool) {
	s, ok := m.cached[name]
	if !ok {
		return nil, false
	}
	delete(m.cached, name)
	s.cached = false
	return s, true
}

// IsCached reports whether a scene is cached under name.
func (m *Manager) IsCached(name string) bool {
	_, ok := m.cached[name]
	return ok
}

// CachedNames returns the cache aliases in order.
func (m *Manager) CachedNames() []string {
	names := make([]string, 0, len(m.cached))
	for n := range m.cached {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PopToCache moves the top scene into the cache under name without exiting
// it and resumes the scene below.
func (m *Manager) PopToCache(name string) error {
	if err := m.checkCacheName(name); err != nil {
		return err
	}
	if m.IsEmpty() {
		return fmt.Errorf("scene: pop to cache %q: %w: empty stack", name, ErrAccessViolation)
	}
	if m.inFrame {
		m.pending = append(m.pending, op{kind: opPopToCache, name: name})
		return nil
	}
	m.popToCache(name, true)
	return nil
}

func (m *Manager) popToCache(name string, resumePrev bool) {
	if len(m.stack) == 0 {
		return
	}
	if _, taken := m.cached[name]; taken {
		return
	}
	top := m.stack[len(m.stack)-1]
	m.stack[len(m.stack)-1] = nil
	m.stack = m.stack[:len(m.stack)-1]
	top.cache()
	m.cached[name] = top
	m.log.Debug("scene cached", "scene", top.name, "alias", name)
	if resumePrev {
		if next := m.Top(); next != nil {
			next.activate()
		}
	}
}

// PushCached moves the scene cached under name back on top of the stack.
// A scene that was entered before is resumed rather than entered again.
// During a frame the scene stays cached until EndFrame.
func (m *Manager) PushCached(name string, enter bool) error {
	s, ok := m.cached[name]
	if !ok {
		return fmt.Errorf("scene: push cached %q: %w: not cached", name, ErrInvalidArgument)
	}
	if m.inFrame {
		m.pending = append(m.pending, op{kind: opPush, scene: s, enter: enter, fromCache: true, name: name})
		return nil
	}
	if err := m.uncache(name, s); err != nil {
		return err
	}
	m.push(s, enter)
	return nil
}

// uncache takes s out of the cache entry name if it can be stacked. On
// failure s stays cached.
func (m *Manager) uncache(name string, s *Scene) error {
	if m.cached[name] != s {
		return fmt.Errorf("scene: push cached %q: %w: no longer cached", name, ErrInvalidArgument)
	}
	delete(m.cached, name)
	s.cached = false
	if err := m.checkPushable(s); err != nil {
		s.cached = true
		m.cached[name] = s
		return err
	}
	s.resumeFromCache()
	return nil
}

// ClearCache destroys every cached scene.
func (m *Manager) ClearCache() {
	for name, s := range m.cached {
		delete(m.cached, name)
		s.cached = false
		s.exit()
		s.destroy()
	}
}

// ClearAllExceptActive exits and removes every scene below the top.
func (m *Manager) ClearAllExceptActive() {
	if len(m.stack) < 2 {
		return
	}
	top := m.stack[len(m.stack)-1]
	for i := len(m.stack) - 2; i >= 0; i-- {
		m.stack[i].exit()
		m.reap = append(m.reap, m.stack[i])
	}
	m.stack = []*Scene{top}
}

// Clear exits and destroys every stacked scene immediately and drops any
// deferred operation.
func (m *Manager) Clear() {
	m.pending = nil
	for len(m.stack) > 0 {
		m.popN(1, false)
	}
	m.destroyPopped()
}

func (m *Manager) destroyPopped() {
	reap := m.reap
	m.reap = nil
	for _, s := range reap {
		s.destroy()
	}
}

// BeginFrame destroys the scenes popped during the previous frame and
// starts deferring stack operations.
func (m *Manager) BeginFrame() {
	m.destroyPopped()
	m.inFrame = true
}

type participant struct {
	scene  *Scene
	events bool
	time   bool
}

// participants lists the scenes taking part in this frame in update order:
// the paused scene under the top, the top's background, then the top.
func (m *Manager) participants() []participant {
	top := m.Top()
	if top == nil || !top.IsActive() {
		return nil
	}
	var out []participant
	if len(m.stack) > 1 {
		under := m.stack[len(m.stack)-2]
		if a := under.pauseAction; under.entered && !under.exited && a != PauseDefault {
			out = append(out, participant{under, a.Has(PauseUpdateSystem), a.Has(PauseUpdateTime)})
		}
	}
	if bg := top.background; bg != nil {
		out = append(out, participant{bg, top.bgEvents, top.bgUpdates})
	}
	return append(out, participant{top, true, true})
}

// Update runs one frame of events and updates over the active set.
func (m *Manager) Update(f *Frame) {
	for _, p := range m.participants() {
		p.scene.frame(f, p.events, p.time)
	}
}

// Render paints the active set: a shown paused scene first, then the top
// over its background.
func (m *Manager) Render(t render.Target) {
	top := m.Top()
	if top == nil || !top.IsActive() {
		return
	}
	if len(m.stack) > 1 {
		under := m.stack[len(m.stack)-2]
		if under.entered && !under.exited && under.pauseAction.Has(PauseShow) {
			under.render(t)
		}
	}
	top.render(t)
}

// EndFrame applies the operations deferred during the frame.
func (m *Manager) EndFrame() {
	m.inFrame = false
	ops := m.pending
	m.pending = nil
	if len(ops) == 0 {
		return
	}

	prev := m.Top()
	activate := false
	for _, o := range ops {
		switch o.kind {
		case opPush:
			var err error
			if o.fromCache {
				err = m.uncache(o.name, o.scene)
			} else {
				err = m.checkPushable(o.scene)
			}
			if err != nil {
				m.log.Warn("deferred push dropped", "err", err)
				continue
			}
			m.push(o.scene, false)
			activate = activate || o.enter
		case opPop:
			m.popN(o.n, false)
			activate = activate || o.enter
		case opPopToCache:
			m.popToCache(o.name, false)
			activate = true
		}
	}

	top := m.Top()
	if !activate || top == nil {
		return
	}
	if prev != nil && prev != top && !prev.exited && !prev.cached {
		prev.pause()
	}
	top.activate()
}
