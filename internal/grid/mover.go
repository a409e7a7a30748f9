package grid

import (
	"fmt"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
	"github.com/vovakirdan/gridstage/internal/object"
)

// Events emitted on a Mover's emitter.
const (
	EventMoverMoveBegin       = "moveBegin"       // (core.Index)
	EventMoverMoveEnd         = "moveEnd"         // (core.Index)
	EventMoverBorderCollision = "borderCollision" // ()
	EventMoverTileCollision   = "tileCollision"   // (core.Index)
	EventMoverObjectCollision = "objectCollision" // (*Object, *Object)
	EventMoverTargetChange    = "targetChange"    // (*Object)
)

// Type identifies the mover variant.
type Type int

const (
	Manual Type = iota
	Random
	Target
	Cyclic
	KeyboardControlled
	Custom
)

func (t Type) String() string {
	switch t {
	case Manual:
		return "Manual"
	case Random:
		return "Random"
	case Target:
		return "Target"
	case Cyclic:
		return "Cyclic"
	case KeyboardControlled:
		return "KeyboardControlled"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// MoveRestriction limits the directions a mover accepts.
type MoveRestriction int

const (
	RestrictNone MoveRestriction = iota
	RestrictAll
	RestrictVertical
	RestrictHorizontal
	RestrictDiagonal
	RestrictNonDiagonal
)

// Allows reports whether d may start a hop under r. RestrictVertical
// permits only vertical moves, RestrictDiagonal only diagonal ones.
func (r MoveRestriction) Allows(d core.Direction) bool {
	switch r {
	case RestrictAll:
		return false
	case RestrictVertical:
		return d.IsVertical()
	case RestrictHorizontal:
		return d.IsHorizontal()
	case RestrictDiagonal:
		return d.IsDiagonal()
	case RestrictNonDiagonal:
		return !d.IsDiagonal()
	default:
		return true
	}
}

// Mover hops its target from tile to tile. Only one hop is in flight at
// a time; a direction requested mid-hop is kept as the single pending
// direction and tried on arrival.
type Mover struct {
	object.Object

	kind Type
	grid *Grid

	target          *Object
	targetListeners []event.ListenerID

	currentDirection core.Direction
	prevDirection    core.Direction
	pendingDirection core.Direction

	maxSpeed   core.Vector2f
	hopSpeed   core.Vector2f
	multiplier float64

	moving      bool
	frozen      bool
	restriction MoveRestriction

	prevTile   *Tile
	targetTile *Tile
	spawn      core.Index

	clock     Clock
	tick      func(dt core.Time)
	onDestroy []func()
}

// NewMover creates a manual mover bound to g.
func NewMover(g *Grid) *Mover {
	return newMover(g, Manual)
}

func newMover(g *Grid, kind Type) *Mover {
	return &Mover{
		Object:     object.New("GridMover"),
		kind:       kind,
		grid:       g,
		multiplier: 1,
		spawn:      core.InvalidIndex,
	}
}

// NewCustomMover creates a mover whose per-frame behaviour is tick. tick
// runs before the hop advances each update.
func NewCustomMover(g *Grid, tick func(m *Mover, dt core.Time)) *Mover {
	m := newMover(g, Custom)
	if tick != nil {
		m.tick = func(dt core.Time) { tick(m, dt) }
	}
	return m
}

// Type returns the mover variant.
func (m *Mover) Type() Type { return m.kind }

// Grid returns the grid the mover operates on.
func (m *Mover) Grid() *Grid { return m.grid }

// Target returns the controlled object, or nil.
func (m *Mover) Target() *Object { return m.target }

// SetClock binds the mover to its owner scene's clock.
func (m *Mover) SetClock(c Clock) { m.clock = c }

// SetTarget replaces the controlled object. A hop in progress for the old
// target is finalized first. A nil obj releases the current target.
func (m *Mover) SetTarget(obj *Object) error {
	if obj == m.target {
		return nil
	}
	if obj != nil {
		switch {
		case obj.grid == nil || obj.grid != m.grid:
			return ErrTargetGridMismatch
		case obj.body != nil:
			return ErrRigidBodyConflict
		case obj.mover != nil:
			return fmt.Errorf("%w: object %d already has a mover", ErrInvalidArgument, obj.ID())
		}
	}

	if m.target != nil && m.moving {
		m.finishHop(true)
	}
	m.release()

	m.pendingDirection = core.DirUnknown
	m.currentDirection = core.DirUnknown
	m.prevDirection = core.DirUnknown
	m.moving = false
	if obj != nil {
		m.attach(obj)
		m.spawn = obj.index
		m.prevTile = m.grid.TileAt(obj.index)
		m.targetTile = m.prevTile
	}
	m.emit(EventMoverTargetChange, obj)
	return nil
}

// HandOff moves the target to another mover on the same grid. A hop in
// flight is not finalized: to continues it from the current position
// toward the same destination, with the same pending direction. Any
// target to held before is released first.
func (m *Mover) HandOff(to *Mover) error {
	switch {
	case to == nil || to == m:
		return fmt.Errorf("%w: hand-off needs another mover", ErrInvalidArgument)
	case m.target == nil:
		return fmt.Errorf("%w: mover has no target to hand off", ErrInvalidArgument)
	case to.grid != m.grid:
		return ErrTargetGridMismatch
	}
	if err := to.SetTarget(nil); err != nil {
		return err
	}

	obj, spawn, pending := m.target, m.spawn, m.pendingDirection
	to.SyncWith(m)
	m.release()
	m.moving = false
	m.pendingDirection = core.DirUnknown
	m.emit(EventMoverTargetChange, (*Object)(nil))

	to.attach(obj)
	to.spawn = spawn
	to.pendingDirection = pending
	to.emit(EventMoverTargetChange, obj)
	return nil
}

// attach binds obj as the target without touching the hop state.
func (m *Mover) attach(obj *Object) {
	m.target = obj
	obj.mover = m
	obj.setSpeed(m.maxSpeed)
	m.targetListeners = []event.ListenerID{
		obj.OnDestruction(m.dropTarget),
		obj.Events().On(EventGridExit, func(*Object) { m.dropTarget() }),
	}
}

// release detaches the current target without emitting anything.
func (m *Mover) release() {
	if m.target == nil {
		return
	}
	for _, id := range m.targetListeners {
		m.target.Unsubscribe(id)
	}
	m.targetListeners = nil
	m.target.mover = nil
	m.target = nil
	m.prevTile, m.targetTile = nil, nil
}

// dropTarget handles the target being destroyed or leaving the grid.
func (m *Mover) dropTarget() {
	if m.target == nil {
		return
	}
	m.release()
	m.moving = false
	m.pendingDirection = core.DirUnknown
	m.emit(EventMoverTargetChange, (*Object)(nil))
}

// IsMoving reports whether a hop is in flight.
func (m *Mover) IsMoving() bool { return m.moving }

// IsMoveFrozen reports whether motion is halted.
func (m *Mover) IsMoveFrozen() bool { return m.frozen }

// SetMovementFreeze halts or resumes motion. A frozen mover may rest
// between tiles and continues toward the same destination when thawed.
func (m *Mover) SetMovementFreeze(freeze bool) { m.frozen = freeze }

// MovementRestriction returns the current restriction.
func (m *Mover) MovementRestriction() MoveRestriction { return m.restriction }

// SetMovementRestriction constrains future hops. A hop in progress is
// not cancelled.
func (m *Mover) SetMovementRestriction(r MoveRestriction) { m.restriction = r }

// MaxLinearSpeed returns the configured speed in pixels per second.
func (m *Mover) MaxLinearSpeed() core.Vector2f { return m.maxSpeed }

// SetMaxLinearSpeed changes the speed. A hop in progress keeps the speed
// it started with.
func (m *Mover) SetMaxLinearSpeed(v core.Vector2f) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: negative speed %v", ErrInvalidArgument, v)
	}
	m.maxSpeed = v
	if !m.moving {
		m.hopSpeed = v
	}
	if m.target != nil {
		m.target.setSpeed(v)
	}
	m.EmitChange(object.NewProperty(object.PropSpeed, v))
	return nil
}

// SpeedMultiplier returns the speed multiplier.
func (m *Mover) SpeedMultiplier() float64 { return m.multiplier }

// SetSpeedMultiplier scales the speed. Negative values are ignored.
func (m *Mover) SetSpeedMultiplier(mult float64) {
	if mult < 0 {
		return
	}
	m.multiplier = mult
}

// EffectiveSpeed returns the pixel velocity magnitude per axis used for
// the current hop after every multiplier and timescale is applied.
func (m *Mover) EffectiveSpeed() core.Vector2f {
	scale := m.multiplier
	if m.clock != nil {
		scale *= m.clock.Timescale()
	}
	if m.target != nil {
		scale *= m.target.Timescale()
	}
	speed := m.hopSpeed
	if !m.moving {
		speed = m.maxSpeed
	}
	return speed.Mul(scale)
}

// CurrentDirection returns the direction of the current or last hop.
func (m *Mover) CurrentDirection() core.Direction { return m.currentDirection }

// PrevDirection returns the direction of the hop before the current one.
func (m *Mover) PrevDirection() core.Direction { return m.prevDirection }

// PendingDirection returns the direction queued for arrival, or
// core.DirUnknown.
func (m *Mover) PendingDirection() core.Direction { return m.pendingDirection }

// CurrentTile returns the tile the target occupies.
func (m *Mover) CurrentTile() *Tile {
	if m.target == nil {
		return nil
	}
	return m.grid.TileAt(m.target.index)
}

// PrevTile returns the origin of the current hop.
func (m *Mover) PrevTile() *Tile { return m.prevTile }

// TargetTile returns the destination of the current hop.
func (m *Mover) TargetTile() *Tile { return m.targetTile }

// IsBlockedInDirection reports whether a hop in d would be refused by the
// border, a collidable tile or a non-permeable obstacle. The obstacle is
// returned when one blocks. No events are emitted.
func (m *Mover) IsBlockedInDirection(d core.Direction) (bool, *Object) {
	if m.target == nil {
		return true, nil
	}
	dest := m.grid.TileAt(m.target.index.Step(d))
	if !dest.IsValid() || dest.collidable {
		return true, nil
	}
	for _, o := range dest.occupants {
		if o != m.target && o.obstacle && o.active && !permeable(m.target, o) {
			return true, o
		}
	}
	return false, nil
}

func permeable(mover, obstacle *Object) bool {
	return mover.filter.Has(obstacle.collisionGroup) || obstacle.filter.Has(mover.collisionGroup)
}

// RequestMove starts a hop in d and reports whether it began. A request
// made mid-hop replaces the pending direction and returns false.
func (m *Mover) RequestMove(d core.Direction) bool {
	t := m.target
	if t == nil || !t.active || !d.IsValid() || m.frozen {
		return false
	}
	if m.moving {
		m.pendingDirection = d
		return false
	}
	if !m.restriction.Allows(d) {
		return false
	}

	destIdx := t.index.Step(d)
	dest := m.grid.TileAt(destIdx)
	if !dest.IsValid() {
		m.emit(EventMoverBorderCollision)
		t.emit(EventBorderCollision, t)
		return false
	}
	if dest.collidable {
		m.emit(EventMoverTileCollision, destIdx)
		t.emit(EventTileCollision, t, destIdx)
		return false
	}
	for _, o := range dest.Occupants() {
		if o == t || !o.obstacle || !o.active {
			continue
		}
		pass := permeable(t, o)
		m.emit(EventMoverObjectCollision, t, o)
		t.emit(EventObjectCollision, t, o)
		o.emit(EventObjectCollision, o, t)
		if !pass {
			return false
		}
	}

	m.beginHop(d, dest)
	return true
}

func (m *Mover) beginHop(d core.Direction, dest *Tile) {
	t := m.target
	m.prevTile = m.grid.TileAt(t.index)
	m.targetTile = dest
	m.prevDirection = m.currentDirection
	m.currentDirection = d
	m.hopSpeed = m.maxSpeed
	m.moving = true

	for _, hit := range m.grid.changeTile(t, dest.index) {
		m.emit(EventMoverObjectCollision, t, hit)
	}
	// The target may have been destroyed by a collision listener.
	if m.target != t {
		return
	}
	t.SetDirection(d)
	m.EmitChange(object.NewProperty(object.PropDirection, core.Vector2i(d)))
	m.emit(EventMoverMoveBegin, dest.index)
	t.emit(EventMoveBegin, t)
}

// Update runs the variant behaviour and advances the current hop by dt.
func (m *Mover) Update(dt core.Time) {
	if m.tick != nil {
		m.tick(dt)
	}
	m.advance(dt)
}

func (m *Mover) advance(dt core.Time) {
	t := m.target
	if t == nil || !t.active || m.frozen || !m.moving {
		return
	}
	speed := m.EffectiveSpeed()
	secs := dt.Seconds()
	d := m.currentDirection
	dest := m.targetTile.Centre()
	pos := t.position.Add(core.V2f(float64(d.X)*speed.X*secs, float64(d.Y)*speed.Y*secs))

	// Each axis stops at the destination so a diagonal hop with uneven
	// speeds does not overshoot on the faster axis.
	doneX := reached(d.X, pos.X, dest.X)
	doneY := reached(d.Y, pos.Y, dest.Y)
	if doneX {
		pos.X = dest.X
	}
	if doneY {
		pos.Y = dest.Y
	}
	arrived := doneX && doneY

	t.emit(EventPreMove, t)
	t.SetPosition(pos)
	t.emit(EventPostMove, t)

	if arrived && m.target == t {
		m.arrive()
	}
}

// reached reports whether pos has reached or passed dest moving along
// sign. An axis the hop does not move along is always reached.
func reached(sign int, pos, dest float64) bool {
	switch {
	case sign > 0:
		return pos >= dest
	case sign < 0:
		return pos <= dest
	default:
		return true
	}
}

func (m *Mover) arrive() {
	pending := m.pendingDirection
	m.pendingDirection = core.DirUnknown
	m.finishHop(false)
	// A moveEnd listener may have released the target or started a hop.
	if m.target == nil || m.moving || !pending.IsValid() {
		return
	}
	m.RequestMove(pending)
}

// finishHop ends the current hop and emits moveEnd. With snap set the
// target is first placed on the destination centre.
func (m *Mover) finishHop(snap bool) {
	t := m.target
	dest := m.targetTile
	if snap && t.position != dest.Centre() {
		t.emit(EventPreMove, t)
		t.SetPosition(dest.Centre())
		t.emit(EventPostMove, t)
	}
	m.moving = false
	m.prevTile = dest
	m.emit(EventMoverMoveEnd, dest.index)
	t.emit(EventMoveEnd, t)
}

// TeleportTargetToDestination completes the current hop instantly. The
// pending direction is discarded.
func (m *Mover) TeleportTargetToDestination() {
	if m.target == nil || !m.moving {
		return
	}
	m.pendingDirection = core.DirUnknown
	m.finishHop(true)
}

// SyncWith copies the hop state of other so a target can be handed from
// one mover to another without misalignment. HandOff uses it to move the
// target itself.
func (m *Mover) SyncWith(other *Mover) {
	if other == nil || other == m {
		return
	}
	m.currentDirection = other.currentDirection
	m.prevDirection = other.prevDirection
	m.moving = other.moving
	m.hopSpeed = other.hopSpeed
	if other.prevTile != nil {
		m.prevTile = m.grid.TileAt(other.prevTile.index)
	}
	if other.targetTile != nil {
		m.targetTile = m.grid.TileAt(other.targetTile.index)
	}
}

// Reset returns the target to the tile it occupied when it was attached
// and clears all motion state.
func (m *Mover) Reset() {
	t := m.target
	if t == nil {
		return
	}
	m.moving = false
	m.pendingDirection = core.DirUnknown
	m.currentDirection = core.DirUnknown
	m.prevDirection = core.DirUnknown
	if m.grid.IsIndexValid(m.spawn) {
		m.grid.Teleport(t, m.spawn)
	}
	m.prevTile = m.grid.TileAt(t.index)
	m.targetTile = m.prevTile
}

// OnMoveBegin registers cb for the start of every hop.
func (m *Mover) OnMoveBegin(cb func(core.Index)) event.ListenerID {
	return m.Events().On(EventMoverMoveBegin, cb)
}

// OnMoveEnd registers cb for the end of every hop.
func (m *Mover) OnMoveEnd(cb func(core.Index)) event.ListenerID {
	return m.Events().On(EventMoverMoveEnd, cb)
}

// OnTargetChange registers cb for target replacement. cb receives nil
// when the target is released or destroyed.
func (m *Mover) OnTargetChange(cb func(*Object)) event.ListenerID {
	return m.Events().On(EventMoverTargetChange, cb)
}

// Destroy releases the target and emits destruction.
func (m *Mover) Destroy() {
	if m.IsDestroyed() {
		return
	}
	for _, fn := range m.onDestroy {
		fn()
	}
	m.release()
	m.Object.Destroy()
}

func (m *Mover) emit(name string, args ...any) {
	//nolint:errcheck // mover events have fixed signatures
	m.Events().Emit(name, args...)
}

func (o *Object) emit(name string, args ...any) {
	//nolint:errcheck // grid events have fixed signatures
	o.Events().Emit(name, args...)
}
