package grid

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/object"
	"github.com/vovakirdan/gridstage/internal/physics"
)

// Events emitted on a grid Object's emitter.
const (
	EventGridEnter       = "GridObject_gridEnter"       // (*Object)
	EventGridExit        = "GridObject_gridExit"        // (*Object)
	EventMoveBegin       = "GridObject_moveBegin"       // (*Object)
	EventMoveEnd         = "GridObject_moveEnd"         // (*Object)
	EventPreMove         = "GridObject_preMove"         // (*Object)
	EventPostMove        = "GridObject_postMove"        // (*Object)
	EventObjectCollision = "GridObject_objectCollision" // (*Object, *Object)
	EventBorderCollision = "GridObject_borderCollision" // (*Object)
	EventTileCollision   = "GridObject_tileCollision"   // (*Object, core.Index)
)

// Clock supplies the timescale of the scene an object or mover lives in.
type Clock interface {
	Timescale() float64
}

// Appearance is how an object is drawn on a cell screen.
type Appearance struct {
	Glyph rune
	Color core.Color
	// Layer orders objects sharing a tile; higher draws on top.
	Layer int
}

// Object is an entity that occupies a grid tile. The grid and any mover
// controlling it hold non-owning references that are severed when the
// object is destroyed.
type Object struct {
	object.Object

	position       core.Vector2f
	direction      core.Direction
	speed          core.Vector2f
	obstacle       bool
	collisionID    int
	collisionGroup string
	exclude        mapset.Set[string]
	filter         mapset.Set[string]
	active         bool
	visible        bool
	appearance     Appearance

	grid  *Grid
	index core.Index
	mover *Mover
	body  *physics.Body
	clock Clock
}

// NewObject creates an active, visible object that is not on any grid.
func NewObject() *Object {
	return &Object{
		Object:  object.New("GridObject"),
		exclude: mapset.New[string](),
		filter:  mapset.New[string](),
		active:  true,
		visible: true,
		index:   core.InvalidIndex,
	}
}

// Position returns the pixel position of the object's centre.
func (o *Object) Position() core.Vector2f { return o.position }

// SetPosition moves the object in pixels. Grid occupancy is unaffected.
func (o *Object) SetPosition(p core.Vector2f) {
	if o.position == p {
		return
	}
	o.position = p
	o.EmitChange(object.NewProperty(object.PropPosition, p))
}

// Direction returns the last commanded direction.
func (o *Object) Direction() core.Direction { return o.direction }

// SetDirection records the facing direction.
func (o *Object) SetDirection(d core.Direction) {
	if o.direction == d {
		return
	}
	o.direction = d
	o.EmitChange(object.NewProperty(object.PropDirection, core.Vector2i(d)))
}

// Speed returns the object's speed in pixels per second per axis.
func (o *Object) Speed() core.Vector2f { return o.speed }

func (o *Object) setSpeed(v core.Vector2f) {
	if o.speed == v {
		return
	}
	o.speed = v
	o.EmitChange(object.NewProperty(object.PropSpeed, v))
}

// IsObstacle reports whether the object blocks hops into its tile.
func (o *Object) IsObstacle() bool { return o.obstacle }

// SetObstacle changes the obstacle flag.
func (o *Object) SetObstacle(obstacle bool) {
	if o.obstacle == obstacle {
		return
	}
	o.obstacle = obstacle
	o.EmitChange(object.NewProperty(object.PropObstacle, obstacle))
}

// CollisionID returns the collision id. 0 collides with any id.
func (o *Object) CollisionID() int { return o.collisionID }

// SetCollisionID changes the collision id.
func (o *Object) SetCollisionID(id int) {
	if o.collisionID == id {
		return
	}
	o.collisionID = id
	o.EmitChange(object.NewProperty(object.PropCollisionID, id))
}

// CollisionGroup returns the collision group.
func (o *Object) CollisionGroup() string { return o.collisionGroup }

// SetCollisionGroup changes the collision group.
func (o *Object) SetCollisionGroup(group string) {
	if o.collisionGroup == group {
		return
	}
	o.collisionGroup = group
	o.EmitChange(object.NewProperty(object.PropCollisionGroup, group))
}

// ExcludeCollisionsWith stops collisions with objects of the given groups.
func (o *Object) ExcludeCollisionsWith(groups ...string) {
	for _, g := range groups {
		o.exclude.Put(g)
	}
}

// RemoveCollisionExclusion re-enables collisions with group.
func (o *Object) RemoveCollisionExclusion(group string) {
	o.exclude.Remove(group)
}

// IsCollisionGroupExcluded reports whether group is on the exclude list.
func (o *Object) IsCollisionGroupExcluded(group string) bool {
	return o.exclude.Has(group)
}

// AddObstacleCollisionFilter makes obstacles of the given groups permeable
// for this object.
func (o *Object) AddObstacleCollisionFilter(groups ...string) {
	for _, g := range groups {
		o.filter.Put(g)
	}
}

// RemoveObstacleCollisionFilter makes obstacles of group block again.
func (o *Object) RemoveObstacleCollisionFilter(group string) {
	o.filter.Remove(group)
}

// IsInObstacleFilter reports whether obstacles of group are permeable.
func (o *Object) IsInObstacleFilter(group string) bool {
	return o.filter.Has(group)
}

// ClearCollisionFilters empties both the exclude list and obstacle filter.
func (o *Object) ClearCollisionFilters() {
	o.exclude.Clear()
	o.filter.Clear()
}

// IsActive reports whether the object takes part in collisions and moves.
func (o *Object) IsActive() bool { return o.active }

// SetActive enables or disables the object.
func (o *Object) SetActive(active bool) {
	if o.active == active {
		return
	}
	o.active = active
	o.EmitChange(object.NewProperty(object.PropActive, active))
}

// IsVisible reports whether renderers draw the object.
func (o *Object) IsVisible() bool { return o.visible }

// SetVisible shows or hides the object.
func (o *Object) SetVisible(visible bool) {
	if o.visible == visible {
		return
	}
	o.visible = visible
	o.EmitChange(object.NewProperty(object.PropVisible, visible))
}

// Appearance returns how the object is drawn.
func (o *Object) Appearance() Appearance { return o.appearance }

// SetAppearance changes how the object is drawn.
func (o *Object) SetAppearance(a Appearance) { o.appearance = a }

// Grid returns the grid the object is placed in, or nil.
func (o *Object) Grid() *Grid { return o.grid }

// GridIndex returns the index of the tile the object occupies. During a
// hop this is already the destination tile.
func (o *Object) GridIndex() core.Index { return o.index }

// Tile returns the occupied tile, or nil when not placed.
func (o *Object) Tile() *Tile {
	if o.grid == nil {
		return nil
	}
	return o.grid.TileAt(o.index)
}

// Mover returns the mover controlling the object, or nil.
func (o *Object) Mover() *Mover { return o.mover }

// IsMoving reports whether the object is mid-hop.
func (o *Object) IsMoving() bool {
	return o.mover != nil && o.mover.IsMoving()
}

// RigidBody returns the attached physics body, or nil.
func (o *Object) RigidBody() *physics.Body { return o.body }

// SetRigidBody attaches a physics body. Objects controlled by a mover
// cannot have one.
func (o *Object) SetRigidBody(b *physics.Body) error {
	if b != nil && o.mover != nil {
		return ErrRigidBodyConflict
	}
	o.body = b
	if b != nil {
		b.UserData = o
	}
	return nil
}

// SetClock binds the object to a scene clock.
func (o *Object) SetClock(c Clock) { o.clock = c }

// Timescale returns the timescale of the object's scene, 1 when unbound.
func (o *Object) Timescale() float64 {
	if o.clock == nil {
		return 1
	}
	return o.clock.Timescale()
}
