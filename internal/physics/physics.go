// Package physics provides the rigid-body contract scenes talk to and a
// small kinematic world used when no other engine is plugged in.
//
// Grid movement and rigid-body motion are mutually exclusive: an object
// driven by a grid mover must not carry a Body.
package physics

import (
	"errors"
	"sync/atomic"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
)

var (
	// ErrBodyAttached is returned when adding a body already owned by a world.
	ErrBodyAttached = errors.New("physics: body already belongs to a world")
)

// Event names emitted by World.
const (
	EventContactBegin = "contactBegin" // (*Body, *Body)
	EventContactEnd   = "contactEnd"   // (*Body, *Body)
	EventBoundsHit    = "boundsHit"    // (*Body, Side)
)

// Engine is the contract a scene drives once per fixed step.
type Engine interface {
	Step(dt core.Time)
	AddBody(b *Body) error
	RemoveBody(b *Body) bool
	Bodies() []*Body
	Events() *event.Emitter
}

// BodyType selects how a body reacts to the simulation.
type BodyType int

const (
	// Dynamic bodies are integrated and affected by gravity.
	Dynamic BodyType = iota
	// Kinematic bodies move by velocity but ignore gravity.
	Kinematic
	// Static bodies never move.
	Static
)

var lastBodyID atomic.Uint64

// Body is an axis-aligned box integrated by a World. Position is the
// box centre in pixels.
type Body struct {
	id           uint64
	Type         BodyType
	Position     core.Vector2f
	Velocity     core.Vector2f
	Acceleration core.Vector2f
	Size         core.Vector2f
	// Restitution scales the velocity reflected off world bounds (0..1).
	Restitution float64
	// Sensor bodies report contacts but are never pushed apart.
	Sensor bool
	// UserData links the body back to the entity it simulates.
	UserData any

	world *World
}

// NewBody creates a dynamic body of the given size centred at pos.
func NewBody(pos, size core.Vector2f) *Body {
	return &Body{
		id:       lastBodyID.Add(1),
		Type:     Dynamic,
		Position: pos,
		Size:     size,
	}
}

// ID returns the unique body id.
func (b *Body) ID() uint64 {
	return b.id
}

// World returns the world simulating b, or nil.
func (b *Body) World() *World {
	return b.world
}

// Bounds returns the body's box as min and max corners.
func (b *Body) Bounds() (min, max core.Vector2f) {
	half := b.Size.Mul(0.5)
	return b.Position.Sub(half), b.Position.Add(half)
}

// Overlaps reports whether the boxes of a and b intersect.
func Overlaps(a, b *Body) bool {
	amin, amax := a.Bounds()
	bmin, bmax := b.Bounds()
	return amin.X < bmax.X && amax.X > bmin.X &&
		amin.Y < bmax.Y && amax.Y > bmin.Y
}
