package physics

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
)

// Side indicates which world boundary a body touched.
type Side int

const (
	SideNone Side = iota
	SideTop
	SideBottom
	SideLeft
	SideRight
)

type pairKey struct{ a, b uint64 }

func keyOf(a, b *Body) pairKey {
	if a.id > b.id {
		a, b = b, a
	}
	return pairKey{a.id, b.id}
}

// World is a kinematic simulation: semi-implicit Euler integration,
// optional rectangular bounds and AABB contact reporting.
type World struct {
	gravity  core.Vector2f
	bounds   *core.Rect
	bodies   []*Body
	contacts map[pairKey]bool
	events   *event.Emitter
}

// NewWorld creates a world with the given gravity in pixels/s².
func NewWorld(gravity core.Vector2f) *World {
	return &World{
		gravity:  gravity,
		contacts: make(map[pairKey]bool),
		events:   event.NewEmitter(),
	}
}

var _ Engine = (*World)(nil)

// Gravity returns the world gravity.
func (w *World) Gravity() core.Vector2f {
	return w.gravity
}

// SetGravity changes the world gravity.
func (w *World) SetGravity(g core.Vector2f) {
	w.gravity = g
}

// SetBounds confines bodies to r. Bodies leaving r are clamped back and
// their velocity is reflected by their restitution.
func (w *World) SetBounds(r core.Rect) {
	w.bounds = &r
}

// Events returns the contact event emitter.
func (w *World) Events() *event.Emitter {
	return w.events
}

// AddBody adds b to the simulation.
func (w *World) AddBody(b *Body) error {
	if b.world != nil {
		return ErrBodyAttached
	}
	b.world = w
	w.bodies = append(w.bodies, b)
	return nil
}

// RemoveBody takes b out of the simulation and forgets its contacts.
func (w *World) RemoveBody(b *Body) bool {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			b.world = nil
			for k := range w.contacts {
				if k.a == b.id || k.b == b.id {
					delete(w.contacts, k)
				}
			}
			return true
		}
	}
	return false
}

// Bodies returns the simulated bodies in insertion order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Step advances the simulation by dt.
func (w *World) Step(dt core.Time) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}
	for _, b := range w.bodies {
		w.integrate(b, secs)
	}
	w.detectContacts()
}

func (w *World) integrate(b *Body, secs float64) {
	switch b.Type {
	case Static:
		return
	case Dynamic:
		b.Velocity = b.Velocity.Add(w.gravity.Add(b.Acceleration).Mul(secs))
	case Kinematic:
		b.Velocity = b.Velocity.Add(b.Acceleration.Mul(secs))
	}
	b.Position = b.Position.Add(b.Velocity.Mul(secs))

	if w.bounds != nil {
		if side := w.confine(b); side != SideNone {
			//nolint:errcheck // listeners are typed func(*Body, Side)
			w.events.Emit(EventBoundsHit, b, side)
		}
	}
}

// confine clamps b inside the world bounds and reflects its velocity.
func (w *World) confine(b *Body) Side {
	half := b.Size.Mul(0.5)
	left := float64(w.bounds.X) + half.X
	right := float64(w.bounds.Right()) - half.X
	top := float64(w.bounds.Y) + half.Y
	bottom := float64(w.bounds.Bottom()) - half.Y

	side := SideNone
	switch {
	case b.Position.X < left:
		b.Position.X = left
		b.Velocity.X = -b.Velocity.X * b.Restitution
		side = SideLeft
	case b.Position.X > right:
		b.Position.X = right
		b.Velocity.X = -b.Velocity.X * b.Restitution
		side = SideRight
	}
	switch {
	case b.Position.Y < top:
		b.Position.Y = top
		b.Velocity.Y = -b.Velocity.Y * b.Restitution
		side = SideTop
	case b.Position.Y > bottom:
		b.Position.Y = bottom
		b.Velocity.Y = -b.Velocity.Y * b.Restitution
		side = SideBottom
	}
	return side
}

// detectContacts reports contact begin/end transitions for every pair.
func (w *World) detectContacts() {
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			a, b := w.bodies[i], w.bodies[j]
			if a.Type == Static && b.Type == Static {
				continue
			}
			key := keyOf(a, b)
			touching := Overlaps(a, b)
			switch {
			case touching && !w.contacts[key]:
				w.contacts[key] = true
				//nolint:errcheck // listeners are typed func(*Body, *Body)
				w.events.Emit(EventContactBegin, a, b)
			case !touching && w.contacts[key]:
				delete(w.contacts, key)
				//nolint:errcheck // listeners are typed func(*Body, *Body)
				w.events.Emit(EventContactEnd, a, b)
			}
		}
	}
}

// InContact reports whether a and b currently overlap according to the
// last step.
func (w *World) InContact(a, b *Body) bool {
	return w.contacts[keyOf(a, b)]
}
