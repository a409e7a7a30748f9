package grid

import (
	"github.com/vovakirdan/gridstage/internal/core"
)

// Tile is one cell of a Grid. Tiles are owned by their grid; callers must
// not mutate the sentinel tile returned for out-of-range lookups.
type Tile struct {
	index      core.Index
	position   core.Vector2f
	size       core.Vector2f
	id         rune
	collidable bool
	texture    *core.Rect
	occupants  []*Object
}

// Index returns the tile's row/column, or core.InvalidIndex for the
// sentinel tile.
func (t *Tile) Index() core.Index { return t.index }

// Position returns the pixel position of the tile's top-left corner.
func (t *Tile) Position() core.Vector2f { return t.position }

// Size returns the tile size in pixels.
func (t *Tile) Size() core.Vector2f { return t.size }

// Centre returns the pixel centre of the tile.
func (t *Tile) Centre() core.Vector2f {
	return t.position.Add(t.size.Mul(0.5))
}

// ID returns the map character the tile was built from.
func (t *Tile) ID() rune { return t.id }

// IsCollidable reports whether hops into the tile are refused.
func (t *Tile) IsCollidable() bool { return t.collidable }

// IsValid reports whether t is a real tile rather than the sentinel.
func (t *Tile) IsValid() bool { return t.index != core.InvalidIndex }

// TextureRect returns the texture sub-rectangle mapped to the tile, if any.
func (t *Tile) TextureRect() (core.Rect, bool) {
	if t.texture == nil {
		return core.Rect{}, false
	}
	return *t.texture, true
}

// IsOccupied reports whether any object is on the tile.
func (t *Tile) IsOccupied() bool { return len(t.occupants) > 0 }

// Occupants returns a copy of the objects on the tile.
func (t *Tile) Occupants() []*Object {
	out := make([]*Object, len(t.occupants))
	copy(out, t.occupants)
	return out
}

// HasOccupant reports whether obj is on the tile.
func (t *Tile) HasOccupant(obj *Object) bool {
	for _, o := range t.occupants {
		if o == obj {
			return true
		}
	}
	return false
}

// HasObstacle reports whether an active obstacle is on the tile.
func (t *Tile) HasObstacle() bool {
	for _, o := range t.occupants {
		if o.obstacle && o.active {
			return true
		}
	}
	return false
}

func (t *Tile) addOccupant(obj *Object) {
	t.occupants = append(t.occupants, obj)
}

func (t *Tile) removeOccupant(obj *Object) bool {
	for i, o := range t.occupants {
		if o == obj {
			t.occupants = append(t.occupants[:i], t.occupants[i+1:]...)
			return true
		}
	}
	return false
}
