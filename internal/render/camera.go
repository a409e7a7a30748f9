package render

import (
	"math"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/object"
)

// Positioned is anything a camera can follow.
type Positioned interface {
	Position() core.Vector2f
}

// Camera maps world pixels onto a rectangle of target cells.
type Camera struct {
	object.Object

	position core.Vector2f // world pixel shown at the viewport's top-left
	cellSize core.Vector2f // world pixels per cell
	viewport core.Rect     // target cells, zero size means the whole target
	follow   Positioned
	bounds   *core.Rect
	enabled  bool
}

// NewCamera creates a camera with the given pixels-per-cell scale.
func NewCamera(cellSize core.Vector2f) *Camera {
	if cellSize.X <= 0 || cellSize.Y <= 0 {
		cellSize = core.V2f(1, 1)
	}
	return &Camera{
		Object:   object.New("Camera"),
		cellSize: cellSize,
		enabled:  true,
	}
}

func (c *Camera) Position() core.Vector2f { return c.position }
func (c *Camera) CellSize() core.Vector2f { return c.cellSize }
func (c *Camera) Viewport() core.Rect     { return c.viewport }
func (c *Camera) IsEnabled() bool         { return c.enabled }
func (c *Camera) SetEnabled(e bool)       { c.enabled = e }

// SetPosition moves the camera. Following is not cancelled.
func (c *Camera) SetPosition(p core.Vector2f) {
	c.position = p
	c.EmitChange(object.NewProperty(object.PropPosition, p))
}

// SetCellSize changes the zoom.
func (c *Camera) SetCellSize(s core.Vector2f) {
	if s.X > 0 && s.Y > 0 {
		c.cellSize = s
	}
}

// SetViewport restricts drawing to r (in target cells).
func (c *Camera) SetViewport(r core.Rect) {
	c.viewport = r
}

// SetBounds keeps the view inside the world rectangle r when following.
func (c *Camera) SetBounds(r core.Rect) {
	c.bounds = &r
}

// Follow keeps p at the centre of the view on every Update. nil stops.
func (c *Camera) Follow(p Positioned) {
	c.follow = p
}

// Update re-centres a following camera for a target of the given size.
func (c *Camera) Update(targetW, targetH int) {
	if c.follow == nil {
		return
	}
	view := c.viewFor(targetW, targetH)
	half := core.V2f(float64(view.W)*c.cellSize.X/2, float64(view.H)*c.cellSize.Y/2)
	pos := c.follow.Position().Sub(half)
	if c.bounds != nil {
		maxX := float64(c.bounds.Right()) - 2*half.X
		maxY := float64(c.bounds.Bottom()) - 2*half.Y
		pos.X = core.ClampF(pos.X, float64(c.bounds.X), math.Max(float64(c.bounds.X), maxX))
		pos.Y = core.ClampF(pos.Y, float64(c.bounds.Y), math.Max(float64(c.bounds.Y), maxY))
	}
	if pos != c.position {
		c.SetPosition(pos)
	}
}

func (c *Camera) viewFor(w, h int) core.Rect {
	if c.viewport.W <= 0 || c.viewport.H <= 0 {
		return core.NewRect(0, 0, w, h)
	}
	return c.viewport
}

// WorldToCell converts a world pixel position to target cell coordinates.
func (c *Camera) WorldToCell(p core.Vector2f) (int, int) {
	local := p.Sub(c.position)
	x := int(math.Floor(local.X / c.cellSize.X))
	y := int(math.Floor(local.Y / c.cellSize.Y))
	return c.viewport.X + x, c.viewport.Y + y
}

// CellToWorld converts target cell coordinates to the world pixel at the
// cell's top-left corner.
func (c *Camera) CellToWorld(x, y int) core.Vector2f {
	return c.position.Add(core.V2f(
		float64(x-c.viewport.X)*c.cellSize.X,
		float64(y-c.viewport.Y)*c.cellSize.Y,
	))
}

// Cameras holds the main camera and any secondary ones.
type Cameras struct {
	main      *Camera
	secondary *object.Container[*Camera]
}

// NewCameras creates a container around main.
func NewCameras(main *Camera) *Cameras {
	return &Cameras{main: main, secondary: object.NewContainer[*Camera]()}
}

// Main returns the main camera.
func (cs *Cameras) Main() *Camera { return cs.main }

// Add registers a secondary camera (e.g. a minimap viewport).
func (cs *Cameras) Add(c *Camera) bool { return cs.secondary.Add(c) }

// Remove destroys a secondary camera.
func (cs *Cameras) Remove(c *Camera) bool { return cs.secondary.Remove(c.ID()) }

// All returns the main camera followed by the enabled secondary ones.
func (cs *Cameras) All() []*Camera {
	out := []*Camera{cs.main}
	for _, c := range cs.secondary.Items() {
		if c.enabled {
			out = append(out, c)
		}
	}
	return out
}

// Update re-centres every following camera.
func (cs *Cameras) Update(targetW, targetH int) {
	for _, c := range cs.All() {
		c.Update(targetW, targetH)
	}
}

// Clear destroys the secondary cameras.
func (cs *Cameras) Clear() { cs.secondary.Clear() }
