package render

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/object"
)

// Shape is an axis-aligned rectangle in world pixels, filled or outlined.
type Shape struct {
	object.Object

	Position core.Vector2f
	Size     core.Vector2f
	Fill     rune // 0 leaves the interior untouched
	Outline  bool
	Color    core.Color
	visible  bool
}

// NewShape creates a visible rectangle.
func NewShape(pos, size core.Vector2f, fill rune, c core.Color) *Shape {
	return &Shape{
		Object:   object.New("Shape"),
		Position: pos,
		Size:     size,
		Fill:     fill,
		Color:    c,
		visible:  true,
	}
}

func (s *Shape) IsVisible() bool   { return s.visible && !s.IsDestroyed() }
func (s *Shape) SetVisible(v bool) { s.visible = v }

// Cells returns the target cells the shape covers through cam.
func (s *Shape) Cells(cam *Camera) core.Rect {
	x0, y0 := cam.WorldToCell(s.Position)
	w := int(s.Size.X / cam.cellSize.X)
	h := int(s.Size.Y / cam.cellSize.Y)
	return core.NewRect(x0, y0, max(w, 1), max(h, 1))
}

func (s *Shape) Draw(t Target, cam *Camera) {
	r := s.Cells(cam)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			edge := x == r.X || x == r.Right()-1 || y == r.Y || y == r.Bottom()-1
			switch {
			case s.Outline && edge:
				t.SetCell(x, y, boxRune(r, x, y), s.Color)
			case s.Fill != 0:
				t.SetCell(x, y, s.Fill, s.Color)
			}
		}
	}
}

func boxRune(r core.Rect, x, y int) rune {
	left, right := x == r.X, x == r.Right()-1
	top, bottom := y == r.Y, y == r.Bottom()-1
	switch {
	case top && left:
		return '┌'
	case top && right:
		return '┐'
	case bottom && left:
		return '└'
	case bottom && right:
		return '┘'
	case top || bottom:
		return '─'
	default:
		return '│'
	}
}

// Text is a string drawn either in world space or pinned to the target.
type Text struct {
	object.Object

	Position core.Vector2f // world pixels, or target cells when Fixed
	Content  string
	Color    core.Color
	Fixed    bool // ignore the camera (HUD text)
	Centered bool // centre horizontally on Position
	visible  bool
}

// NewText creates a visible text drawable.
func NewText(content string, pos core.Vector2f, c core.Color) *Text {
	return &Text{
		Object:   object.New("Text"),
		Position: pos,
		Content:  content,
		Color:    c,
		visible:  true,
	}
}

func (t *Text) IsVisible() bool   { return t.visible && !t.IsDestroyed() }
func (t *Text) SetVisible(v bool) { t.visible = v }

func (t *Text) Draw(target Target, cam *Camera) {
	var x, y int
	if t.Fixed || cam == nil {
		x, y = int(t.Position.X), int(t.Position.Y)
	} else {
		x, y = cam.WorldToCell(t.Position)
	}
	if t.Centered {
		x -= len([]rune(t.Content)) / 2
	}
	target.DrawText(x, y, t.Content, t.Color)
}
