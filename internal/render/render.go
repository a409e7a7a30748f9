// Package render draws scene content onto a cell-based render target.
// World coordinates are pixels; a Camera maps them to target cells.
package render

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
)

// Target is anything cells can be painted on. *core.Screen implements it.
type Target interface {
	Width() int
	Height() int
	SetCell(x, y int, r rune, c core.Color)
	DrawText(x, y int, text string, c core.Color)
}

var _ Target = (*core.Screen)(nil)

// Drawable is a primitive a layer can paint.
type Drawable interface {
	Draw(t Target, cam *Camera)
	IsVisible() bool
}

// destructible drawables are dropped from layers when destroyed.
type destructible interface {
	OnDestruction(cb func()) event.ListenerID
	Unsubscribe(id event.ListenerID) bool
}

// Updatable drawables advance with the scene clock (animations).
type Updatable interface {
	Update(dt core.Time)
}

// clipped paints only inside the camera viewport.
type clipped struct {
	Target
	view core.Rect
}

func (c clipped) SetCell(x, y int, r rune, col core.Color) {
	if c.view.Contains(x, y) {
		c.Target.SetCell(x, y, r, col)
	}
}

func (c clipped) DrawText(x, y int, text string, col core.Color) {
	for i, r := range []rune(text) {
		c.SetCell(x+i, y, r, col)
	}
}
