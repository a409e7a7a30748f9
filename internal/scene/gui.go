package scene

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/render"
)

// GUIContainer holds screen-space widgets painted above a scene's layers.
type GUIContainer interface {
	Add(w render.Drawable, layer int)
	Remove(w render.Drawable) bool
	HandleEvent(ev input.Event) bool
	Render(t render.Target)
	SetVisible(v bool)
	IsVisible() bool
	Clear()
}

// Widget is a drawable that can consume input.
type Widget interface {
	render.Drawable
	HandleEvent(ev input.Event) bool
}

// GUI is the default GUIContainer. Widgets are positioned in target cells.
type GUI struct {
	layers  *render.Layers
	cam     *render.Camera
	widgets []render.Drawable
	visible bool
}

// NewGUI creates an empty visible container.
func NewGUI() *GUI {
	return &GUI{
		layers:  render.NewLayers(),
		cam:     render.NewCamera(core.V2f(1, 1)),
		visible: true,
	}
}

func (g *GUI) Add(w render.Drawable, layer int) {
	if _, ok := g.layers.LayerOf(w); !ok {
		g.widgets = append(g.widgets, w)
	}
	g.layers.Add(w, layer)
}

func (g *GUI) Remove(w render.Drawable) bool {
	for i, x := range g.widgets {
		if x == w {
			g.widgets = append(g.widgets[:i], g.widgets[i+1:]...)
			break
		}
	}
	return g.layers.Remove(w)
}

// HandleEvent offers ev to the widgets, newest first, and reports whether
// one consumed it.
func (g *GUI) HandleEvent(ev input.Event) bool {
	if !g.visible {
		return false
	}
	for i := len(g.widgets) - 1; i >= 0; i-- {
		if w, ok := g.widgets[i].(Widget); ok && w.IsVisible() && w.HandleEvent(ev) {
			return true
		}
	}
	return false
}

func (g *GUI) Render(t render.Target) {
	if g.visible {
		g.layers.Render(t, g.cam)
	}
}

func (g *GUI) SetVisible(v bool) { g.visible = v }
func (g *GUI) IsVisible() bool   { return g.visible }

func (g *GUI) Clear() {
	g.layers.Clear()
	g.widgets = nil
}
