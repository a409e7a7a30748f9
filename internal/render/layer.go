package render

import (
	"sort"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
)

// Layer is an ordered bag of drawables painted in insertion order.
type Layer struct {
	index     int
	visible   bool
	drawables []Drawable
}

// Index returns the z-order of the layer.
func (l *Layer) Index() int { return l.index }

// IsVisible reports whether the layer is painted.
func (l *Layer) IsVisible() bool { return l.visible }

// SetVisible shows or hides the whole layer.
func (l *Layer) SetVisible(v bool) { l.visible = v }

// Len returns the number of drawables.
func (l *Layer) Len() int { return len(l.drawables) }

// Has reports whether d is on the layer.
func (l *Layer) Has(d Drawable) bool {
	for _, x := range l.drawables {
		if x == d {
			return true
		}
	}
	return false
}

func (l *Layer) add(d Drawable) {
	l.drawables = append(l.drawables, d)
}

func (l *Layer) remove(d Drawable) bool {
	for i, x := range l.drawables {
		if x == d {
			l.drawables = append(l.drawables[:i], l.drawables[i+1:]...)
			return true
		}
	}
	return false
}

// Layers is the z-ordered layer container of a scene. Lower indices are
// painted first.
type Layers struct {
	layers []*Layer
	where  map[Drawable]*Layer
	subs   map[Drawable]event.ListenerID
}

// NewLayers creates an empty container.
func NewLayers() *Layers {
	return &Layers{
		where: make(map[Drawable]*Layer),
		subs:  make(map[Drawable]event.ListenerID),
	}
}

// Layer returns the layer at index, creating it when missing.
func (ls *Layers) Layer(index int) *Layer {
	i := sort.Search(len(ls.layers), func(i int) bool { return ls.layers[i].index >= index })
	if i < len(ls.layers) && ls.layers[i].index == index {
		return ls.layers[i]
	}
	l := &Layer{index: index, visible: true}
	ls.layers = append(ls.layers, nil)
	copy(ls.layers[i+1:], ls.layers[i:])
	ls.layers[i] = l
	return l
}

// Add puts d on the layer at index, moving it if it was elsewhere.
// Destroyed drawables drop out automatically.
func (ls *Layers) Add(d Drawable, index int) {
	if cur, ok := ls.where[d]; ok {
		cur.remove(d)
	}
	l := ls.Layer(index)
	l.add(d)
	ls.where[d] = l
	if _, subscribed := ls.subs[d]; !subscribed {
		if obj, ok := d.(destructible); ok {
			ls.subs[d] = obj.OnDestruction(func() { ls.Remove(d) })
		}
	}
}

// Remove takes d off its layer.
func (ls *Layers) Remove(d Drawable) bool {
	l, ok := ls.where[d]
	if !ok {
		return false
	}
	l.remove(d)
	delete(ls.where, d)
	if id, ok := ls.subs[d]; ok {
		if obj, isObj := d.(destructible); isObj {
			obj.Unsubscribe(id)
		}
		delete(ls.subs, d)
	}
	return true
}

// LayerOf returns the layer holding d.
func (ls *Layers) LayerOf(d Drawable) (*Layer, bool) {
	l, ok := ls.where[d]
	return l, ok
}

// Count returns the number of layers.
func (ls *Layers) Count() int { return len(ls.layers) }

// Render paints every visible layer bottom to top through cam.
func (ls *Layers) Render(t Target, cam *Camera) {
	var target Target = t
	if cam != nil && cam.viewport.W > 0 && cam.viewport.H > 0 {
		target = clipped{Target: t, view: cam.viewport}
	}
	for _, l := range ls.layers {
		if !l.visible {
			continue
		}
		for _, d := range l.drawables {
			if d.IsVisible() {
				d.Draw(target, cam)
			}
		}
	}
}

// Update advances every updatable drawable.
func (ls *Layers) Update(dt core.Time) {
	for _, l := range ls.layers {
		for _, d := range append([]Drawable(nil), l.drawables...) {
			if u, ok := d.(Updatable); ok {
				u.Update(dt)
			}
		}
	}
}

// Clear removes every drawable and layer.
func (ls *Layers) Clear() {
	for d := range ls.where {
		ls.Remove(d)
	}
	ls.layers = nil
}
