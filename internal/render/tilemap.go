package render

import (
	"sort"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/grid"
)

// Glyph is how a tile id is painted.
type Glyph struct {
	Rune  rune
	Color core.Color
}

// TileMap draws a grid: every tile, then the visible grid objects ordered by
// their appearance layer. Objects are boxed around their centre.
type TileMap struct {
	grid    *grid.Grid
	glyphs  map[rune]Glyph
	visible bool
}

// NewTileMap creates a drawable for g. Tiles without a glyph are drawn with
// their id in gray.
func NewTileMap(g *grid.Grid) *TileMap {
	return &TileMap{grid: g, glyphs: make(map[rune]Glyph), visible: true}
}

func (m *TileMap) Grid() *grid.Grid  { return m.grid }
func (m *TileMap) IsVisible() bool   { return m.visible }
func (m *TileMap) SetVisible(v bool) { m.visible = v }

// SetGlyph maps a tile id to a glyph.
func (m *TileMap) SetGlyph(id rune, g Glyph) {
	m.glyphs[id] = g
}

// GlyphFor returns the glyph used for tile id.
func (m *TileMap) GlyphFor(id rune) Glyph {
	if g, ok := m.glyphs[id]; ok {
		return g
	}
	return Glyph{Rune: id, Color: core.ColorGray}
}

func (m *TileMap) Draw(t Target, cam *Camera) {
	size := m.grid.TileSize()
	m.grid.ForEachTile(func(tile *grid.Tile) {
		g := m.GlyphFor(tile.ID())
		fillBox(t, cam, tile.Position(), size, g.Rune, g.Color)
	})

	objs := make([]*grid.Object, 0, m.grid.ChildCount())
	m.grid.ForEachChild(func(o *grid.Object) {
		if o.IsVisible() && o.Appearance().Glyph != 0 {
			objs = append(objs, o)
		}
	})
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Appearance().Layer < objs[j].Appearance().Layer
	})
	for _, o := range objs {
		a := o.Appearance()
		fillBox(t, cam, o.Position().Sub(size.Mul(0.5)), size, a.Glyph, a.Color)
	}
}

func fillBox(t Target, cam *Camera, pos, size core.Vector2f, r rune, c core.Color) {
	x0, y0 := cam.WorldToCell(pos)
	x1, y1 := cam.WorldToCell(pos.Add(size))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			t.SetCell(x, y, r, c)
		}
	}
}
