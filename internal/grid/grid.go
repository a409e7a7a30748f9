// Package grid implements the tile grid, the objects that live on it and
// the movers that hop them from tile to tile.
package grid

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/event"
)

var (
	ErrInvalidArgument    = errors.New("grid: invalid argument")
	ErrFileNotFound       = errors.New("grid: file not found")
	ErrTargetGridMismatch = errors.New("grid: target is not in the mover's grid")
	ErrRigidBodyConflict  = errors.New("grid: target has a rigid body")
)

// DefaultSpacing is the visual gap between tiles in pixels.
const DefaultSpacing = 1.0

// Grid is a rectangular array of tiles. It owns its tiles and holds
// non-owning references to the objects placed on it.
type Grid struct {
	rows, cols int
	tileSize   core.Vector2f
	origin     core.Vector2f
	spacing    float64
	tiles      []*Tile
	sentinel   *Tile
	textures   map[rune]core.Rect

	children  []*Object
	listeners map[*Object]event.ListenerID
}

// New creates a rows×cols grid with every tile carrying tileID.
func New(rows, cols int, tileID rune, tileSize core.Vector2f) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid size %dx%d", ErrInvalidArgument, rows, cols)
	}
	if tileSize.X <= 0 || tileSize.Y <= 0 {
		return nil, fmt.Errorf("%w: tile size %v", ErrInvalidArgument, tileSize)
	}
	g := newEmpty(tileSize)
	g.build(rows, cols, func(core.Index) rune { return tileID })
	return g, nil
}

// NewFromMap builds a grid from a character map, one string per row.
// Every row must have the same number of characters.
func NewFromMap(rows []string, tileSize core.Vector2f) (*Grid, error) {
	if tileSize.X <= 0 || tileSize.Y <= 0 {
		return nil, fmt.Errorf("%w: tile size %v", ErrInvalidArgument, tileSize)
	}
	g := newEmpty(tileSize)
	if err := g.LoadFromVector(rows); err != nil {
		return nil, err
	}
	return g, nil
}

func newEmpty(tileSize core.Vector2f) *Grid {
	return &Grid{
		tileSize:  tileSize,
		spacing:   DefaultSpacing,
		textures:  make(map[rune]core.Rect),
		listeners: make(map[*Object]event.ListenerID),
		sentinel: &Tile{
			index: core.InvalidIndex,
			size:  tileSize,
		},
	}
}

func (g *Grid) build(rows, cols int, idAt func(core.Index) rune) {
	g.rows, g.cols = rows, cols
	g.tiles = make([]*Tile, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := core.Idx(r, c)
			t := &Tile{
				index:    idx,
				position: g.tilePosition(idx),
				size:     g.tileSize,
				id:       idAt(idx),
			}
			if rect, ok := g.textures[t.id]; ok {
				rect := rect
				t.texture = &rect
			}
			g.tiles[r*cols+c] = t
		}
	}
}

func (g *Grid) tilePosition(idx core.Index) core.Vector2f {
	return g.origin.Add(core.V2f(float64(idx.Col)*g.tileSize.X, float64(idx.Row)*g.tileSize.Y))
}

// LoadFromVector rebuilds the tiles from a character map. Objects on the
// grid are removed first.
func (g *Grid) LoadFromVector(rows []string) error {
	grid := make([][]rune, len(rows))
	for i, row := range rows {
		grid[i] = []rune(row)
	}
	return g.load(grid)
}

// LoadFromFile reads a character map from path. With sep == 0 every rune
// of a line is a tile; otherwise tiles are separated by sep. Blank lines
// are skipped.
func (g *Grid) LoadFromFile(path string, sep rune) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	defer f.Close()

	var rows [][]rune
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if sep == 0 {
			rows = append(rows, []rune(line))
			continue
		}
		var row []rune
		for _, cell := range strings.Split(line, string(sep)) {
			r := []rune(cell)
			if len(r) != 1 {
				return fmt.Errorf("%w: %s: cell %q is not a single character", ErrInvalidArgument, path, cell)
			}
			row = append(row, r[0])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("grid: cannot read %s: %w", path, err)
	}
	return g.load(rows)
}

func (g *Grid) load(rows [][]rune) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("%w: empty map", ErrInvalidArgument)
	}
	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d tiles, expected %d", ErrInvalidArgument, i, len(row), cols)
		}
	}
	g.RemoveAllChildren()
	g.build(len(rows), cols, func(idx core.Index) rune { return rows[idx.Row][idx.Col] })
	return nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Size returns the grid size in tiles as (cols, rows).
func (g *Grid) Size() core.Vector2i { return core.V2i(g.cols, g.rows) }

// TileSize returns the uniform tile size.
func (g *Grid) TileSize() core.Vector2f { return g.tileSize }

// PixelSize returns the grid's extent in pixels.
func (g *Grid) PixelSize() core.Vector2f {
	return core.V2f(float64(g.cols)*g.tileSize.X, float64(g.rows)*g.tileSize.Y)
}

// Spacing returns the visual gap drawn between tiles.
func (g *Grid) Spacing() float64 { return g.spacing }

// SetSpacing changes the visual gap between tiles. It does not move tiles.
func (g *Grid) SetSpacing(s float64) {
	if s >= 0 {
		g.spacing = s
	}
}

// Position returns the pixel position of the top-left corner.
func (g *Grid) Position() core.Vector2f { return g.origin }

// SetPosition moves the grid. Tiles and placed objects move with it.
func (g *Grid) SetPosition(pos core.Vector2f) {
	delta := pos.Sub(g.origin)
	g.origin = pos
	for _, t := range g.tiles {
		t.position = g.tilePosition(t.index)
	}
	for _, child := range g.children {
		child.SetPosition(child.Position().Add(delta))
	}
}

// IsIndexValid reports whether idx addresses a tile.
func (g *Grid) IsIndexValid(idx core.Index) bool {
	return idx.Row >= 0 && idx.Row < g.rows && idx.Col >= 0 && idx.Col < g.cols
}

// TileAt returns the tile at idx or the sentinel tile.
func (g *Grid) TileAt(idx core.Index) *Tile {
	if !g.IsIndexValid(idx) {
		return g.sentinel
	}
	return g.tiles[idx.Row*g.cols+idx.Col]
}

// TileAtPixel returns the tile containing the pixel position, or the
// sentinel tile.
func (g *Grid) TileAtPixel(p core.Vector2f) *Tile {
	local := p.Sub(g.origin)
	if local.X < 0 || local.Y < 0 {
		return g.sentinel
	}
	return g.TileAt(core.Idx(int(local.Y/g.tileSize.Y), int(local.X/g.tileSize.X)))
}

// AdjacentTile returns the neighbour of t in direction d.
func (g *Grid) AdjacentTile(t *Tile, d core.Direction) *Tile {
	if t == nil || !t.IsValid() {
		return g.sentinel
	}
	return g.TileAt(t.index.Step(d))
}

func (g *Grid) TileAbove(t *Tile) *Tile   { return g.AdjacentTile(t, core.DirUp) }
func (g *Grid) TileBelow(t *Tile) *Tile   { return g.AdjacentTile(t, core.DirDown) }
func (g *Grid) TileLeftOf(t *Tile) *Tile  { return g.AdjacentTile(t, core.DirLeft) }
func (g *Grid) TileRightOf(t *Tile) *Tile { return g.AdjacentTile(t, core.DirRight) }

// ForEachTile calls fn for every tile in row-major order.
func (g *Grid) ForEachTile(fn func(*Tile)) {
	for _, t := range g.tiles {
		fn(t)
	}
}

// SetCollidable sets the collidable flag of the tile at idx.
func (g *Grid) SetCollidable(idx core.Index, collidable bool) bool {
	if !g.IsIndexValid(idx) {
		return false
	}
	g.TileAt(idx).collidable = collidable
	return true
}

// SetCollidableTile sets the collidable flag of t, which must belong to g.
func (g *Grid) SetCollidableTile(t *Tile, collidable bool) bool {
	if t == nil || !t.IsValid() || g.TileAt(t.index) != t {
		return false
	}
	t.collidable = collidable
	return true
}

// SetCollidableRange sets the flag on every tile in the rectangle spanned
// by from and to, inclusive. Out-of-range parts are ignored.
func (g *Grid) SetCollidableRange(from, to core.Index, collidable bool) int {
	r0, r1 := order(from.Row, to.Row)
	c0, c1 := order(from.Col, to.Col)
	n := 0
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if g.SetCollidable(core.Idx(r, c), collidable) {
				n++
			}
		}
	}
	return n
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// SetCollidableByID sets the flag on every tile built from id.
func (g *Grid) SetCollidableByID(id rune, collidable bool) int {
	n := 0
	for _, t := range g.tiles {
		if t.id == id {
			t.collidable = collidable
			n++
		}
	}
	return n
}

// SetCollidableByExclusion sets the flag on every tile not built from id.
func (g *Grid) SetCollidableByExclusion(id rune, collidable bool) int {
	n := 0
	for _, t := range g.tiles {
		if t.id != id {
			t.collidable = collidable
			n++
		}
	}
	return n
}

// SetTileID changes the map character of the tile at idx and reapplies
// the texture mapping.
func (g *Grid) SetTileID(idx core.Index, id rune) bool {
	if !g.IsIndexValid(idx) {
		return false
	}
	t := g.TileAt(idx)
	t.id = id
	t.texture = nil
	if rect, ok := g.textures[id]; ok {
		t.texture = &rect
	}
	return true
}

// SetTextureRect maps every tile built from id to a texture sub-rect.
func (g *Grid) SetTextureRect(id rune, rect core.Rect) {
	g.textures[id] = rect
	for _, t := range g.tiles {
		if t.id == id {
			r := rect
			t.texture = &r
		}
	}
}

// AddChild places obj on the tile at idx and centres it there. It fails
// when idx is out of range or obj is already in a grid.
func (g *Grid) AddChild(obj *Object, idx core.Index) bool {
	if obj == nil || obj.IsDestroyed() || obj.grid != nil || !g.IsIndexValid(idx) {
		return false
	}
	tile := g.TileAt(idx)
	tile.addOccupant(obj)
	obj.grid = g
	obj.index = idx
	g.children = append(g.children, obj)
	g.listeners[obj] = obj.OnDestruction(func() { g.RemoveChild(obj) })

	obj.SetPosition(tile.Centre())
	//nolint:errcheck // grid events carry *Object
	obj.Events().Emit(EventGridEnter, obj)
	return true
}

// RemoveChild takes obj off the grid.
func (g *Grid) RemoveChild(obj *Object) bool {
	if obj == nil || obj.grid != g {
		return false
	}
	g.TileAt(obj.index).removeOccupant(obj)
	for i, c := range g.children {
		if c == obj {
			g.children = append(g.children[:i], g.children[i+1:]...)
			break
		}
	}
	if id, ok := g.listeners[obj]; ok {
		obj.Unsubscribe(id)
		delete(g.listeners, obj)
	}
	obj.grid = nil
	obj.index = core.InvalidIndex
	//nolint:errcheck // grid events carry *Object
	obj.Events().Emit(EventGridExit, obj)
	return true
}

// RemoveAllChildren takes every object off the grid.
func (g *Grid) RemoveAllChildren() {
	for len(g.children) > 0 {
		g.RemoveChild(g.children[len(g.children)-1])
	}
}

// Children returns the placed objects in placement order.
func (g *Grid) Children() []*Object {
	out := make([]*Object, len(g.children))
	copy(out, g.children)
	return out
}

// ChildCount returns the number of placed objects.
func (g *Grid) ChildCount() int { return len(g.children) }

// ChildWithTag returns the first placed object carrying tag.
func (g *Grid) ChildWithTag(tag string) *Object {
	for _, c := range g.children {
		if c.Tag() == tag {
			return c
		}
	}
	return nil
}

// ForEachChild calls fn for every placed object over a snapshot.
func (g *Grid) ForEachChild(fn func(*Object)) {
	for _, c := range g.Children() {
		fn(c)
	}
}

// changeTile moves obj's occupancy to idx without touching its pixel
// position and reports the non-obstacle occupants it collided with on
// entry.
func (g *Grid) changeTile(obj *Object, idx core.Index) []*Object {
	if obj.grid != g || !g.IsIndexValid(idx) || obj.index == idx {
		return nil
	}
	g.TileAt(obj.index).removeOccupant(obj)
	dest := g.TileAt(idx)
	others := dest.Occupants()
	dest.addOccupant(obj)
	obj.index = idx

	var hits []*Object
	for _, other := range others {
		if other.obstacle || !canCollide(obj, other) {
			continue
		}
		hits = append(hits, other)
		//nolint:errcheck // grid events carry *Object
		obj.Events().Emit(EventObjectCollision, obj, other)
		//nolint:errcheck // grid events carry *Object
		other.Events().Emit(EventObjectCollision, other, obj)
	}
	return hits
}

// canCollide applies the object-vs-object collision rules: both active,
// neither group excluded by the other, and matching or wildcard ids.
func canCollide(a, b *Object) bool {
	if !a.active || !b.active {
		return false
	}
	if a.exclude.Has(b.collisionGroup) || b.exclude.Has(a.collisionGroup) {
		return false
	}
	return a.collisionID == b.collisionID || a.collisionID == 0 || b.collisionID == 0
}

// Teleport moves obj to idx instantly. Occupancy and pixel position change
// together and tile-entry collisions fire as for a hop. Obstacles on idx
// do not block a teleport; each active one still gets an objectCollision
// pair once obj has arrived.
func (g *Grid) Teleport(obj *Object, idx core.Index) bool {
	if obj == nil || obj.grid != g || !g.IsIndexValid(idx) {
		return false
	}
	var obstacles []*Object
	for _, o := range g.TileAt(idx).Occupants() {
		if o != obj && o.obstacle && o.active && obj.active {
			obstacles = append(obstacles, o)
		}
	}
	g.changeTile(obj, idx)
	obj.SetPosition(g.TileAt(idx).Centre())
	for _, o := range obstacles {
		//nolint:errcheck // grid events carry *Object
		obj.Events().Emit(EventObjectCollision, obj, o)
		//nolint:errcheck // grid events carry *Object
		o.Events().Emit(EventObjectCollision, o, obj)
	}
	return true
}

// String renders the tile ids row by row.
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			b.WriteRune(g.tiles[r*g.cols+c].id)
		}
		if r < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
