package grid

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/gridstage/internal/core"
)

func newTestGrid(t *testing.T, rows, cols int) *Grid {
	t.Helper()
	g, err := New(rows, cols, '.', core.V2f(32, 32))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 3, '.', core.V2f(32, 32)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(0 rows) error = %v", err)
	}
	if _, err := New(3, 3, '.', core.V2f(0, 32)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(zero tile width) error = %v", err)
	}
}

func TestTilePositions(t *testing.T) {
	g := newTestGrid(t, 3, 4)
	g.SetPosition(core.V2f(10, 20))

	tests := []struct {
		idx  core.Index
		pos  core.Vector2f
		cent core.Vector2f
	}{
		{core.Idx(0, 0), core.V2f(10, 20), core.V2f(26, 36)},
		{core.Idx(1, 2), core.V2f(74, 52), core.V2f(90, 68)},
		{core.Idx(2, 3), core.V2f(106, 84), core.V2f(122, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.idx.String(), func(t *testing.T) {
			tile := g.TileAt(tt.idx)
			if tile.Position() != tt.pos {
				t.Errorf("Position() = %v, expected %v", tile.Position(), tt.pos)
			}
			if tile.Centre() != tt.cent {
				t.Errorf("Centre() = %v, expected %v", tile.Centre(), tt.cent)
			}
			if got := g.TileAtPixel(tt.cent); got != tile {
				t.Errorf("TileAtPixel(%v) = %v", tt.cent, got.Index())
			}
		})
	}
}

func TestNeighboursAndSentinel(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	top := g.TileAt(core.Idx(0, 1))

	if above := g.TileAbove(top); above.IsValid() || above.Index() != core.InvalidIndex {
		t.Errorf("TileAbove(top row) = %v, expected sentinel", above.Index())
	}
	if g.TileAt(core.Idx(5, 5)) != g.TileAbove(top) {
		t.Error("sentinel tile is not shared")
	}
	if below := g.TileBelow(top); below.Index() != core.Idx(1, 1) {
		t.Errorf("TileBelow = %v, expected {1, 1}", below.Index())
	}
	if left := g.TileLeftOf(top); left.Index() != core.Idx(0, 0) {
		t.Errorf("TileLeftOf = %v", left.Index())
	}
	if right := g.TileRightOf(g.TileAt(core.Idx(0, 2))); right.IsValid() {
		t.Error("TileRightOf(last column) is valid")
	}
	if g.TileAtPixel(core.V2f(-1, 4)).IsValid() {
		t.Error("TileAtPixel(negative) is valid")
	}
}

func TestLoadFromVector(t *testing.T) {
	g, err := NewFromMap([]string{
		"#####",
		"#..c#",
		"#####",
	}, core.V2f(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	if g.Rows() != 3 || g.Cols() != 5 {
		t.Fatalf("size = %dx%d, expected 3x5", g.Rows(), g.Cols())
	}
	if n := g.SetCollidableByID('#', true); n != 12 {
		t.Errorf("SetCollidableByID(#) = %d, expected 12", n)
	}
	if g.TileAt(core.Idx(1, 3)).ID() != 'c' {
		t.Errorf("tile id = %q, expected c", g.TileAt(core.Idx(1, 3)).ID())
	}
	if g.String() != "#####\n#..c#\n#####" {
		t.Errorf("String() = %q", g.String())
	}

	if err := g.LoadFromVector([]string{"ab", "c"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("LoadFromVector(ragged) error = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	sep := filepath.Join(dir, "sep.txt")
	if err := os.WriteFile(plain, []byte("#.#\n...\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sep, []byte("#,.,#\n.,.,.\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		path string
		sep  rune
	}{{plain, 0}, {sep, ','}} {
		g := newTestGrid(t, 1, 1)
		if err := g.LoadFromFile(tc.path, tc.sep); err != nil {
			t.Fatalf("LoadFromFile(%s) error = %v", tc.path, err)
		}
		if g.String() != "#.#\n..." {
			t.Errorf("LoadFromFile(%s) grid = %q", tc.path, g.String())
		}
	}

	g := newTestGrid(t, 1, 1)
	if err := g.LoadFromFile(filepath.Join(dir, "missing"), 0); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("LoadFromFile(missing) error = %v", err)
	}
}

func TestSetCollidableSelectors(t *testing.T) {
	g, _ := NewFromMap([]string{"ab.", "...", "..b"}, core.V2f(1, 1))

	if !g.SetCollidable(core.Idx(0, 0), true) || g.SetCollidable(core.Idx(9, 9), true) {
		t.Error("SetCollidable(index) result wrong")
	}
	if n := g.SetCollidableRange(core.Idx(2, 2), core.Idx(1, 1), true); n != 4 {
		t.Errorf("SetCollidableRange() = %d, expected 4", n)
	}
	if n := g.SetCollidableByExclusion('.', false); n != 3 {
		t.Errorf("SetCollidableByExclusion() = %d, expected 3", n)
	}
	if g.TileAt(core.Idx(0, 0)).IsCollidable() || !g.TileAt(core.Idx(1, 1)).IsCollidable() {
		t.Error("unexpected collidable state after selectors")
	}
	if !g.SetCollidableTile(g.TileAt(core.Idx(0, 2)), true) || g.SetCollidableTile(g.TileAt(core.InvalidIndex), true) {
		t.Error("SetCollidableTile() result wrong")
	}
}

func TestTextureRects(t *testing.T) {
	g, _ := NewFromMap([]string{"ab"}, core.V2f(1, 1))
	g.SetTextureRect('a', core.NewRect(0, 0, 16, 16))
	if _, ok := g.TileAt(core.Idx(0, 0)).TextureRect(); !ok {
		t.Error("tile a has no texture rect")
	}
	if _, ok := g.TileAt(core.Idx(0, 1)).TextureRect(); ok {
		t.Error("tile b has a texture rect")
	}
	g.SetTileID(core.Idx(0, 1), 'a')
	if _, ok := g.TileAt(core.Idx(0, 1)).TextureRect(); !ok {
		t.Error("retagged tile did not pick up the texture rect")
	}
}

func TestAddRemoveChild(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	other := newTestGrid(t, 3, 3)
	o := NewObject()

	var enters, exits int
	o.Events().On(EventGridEnter, func(*Object) { enters++ })
	o.Events().On(EventGridExit, func(*Object) { exits++ })

	if g.AddChild(o, core.Idx(3, 0)) {
		t.Error("AddChild(out of range) succeeded")
	}
	if !g.AddChild(o, core.Idx(1, 1)) {
		t.Fatal("AddChild() failed")
	}
	if g.AddChild(o, core.Idx(0, 0)) || other.AddChild(o, core.Idx(0, 0)) {
		t.Error("AddChild() accepted an object already in a grid")
	}
	if o.Grid() != g || o.GridIndex() != core.Idx(1, 1) || o.Position() != core.V2f(48, 48) {
		t.Errorf("placed object grid=%p index=%v pos=%v", o.Grid(), o.GridIndex(), o.Position())
	}
	if !g.TileAt(core.Idx(1, 1)).HasOccupant(o) {
		t.Error("tile does not list its occupant")
	}

	if !g.RemoveChild(o) || g.RemoveChild(o) {
		t.Error("RemoveChild() did not succeed exactly once")
	}
	if g.TileAt(core.Idx(1, 1)).IsOccupied() || o.Grid() != nil {
		t.Error("RemoveChild() left references behind")
	}

	// add, remove, add is the same as a single add
	if !g.AddChild(o, core.Idx(1, 1)) {
		t.Fatal("re-adding failed")
	}
	if g.ChildCount() != 1 || o.GridIndex() != core.Idx(1, 1) || o.Position() != core.V2f(48, 48) {
		t.Error("re-added object differs from the first placement")
	}
	if enters != 2 || exits != 1 {
		t.Errorf("enters=%d exits=%d, expected 2 and 1", enters, exits)
	}
}

func TestDestroyRemovesChild(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	o := NewObject()
	g.AddChild(o, core.Idx(0, 1))
	o.Destroy()

	if g.ChildCount() != 0 || g.TileAt(core.Idx(0, 1)).IsOccupied() {
		t.Error("destroyed object still on the grid")
	}
	if g.AddChild(o, core.Idx(0, 0)) {
		t.Error("AddChild() accepted a destroyed object")
	}
}

func TestGridSetPositionMovesChildren(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	o := NewObject()
	g.AddChild(o, core.Idx(1, 0))
	g.SetPosition(core.V2f(100, 0))

	if o.Position() != g.TileAt(core.Idx(1, 0)).Centre() {
		t.Errorf("child at %v, tile centre %v", o.Position(), g.TileAt(core.Idx(1, 0)).Centre())
	}
}

func TestChildQueries(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	a, b := NewObject(), NewObject()
	a.SetTag("coin")
	b.SetTag("player")
	g.AddChild(a, core.Idx(0, 0))
	g.AddChild(b, core.Idx(0, 1))

	if g.ChildWithTag("player") != b || g.ChildWithTag("none") != nil {
		t.Error("ChildWithTag() returned the wrong object")
	}
	visited := 0
	g.ForEachChild(func(o *Object) {
		visited++
		g.RemoveChild(o)
	})
	if visited != 2 || g.ChildCount() != 0 {
		t.Errorf("ForEachChild visited %d, %d left", visited, g.ChildCount())
	}
}

func TestTileEntryCollisionRules(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(a, b *Object)
		collide bool
	}{
		{"defaults collide", func(a, b *Object) {}, true},
		{"inactive", func(a, b *Object) { b.SetActive(false) }, false},
		{"excluded group", func(a, b *Object) {
			b.SetCollisionGroup("coin")
			a.ExcludeCollisionsWith("coin")
		}, false},
		{"excluded by other", func(a, b *Object) {
			a.SetCollisionGroup("ghost")
			b.ExcludeCollisionsWith("ghost")
		}, false},
		{"matching ids", func(a, b *Object) { a.SetCollisionID(2); b.SetCollisionID(2) }, true},
		{"different ids", func(a, b *Object) { a.SetCollisionID(1); b.SetCollisionID(2) }, false},
		{"wildcard id", func(a, b *Object) { a.SetCollisionID(3) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 1, 2)
			a, b := NewObject(), NewObject()
			g.AddChild(a, core.Idx(0, 0))
			g.AddChild(b, core.Idx(0, 1))
			tt.setup(a, b)

			var aHits, bHits int
			a.Events().On(EventObjectCollision, func(self, other *Object) {
				if self == a && other == b {
					aHits++
				}
			})
			b.Events().On(EventObjectCollision, func(self, other *Object) {
				if self == b && other == a {
					bHits++
				}
			})
			g.Teleport(a, core.Idx(0, 1))

			want := 0
			if tt.collide {
				want = 1
			}
			if aHits != want || bHits != want {
				t.Errorf("hits a=%d b=%d, expected %d each", aHits, bHits, want)
			}
		})
	}
}

func TestTeleportOntoObstacle(t *testing.T) {
	g := newTestGrid(t, 1, 3)
	a, wall, off := NewObject(), NewObject(), NewObject()
	g.AddChild(a, core.Idx(0, 0))
	g.AddChild(wall, core.Idx(0, 2))
	g.AddChild(off, core.Idx(0, 2))
	wall.SetObstacle(true)
	off.SetObstacle(true)
	off.SetActive(false)

	var aHits, wallHits, offHits int
	a.Events().On(EventObjectCollision, func(self, other *Object) {
		if self == a && other == wall {
			aHits++
		}
	})
	wall.Events().On(EventObjectCollision, func(self, other *Object) {
		if self == wall && other == a && other.GridIndex() == core.Idx(0, 2) {
			wallHits++
		}
	})
	off.Events().On(EventObjectCollision, func(*Object, *Object) { offHits++ })

	if !g.Teleport(a, core.Idx(0, 2)) {
		t.Fatal("Teleport() onto an obstacle = false")
	}
	if a.GridIndex() != core.Idx(0, 2) || a.Position() != g.TileAt(core.Idx(0, 2)).Centre() {
		t.Errorf("GridIndex() = %v Position() = %v, expected the obstacle tile", a.GridIndex(), a.Position())
	}
	if aHits != 1 || wallHits != 1 {
		t.Errorf("hits a=%d wall=%d, expected 1 each", aHits, wallHits)
	}
	if offHits != 0 {
		t.Errorf("inactive obstacle hit %d times, expected 0", offHits)
	}
}
