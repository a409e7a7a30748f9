// Package level loads grid levels from YAML files.
package level

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/grid"
)

// Errors reported by level parsing and lookup.
var (
	ErrInvalidLevel = errors.New("level: invalid level")
	ErrNotFound     = errors.New("level: not found")
)

// DefaultTileSize is used when a level does not set tile_size.
const DefaultTileSize = 32

// Tile describes how a map character looks and behaves.
type Tile struct {
	Glyph      rune
	Color      core.Color
	Collidable bool
}

// Spawn is a map position tagged for the game to populate.
type Spawn struct {
	Kind  string
	Index core.Index
}

// Level represents a complete level definition.
type Level struct {
	ID       string
	Name     string
	TileSize core.Vector2f
	Rows     []string
	Floor    rune // tile id written under spawn markers
	Legend   map[rune]Tile
	Spawns   []Spawn // row-major order
	Metadata map[string]string
	FilePath string
}

// Size returns the map size in tiles.
func (l *Level) Size() core.Vector2i {
	if len(l.Rows) == 0 {
		return core.Vector2i{}
	}
	return core.V2i(len([]rune(l.Rows[0])), len(l.Rows))
}

// SpawnsOf returns the spawns of one kind in row-major order.
func (l *Level) SpawnsOf(kind string) []core.Index {
	var out []core.Index
	for _, s := range l.Spawns {
		if s.Kind == kind {
			out = append(out, s.Index)
		}
	}
	return out
}

// ToGrid builds a grid from the level: tile ids from the map, collidable
// flags from the legend.
func (l *Level) ToGrid() (*grid.Grid, error) {
	g, err := grid.NewFromMap(l.Rows, l.TileSize)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", l.ID, err)
	}
	for id, t := range l.Legend {
		if t.Collidable {
			g.SetCollidableByID(id, true)
		}
	}
	return g, nil
}

// validate checks the parsed map for a rectangular, non-empty shape.
func (l *Level) validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidLevel)
	}
	if len(l.Rows) == 0 {
		return fmt.Errorf("%w: %s: empty map", ErrInvalidLevel, l.ID)
	}
	width := len([]rune(l.Rows[0]))
	if width == 0 {
		return fmt.Errorf("%w: %s: empty map row", ErrInvalidLevel, l.ID)
	}
	for i, row := range l.Rows {
		if n := len([]rune(row)); n != width {
			return fmt.Errorf("%w: %s: row %d has %d tiles, expected %d", ErrInvalidLevel, l.ID, i, n, width)
		}
	}
	if l.TileSize.X <= 0 || l.TileSize.Y <= 0 {
		return fmt.Errorf("%w: %s: tile size %v", ErrInvalidLevel, l.ID, l.TileSize)
	}
	return nil
}
