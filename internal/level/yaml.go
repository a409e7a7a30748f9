package level

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/gridstage/internal/core"
)

// yamlLevel represents the YAML structure for a level file.
type yamlLevel struct {
	ID       string              `yaml:"id"`
	Name     string              `yaml:"name"`
	TileSize float64             `yaml:"tile_size,omitempty"`
	Floor    string              `yaml:"floor,omitempty"`
	Map      []string            `yaml:"map"`
	Legend   map[string]yamlTile `yaml:"legend"`
	Spawns   map[string]string   `yaml:"spawns"` // map char -> spawn kind
	Metadata map[string]string   `yaml:"metadata,omitempty"`
}

// yamlTile represents a legend entry in YAML format.
type yamlTile struct {
	Glyph      string `yaml:"glyph"`
	Color      string `yaml:"color"`
	Collidable bool   `yaml:"collidable"`
}

// Parse parses a YAML level. Spawn markers are recorded and replaced by
// the floor tile.
func Parse(data []byte) (Level, error) {
	var yl yamlLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("%w: yaml unmarshal: %v", ErrInvalidLevel, err)
	}

	size := yl.TileSize
	if size <= 0 {
		size = DefaultTileSize
	}
	floor := '.'
	if yl.Floor != "" {
		r, err := singleRune("floor", yl.Floor)
		if err != nil {
			return Level{}, err
		}
		floor = r
	}

	lvl := Level{
		ID:       yl.ID,
		Name:     yl.Name,
		TileSize: core.V2f(size, size),
		Floor:    floor,
		Legend:   make(map[rune]Tile, len(yl.Legend)),
		Metadata: yl.Metadata,
	}

	for key, t := range yl.Legend {
		id, err := singleRune("legend key", key)
		if err != nil {
			return Level{}, err
		}
		tile := Tile{Glyph: id, Collidable: t.Collidable}
		if t.Glyph != "" {
			if tile.Glyph, err = singleRune("glyph", t.Glyph); err != nil {
				return Level{}, err
			}
		}
		if t.Color != "" {
			c, ok := core.ParseColor(t.Color)
			if !ok {
				return Level{}, fmt.Errorf("%w: unknown color %q", ErrInvalidLevel, t.Color)
			}
			tile.Color = c
		}
		lvl.Legend[id] = tile
	}

	spawns := make(map[rune]string, len(yl.Spawns))
	for key, kind := range yl.Spawns {
		r, err := singleRune("spawn key", key)
		if err != nil {
			return Level{}, err
		}
		spawns[r] = kind
	}

	// Parse map, lifting spawn markers
	for row, line := range yl.Map {
		runes := []rune(line)
		for col, r := range runes {
			if kind, ok := spawns[r]; ok {
				lvl.Spawns = append(lvl.Spawns, Spawn{Kind: kind, Index: core.Idx(row, col)})
				runes[col] = floor
			}
		}
		lvl.Rows = append(lvl.Rows, string(runes))
	}

	if err := lvl.validate(); err != nil {
		return Level{}, err
	}
	return lvl, nil
}

func singleRune(what, s string) (rune, error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("%w: %s %q must be a single character", ErrInvalidLevel, what, s)
	}
	return runes[0], nil
}
