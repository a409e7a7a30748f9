// Package maze is a coin-collecting maze played on the grid movers. The
// player steers with the keyboard while ghosts wander, chase or patrol.
// The game registers itself under the id "maze".
package maze

import (
	"embed"
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/level"
	"github.com/vovakirdan/gridstage/internal/object"
	"github.com/vovakirdan/gridstage/internal/pref"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/render"
	"github.com/vovakirdan/gridstage/internal/scene"
	"github.com/vovakirdan/gridstage/internal/storage"
	"github.com/vovakirdan/gridstage/internal/timer"
)

// ID is the registry id and the scene name of the game.
const ID = "maze"

// Spawn kinds understood in level files.
const (
	SpawnPlayer  = "player"
	SpawnCoin    = "coin"
	SpawnChase   = "ghost_chase"
	SpawnRandom  = "ghost_random"
	SpawnPatrol  = "ghost_patrol" // clockwise wall follower
	SpawnPatrolH = "ghost_patrol_h"
	SpawnPatrolV = "ghost_patrol_v"
)

const (
	tagPlayer = "player"
	tagCoin   = "coin"
	tagGhost  = "ghost"

	bestScorePrefix = "maze.best."

	invulnerableFor = 1500 * time.Millisecond
	bannerFor       = 2 * time.Second
)

// Property names published on the engine cache when a run ends.
const (
	PropLastScore object.PropertyName = "maze.lastScore"
	PropLastLevel object.PropertyName = "maze.lastLevel"
)

var ghostColors = []core.Color{core.ColorRed, core.ColorMagenta, core.ColorCyan, core.ColorOrange}

//go:embed levels/*.yaml
var levelFS embed.FS

func init() {
	registry.Register(ID, "Maze", New)
}

type ghost struct {
	obj    *grid.Object
	mover  *grid.Mover
	chaser *grid.TargetMover // nil unless the ghost chases
}

// Game is the behaviour of the maze scene.
type Game struct {
	cfg     config.MazeConfig
	lvl     level.Level
	seed    int64
	trigger grid.Trigger
	spacing float64
	diff    *config.DifficultyManager

	grid      *grid.Grid
	player    *grid.Object
	km        *grid.KeyboardMover
	ghosts    []*ghost
	coins     int
	total     int
	collected []*grid.Object

	score        int
	lives        int
	played       core.Time
	seconds      int
	caught       bool
	invulnerable bool
	over         bool
	won          bool

	countdown *timer.Timer
	chase     *timer.Timer
	banner    *render.Text
}

// New builds the maze scene from registry options.
func New(opts registry.Options) (*scene.Scene, error) {
	cfg, err := config.LoadMaze(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Difficulty != "" {
		switch p := config.DifficultyPreset(opts.Difficulty); p {
		case config.DifficultyEasy, config.DifficultyNormal, config.DifficultyHard, config.DifficultyFixed:
			config.ApplyMazePreset(&cfg, p)
		default:
			return nil, fmt.Errorf("maze: unknown difficulty %q", opts.Difficulty)
		}
	}
	lvl, err := LoadLevel(opts.LevelsDir, opts.Level)
	if err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g, err := NewGame(cfg, lvl, seed)
	if err != nil {
		return nil, err
	}
	g.spacing = opts.Spacing
	return g.Scene()
}

// NewGame validates cfg against lvl and prepares an unbuilt game.
func NewGame(cfg config.MazeConfig, lvl level.Level, seed int64) (*Game, error) {
	trigger, ok := grid.ParseTrigger(cfg.Player.Trigger)
	if !ok {
		return nil, fmt.Errorf("maze: unknown trigger %q", cfg.Player.Trigger)
	}
	if cfg.Player.Lives < 1 {
		return nil, fmt.Errorf("maze: lives must be at least 1, got %d", cfg.Player.Lives)
	}
	if cfg.Player.Speed <= 0 || cfg.Ghosts.Speed < 0 {
		return nil, fmt.Errorf("maze: invalid speeds player=%g ghosts=%g", cfg.Player.Speed, cfg.Ghosts.Speed)
	}
	if len(lvl.SpawnsOf(SpawnPlayer)) == 0 {
		return nil, fmt.Errorf("maze: level %q: %w: no player spawn", lvl.ID, level.ErrInvalidLevel)
	}
	return &Game{
		cfg:     cfg,
		lvl:     lvl,
		seed:    seed,
		trigger: trigger,
		diff:    config.NewDifficultyManager(cfg.Difficulty),
		lives:   cfg.Player.Lives,
	}, nil
}

// Scene creates the scene running g and populates its grid.
func (g *Game) Scene() (*scene.Scene, error) {
	s := scene.New(ID, g)
	if err := g.build(s); err != nil {
		return nil, fmt.Errorf("maze: level %q: %w", g.lvl.ID, err)
	}
	return s, nil
}

// Levels lists the levels found in dir, or the built-in ones when dir is
// empty.
func Levels(dir string) ([]level.Level, error) {
	return loader(dir).LoadAll()
}

// LoadLevel returns level id from dir, or the first level when id is empty.
func LoadLevel(dir, id string) (level.Level, error) {
	l := loader(dir)
	if id != "" {
		return l.LoadByID(id)
	}
	all, err := l.LoadAll()
	if err != nil {
		return level.Level{}, err
	}
	if len(all) == 0 {
		return level.Level{}, fmt.Errorf("maze: %w: no levels", level.ErrNotFound)
	}
	return all[0], nil
}

func loader(dir string) *level.Loader {
	if dir != "" {
		return level.NewLoader(dir)
	}
	return level.NewFSLoader(levelFS, "levels")
}

func (g *Game) build(s *scene.Scene) error {
	gr, err := g.lvl.ToGrid()
	if err != nil {
		return err
	}
	tile := gr.TileSize()
	// Row 0 of the screen belongs to the HUD.
	gr.SetPosition(core.V2f(0, tile.Y))
	if g.spacing > 0 {
		gr.SetSpacing(g.spacing)
	}
	if err := s.SetGrid(gr); err != nil {
		return err
	}
	for id, t := range g.lvl.Legend {
		s.TileMap().SetGlyph(id, render.Glyph{Rune: t.Glyph, Color: t.Color})
	}
	s.Camera().SetCellSize(core.V2f(tile.X/2, tile.Y))
	g.grid = gr

	if err := g.spawnPlayer(s, g.lvl.SpawnsOf(SpawnPlayer)[0]); err != nil {
		return err
	}
	for _, sp := range g.lvl.Spawns {
		switch sp.Kind {
		case SpawnPlayer:
		case SpawnCoin:
			err = g.addCoin(s, sp.Index)
		case SpawnChase, SpawnRandom, SpawnPatrol, SpawnPatrolH, SpawnPatrolV:
			err = g.addGhost(s, sp.Kind, sp.Index)
		default:
			s.Logger().Warn("unknown spawn kind", "kind", sp.Kind, "index", sp.Index)
		}
		if err != nil {
			return err
		}
	}
	if g.lvl.Metadata["coins"] == "fill" {
		var fillErr error
		gr.ForEachTile(func(t *grid.Tile) {
			if fillErr == nil && !t.IsCollidable() && !t.IsOccupied() {
				fillErr = g.addCoin(s, t.Index())
			}
		})
		if fillErr != nil {
			return fillErr
		}
	}
	g.total = g.coins
	g.applyDifficulty()

	g.banner = render.NewText("", core.V2f(float64(gr.Cols()), float64(gr.Rows()/2+1)), core.ColorBrightWhite)
	g.banner.Fixed = true
	g.banner.Centered = true
	g.banner.SetVisible(false)
	s.GUI().Add(g.banner, 1)

	s.SetOnPauseAction(scene.PauseShow)
	return nil
}

func (g *Game) spawnPlayer(s *scene.Scene, at core.Index) error {
	p := grid.NewObject()
	p.SetTag(tagPlayer)
	p.SetCollisionGroup(tagPlayer)
	p.SetAppearance(grid.Appearance{Glyph: '@', Color: core.ColorBrightYellow, Layer: 2})
	if !g.grid.AddChild(p, at) {
		return fmt.Errorf("player spawn %v is not a free tile", at)
	}
	s.AddGameObject(p)

	km, err := s.CreateKeyboardMover(g.trigger)
	if err != nil {
		return err
	}
	km.SetBindings(grid.ArrowKeys, grid.WASDKeys, grid.VimKeys)
	if err := km.SetTarget(p); err != nil {
		return err
	}
	if err := km.SetMaxLinearSpeed(core.V2f(g.cfg.Player.Speed, g.cfg.Player.Speed)); err != nil {
		return err
	}
	p.Events().On(grid.EventObjectCollision, g.onPlayerCollision)
	g.player, g.km = p, km
	return nil
}

func (g *Game) addCoin(s *scene.Scene, at core.Index) error {
	c := grid.NewObject()
	c.SetTag(tagCoin)
	c.SetCollisionGroup(tagCoin)
	c.SetAppearance(grid.Appearance{Glyph: '·', Color: core.ColorYellow, Layer: 1})
	if !g.grid.AddChild(c, at) {
		return fmt.Errorf("coin %v is outside the grid", at)
	}
	s.AddGameObject(c)
	g.coins++
	return nil
}

func (g *Game) addGhost(s *scene.Scene, kind string, at core.Index) error {
	o := grid.NewObject()
	o.SetTag(tagGhost)
	o.SetCollisionGroup(tagGhost)
	o.ExcludeCollisionsWith(tagGhost, tagCoin)
	o.SetAppearance(grid.Appearance{Glyph: 'G', Color: ghostColors[len(g.ghosts)%len(ghostColors)], Layer: 3})
	if !g.grid.AddChild(o, at) {
		return fmt.Errorf("ghost %v is outside the grid", at)
	}
	s.AddGameObject(o)

	gh := &ghost{obj: o}
	switch kind {
	case SpawnChase:
		tm := grid.NewTargetMover(g.grid)
		gh.mover, gh.chaser = tm.Mover, tm
		s.AddMover(tm)
	case SpawnRandom:
		rm := grid.NewRandomMover(g.grid, g.seed+int64(len(g.ghosts)))
		rm.EnableDiagonals(g.cfg.Ghosts.Diagonals)
		gh.mover = rm.Mover
		s.AddMover(rm)
	default:
		cycle := grid.CycleClockwise
		if kind == SpawnPatrolH {
			cycle = grid.CycleHorizontal
		} else if kind == SpawnPatrolV {
			cycle = grid.CycleVertical
		}
		cm := grid.NewCyclicMover(g.grid, cycle)
		gh.mover = cm.Mover
		s.AddMover(cm)
	}
	if err := gh.mover.SetTarget(o); err != nil {
		return err
	}
	g.ghosts = append(g.ghosts, gh)
	return nil
}

// OnEnter installs the HUD and starts the clocks.
func (g *Game) OnEnter(s *scene.Scene) {
	if err := s.SetBackgroundScene(newHUD(g)); err != nil {
		s.Logger().Warn("hud unavailable", "err", err)
	}
	if limit := g.cfg.Rules.TimeLimit; limit > 0 {
		t, err := s.Timers().SetTimeout(time.Duration(limit)*time.Second, func(*timer.Timer) {
			g.finish(s, false, "time up")
		})
		if err != nil {
			s.Logger().Warn("countdown not started", "err", err)
		}
		g.countdown = t
	}
	if g.chasers() > 0 {
		g.retarget()
		t, err := s.Timers().SetInterval(g.chaseInterval(), func(*timer.Timer) { g.retarget() }, timer.Forever)
		if err != nil {
			s.Logger().Warn("chase timer not started", "err", err)
		}
		g.chase = t
	}
	s.Logger().Info("maze started", "level", g.lvl.ID, "coins", g.coins, "ghosts", len(g.ghosts), "seed", g.seed)
}

// OnHandleEvent opens the pause overlay.
func (g *Game) OnHandleEvent(s *scene.Scene, ev input.Event) {
	if ev.Type != input.KeyPressed || g.over {
		return
	}
	if ev.Key == input.KeyP || ev.Key == input.KeyEscape {
		if err := s.Engine().Scenes().Push(newPause(g), true); err != nil {
			s.Logger().Warn("pause failed", "err", err)
		}
	}
}

// OnUpdate settles the collisions of the last fixed steps.
func (g *Game) OnUpdate(s *scene.Scene, dt core.Time) {
	if g.over {
		return
	}
	g.played += core.ScaleTime(dt, s.Timescale())
	for _, c := range g.collected {
		s.RemoveGameObject(c)
	}
	g.collected = g.collected[:0]

	if g.caught {
		g.caught = false
		g.loseLife(s)
		if g.over {
			return
		}
	}
	if g.total > 0 && g.coins == 0 {
		g.finish(s, true, "cleared")
		return
	}
	if secs := int(g.played / time.Second); secs != g.seconds {
		g.seconds = secs
		g.applyDifficulty()
	}
}

// OnExit reports a run abandoned before it ended.
func (g *Game) OnExit(s *scene.Scene) {
	if !g.over {
		g.over = true
		g.report(s, "abandoned")
	}
}

func (g *Game) onPlayerCollision(_, other *grid.Object) {
	if g.over {
		return
	}
	switch other.Tag() {
	case tagCoin:
		if !other.IsActive() {
			return
		}
		other.SetActive(false)
		other.SetVisible(false)
		g.collected = append(g.collected, other)
		g.coins--
		g.score += g.cfg.Rules.CoinScore
		g.applyDifficulty()
	case tagGhost:
		if !g.invulnerable {
			g.caught = true
		}
	}
}

func (g *Game) loseLife(s *scene.Scene) {
	g.lives--
	s.Logger().Debug("player caught", "lives", g.lives)
	if g.lives <= 0 {
		g.finish(s, false, "caught")
		return
	}
	g.km.Reset()
	for _, gh := range g.ghosts {
		gh.mover.Reset()
	}
	g.invulnerable = true
	g.player.SetAppearance(grid.Appearance{Glyph: '@', Color: core.ColorGray, Layer: 2})
	_, err := s.Timers().SetTimeout(invulnerableFor, func(*timer.Timer) {
		g.invulnerable = false
		g.player.SetAppearance(grid.Appearance{Glyph: '@', Color: core.ColorBrightYellow, Layer: 2})
	})
	if err != nil {
		g.invulnerable = false
	}
}

// finish freezes the board, reports the run and leaves after a banner.
func (g *Game) finish(s *scene.Scene, won bool, reason string) {
	if g.over {
		return
	}
	g.over, g.won = true, won
	g.km.SetMovementFreeze(true)
	for _, gh := range g.ghosts {
		gh.mover.SetMovementFreeze(true)
	}
	s.Timers().StopAll()
	g.report(s, reason)

	g.banner.Content = "GAME OVER"
	if won {
		g.banner.Content = "LEVEL CLEAR"
	}
	g.banner.SetVisible(true)
	if _, err := s.Timers().SetTimeout(bannerFor, func(*timer.Timer) { s.Engine().Scenes().Pop(true) }); err != nil {
		s.Engine().Scenes().Pop(true)
	}
}

func (g *Game) report(s *scene.Scene, reason string) {
	s.Logger().Info("maze over", "level", g.lvl.ID, "reason", reason, "score", g.score, "played", g.played)
	if err := s.Dispatcher().Emit(storage.EventGameOver, ID, g.lvl.ID, g.score, g.played); err != nil {
		s.Logger().Warn("gameOver listener skipped", "err", err)
	}
	s.Cache().Set(object.NewProperty(PropLastScore, g.score))
	s.Cache().Set(object.NewProperty(PropLastLevel, g.lvl.ID))
	g.recordBest(s.SavableCache(), s)
}

// recordBest keeps the best score of each level in the savable cache.
func (g *Game) recordBest(prefs *pref.Container, s *scene.Scene) {
	key := bestScorePrefix + g.lvl.ID
	var err error
	if !prefs.Has(key) {
		err = prefs.AddPref(key, pref.Int, g.score, "best maze score on "+g.lvl.Name)
	} else if best, getErr := prefs.GetInt(key); getErr != nil || g.score > best {
		err = prefs.Set(key, g.score)
	}
	if err != nil {
		s.Logger().Warn("best score not stored", "key", key, "err", err)
	}
}

// BestScore reads the best score of levelID from prefs.
func BestScore(prefs *pref.Container, levelID string) (int, bool) {
	v, err := prefs.GetInt(bestScorePrefix + levelID)
	return v, err == nil
}

func (g *Game) chasers() int {
	n := 0
	for _, gh := range g.ghosts {
		if gh.chaser != nil {
			n++
		}
	}
	return n
}

// retarget points every chaser at the player's current tile. Chasers keep
// heading there until the next retarget.
func (g *Game) retarget() {
	for _, gh := range g.ghosts {
		if gh.chaser == nil {
			continue
		}
		//nolint:errcheck // the player is always on the grid
		gh.chaser.SetDestination(g.player.GridIndex())
	}
}

func (g *Game) chaseInterval() core.Time {
	base := time.Duration(g.cfg.Ghosts.ChaseInterval) * time.Millisecond
	return g.diff.ChaseInterval(base, g.score, g.seconds)
}

// applyDifficulty rescales ghost speed and chase rate for the current
// score and play time. New speeds apply from the next hop.
func (g *Game) applyDifficulty() {
	speed := g.diff.Speed(g.cfg.Ghosts.Speed, g.score, g.seconds)
	for _, gh := range g.ghosts {
		//nolint:errcheck // speed is never negative
		gh.mover.SetMaxLinearSpeed(core.V2f(speed, speed))
	}
	if g.chase != nil {
		//nolint:errcheck // interval is never negative
		g.chase.SetInterval(g.chaseInterval())
	}
}

// Status is the HUD line.
func (g *Game) Status() string {
	line := fmt.Sprintf("%s  SCORE %d  LIVES %d  COINS %d", g.lvl.Name, g.score, g.lives, g.coins)
	if g.countdown != nil {
		line += fmt.Sprintf("  TIME %d", int(math.Ceil(g.countdown.Remaining().Seconds())))
	}
	return line
}

func (g *Game) Level() level.Level   { return g.lvl }
func (g *Game) Score() int           { return g.score }
func (g *Game) Lives() int           { return g.lives }
func (g *Game) CoinsLeft() int       { return g.coins }
func (g *Game) Played() core.Time    { return g.played }
func (g *Game) IsOver() bool         { return g.over }
func (g *Game) Won() bool            { return g.won }
func (g *Game) Player() *grid.Object { return g.player }
