package maze

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/input"
	"github.com/vovakirdan/gridstage/internal/render"
	"github.com/vovakirdan/gridstage/internal/scene"
)

// hud draws the status line as the maze's background scene.
type hud struct {
	game *Game
	line *render.Text
}

func newHUD(g *Game) *scene.Scene {
	return scene.New(ID+"-hud", &hud{game: g})
}

func (h *hud) OnInit(s *scene.Scene) {
	h.line = render.NewText(h.game.Status(), core.V2f(0, 0), core.ColorWhite)
	h.line.Fixed = true
	s.GUI().Add(h.line, 0)
}

func (h *hud) OnUpdate(_ *scene.Scene, _ core.Time) {
	h.line.Content = h.game.Status()
}

// pause is pushed over the maze, which stays visible but frozen.
type pause struct {
	game *Game
}

func newPause(g *Game) *scene.Scene {
	return scene.New(ID+"-pause", &pause{game: g})
}

func (p *pause) OnInit(s *scene.Scene) {
	x, y := float64(p.game.grid.Cols()), float64(p.game.grid.Rows()/2)
	title := render.NewText(" PAUSED ", core.V2f(x, y), core.ColorBrightWhite)
	hint := render.NewText(" P resume  R give up ", core.V2f(x, y+1), core.ColorGray)
	for _, t := range []*render.Text{title, hint} {
		t.Fixed = true
		t.Centered = true
		s.GUI().Add(t, 0)
	}
}

func (p *pause) OnHandleEvent(s *scene.Scene, ev input.Event) {
	if ev.Type != input.KeyPressed {
		return
	}
	switch ev.Key {
	case input.KeyP, input.KeyEscape, input.KeySpace, input.KeyEnter:
		s.Engine().Scenes().Pop(true)
	case input.KeyR:
		// Leaving pops the maze too; its exit reports the run.
		s.Engine().Scenes().PopN(2, true)
	}
}
