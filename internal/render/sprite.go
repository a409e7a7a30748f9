package render

import (
	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/object"
)

// Animation cycles a sprite through a list of glyphs.
type Animation struct {
	Frames    []rune
	FrameTime core.Time
	Loop      bool
}

// Sprite is a single glyph positioned in world pixels.
type Sprite struct {
	object.Object

	position core.Vector2f
	glyph    rune
	color    core.Color
	visible  bool

	anim    *Animation
	frame   int
	elapsed core.Time
}

// NewSprite creates a visible sprite.
func NewSprite(glyph rune, color core.Color) *Sprite {
	return &Sprite{
		Object:  object.New("Sprite"),
		glyph:   glyph,
		color:   color,
		visible: true,
	}
}

func (s *Sprite) Position() core.Vector2f { return s.position }
func (s *Sprite) Glyph() rune             { return s.glyph }
func (s *Sprite) Color() core.Color       { return s.color }
func (s *Sprite) IsVisible() bool         { return s.visible && !s.IsDestroyed() }

func (s *Sprite) SetPosition(p core.Vector2f) {
	s.position = p
	s.EmitChange(object.NewProperty(object.PropPosition, p))
}

func (s *Sprite) SetGlyph(r rune)       { s.glyph = r }
func (s *Sprite) SetColor(c core.Color) { s.color = c }

func (s *Sprite) SetVisible(v bool) {
	s.visible = v
	s.EmitChange(object.NewProperty(object.PropVisible, v))
}

// Play starts an animation from its first frame.
func (s *Sprite) Play(a *Animation) {
	s.anim = a
	s.frame = 0
	s.elapsed = 0
	if a != nil && len(a.Frames) > 0 {
		s.glyph = a.Frames[0]
	}
}

// Stop halts the current animation on its current frame.
func (s *Sprite) Stop() { s.anim = nil }

// IsAnimating reports whether an animation is playing.
func (s *Sprite) IsAnimating() bool { return s.anim != nil }

// Update advances the animation by dt.
func (s *Sprite) Update(dt core.Time) {
	a := s.anim
	if a == nil || len(a.Frames) == 0 || a.FrameTime <= 0 {
		return
	}
	s.elapsed += dt
	for s.elapsed >= a.FrameTime {
		s.elapsed -= a.FrameTime
		if s.frame+1 < len(a.Frames) {
			s.frame++
		} else if a.Loop {
			s.frame = 0
		} else {
			s.anim = nil
			return
		}
		s.glyph = a.Frames[s.frame]
	}
}

// Draw paints the glyph at the cell under the sprite's position.
func (s *Sprite) Draw(t Target, cam *Camera) {
	x, y := cam.WorldToCell(s.position)
	t.SetCell(x, y, s.glyph, s.color)
}
