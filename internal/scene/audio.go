package scene

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// AudioManager is the contract a scene's audio backend fulfils. Playback
// itself lives outside the runtime; the scene pauses, resumes and stops
// its audio together with its own lifecycle.
type AudioManager interface {
	Play(track string) error
	Stop(track string)
	StopAll()
	Pause()
	Resume()
	IsPaused() bool
	IsPlaying(track string) bool
	SetVolume(v float64) error
	Volume() float64
}

// SilentAudio tracks playback state without producing sound. It is the
// default audio manager of every scene.
type SilentAudio struct {
	playing mapset.Set[string]
	paused  bool
	volume  float64
}

// NewSilentAudio creates an audio manager at full volume.
func NewSilentAudio() *SilentAudio {
	return &SilentAudio{playing: mapset.New[string](), volume: 100}
}

func (a *SilentAudio) Play(track string) error {
	if track == "" {
		return fmt.Errorf("scene: play: %w: empty track name", ErrInvalidArgument)
	}
	a.playing.Put(track)
	return nil
}

func (a *SilentAudio) Stop(track string) { a.playing.Remove(track) }
func (a *SilentAudio) StopAll()          { a.playing.Clear() }
func (a *SilentAudio) Pause()            { a.paused = true }
func (a *SilentAudio) Resume()           { a.paused = false }
func (a *SilentAudio) IsPaused() bool    { return a.paused }
func (a *SilentAudio) Volume() float64   { return a.volume }

func (a *SilentAudio) IsPlaying(track string) bool {
	return !a.paused && a.playing.Has(track)
}

// SetVolume accepts values in [0, 100].
func (a *SilentAudio) SetVolume(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("scene: volume %g: %w", v, ErrInvalidArgument)
	}
	a.volume = v
	return nil
}

// Tracks returns the started tracks in name order.
func (a *SilentAudio) Tracks() []string {
	var out []string
	a.playing.Each(func(t string) { out = append(out, t) })
	sort.Strings(out)
	return out
}
