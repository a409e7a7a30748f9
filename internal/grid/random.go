package grid

import (
	"math/rand"

	"github.com/vovakirdan/gridstage/internal/core"
)

// RandomMover wanders: whenever idle it picks a random open direction,
// avoiding an immediate reversal unless it is cornered.
type RandomMover struct {
	*Mover
	rng       *rand.Rand
	diagonals bool
}

// NewRandomMover creates a wandering mover with a deterministic seed.
func NewRandomMover(g *Grid, seed int64) *RandomMover {
	rm := &RandomMover{
		Mover: newMover(g, Random),
		rng:   rand.New(rand.NewSource(seed)),
	}
	rm.tick = rm.wander
	return rm
}

// EnableDiagonals lets the mover pick diagonal directions too.
func (rm *RandomMover) EnableDiagonals(enable bool) { rm.diagonals = enable }

func (rm *RandomMover) candidates() []core.Direction {
	dirs := core.CardinalDirections
	if rm.diagonals {
		dirs = append(append([]core.Direction{}, dirs...),
			core.DirUpRight, core.DirDownRight, core.DirDownLeft, core.DirUpLeft)
	}
	var open []core.Direction
	for _, d := range dirs {
		if !rm.restriction.Allows(d) {
			continue
		}
		if blocked, _ := rm.IsBlockedInDirection(d); !blocked {
			open = append(open, d)
		}
	}
	return open
}

func (rm *RandomMover) wander(core.Time) {
	if rm.target == nil || rm.moving || rm.frozen || !rm.target.active {
		return
	}
	open := rm.candidates()
	if len(open) == 0 {
		return
	}
	back := rm.currentDirection.Reverse()
	var forward []core.Direction
	for _, d := range open {
		if rm.currentDirection.IsUnknown() || d != back {
			forward = append(forward, d)
		}
	}
	if len(forward) == 0 {
		forward = open
	}
	rm.RequestMove(forward[rm.rng.Intn(len(forward))])
}
