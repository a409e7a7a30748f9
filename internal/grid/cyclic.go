package grid

import (
	"github.com/vovakirdan/gridstage/internal/core"
)

// Cycle selects the pattern of a CyclicMover.
type Cycle int

const (
	// CycleClockwise follows walls turning clockwise when blocked.
	CycleClockwise Cycle = iota
	// CycleAnticlockwise follows walls turning anticlockwise when blocked.
	CycleAnticlockwise
	// CycleHorizontal moves left and right, reversing at obstacles.
	CycleHorizontal
	// CycleVertical moves up and down, reversing at obstacles.
	CycleVertical
)

// CyclicMover repeats a fixed movement pattern.
type CyclicMover struct {
	*Mover
	cycle   Cycle
	heading core.Direction
}

// NewCyclicMover creates a mover following cycle.
func NewCyclicMover(g *Grid, cycle Cycle) *CyclicMover {
	cm := &CyclicMover{Mover: newMover(g, Cyclic)}
	cm.SetCycle(cycle)
	cm.tick = cm.step
	return cm
}

// SetCycle changes the pattern and resets the heading to its default.
func (cm *CyclicMover) SetCycle(c Cycle) {
	cm.cycle = c
	switch c {
	case CycleVertical:
		cm.heading = core.DirDown
	case CycleAnticlockwise:
		cm.heading = core.DirDown
	default:
		cm.heading = core.DirRight
	}
}

// Cycle returns the pattern.
func (cm *CyclicMover) Cycle() Cycle { return cm.cycle }

// SetHeading sets the direction the next hop tries first.
func (cm *CyclicMover) SetHeading(d core.Direction) {
	if d.IsValid() && !d.IsDiagonal() {
		cm.heading = d
	}
}

// Heading returns the direction the next hop tries first.
func (cm *CyclicMover) Heading() core.Direction { return cm.heading }

func (cm *CyclicMover) choices() []core.Direction {
	h := cm.heading
	switch cm.cycle {
	case CycleClockwise:
		return []core.Direction{h, h.RotateCW(), h.RotateCCW(), h.Reverse()}
	case CycleAnticlockwise:
		return []core.Direction{h, h.RotateCCW(), h.RotateCW(), h.Reverse()}
	default:
		return []core.Direction{h, h.Reverse()}
	}
}

func (cm *CyclicMover) step(core.Time) {
	t := cm.target
	if t == nil || cm.moving || cm.frozen || !t.active {
		return
	}
	for _, d := range cm.choices() {
		if !cm.restriction.Allows(d) {
			continue
		}
		if blocked, _ := cm.IsBlockedInDirection(d); blocked {
			continue
		}
		if cm.RequestMove(d) {
			cm.heading = d
		}
		return
	}
}
