package grid

import (
	"fmt"

	"github.com/vovakirdan/gridstage/internal/core"
)

// EventDestinationReached is emitted on a TargetMover's emitter with the
// destination index when the target arrives there.
const EventDestinationReached = "destinationReached"

// TargetMover walks its target along the shortest open path toward a
// destination tile or another object.
type TargetMover struct {
	*Mover
	destination core.Index
	chase       *Object
	reached     bool
}

// NewTargetMover creates a path-following mover with no destination.
func NewTargetMover(g *Grid) *TargetMover {
	tm := &TargetMover{
		Mover:       newMover(g, Target),
		destination: core.InvalidIndex,
	}
	tm.tick = tm.follow
	return tm
}

// SetDestination sets a fixed destination tile.
func (tm *TargetMover) SetDestination(idx core.Index) error {
	if !tm.grid.IsIndexValid(idx) {
		return fmt.Errorf("%w: destination %v outside grid", ErrInvalidArgument, idx)
	}
	tm.destination = idx
	tm.chase = nil
	tm.reached = false
	return nil
}

// Chase makes the destination follow obj's tile. nil stops chasing.
func (tm *TargetMover) Chase(obj *Object) {
	tm.chase = obj
	tm.reached = false
	if obj == nil {
		tm.destination = core.InvalidIndex
	}
}

// Destination returns the current destination, or core.InvalidIndex.
func (tm *TargetMover) Destination() core.Index {
	if tm.chase != nil && tm.chase.grid == tm.grid {
		return tm.chase.index
	}
	return tm.destination
}

// ClearDestination stops path following.
func (tm *TargetMover) ClearDestination() {
	tm.destination = core.InvalidIndex
	tm.chase = nil
}

func (tm *TargetMover) follow(core.Time) {
	t := tm.target
	if t == nil || tm.moving || tm.frozen || !t.active {
		return
	}
	dest := tm.Destination()
	if !tm.grid.IsIndexValid(dest) {
		return
	}
	if t.index == dest {
		if !tm.reached {
			tm.reached = true
			tm.emit(EventDestinationReached, dest)
		}
		return
	}
	tm.reached = false
	path := tm.PathTo(dest)
	if len(path) == 0 {
		return
	}
	tm.RequestMove(t.index.DirectionTo(path[0]))
}

// PathTo returns the tiles to visit, excluding the current one, along a
// shortest path to dest using the directions the mover may take. The
// destination itself may be occupied by an obstacle. It returns nil when
// dest is unreachable.
func (tm *TargetMover) PathTo(dest core.Index) []core.Index {
	t := tm.target
	if t == nil || !tm.grid.IsIndexValid(dest) || t.index == dest {
		return nil
	}
	dirs := make([]core.Direction, 0, 8)
	for _, d := range []core.Direction{
		core.DirUp, core.DirRight, core.DirDown, core.DirLeft,
		core.DirUpRight, core.DirDownRight, core.DirDownLeft, core.DirUpLeft,
	} {
		if tm.restriction.Allows(d) {
			dirs = append(dirs, d)
		}
	}

	start := t.index
	prev := map[core.Index]core.Index{start: start}
	queue := []core.Index{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dest {
			break
		}
		for _, d := range dirs {
			next := cur.Step(d)
			if _, seen := prev[next]; seen || !tm.passable(next, dest) {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if _, ok := prev[dest]; !ok {
		return nil
	}
	var path []core.Index
	for at := dest; at != start; at = prev[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (tm *TargetMover) passable(idx, dest core.Index) bool {
	tile := tm.grid.TileAt(idx)
	if !tile.IsValid() || tile.collidable {
		return false
	}
	if idx == dest {
		return true
	}
	for _, o := range tile.occupants {
		if o != tm.target && o.obstacle && o.active && !permeable(tm.target, o) {
			return false
		}
	}
	return true
}
