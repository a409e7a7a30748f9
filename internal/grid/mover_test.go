package grid

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vovakirdan/gridstage/internal/core"
	"github.com/vovakirdan/gridstage/internal/object"
	"github.com/vovakirdan/gridstage/internal/physics"
)

type fixedClock float64

func (c fixedClock) Timescale() float64 { return float64(c) }

// rig is a 3×3 grid of 32px tiles with a player at {1, 1} driven by a
// manual mover at 128 px/s, so one hop takes 250ms.
type rig struct {
	grid   *Grid
	player *Object
	mover  *Mover
	log    []string
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{grid: newTestGrid(t, 3, 3), player: NewObject(), mover: nil}
	r.grid.AddChild(r.player, core.Idx(1, 1))
	r.mover = NewMover(r.grid)
	if err := r.mover.SetTarget(r.player); err != nil {
		t.Fatalf("SetTarget() error = %v", err)
	}
	if err := r.mover.SetMaxLinearSpeed(core.V2f(128, 128)); err != nil {
		t.Fatal(err)
	}

	ev := r.mover.Events()
	ev.On(EventMoverMoveBegin, func(i core.Index) { r.log = append(r.log, "moveBegin"+i.String()) })
	ev.On(EventMoverMoveEnd, func(i core.Index) { r.log = append(r.log, "moveEnd"+i.String()) })
	ev.On(EventMoverBorderCollision, func() { r.log = append(r.log, "borderCollision") })
	ev.On(EventMoverTileCollision, func(i core.Index) { r.log = append(r.log, "tileCollision"+i.String()) })
	ev.On(EventMoverObjectCollision, func(a, b *Object) {
		r.log = append(r.log, fmt.Sprintf("objectCollision(%s,%s)", a.Tag(), b.Tag()))
	})
	r.mover.OnPropertyChange(object.PropDirection, func(object.Property) { r.log = append(r.log, "direction") })
	r.player.SetTag("p")
	return r
}

func (r *rig) count(entry string) int {
	n := 0
	for _, e := range r.log {
		if e == entry {
			n++
		}
	}
	return n
}

func TestBasicHop(t *testing.T) {
	r := newRig(t)
	if !r.mover.RequestMove(core.DirRight) {
		t.Fatal("RequestMove(right) = false")
	}
	if r.player.GridIndex() != core.Idx(1, 2) {
		t.Errorf("occupancy not advanced: GridIndex() = %v", r.player.GridIndex())
	}
	r.mover.Update(250 * time.Millisecond)

	if r.player.Position() != core.V2f(48+32, 48) {
		t.Errorf("Position() = %v, expected (80, 48)", r.player.Position())
	}
	if r.count("moveEnd{1, 2}") != 1 {
		t.Errorf("log = %v, expected moveEnd{1, 2}", r.log)
	}
	if r.mover.IsMoving() {
		t.Error("IsMoving() = true after arrival")
	}
	if r.mover.PrevTile() != r.mover.CurrentTile() || r.mover.TargetTile() != r.mover.CurrentTile() {
		t.Error("idle mover tiles disagree")
	}
}

func TestHopOrderingAndPartialProgress(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirDown)
	if len(r.log) != 2 || r.log[0] != "direction" || r.log[1] != "moveBegin{2, 1}" {
		t.Fatalf("log = %v, expected [direction moveBegin{2, 1}]", r.log)
	}
	r.mover.Update(125 * time.Millisecond)
	if r.player.Position() != core.V2f(48, 64) || !r.mover.IsMoving() {
		t.Errorf("mid-hop pos=%v moving=%v", r.player.Position(), r.mover.IsMoving())
	}
	r.mover.Update(time.Second)
	if r.player.Position() != core.V2f(48, 80) {
		t.Errorf("over-travel not discarded: %v", r.player.Position())
	}
}

func TestPreAndPostMoveAroundArrival(t *testing.T) {
	r := newRig(t)
	var order []string
	r.player.Events().On(EventPreMove, func(*Object) { order = append(order, "pre") })
	r.player.Events().On(EventPostMove, func(*Object) { order = append(order, "post") })
	r.player.Events().On(EventMoveEnd, func(*Object) { order = append(order, "end") })

	r.mover.RequestMove(core.DirLeft)
	r.mover.Update(250 * time.Millisecond)

	if fmt.Sprint(order) != "[pre post end]" {
		t.Errorf("order = %v, expected [pre post end]", order)
	}
}

func TestBlockedByCollidableTile(t *testing.T) {
	r := newRig(t)
	r.grid.SetCollidable(core.Idx(1, 2), true)

	if r.mover.RequestMove(core.DirRight) {
		t.Error("RequestMove() = true into a collidable tile")
	}
	if r.count("tileCollision{1, 2}") != 1 {
		t.Errorf("log = %v, expected one tileCollision{1, 2}", r.log)
	}
	if r.player.GridIndex() != core.Idx(1, 1) {
		t.Errorf("GridIndex() = %v, expected {1, 1}", r.player.GridIndex())
	}
	if r.count("moveBegin{1, 2}") != 0 {
		t.Error("moveBegin fired for a blocked request")
	}
}

func TestObstaclePermeation(t *testing.T) {
	r := newRig(t)
	o := NewObject()
	o.SetTag("o")
	o.SetObstacle(true)
	o.SetCollisionGroup("ghost")
	r.grid.AddChild(o, core.Idx(1, 2))
	r.player.AddObstacleCollisionFilter("ghost")

	if !r.mover.RequestMove(core.DirRight) {
		t.Fatal("RequestMove() = false through a permeable obstacle")
	}
	if r.count("objectCollision(p,o)") != 1 || r.count("moveBegin{1, 2}") != 1 {
		t.Errorf("log = %v", r.log)
	}
	r.mover.Update(250 * time.Millisecond)
	tile := r.grid.TileAt(core.Idx(1, 2))
	if !tile.HasOccupant(r.player) || !tile.HasOccupant(o) {
		t.Error("player and obstacle do not share tile {1, 2}")
	}
}

func TestObstacleBlocks(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(p, o *Object)
		blocked bool
	}{
		{"solid obstacle", func(p, o *Object) {}, true},
		{"filter on obstacle", func(p, o *Object) {
			p.SetCollisionGroup("player")
			o.AddObstacleCollisionFilter("player")
		}, false},
		{"inactive obstacle", func(p, o *Object) { o.SetActive(false) }, false},
		{"not an obstacle", func(p, o *Object) { o.SetObstacle(false) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			o := NewObject()
			o.SetTag("o")
			o.SetObstacle(true)
			r.grid.AddChild(o, core.Idx(0, 1))
			tt.setup(r.player, o)

			blocked, by := r.mover.IsBlockedInDirection(core.DirUp)
			if blocked != tt.blocked {
				t.Errorf("IsBlockedInDirection() = %v, expected %v", blocked, tt.blocked)
			}
			if tt.blocked && by != o {
				t.Error("IsBlockedInDirection() did not report the obstacle")
			}
			if got := r.mover.RequestMove(core.DirUp); got == tt.blocked {
				t.Errorf("RequestMove() = %v with blocked=%v", got, tt.blocked)
			}
		})
	}
}

func TestDeferredDirectionChange(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirRight)
	r.mover.Update(125 * time.Millisecond)

	if r.mover.RequestMove(core.DirDown) {
		t.Error("RequestMove() mid-hop = true")
	}
	if r.mover.PendingDirection() != core.DirDown {
		t.Errorf("PendingDirection() = %v", r.mover.PendingDirection())
	}
	r.log = nil
	r.mover.Update(125 * time.Millisecond)

	want := []string{"moveEnd{1, 2}", "direction", "moveBegin{2, 2}"}
	if fmt.Sprint(r.log) != fmt.Sprint(want) {
		t.Errorf("log = %v, expected %v", r.log, want)
	}
	if r.mover.PendingDirection() != core.DirUnknown {
		t.Error("pending direction not consumed")
	}
}

func TestPendingConsumedWhenBlocked(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirRight)
	r.mover.RequestMove(core.DirRight) // would leave the grid from {1, 2}
	r.mover.Update(250 * time.Millisecond)

	if r.count("borderCollision") != 1 || r.mover.IsMoving() {
		t.Errorf("log = %v moving=%v", r.log, r.mover.IsMoving())
	}
	r.mover.Update(250 * time.Millisecond)
	if r.count("borderCollision") != 1 {
		t.Error("pending direction retried after being consumed")
	}
}

func TestBorderCollisionAtEdge(t *testing.T) {
	r := newRig(t)
	objectBorder := 0
	r.player.Events().On(EventBorderCollision, func(*Object) { objectBorder++ })
	r.grid.Teleport(r.player, core.Idx(0, 1))

	if r.mover.RequestMove(core.DirUp) {
		t.Error("RequestMove() off the grid = true")
	}
	if r.count("borderCollision") != 1 || objectBorder != 1 {
		t.Errorf("borderCollision mover=%d object=%d, expected 1 each", r.count("borderCollision"), objectBorder)
	}
	if r.mover.IsMoving() {
		t.Error("IsMoving() = true after border collision")
	}
}

func TestReverseHopReturnsHome(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirLeft)
	r.mover.Update(250 * time.Millisecond)
	mid := r.mover.CurrentTile()

	r.mover.RequestMove(core.DirRight)
	if r.mover.PrevTile() != mid || r.mover.TargetTile().Index() != core.Idx(1, 1) {
		t.Error("prev/target tiles not swapped for the return hop")
	}
	r.mover.Update(250 * time.Millisecond)
	if r.player.GridIndex() != core.Idx(1, 1) || r.player.Position() != core.V2f(48, 48) {
		t.Errorf("player at %v %v, expected home", r.player.GridIndex(), r.player.Position())
	}
}

func TestRequestMoveRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *rig)
		dir   core.Direction
	}{
		{"unknown direction", func(r *rig) {}, core.DirUnknown},
		{"out of range direction", func(r *rig) {}, core.Dir(2, 0)},
		{"frozen", func(r *rig) { r.mover.SetMovementFreeze(true) }, core.DirUp},
		{"inactive target", func(r *rig) { r.player.SetActive(false) }, core.DirUp},
		{"no target", func(r *rig) { _ = r.mover.SetTarget(nil) }, core.DirUp},
		{"restrict all", func(r *rig) { r.mover.SetMovementRestriction(RestrictAll) }, core.DirUp},
		{"restrict horizontal", func(r *rig) { r.mover.SetMovementRestriction(RestrictHorizontal) }, core.DirUp},
		{"restrict non diagonal", func(r *rig) { r.mover.SetMovementRestriction(RestrictNonDiagonal) }, core.DirUpLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			tt.setup(r)
			if r.mover.RequestMove(tt.dir) {
				t.Error("RequestMove() = true")
			}
		})
	}
}

func TestDiagonalHopSnapsToCentre(t *testing.T) {
	r := newRig(t)
	_ = r.mover.SetMaxLinearSpeed(core.V2f(100, 60))
	if !r.mover.RequestMove(core.DirDownRight) {
		t.Fatal("RequestMove(down-right) = false")
	}
	for i := 0; i < 10 && r.mover.IsMoving(); i++ {
		r.mover.Update(100 * time.Millisecond)
	}
	if r.player.Position() != core.V2f(80, 80) {
		t.Errorf("Position() = %v, expected exact centre (80, 80)", r.player.Position())
	}
}

func TestSpeedComposition(t *testing.T) {
	r := newRig(t)
	r.mover.SetSpeedMultiplier(0.5)
	r.mover.SetSpeedMultiplier(-1)
	if r.mover.SpeedMultiplier() != 0.5 {
		t.Errorf("SpeedMultiplier() = %v, negative value not ignored", r.mover.SpeedMultiplier())
	}
	r.mover.SetClock(fixedClock(2))
	r.player.SetClock(fixedClock(0.5))

	r.mover.RequestMove(core.DirRight)
	if got := r.mover.EffectiveSpeed(); got != core.V2f(64, 64) {
		t.Errorf("EffectiveSpeed() = %v, expected (64, 64)", got)
	}
	r.mover.Update(250 * time.Millisecond)
	if r.player.Position() != core.V2f(64, 48) {
		t.Errorf("Position() = %v, expected (64, 48)", r.player.Position())
	}
}

func TestZeroTimescaleFreezesMotion(t *testing.T) {
	r := newRig(t)
	r.mover.SetClock(fixedClock(0))
	r.mover.RequestMove(core.DirRight)
	r.mover.Update(time.Second)
	if r.player.Position() != core.V2f(48, 48) {
		t.Errorf("moved with timescale 0: %v", r.player.Position())
	}
}

func TestSpeedChangeAppliesNextHop(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirRight)
	if err := r.mover.SetMaxLinearSpeed(core.V2f(1, 1)); err != nil {
		t.Fatal(err)
	}
	r.mover.Update(250 * time.Millisecond)
	if r.mover.IsMoving() {
		t.Error("mid-hop speed change slowed the current hop")
	}
	if err := r.mover.SetMaxLinearSpeed(core.V2f(-1, 0)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetMaxLinearSpeed(negative) error = %v", err)
	}
}

func TestFreezeMidHop(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirRight)
	r.mover.Update(125 * time.Millisecond)
	r.mover.SetMovementFreeze(true)
	r.mover.Update(time.Second)
	if r.player.Position() != core.V2f(64, 48) {
		t.Errorf("frozen mover moved to %v", r.player.Position())
	}
	r.mover.SetMovementFreeze(false)
	r.mover.Update(125 * time.Millisecond)
	if r.player.Position() != core.V2f(80, 48) || r.mover.IsMoving() {
		t.Errorf("thawed mover at %v moving=%v", r.player.Position(), r.mover.IsMoving())
	}
}

func TestTeleportTargetToDestination(t *testing.T) {
	r := newRig(t)
	r.mover.TeleportTargetToDestination()
	if len(r.log) != 0 {
		t.Error("teleport while idle emitted events")
	}
	r.mover.RequestMove(core.DirUp)
	r.mover.RequestMove(core.DirLeft)
	r.mover.TeleportTargetToDestination()

	if r.player.Position() != core.V2f(48, 16) || r.mover.IsMoving() {
		t.Errorf("after teleport pos=%v moving=%v", r.player.Position(), r.mover.IsMoving())
	}
	if r.count("moveEnd{0, 1}") != 1 || r.mover.PendingDirection() != core.DirUnknown {
		t.Errorf("log = %v pending=%v", r.log, r.mover.PendingDirection())
	}
}

func TestSetTargetErrors(t *testing.T) {
	r := newRig(t)
	other := newTestGrid(t, 2, 2)

	loose := NewObject()
	if err := r.mover.SetTarget(loose); !errors.Is(err, ErrTargetGridMismatch) {
		t.Errorf("SetTarget(unplaced) error = %v", err)
	}
	foreign := NewObject()
	other.AddChild(foreign, core.Idx(0, 0))
	if err := r.mover.SetTarget(foreign); !errors.Is(err, ErrTargetGridMismatch) {
		t.Errorf("SetTarget(other grid) error = %v", err)
	}
	bodied := NewObject()
	r.grid.AddChild(bodied, core.Idx(0, 0))
	if err := bodied.SetRigidBody(physics.NewBody(core.Vector2f{}, core.V2f(1, 1))); err != nil {
		t.Fatal(err)
	}
	if err := r.mover.SetTarget(bodied); !errors.Is(err, ErrRigidBodyConflict) {
		t.Errorf("SetTarget(rigid body) error = %v", err)
	}
	second := NewMover(r.grid)
	if err := second.SetTarget(r.player); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTarget(controlled object) error = %v", err)
	}
	if err := r.player.SetRigidBody(physics.NewBody(core.Vector2f{}, core.V2f(1, 1))); !errors.Is(err, ErrRigidBodyConflict) {
		t.Errorf("SetRigidBody() on a moved object error = %v", err)
	}
}

func TestSetTargetFinalizesHop(t *testing.T) {
	r := newRig(t)
	next := NewObject()
	r.grid.AddChild(next, core.Idx(0, 0))
	var changes []*Object
	r.mover.OnTargetChange(func(o *Object) { changes = append(changes, o) })

	r.mover.RequestMove(core.DirRight)
	r.mover.Update(100 * time.Millisecond)
	if err := r.mover.SetTarget(next); err != nil {
		t.Fatal(err)
	}

	if r.player.Position() != core.V2f(80, 48) || r.count("moveEnd{1, 2}") != 1 {
		t.Errorf("old target not finalized: pos=%v log=%v", r.player.Position(), r.log)
	}
	if r.player.Mover() != nil || next.Mover() != r.mover {
		t.Error("mover back-pointers not updated")
	}
	if len(changes) != 1 || changes[0] != next {
		t.Errorf("targetChange = %v", changes)
	}
}

func TestTargetDestroyedMidHop(t *testing.T) {
	r := newRig(t)
	var changes []*Object
	r.mover.OnTargetChange(func(o *Object) { changes = append(changes, o) })

	r.mover.RequestMove(core.DirRight)
	r.mover.Update(100 * time.Millisecond)
	r.player.Destroy()

	if r.mover.Target() != nil || r.mover.IsMoving() {
		t.Error("mover still holds the destroyed target")
	}
	if len(changes) != 1 || changes[0] != nil {
		t.Errorf("targetChange = %v, expected [nil]", changes)
	}
	if r.count("moveEnd{1, 2}") != 0 {
		t.Error("moveEnd fired for a destroyed target")
	}
	r.mover.Update(time.Second) // no-op without target
}

func TestSyncWith(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirDown)
	r.mover.Update(100 * time.Millisecond)

	other := NewMover(r.grid)
	other.SyncWith(r.mover)
	if !other.IsMoving() || other.CurrentDirection() != core.DirDown ||
		other.TargetTile() != r.mover.TargetTile() || other.PrevTile() != r.mover.PrevTile() {
		t.Error("SyncWith() did not copy hop state")
	}
}

func TestHandOffMidHop(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirDown)
	r.mover.Update(100 * time.Millisecond)
	r.mover.RequestMove(core.DirRight) // pending
	midHop := r.player.Position()

	next := NewMover(r.grid)
	if err := next.SetMaxLinearSpeed(core.V2f(128, 128)); err != nil {
		t.Fatal(err)
	}
	var ended []core.Index
	next.OnMoveEnd(func(i core.Index) { ended = append(ended, i) })

	if err := next.HandOff(r.mover); err == nil {
		t.Error("HandOff() from a mover without target error = nil")
	}
	if err := r.mover.HandOff(next); err != nil {
		t.Fatalf("HandOff() error = %v", err)
	}

	if r.mover.Target() != nil || r.mover.IsMoving() {
		t.Error("old mover still holds the target")
	}
	if next.Target() != r.player {
		t.Fatal("new mover did not receive the target")
	}
	if r.player.Position() != midHop {
		t.Errorf("Position() = %v after hand-off, expected %v", r.player.Position(), midHop)
	}
	if !next.IsMoving() || next.CurrentDirection() != core.DirDown || next.TargetTile().Index() != core.Idx(2, 1) {
		t.Errorf("hop state lost: moving=%v dir=%v", next.IsMoving(), next.CurrentDirection())
	}
	if next.PendingDirection() != core.DirRight {
		t.Errorf("PendingDirection() = %v, expected right", next.PendingDirection())
	}

	next.Update(200 * time.Millisecond)
	if r.player.Position() != core.V2f(48, 80) {
		t.Errorf("Position() = %v, expected (48, 80)", r.player.Position())
	}
	if len(ended) != 1 || ended[0] != core.Idx(2, 1) {
		t.Errorf("moveEnd = %v, expected [{2, 1}]", ended)
	}
	if r.count("moveEnd{2, 1}") != 0 {
		t.Error("old mover reported the arrival")
	}
	if !next.IsMoving() || next.TargetTile().Index() != core.Idx(2, 2) {
		t.Error("pending direction not applied after the hand-off")
	}

	if err := r.mover.SetTarget(r.player); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTarget() on a handed-off object error = %v, expected ErrInvalidArgument", err)
	}
}

func TestReset(t *testing.T) {
	r := newRig(t)
	r.mover.RequestMove(core.DirUp)
	r.mover.Update(250 * time.Millisecond)
	r.mover.RequestMove(core.DirLeft)
	r.mover.Reset()

	if r.player.GridIndex() != core.Idx(1, 1) || r.player.Position() != core.V2f(48, 48) || r.mover.IsMoving() {
		t.Errorf("Reset() left player at %v moving=%v", r.player.GridIndex(), r.mover.IsMoving())
	}
}

func TestOccupancyInvariant(t *testing.T) {
	r := newRig(t)
	steps := []core.Direction{core.DirUp, core.DirRight, core.DirDown, core.DirDown, core.DirLeft}
	for _, d := range steps {
		r.mover.RequestMove(d)
		for i := 0; i < 3; i++ {
			r.mover.Update(100 * time.Millisecond)
			tile := r.grid.TileAt(r.player.GridIndex())
			if !tile.HasOccupant(r.player) {
				t.Fatalf("player not listed on its tile %v", r.player.GridIndex())
			}
			occupied := 0
			r.grid.ForEachTile(func(tl *Tile) {
				if tl.HasOccupant(r.player) {
					occupied++
				}
			})
			if occupied != 1 {
				t.Fatalf("player listed on %d tiles", occupied)
			}
		}
	}
}

func TestMoveEndIndexMatchesRequest(t *testing.T) {
	for _, d := range []core.Direction{core.DirUp, core.DirDown, core.DirLeft, core.DirRight, core.DirUpLeft, core.DirDownRight} {
		t.Run(d.String(), func(t *testing.T) {
			r := newRig(t)
			start := r.player.GridIndex()
			var ended core.Index
			r.mover.OnMoveEnd(func(i core.Index) { ended = i })
			if !r.mover.RequestMove(d) {
				t.Fatal("RequestMove() = false")
			}
			r.mover.Update(time.Second)
			if ended != start.Step(d) {
				t.Errorf("moveEnd %v, expected %v", ended, start.Step(d))
			}
		})
	}
}

func TestMoverDestroyReleasesTarget(t *testing.T) {
	r := newRig(t)
	r.mover.Destroy()
	if r.player.Mover() != nil {
		t.Error("destroyed mover still referenced by its target")
	}
	if r.player.IsDestroyed() {
		t.Error("destroying the mover destroyed the target")
	}
}
