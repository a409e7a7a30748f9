// Package core provides fundamental types and utilities for the engine runtime.
// It contains no external dependencies (especially no Bubble Tea) to keep scene
// and grid logic pure and testable.
package core

import (
	"fmt"
	"math"
)

// Rect represents an axis-aligned rectangle in integer (cell or pixel) units.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
func (r Rect) Intersects(other Rect) bool {
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Vector2f is a pair of float components (pixels, pixels per second, scale factors).
type Vector2f struct {
	X, Y float64
}

// V2f is a convenience constructor for Vector2f.
func V2f(x, y float64) Vector2f {
	return Vector2f{X: x, Y: y}
}

// Add returns the component-wise sum.
func (v Vector2f) Add(o Vector2f) Vector2f {
	return Vector2f{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference.
func (v Vector2f) Sub(o Vector2f) Vector2f {
	return Vector2f{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul scales both components by s.
func (v Vector2f) Mul(s float64) Vector2f {
	return Vector2f{X: v.X * s, Y: v.Y * s}
}

// Scale multiplies component-wise.
func (v Vector2f) Scale(o Vector2f) Vector2f {
	return Vector2f{X: v.X * o.X, Y: v.Y * o.Y}
}

// Length returns the euclidean length.
func (v Vector2f) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// IsNegative reports whether either component is below zero.
func (v Vector2f) IsNegative() bool {
	return v.X < 0 || v.Y < 0
}

// String returns a string representation of the vector.
func (v Vector2f) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// Vector2i is a pair of integer components.
type Vector2i struct {
	X, Y int
}

// V2i is a convenience constructor for Vector2i.
func V2i(x, y int) Vector2i {
	return Vector2i{X: x, Y: y}
}

// Add returns the component-wise sum.
func (v Vector2i) Add(o Vector2i) Vector2i {
	return Vector2i{X: v.X + o.X, Y: v.Y + o.Y}
}

// ToFloat converts to a Vector2f.
func (v Vector2i) ToFloat() Vector2f {
	return Vector2f{X: float64(v.X), Y: float64(v.Y)}
}

// String returns a string representation of the vector.
func (v Vector2i) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Index addresses a tile by row and column. Row grows downward, column to the right.
type Index struct {
	Row int
	Col int
}

// Idx is a convenience constructor for Index.
func Idx(row, col int) Index {
	return Index{Row: row, Col: col}
}

// InvalidIndex is the index carried by the sentinel tile of every grid.
var InvalidIndex = Index{Row: -1, Col: -1}

// Step returns the index one hop away in the given direction.
// A direction's X moves columns and its Y moves rows.
func (i Index) Step(d Direction) Index {
	return Index{Row: i.Row + d.Y, Col: i.Col + d.X}
}

// DirectionTo returns the normalized direction from i to other.
func (i Index) DirectionTo(other Index) Direction {
	return Direction{X: Sign(other.Col - i.Col), Y: Sign(other.Row - i.Row)}
}

// Manhattan returns the Manhattan distance to another index.
func (i Index) Manhattan(other Index) int {
	return Abs(i.Row-other.Row) + Abs(i.Col-other.Col)
}

// String returns a string representation of the index.
func (i Index) String() string {
	return fmt.Sprintf("{%d, %d}", i.Row, i.Col)
}

// Direction is a unit step on the grid with components in {-1, 0, 1}.
// The zero value means "unknown" and is never a legal move.
type Direction struct {
	X, Y int
}

// Predefined directions. Y grows downward.
var (
	DirUnknown   = Direction{0, 0}
	DirLeft      = Direction{-1, 0}
	DirRight     = Direction{1, 0}
	DirUp        = Direction{0, -1}
	DirDown      = Direction{0, 1}
	DirUpLeft    = Direction{-1, -1}
	DirUpRight   = Direction{1, -1}
	DirDownLeft  = Direction{-1, 1}
	DirDownRight = Direction{1, 1}
)

// Dir is a convenience constructor for Direction.
func Dir(x, y int) Direction {
	return Direction{X: x, Y: y}
}

// IsValid reports whether d is a legal move: components in {-1,0,1} and not (0,0).
func (d Direction) IsValid() bool {
	if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 {
		return false
	}
	return d != DirUnknown
}

// IsUnknown reports whether d is the (0,0) sentinel.
func (d Direction) IsUnknown() bool {
	return d == DirUnknown
}

// IsDiagonal reports whether both components are non-zero.
func (d Direction) IsDiagonal() bool {
	return d.X != 0 && d.Y != 0
}

// IsHorizontal reports whether d moves along the x axis only.
func (d Direction) IsHorizontal() bool {
	return d.X != 0 && d.Y == 0
}

// IsVertical reports whether d moves along the y axis only.
func (d Direction) IsVertical() bool {
	return d.X == 0 && d.Y != 0
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

// RotateCW returns d rotated 90 degrees clockwise (screen coordinates).
func (d Direction) RotateCW() Direction {
	return Direction{X: -d.Y, Y: d.X}
}

// RotateCCW returns d rotated 90 degrees anticlockwise (screen coordinates).
func (d Direction) RotateCCW() Direction {
	return Direction{X: d.Y, Y: -d.X}
}

// String returns a string representation of the direction.
func (d Direction) String() string {
	return fmt.Sprintf("(%d,%d)", d.X, d.Y)
}

// CardinalDirections lists the four straight directions in clockwise order starting up.
var CardinalDirections = []Direction{DirUp, DirRight, DirDown, DirLeft}

// Sign returns -1, 0 or 1 according to the sign of x.
func Sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
