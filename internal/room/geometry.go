package room

import "math"

const (
	FieldWidth   = 800.0
	FieldHeight  = 600.0
	PlayerRadius = 20.0
)

type Vec struct {
	X float64
	Y float64
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Obstacles is shared read-only by every room.
var Obstacles = []Rect{
	{X: 200, Y: 150, Width: 80, Height: 80},
	{X: 520, Y: 150, Width: 80, Height: 80},
	{X: 350, Y: 300, Width: 100, Height: 100},
	{X: 150, Y: 400, Width: 80, Height: 80},
	{X: 570, Y: 400, Width: 80, Height: 80},
}

func (r Rect) Contains(p Vec) bool {
	return p.X > r.X && p.X < r.X+r.Width &&
		p.Y > r.Y && p.Y < r.Y+r.Height
}

// Collide reports whether two player circles of the given radius overlap.
func Collide(a, b Vec, radius float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) < radius*2
}

func InsideObstacle(p Vec) bool {
	for _, obs := range Obstacles {
		if obs.Contains(p) {
			return true
		}
	}
	return false
}

// Normalize returns the unit vector of (dx, dy). ok is false for the zero vector
// and for non-finite input.
func Normalize(dx, dy float64) (v Vec, ok bool) {
	length := math.Hypot(dx, dy)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return Vec{}, false
	}
	return Vec{X: dx / length, Y: dy / length}, true
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampToField keeps a player centre at least one radius away from the field edges.
func ClampToField(p Vec) Vec {
	return Vec{
		X: clampFloat(p.X, PlayerRadius, FieldWidth-PlayerRadius),
		Y: clampFloat(p.Y, PlayerRadius, FieldHeight-PlayerRadius),
	}
}

// Displace moves from along dir by distance, clamps to the field and rejects
// the result when it lands inside an obstacle. No partial sliding.
func Displace(from, dir Vec, distance float64) (Vec, bool) {
	next := ClampToField(Vec{
		X: from.X + dir.X*distance,
		Y: from.Y + dir.Y*distance,
	})
	if InsideObstacle(next) {
		return from, false
	}
	return next, true
}
