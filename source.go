package particles

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Source randomizes a nominal emission point and direction into an actual
// spawn point and direction. Variance is the multiplicative jitter applied
// to the chosen prototype.
type Source struct {
	Radius   float64 // >= 0, spawn disc radius
	Spread   float64 // [0,1], 0 is a laser, 1 a full circular spray
	Variance float64 // [0,1]
}

// Apply returns the spawn point and direction. The direction is normalized
// unless it was zero.
func (src Source) Apply(rng *rand.Rand, world, dir mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2) {
	outWorld := world
	if src.Radius > 0 {
		theta := rng.Float64() * 2 * math.Pi
		mag := rng.Float64() * src.Radius
		outWorld = world.Add(mgl64.Vec2{math.Cos(theta), math.Sin(theta)}.Mul(mag))
	}

	l := dir.Len()
	if l == 0 {
		return outWorld, dir
	}
	forward := dir.Mul(1 / l)
	spread := math.Min(src.Spread, 1)
	if spread <= 0 {
		return outWorld, forward
	}

	side := mgl64.Vec2{forward.Y(), -forward.X()}
	if rng.IntN(2) == 0 {
		side = side.Mul(-1)
	}
	back := forward.Mul(-1)

	f := rng.Float64() * spread
	var d mgl64.Vec2
	if f < 0.5 {
		t := f * 2
		d = forward.Mul(1 - t).Add(side.Mul(t))
	} else {
		t := (f - 0.5) * 2
		d = side.Mul(1 - t).Add(back.Mul(t))
	}
	return outWorld, d.Normalize()
}
