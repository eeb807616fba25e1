package particles

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ParticleState is the render-facing snapshot of one particle. It is rebuilt
// on every simulate pass and only valid until the next Update.
type ParticleState struct {
	Position   mgl64.Vec2
	Right      mgl64.Vec2 // orientation basis scaled to visual size
	Up         mgl64.Vec2
	Color      mgl64.Vec4
	Additivity float64
	AtlasIdx   int
	Active     bool
}

type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec2{inf, inf},
		Max: mgl64.Vec2{-inf, -inf},
	}
}

func (bb AABB) IsEmpty() bool {
	return bb.Min.X() > bb.Max.X() || bb.Min.Y() > bb.Max.Y()
}

// Extend grows the box to contain a box of halfExtents centered at center.
func (bb AABB) Extend(center, halfExtents mgl64.Vec2) AABB {
	lo := center.Sub(halfExtents)
	hi := center.Add(halfExtents)
	return AABB{
		Min: mgl64.Vec2{math.Min(bb.Min.X(), lo.X()), math.Min(bb.Min.Y(), lo.Y())},
		Max: mgl64.Vec2{math.Max(bb.Max.X(), hi.X()), math.Max(bb.Max.Y(), hi.Y())},
	}
}

func (bb AABB) Contains(p mgl64.Vec2) bool {
	return p.X() >= bb.Min.X() && p.X() <= bb.Max.X() && p.Y() >= bb.Min.Y() && p.Y() <= bb.Max.Y()
}
