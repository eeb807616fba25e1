package particles

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// GravitationSource is one registered force field. A particle is affected
// when its layer mask intersects LayerMask.
type GravitationSource interface {
	LayerMask() uint32
	Calculate(world mgl64.Vec2) (dir mgl64.Vec2, magnitude float64)
}

// GravitationQuery is the read-only view the simulation needs of a field registry.
type GravitationQuery interface {
	GravitationSources() []GravitationSource
}

type GravitationRegistry struct {
	sources []GravitationSource
}

func NewGravitationRegistry(sources ...GravitationSource) *GravitationRegistry {
	return &GravitationRegistry{sources: sources}
}

func (r *GravitationRegistry) Add(src GravitationSource) {
	r.sources = append(r.sources, src)
}

func (r *GravitationRegistry) Remove(src GravitationSource) bool {
	i := slices.Index(r.sources, src)
	if i < 0 {
		return false
	}
	r.sources = slices.Delete(r.sources, i, i+1)
	return true
}

func (r *GravitationRegistry) GravitationSources() []GravitationSource {
	if r == nil {
		return nil
	}
	return r.sources
}

// DirectionalGravity pulls uniformly along Direction.
type DirectionalGravity struct {
	Direction mgl64.Vec2
	Strength  float64
	Layers    uint32
}

func (g *DirectionalGravity) LayerMask() uint32 { return g.Layers }

func (g *DirectionalGravity) Calculate(mgl64.Vec2) (mgl64.Vec2, float64) {
	if g.Direction.Len() == 0 {
		return mgl64.Vec2{}, 0
	}
	return g.Direction.Normalize(), g.Strength
}

// RadialGravity pulls toward Center with inverse-square falloff. Distances
// below MinRadius are treated as MinRadius.
type RadialGravity struct {
	Center    mgl64.Vec2
	Strength  float64
	MinRadius float64
	Layers    uint32
}

func (g *RadialGravity) LayerMask() uint32 { return g.Layers }

func (g *RadialGravity) Calculate(world mgl64.Vec2) (mgl64.Vec2, float64) {
	d := g.Center.Sub(world)
	dist := d.Len()
	if dist == 0 {
		return mgl64.Vec2{}, 0
	}
	r := max(dist, g.MinRadius)
	return d.Mul(1 / dist), g.Strength / (r * r)
}
