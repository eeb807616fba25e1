package particles

import (
	"math"
	"math/rand/v2"

	"github.com/gekko3d/particles/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// KinematicsPrototype backs a particle with a rigid body and a circular
// shape for its whole life when IsKinematic is set.
type KinematicsPrototype struct {
	IsKinematic bool
	Friction    float64
	Elasticity  float64
	Scale       float64 // shape radius relative to the visual radius; 0 means 1
	Filter      *physics.CollisionFilter
}

func (k *KinematicsPrototype) scale() float64 {
	if k.Scale <= 0 {
		return 1
	}
	return k.Scale
}

func (k *KinematicsPrototype) filter() physics.CollisionFilter {
	if k.Filter == nil {
		return physics.DefaultFilter()
	}
	return *k.Filter
}

// ParticlePrototype is the authored template of one particle. The simulation
// copies it into a pool slot on emission; the unexported fields only carry
// meaning inside that slot.
type ParticlePrototype struct {
	AtlasIdx   int
	Lifespan   float64 // seconds
	Radius     Interpolator[float64]
	Damping    Interpolator[float64]
	Additivity Interpolator[float64]
	Mass       Interpolator[float64]
	Color      Interpolator[mgl64.Vec4]

	Position             mgl64.Vec2
	InitialVelocity      float64
	OrientToVelocity     bool
	MinVelocity          float64
	GravitationLayerMask uint32
	Kinematics           *KinematicsPrototype

	body       *rigidBody
	velocity   mgl64.Vec2
	completion float64
	age        float64
	seq        uint64 // insertion order, breaks age ties
}

// DefaultPrototype returns a visible, ballistic, one second particle.
func DefaultPrototype() ParticlePrototype {
	return ParticlePrototype{
		Lifespan:   1,
		Radius:     Scalars(1),
		Damping:    Scalars(0),
		Additivity: Scalars(0),
		Mass:       Scalars(1),
		Color:      Colors(mgl64.Vec4{1, 1, 1, 1}),
	}
}

func (p *ParticlePrototype) IsKinematic() bool {
	return p.Kinematics != nil && p.Kinematics.IsKinematic
}

func (p *ParticlePrototype) Completion() float64  { return p.completion }
func (p *ParticlePrototype) Age() float64         { return p.age }
func (p *ParticlePrototype) Velocity() mgl64.Vec2 { return p.velocity }

func (p *ParticlePrototype) expired() bool { return p.completion > 1 }

// release frees the backing body, if any. Safe to call repeatedly.
func (p *ParticlePrototype) release() bool {
	released := p.body.destroy()
	p.body = nil
	return released
}

// withDefaults fills interpolators the author left unset.
func (p ParticlePrototype) withDefaults() ParticlePrototype {
	if p.Radius.IsZero() {
		p.Radius = Scalars(1)
	}
	if p.Damping.IsZero() {
		p.Damping = Scalars(0)
	}
	if p.Additivity.IsZero() {
		p.Additivity = Scalars(0)
	}
	if p.Mass.IsZero() {
		p.Mass = Scalars(1)
	}
	if p.Color.IsZero() {
		p.Color = Colors(mgl64.Vec4{1, 1, 1, 1})
	}
	return p
}

// Perturb returns a copy with lifespan, initial velocity, radius, mass and
// damping each scaled by an independent factor in [1-variance, 1+variance].
// Runtime state is never carried over.
func (p ParticlePrototype) Perturb(rng *rand.Rand, variance float64) ParticlePrototype {
	p = p.withDefaults()
	p.body = nil
	p.velocity = mgl64.Vec2{}
	p.completion = 0
	p.age = 0
	p.seq = 0

	variance = math.Max(0, math.Min(1, variance))
	if variance == 0 || rng == nil {
		return p
	}
	jitter := func() float64 { return 1 + variance*(2*rng.Float64()-1) }

	p.Lifespan *= jitter()
	p.InitialVelocity *= jitter()

	rs := jitter()
	p.Radius = p.Radius.Map(func(v float64) float64 { return v * rs })
	ms := jitter()
	p.Mass = p.Mass.Map(func(v float64) float64 { return v * ms })
	ds := jitter()
	p.Damping = p.Damping.Map(func(v float64) float64 { return math.Min(1, v*ds) })
	return p
}
