package particles

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/gekko3d/particles/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// CompactionThreshold is the expired share of the live range above which
// the prepare pass partitions survivors to the front.
const CompactionThreshold = 0.5

const velocityEpsilon = 1e-3

type pendingParticle struct {
	prototype ParticlePrototype
	world     mgl64.Vec2
	dir       mgl64.Vec2
}

type SimulationStats struct {
	Emitted     int
	Expired     int
	Overwritten int
	Compactions int
}

func (a SimulationStats) sub(b SimulationStats) SimulationStats {
	return SimulationStats{
		Emitted:     a.Emitted - b.Emitted,
		Expired:     a.Expired - b.Expired,
		Overwritten: a.Overwritten - b.Overwritten,
		Compactions: a.Compactions - b.Compactions,
	}
}

// ParticleSimulation owns a fixed-capacity round-robin pool of particles
// and the parallel render state. The live range is always [0, ActiveCount).
//
// Slot indices are only meaningful within the frame that produced them: a
// later Update may compact, sort or overwrite any slot.
type ParticleSimulation struct {
	capacity   int
	prototypes []ParticlePrototype
	states     []ParticleState
	pending    []pendingParticle
	count      int // logical, indexes the pool modulo capacity
	seq        uint64
	scratch    []ParticlePrototype

	keepSorted bool
	compaction bool

	space   PhysicsSpace
	gravity GravitationQuery
	log     Logger
	onMoved func(AABB)

	bb        AABB
	stats     SimulationStats
	updating  bool
	destroyed bool
	warned    bool
}

func NewParticleSimulation(capacity int) *ParticleSimulation {
	s := &ParticleSimulation{
		compaction: true,
		log:        NewNopLogger(),
		bb:         EmptyAABB(),
	}
	s.SetCapacity(capacity)
	return s
}

// SetCapacity reallocates the pool. Live particles are retired and the
// pending queue is dropped.
func (s *ParticleSimulation) SetCapacity(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("particles: capacity must be positive, got %d", n))
	}
	s.releaseAll()
	s.capacity = n
	s.prototypes = make([]ParticlePrototype, n)
	s.states = make([]ParticleState, n)
	s.pending = s.pending[:0]
	s.count = 0
	s.scratch = nil
	s.log.Debugf("particle simulation capacity set to %d", n)
}

func (s *ParticleSimulation) SetPhysicsSpace(space PhysicsSpace) { s.space = space }
func (s *ParticleSimulation) SetGravitation(q GravitationQuery)  { s.gravity = q }
func (s *ParticleSimulation) SetLogger(l Logger)                 { s.log = loggerOrNop(l) }
func (s *ParticleSimulation) SetKeepSorted(keep bool)            { s.keepSorted = keep }
func (s *ParticleSimulation) SetCompaction(enabled bool)         { s.compaction = enabled }
func (s *ParticleSimulation) OnMoved(fn func(AABB))              { s.onMoved = fn }
func (s *ParticleSimulation) Capacity() int                      { return s.capacity }
func (s *ParticleSimulation) Stats() SimulationStats             { return s.stats }
func (s *ParticleSimulation) Pending() int                       { return len(s.pending) }
func (s *ParticleSimulation) Destroyed() bool                    { return s.destroyed }
func (s *ParticleSimulation) BoundingBox() AABB                  { return s.bb }
func (s *ParticleSimulation) FirstActive() int                   { return 0 }

func (s *ParticleSimulation) ActiveCount() int {
	return min(s.count, s.capacity)
}

// ParticleState returns the render state of the live range. Callers must
// not hold on to it past the next Update.
func (s *ParticleSimulation) ParticleState() []ParticleState {
	return s.states[:s.ActiveCount()]
}

// Emit queues a fully specified particle. It materializes on the next
// prepare pass; a saturated pool overwrites its oldest slot.
func (s *ParticleSimulation) Emit(prototype ParticlePrototype, world, dir mgl64.Vec2) {
	if s.destroyed {
		return
	}
	if prototype.body != nil {
		panic("particles: prototype already owns a kinematic body")
	}
	s.pending = append(s.pending, pendingParticle{prototype: prototype, world: world, dir: dir})
}

// Update runs the prepare pass then the simulate pass. Not reentrant.
func (s *ParticleSimulation) Update(t Time) {
	if s.destroyed {
		return
	}
	if s.updating {
		panic("particles: ParticleSimulation.Update is not reentrant")
	}
	s.updating = true
	defer func() { s.updating = false }()

	dt := t.DtSeconds()
	before := s.stats
	s.prepare(dt)
	s.simulate(dt)
	logFrame(s.log, before, s.stats, s.ActiveCount(), s.capacity)
}

func (s *ParticleSimulation) prepare(dt float64) {
	live := s.ActiveCount()

	// 1. Age and retire
	expired := 0
	for i := 0; i < live; i++ {
		p := &s.prototypes[i]
		was := p.expired()
		p.age += dt
		if p.Lifespan > 0 {
			p.completion = p.age / p.Lifespan
		} else {
			p.completion = math.Inf(1)
		}
		if p.expired() {
			p.release()
			if !was {
				s.stats.Expired++
			}
			expired++
		}
	}

	// 2. Compaction
	compacted := s.compaction && s.compactIfFragmented(live, expired)

	// 3. Drain the queue
	wrapped := false
	for i := range s.pending {
		idx := s.count % s.capacity
		slot := &s.prototypes[idx]
		if s.count >= s.capacity {
			wrapped = true
			if !slot.expired() {
				s.stats.Overwritten++
			}
		}
		slot.release()
		*slot = s.instantiate(&s.pending[i])
		slot.seq = s.seq
		s.seq++
		s.count++
		s.stats.Emitted++

		// Keep the counter bounded without disturbing count % capacity
		if s.count >= 2*s.capacity {
			s.count = s.capacity + s.count%s.capacity
		}
	}
	clear(s.pending)
	s.pending = s.pending[:0]
	if wrapped {
		s.log.Debugf("particle pool wrapped at capacity %d", s.capacity)
	}

	// 4. Optional re-sort, oldest first
	live = s.ActiveCount()
	if s.keepSorted && (compacted || wrapped) {
		slices.SortStableFunc(s.prototypes[:live], func(a, b ParticlePrototype) int {
			if c := cmp.Compare(b.age, a.age); c != 0 {
				return c
			}
			return cmp.Compare(a.seq, b.seq)
		})
		if s.count > s.capacity {
			// the oldest now sits at slot 0, point round-robin back at it
			s.count = s.capacity
		}
	}

	// 5. Simulate re-activates what is still alive
	for i := 0; i < live; i++ {
		s.states[i].Active = false
	}
}

// compactIfFragmented partitions the live range so survivors precede
// expired slots, once more than CompactionThreshold of the range has
// expired. Survivors keep insertion order: a wrapped pool is walked from
// its oldest slot, count % capacity.
func (s *ParticleSimulation) compactIfFragmented(live, expired int) bool {
	if live == 0 || float64(expired) <= float64(live)*CompactionThreshold {
		return false
	}
	start := 0
	if s.count >= s.capacity {
		start = s.count % s.capacity
	}
	s.scratch = append(s.scratch[:0], s.prototypes[start:live]...)
	s.scratch = append(s.scratch, s.prototypes[:start]...)

	w := 0
	for i := range s.scratch {
		if !s.scratch[i].expired() {
			s.prototypes[w] = s.scratch[i]
			w++
		}
	}
	n := w
	for i := range s.scratch {
		if s.scratch[i].expired() {
			s.prototypes[n] = s.scratch[i]
			n++
		}
	}
	clear(s.scratch)

	s.count = w
	s.stats.Compactions++
	s.log.Debugf("compacted particle pool: %d of %d survived", w, live)
	return true
}

func (s *ParticleSimulation) instantiate(q *pendingParticle) ParticlePrototype {
	p := q.prototype.withDefaults()
	p.body = nil
	p.age = 0
	p.completion = 0
	if p.Lifespan <= 0 {
		p.completion = math.Inf(1)
		s.stats.Expired++
	}

	p.Position = q.world
	dir := q.dir
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	p.velocity = dir.Mul(p.InitialVelocity)

	if p.IsKinematic() && !p.expired() {
		if s.space == nil {
			if !s.warned {
				s.log.Warnf("kinematic particle emitted without a physics space, simulating ballistically")
				s.warned = true
			}
			return p
		}
		p.body = newRigidBody(s.space, p.Kinematics, p.Position, p.velocity, p.Mass.ValueAt(0), p.Radius.ValueAt(0))
	}
	return p
}

func (s *ParticleSimulation) simulate(dt float64) {
	live := s.ActiveCount()
	bb := EmptyAABB()

	var sources []GravitationSource
	if s.gravity != nil {
		sources = s.gravity.GravitationSources()
	}

	for i := 0; i < live; i++ {
		p := &s.prototypes[i]
		if p.expired() {
			continue
		}

		c := p.completion
		radius := p.Radius.ValueAt(c)
		damping := p.Damping.ValueAt(c)
		mass := p.Mass.ValueAt(c)

		var angle float64
		if rb := p.body; rb != nil {
			sp := rb.space
			p.Position = sp.BodyPosition(rb.body)
			p.velocity = sp.BodyVelocity(rb.body)
			sp.SetBodyVelocity(rb.body, p.velocity.Mul(1-damping))
			sp.SetBodyAngularVelocity(rb.body, sp.BodyAngularVelocity(rb.body)*(1-damping))

			r := max(radius*p.Kinematics.scale(), minShapeRadius)
			sp.SetBodyMass(rb.body, mass)
			sp.SetBodyMoment(rb.body, physics.MomentForCircle(mass, 0, r))
			sp.SetShapeRadius(rb.shape, r)
			angle = sp.BodyAngle(rb.body)
		} else {
			p.Position = p.Position.Add(p.velocity.Mul(dt))
			for _, src := range sources {
				if src.LayerMask()&p.GravitationLayerMask == 0 {
					continue
				}
				dir, magnitude := src.Calculate(p.Position)
				p.velocity = p.velocity.Add(dir.Mul(mass * magnitude * dt))
			}
			p.velocity = p.velocity.Mul(1 - damping)
		}

		speed := p.velocity.Len()
		var right, up mgl64.Vec2
		switch {
		case p.OrientToVelocity && speed > velocityEpsilon:
			d := p.velocity.Mul(1 / speed)
			up = d.Mul(radius)
			right = mgl64.Vec2{d.Y(), -d.X()}.Mul(radius)
		case p.body != nil:
			rot := mgl64.Rotate2D(angle)
			right = rot.Mul2x1(mgl64.Vec2{radius, 0})
			up = rot.Mul2x1(mgl64.Vec2{0, radius})
		default:
			right = mgl64.Vec2{radius, 0}
			up = mgl64.Vec2{0, radius}
		}

		if p.MinVelocity > 0 && speed < p.MinVelocity {
			k := speed / p.MinVelocity
			right = right.Mul(k)
			up = up.Mul(k)
		}

		s.states[i] = ParticleState{
			Position:   p.Position,
			Right:      right,
			Up:         up,
			Color:      p.Color.ValueAt(c),
			Additivity: p.Additivity.ValueAt(c),
			AtlasIdx:   p.AtlasIdx,
			Active:     true,
		}

		extent := mgl64.Vec2{
			math.Abs(right.X()) + math.Abs(up.X()),
			math.Abs(right.Y()) + math.Abs(up.Y()),
		}
		bb = bb.Extend(p.Position, extent)
	}

	s.bb = bb
	if s.onMoved != nil {
		s.onMoved(bb)
	}
}

func (s *ParticleSimulation) releaseAll() {
	for i := range s.prototypes {
		s.prototypes[i].release()
	}
}

// Destroy releases every physics handle the pool owns. The simulation
// ignores Emit and Update afterwards.
func (s *ParticleSimulation) Destroy() {
	if s.destroyed {
		return
	}
	s.releaseAll()
	s.pending = nil
	s.count = 0
	s.destroyed = true
}

// OnReady binds the simulation to the stage's physics space and gravitation fields.
func (s *ParticleSimulation) OnReady(owner *Object, stage *Stage) {
	s.space = stage.PhysicsSpace()
	s.gravity = stage.Gravitation
	s.log = loggerOrNop(stage.Logger)
	s.log.Debugf("particle simulation ready on %s", owner)
}

func (s *ParticleSimulation) OnRemoved() { s.Destroy() }
