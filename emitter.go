package particles

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type EmissionID uint64

type libraryEntry struct {
	prototype ParticlePrototype
	source    Source
	weight    int
}

// emission is one scheduled or continuous stream of particles. A negative
// duration means unbounded. Emissions created before the emitter has seen
// a frame are anchored to the first one.
//
// gain normalizes the envelope to a mean of one, so the envelope shapes
// when particles appear while rate keeps fixing how many.
type emission struct {
	id                 EmissionID
	start, end         float64
	duration           float64
	anchored           bool
	secondsPerEmission float64
	accumulator        float64
	gain               float64
	world, dir         mgl64.Vec2
	envelope           Interpolator[float64]
}

func (e *emission) bounded() bool { return e.duration >= 0 }

func (e *emission) anchor(start float64) {
	e.start = start
	e.end = start + max(e.duration, 0)
	e.anchored = true
}

// ParticleEmitter schedules particles from a weighted library of
// (prototype, Source) pairs into a ParticleSimulation.
type ParticleEmitter struct {
	sim *ParticleSimulation
	rng *rand.Rand
	log Logger

	library []libraryEntry
	table   []int // library index repeated weight times

	emissions []*emission
	nextID    EmissionID
	now       float64
	ticked    bool
}

func NewParticleEmitter(sim *ParticleSimulation) *ParticleEmitter {
	return &ParticleEmitter{
		sim: sim,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log: NewNopLogger(),
	}
}

func (e *ParticleEmitter) SetSimulation(sim *ParticleSimulation) { e.sim = sim }
func (e *ParticleEmitter) Simulation() *ParticleSimulation       { return e.sim }
func (e *ParticleEmitter) SetRand(rng *rand.Rand)                { e.rng = rng }
func (e *ParticleEmitter) SetLogger(l Logger)                    { e.log = loggerOrNop(l) }

// Add puts a pair in the library. weight must be at least 1; it is realized
// as that many entries in the flat selection table.
func (e *ParticleEmitter) Add(prototype ParticlePrototype, source Source, weight int) {
	if weight < 1 {
		panic(fmt.Sprintf("particles: emitter weight must be >= 1, got %d", weight))
	}
	e.library = append(e.library, libraryEntry{prototype: prototype.withDefaults(), source: source, weight: weight})
	e.rebuildTable()
}

// Clear empties the library. Active emissions keep running but produce nothing.
func (e *ParticleEmitter) Clear() {
	e.library = nil
	e.rebuildTable()
}

func (e *ParticleEmitter) rebuildTable() {
	e.table = e.table[:0]
	for i, entry := range e.library {
		for w := 0; w < entry.weight; w++ {
			e.table = append(e.table, i)
		}
	}
}

func (e *ParticleEmitter) LibrarySize() int { return len(e.library) }

// Emit starts a bounded emission shaped by envelope over its duration.
func (e *ParticleEmitter) Emit(world, dir mgl64.Vec2, duration time.Duration, rate float64, envelope Interpolator[float64]) EmissionID {
	if envelope.IsZero() {
		envelope = Scalars(1)
	}
	return e.start(world, dir, max(duration.Seconds(), 0), rate, envelope)
}

// EmitShaped is Emit with a preset envelope.
func (e *ParticleEmitter) EmitShaped(world, dir mgl64.Vec2, duration time.Duration, rate float64, shape Envelope) EmissionID {
	return e.Emit(world, dir, duration, rate, shape.Curve())
}

// EmitContinuous starts an unbounded emission that runs until Cancel.
func (e *ParticleEmitter) EmitContinuous(world, dir mgl64.Vec2, rate float64) EmissionID {
	return e.start(world, dir, -1, rate, Scalars(1))
}

func (e *ParticleEmitter) start(world, dir mgl64.Vec2, duration, rate float64, envelope Interpolator[float64]) EmissionID {
	e.nextID++
	em := &emission{
		id:       e.nextID,
		duration: duration,
		world:    world,
		dir:      dir,
		envelope: envelope,
		gain:     1,
	}
	if em.bounded() {
		em.gain = 0
		if m := envelopeMean(envelope); m > 0 {
			em.gain = 1 / m
		}
	}
	if rate > 0 {
		em.secondsPerEmission = 1 / rate
	}
	if e.ticked {
		em.anchor(e.now)
	}
	e.emissions = append(e.emissions, em)
	return em.id
}

func (e *ParticleEmitter) find(id EmissionID) int {
	return slices.IndexFunc(e.emissions, func(em *emission) bool { return em.id == id })
}

func (e *ParticleEmitter) IsActive(id EmissionID) bool { return e.find(id) >= 0 }

func (e *ParticleEmitter) ActiveEmissions() int { return len(e.emissions) }

// SetEmissionPosition moves an active emission. Returns false for unknown ids.
func (e *ParticleEmitter) SetEmissionPosition(id EmissionID, world, dir mgl64.Vec2) bool {
	i := e.find(id)
	if i < 0 {
		return false
	}
	e.emissions[i].world = world
	e.emissions[i].dir = dir
	return true
}

// Cancel drops an emission; nothing more is emitted for id.
func (e *ParticleEmitter) Cancel(id EmissionID) bool {
	i := e.find(id)
	if i < 0 {
		e.log.Debugf("cancel of unknown emission %d", id)
		return false
	}
	e.emissions = slices.Delete(e.emissions, i, i+1)
	return true
}

// EmitBurst immediately requests count single particles, each kept with the
// given probability.
func (e *ParticleEmitter) EmitBurst(world, dir mgl64.Vec2, count int, probability float64) int {
	if e.sim == nil || e.sim.Destroyed() {
		return 0
	}
	emitted := 0
	for i := 0; i < count; i++ {
		if probability < 1 && e.rng.Float64() >= probability {
			continue
		}
		if e.emitOne(world, dir) {
			emitted++
		}
	}
	return emitted
}

func (e *ParticleEmitter) emitOne(world, dir mgl64.Vec2) bool {
	if len(e.table) == 0 {
		return false
	}
	entry := &e.library[e.table[e.rng.IntN(len(e.table))]]
	w, d := entry.source.Apply(e.rng, world, dir)
	e.sim.Emit(entry.prototype.Perturb(e.rng, entry.source.Variance), w, d)
	return true
}

// Update advances every emission by one frame.
func (e *ParticleEmitter) Update(t Time) {
	dt := t.DtSeconds()
	e.now = t.Seconds()
	e.ticked = true
	if e.sim == nil || e.sim.Destroyed() {
		return
	}

	var expired []EmissionID
	for _, em := range e.emissions {
		if !em.anchored {
			em.anchor(e.now - dt)
		}

		span, ramp := dt, 1.0
		if em.bounded() {
			from, to := max(e.now-dt, em.start), e.now
			if to >= em.end {
				// only the part of the frame before end counts
				to = em.end
				expired = append(expired, em.id)
			}
			span = max(to-from, 0)
			if em.end > em.start {
				mid := (from + to) / 2
				ramp = max(em.envelope.ValueAt((mid-em.start)/(em.end-em.start)), 0)
			}
		}
		if em.secondsPerEmission <= 0 {
			continue
		}

		em.accumulator += span * ramp * em.gain
		for em.accumulator >= em.secondsPerEmission {
			e.emitOne(em.world, em.dir)
			em.accumulator -= em.secondsPerEmission
		}
	}

	for _, id := range expired {
		if i := e.find(id); i >= 0 {
			e.emissions = slices.Delete(e.emissions, i, i+1)
		}
	}
	if len(expired) > 0 {
		e.log.Debugf("%d emissions expired", len(expired))
	}
}

// OnReady picks up the stage logger. The simulation is linked explicitly
// with SetSimulation, never discovered from siblings.
func (e *ParticleEmitter) OnReady(owner *Object, stage *Stage) {
	e.log = loggerOrNop(stage.Logger)
	if e.sim == nil {
		e.log.Warnf("particle emitter on %s has no simulation linked", owner)
	}
}
