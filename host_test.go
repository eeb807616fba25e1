package particles

import (
	"testing"

	"github.com/gekko3d/particles/physics"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spawnOnUpdate struct {
	stage *Stage
	child *Object
	done  bool
}

func (s *spawnOnUpdate) OnReady(owner *Object, stage *Stage) { s.stage = stage }

func (s *spawnOnUpdate) Update(Time) {
	if !s.done {
		s.stage.Add(s.child)
		s.done = true
	}
}

func TestStageBindsSimulationAndSteps(t *testing.T) {
	space := physics.NewSpace()
	gravity := NewGravitationRegistry()
	stage := NewStage(space, gravity, NewNopLogger())

	sim := NewParticleSimulation(8)
	em := NewParticleEmitter(sim)
	em.SetRand(seeded())
	em.Add(kinematic(0, 100), Source{}, 1)

	obj := NewObject("sparks", em, sim)
	stage.Add(obj)
	assert.Same(t, stage, obj.Stage())
	assert.Equal(t, PhysicsSpace(space), sim.space)
	assert.Equal(t, GravitationQuery(gravity), sim.gravity)

	em.EmitBurst(mgl64.Vec2{}, mgl64.Vec2{}, 3, 1)
	stage.Update(frame(0.1))
	assert.Equal(t, 3, sim.ActiveCount())
	assert.Equal(t, 3, space.BodyCount())

	require.True(t, stage.Remove(obj))
	assert.True(t, sim.Destroyed())
	assert.Equal(t, 0, space.BodyCount())
	assert.Equal(t, 0, space.ShapeCount())
	assert.False(t, stage.Remove(obj))

	// the emitter outlives its simulation without effect
	assert.NotPanics(t, func() { em.Update(frame(0.1)) })
}

func TestStageBuffersAdditionsDuringUpdate(t *testing.T) {
	stage := NewStage(nil, nil, nil)
	child := NewObject("child", NewParticleSimulation(4))
	stage.Add(NewObject("parent", &spawnOnUpdate{child: child}))

	stage.Update(frame(0.1))

	assert.Len(t, stage.Objects(), 2)
	assert.Same(t, stage, child.Stage())
	assert.Nil(t, stage.PhysicsSpace())
}

type spawnThenRemove struct {
	stage   *Stage
	child   *Object
	removed bool
}

func (s *spawnThenRemove) OnReady(owner *Object, stage *Stage) { s.stage = stage }

func (s *spawnThenRemove) Update(Time) {
	s.stage.Add(s.child)
	s.removed = s.stage.Remove(s.child)
}

func TestStageRemoveCancelsBufferedAddition(t *testing.T) {
	stage := NewStage(nil, nil, nil)
	sim := NewParticleSimulation(4)
	child := NewObject("child", sim)
	spawner := &spawnThenRemove{child: child}
	stage.Add(NewObject("parent", spawner))

	stage.Update(frame(0.1))

	assert.True(t, spawner.removed)
	assert.Len(t, stage.Objects(), 1)
	assert.Nil(t, child.Stage())
	assert.False(t, sim.Destroyed(), "never readied, nothing to release")
}

func TestObjectIdentity(t *testing.T) {
	a := NewObject("a")
	b := NewObject("a")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, a.String(), a.ID.String())
}
