package particles

import (
	"github.com/gekko3d/particles/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// PhysicsSpace is the narrow rigid-body interface kinematic particles are
// backed by. *physics.Space implements it.
//
// The simulation is the exclusive owner of every handle it creates and
// releases each one with exactly one Remove call.
type PhysicsSpace interface {
	CreateBody(mass, moment float64) physics.BodyID
	CreateCircleShape(body physics.BodyID, radius float64) physics.ShapeID
	AddBody(physics.BodyID) bool
	RemoveBody(physics.BodyID) bool
	AddShape(physics.ShapeID) bool
	RemoveShape(physics.ShapeID) bool

	BodyPosition(physics.BodyID) mgl64.Vec2
	SetBodyPosition(physics.BodyID, mgl64.Vec2)
	BodyVelocity(physics.BodyID) mgl64.Vec2
	SetBodyVelocity(physics.BodyID, mgl64.Vec2)
	BodyAngle(physics.BodyID) float64
	BodyAngularVelocity(physics.BodyID) float64
	SetBodyAngularVelocity(physics.BodyID, float64)
	SetBodyMass(physics.BodyID, float64)
	SetBodyMoment(physics.BodyID, float64)

	SetShapeRadius(physics.ShapeID, float64)
	SetShapeCollisionFilter(physics.ShapeID, physics.CollisionFilter)
	SetShapeFriction(physics.ShapeID, float64)
	SetShapeElasticity(physics.ShapeID, float64)
}

// Stepper is implemented by spaces the host should advance each frame.
type Stepper interface {
	Step(dt float64)
}

var _ PhysicsSpace = (*physics.Space)(nil)
var _ Stepper = (*physics.Space)(nil)

// minShapeRadius keeps the physics engine away from degenerate circles.
const minShapeRadius = 0.01

// rigidBody is the owning handle pair of one kinematic particle.
type rigidBody struct {
	space PhysicsSpace
	body  physics.BodyID
	shape physics.ShapeID
}

func newRigidBody(space PhysicsSpace, kin *KinematicsPrototype, pos, vel mgl64.Vec2, mass, radius float64) *rigidBody {
	r := max(radius*kin.scale(), minShapeRadius)
	b := space.CreateBody(mass, physics.MomentForCircle(mass, 0, r))
	space.SetBodyPosition(b, pos)
	space.SetBodyVelocity(b, vel)
	space.AddBody(b)

	s := space.CreateCircleShape(b, r)
	space.SetShapeFriction(s, kin.Friction)
	space.SetShapeElasticity(s, kin.Elasticity)
	space.SetShapeCollisionFilter(s, kin.filter())
	space.AddShape(s)

	return &rigidBody{space: space, body: b, shape: s}
}

// destroy releases both handles; subsequent calls do nothing.
func (rb *rigidBody) destroy() bool {
	if rb == nil || rb.space == nil {
		return false
	}
	rb.space.RemoveShape(rb.shape)
	rb.space.RemoveBody(rb.body)
	rb.space = nil
	return true
}
