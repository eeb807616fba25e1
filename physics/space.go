// Package physics adapts a Chipmunk2D space (github.com/jakecoffman/cp) to
// the handle-based interface kinematic particles are backed by.
//
// Bodies and shapes live in arenas and are addressed by generation-checked
// handles, so a released handle can never alias a newer occupant of the same
// slot. Removing a handle twice is reported, not fatal. Integration, contact
// resolution and sleeping are left to the engine.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// BodyID addresses a body in a Space. The zero value is never valid.
type BodyID struct {
	index uint32
	gen   uint32
}

func (id BodyID) Valid() bool { return id.gen != 0 }

// ShapeID addresses a shape in a Space. The zero value is never valid.
type ShapeID struct {
	index uint32
	gen   uint32
}

func (id ShapeID) Valid() bool { return id.gen != 0 }

// minMass keeps the engine's inverse mass finite.
const minMass = 1e-6

type bodySlot struct {
	gen     uint32
	used    bool
	inSpace bool
	body    *cp.Body
}

type shapeSlot struct {
	gen     uint32
	used    bool
	inSpace bool
	owner   BodyID
	shape   *cp.Shape
}

type Space struct {
	space *cp.Space

	bodies     []bodySlot
	freeBodies []uint32
	shapes     []shapeSlot
	freeShapes []uint32
}

func NewSpace() *Space {
	return &Space{space: cp.NewSpace()}
}

func vec(v mgl64.Vec2) cp.Vector    { return cp.Vector{X: v.X(), Y: v.Y()} }
func toVec2(v cp.Vector) mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }

func clampMass(m float64) float64 {
	if math.IsNaN(m) || math.IsInf(m, 0) || m < minMass {
		return minMass
	}
	return m
}

func clampMoment(i float64) float64 {
	if math.IsNaN(i) || math.IsInf(i, 0) || i < 0 {
		return 0
	}
	return i
}

// MomentForCircle returns the moment of inertia of a hollow circle (a ring
// between inner and outer radius) with the given mass.
func MomentForCircle(mass, inner, outer float64) float64 {
	return cp.MomentForCircle(mass, inner, outer, cp.Vector{})
}

func (s *Space) Gravity() mgl64.Vec2     { return toVec2(s.space.Gravity()) }
func (s *Space) SetGravity(g mgl64.Vec2) { s.space.SetGravity(vec(g)) }

// Step advances the engine by dt seconds. Non-positive and overlong steps are skipped.
func (s *Space) Step(dt float64) {
	if dt <= 0 || dt > 1.0 { // Safety cap for dt
		return
	}
	s.space.Step(dt)
}

// CreateBody allocates a body. It does not take part in Step until AddBody.
func (s *Space) CreateBody(mass, moment float64) BodyID {
	var idx uint32
	if n := len(s.freeBodies); n > 0 {
		idx = s.freeBodies[n-1]
		s.freeBodies = s.freeBodies[:n-1]
	} else {
		idx = uint32(len(s.bodies))
		s.bodies = append(s.bodies, bodySlot{})
	}
	b := &s.bodies[idx]
	gen := b.gen + 1
	*b = bodySlot{gen: gen, used: true, body: cp.NewBody(clampMass(mass), clampMoment(moment))}
	return BodyID{index: idx, gen: gen}
}

func (s *Space) body(id BodyID) *bodySlot {
	if !id.Valid() || int(id.index) >= len(s.bodies) {
		return nil
	}
	b := &s.bodies[id.index]
	if !b.used || b.gen != id.gen {
		return nil
	}
	return b
}

// AddBody makes the body part of the simulation. Returns false for a stale handle.
func (s *Space) AddBody(id BodyID) bool {
	b := s.body(id)
	if b == nil {
		return false
	}
	if !b.inSpace {
		s.space.AddBody(b.body)
		b.inSpace = true
	}
	return true
}

// RemoveBody takes the body out of the simulation and releases its slot.
// Returns false if the handle was already released.
func (s *Space) RemoveBody(id BodyID) bool {
	b := s.body(id)
	if b == nil {
		return false
	}
	if b.inSpace {
		s.space.RemoveBody(b.body)
	}
	*b = bodySlot{gen: b.gen}
	s.freeBodies = append(s.freeBodies, id.index)
	return true
}

// CreateCircleShape allocates a circle centered on the body. A stale owner
// yields the invalid zero handle.
func (s *Space) CreateCircleShape(owner BodyID, radius float64) ShapeID {
	b := s.body(owner)
	if b == nil {
		return ShapeID{}
	}
	var idx uint32
	if n := len(s.freeShapes); n > 0 {
		idx = s.freeShapes[n-1]
		s.freeShapes = s.freeShapes[:n-1]
	} else {
		idx = uint32(len(s.shapes))
		s.shapes = append(s.shapes, shapeSlot{})
	}
	sh := &s.shapes[idx]
	gen := sh.gen + 1
	*sh = shapeSlot{gen: gen, used: true, owner: owner, shape: cp.NewCircle(b.body, radius, cp.Vector{})}
	return ShapeID{index: idx, gen: gen}
}

func (s *Space) shape(id ShapeID) *shapeSlot {
	if !id.Valid() || int(id.index) >= len(s.shapes) {
		return nil
	}
	sh := &s.shapes[id.index]
	if !sh.used || sh.gen != id.gen {
		return nil
	}
	return sh
}

func (s *Space) AddShape(id ShapeID) bool {
	sh := s.shape(id)
	if sh == nil {
		return false
	}
	if !sh.inSpace {
		s.space.AddShape(sh.shape)
		sh.inSpace = true
	}
	return true
}

func (s *Space) RemoveShape(id ShapeID) bool {
	sh := s.shape(id)
	if sh == nil {
		return false
	}
	if sh.inSpace {
		s.space.RemoveShape(sh.shape)
	}
	*sh = shapeSlot{gen: sh.gen}
	s.freeShapes = append(s.freeShapes, id.index)
	return true
}

// BodyCount reports bodies that have been created and not yet removed.
func (s *Space) BodyCount() int {
	return len(s.bodies) - len(s.freeBodies)
}

// ShapeCount reports shapes that have been created and not yet removed.
func (s *Space) ShapeCount() int {
	return len(s.shapes) - len(s.freeShapes)
}

func (s *Space) BodyPosition(id BodyID) mgl64.Vec2 {
	if b := s.body(id); b != nil {
		return toVec2(b.body.Position())
	}
	return mgl64.Vec2{}
}

func (s *Space) SetBodyPosition(id BodyID, p mgl64.Vec2) {
	if b := s.body(id); b != nil {
		b.body.SetPosition(vec(p))
	}
}

func (s *Space) BodyVelocity(id BodyID) mgl64.Vec2 {
	if b := s.body(id); b != nil {
		return toVec2(b.body.Velocity())
	}
	return mgl64.Vec2{}
}

func (s *Space) SetBodyVelocity(id BodyID, v mgl64.Vec2) {
	if b := s.body(id); b != nil {
		b.body.SetVelocityVector(vec(v))
	}
}

func (s *Space) BodyAngle(id BodyID) float64 {
	if b := s.body(id); b != nil {
		return b.body.Angle()
	}
	return 0
}

func (s *Space) BodyAngularVelocity(id BodyID) float64 {
	if b := s.body(id); b != nil {
		return b.body.AngularVelocity()
	}
	return 0
}

func (s *Space) SetBodyAngularVelocity(id BodyID, w float64) {
	if b := s.body(id); b != nil {
		b.body.SetAngularVelocity(w)
	}
}

func (s *Space) BodyMass(id BodyID) float64 {
	if b := s.body(id); b != nil {
		return b.body.Mass()
	}
	return 0
}

func (s *Space) SetBodyMass(id BodyID, mass float64) {
	if b := s.body(id); b != nil {
		b.body.SetMass(clampMass(mass))
	}
}

func (s *Space) BodyMoment(id BodyID) float64 {
	if b := s.body(id); b != nil {
		return b.body.Moment()
	}
	return 0
}

func (s *Space) SetBodyMoment(id BodyID, moment float64) {
	if b := s.body(id); b != nil {
		b.body.SetMoment(clampMoment(moment))
	}
}

func (s *Space) circle(id ShapeID) *cp.Circle {
	sh := s.shape(id)
	if sh == nil {
		return nil
	}
	c, _ := sh.shape.Class.(*cp.Circle)
	return c
}

func (s *Space) ShapeRadius(id ShapeID) float64 {
	if c := s.circle(id); c != nil {
		return c.Radius()
	}
	return 0
}

func (s *Space) SetShapeRadius(id ShapeID, r float64) {
	if c := s.circle(id); c != nil {
		c.SetRadius(r)
	}
}

func (s *Space) ShapeCollisionFilter(id ShapeID) CollisionFilter {
	if sh := s.shape(id); sh != nil {
		return fromShapeFilter(sh.shape.Filter)
	}
	return CollisionFilter{}
}

func (s *Space) SetShapeCollisionFilter(id ShapeID, f CollisionFilter) {
	if sh := s.shape(id); sh != nil {
		sh.shape.SetFilter(f.shapeFilter())
	}
}

func (s *Space) SetShapeFriction(id ShapeID, friction float64) {
	if sh := s.shape(id); sh != nil {
		sh.shape.SetFriction(friction)
	}
}

func (s *Space) SetShapeElasticity(id ShapeID, elasticity float64) {
	if sh := s.shape(id); sh != nil {
		sh.shape.SetElasticity(elasticity)
	}
}
