package particles

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Component is driven by the Stage: OnReady once when its object joins,
// then Update every frame.
type Component interface {
	OnReady(owner *Object, stage *Stage)
	Update(t Time)
}

// Remover is implemented by components that hold resources beyond their
// object's lifetime.
type Remover interface {
	OnRemoved()
}

type Object struct {
	ID         uuid.UUID
	Name       string
	components []Component
	stage      *Stage
}

func NewObject(name string, components ...Component) *Object {
	return &Object{ID: uuid.New(), Name: name, components: components}
}

func (o *Object) String() string {
	if o == nil {
		return "<nil object>"
	}
	return fmt.Sprintf("%s(%s)", o.Name, o.ID)
}

func (o *Object) Components() []Component { return o.components }
func (o *Object) Stage() *Stage           { return o.stage }

// Stage hosts objects, the physics space and the gravitation fields. The
// Space accessor is resolved when components become ready.
type Stage struct {
	Space       func() PhysicsSpace
	Gravitation GravitationQuery
	Logger      Logger

	objects  []*Object
	updating bool
	added    []*Object
	removed  []*Object
}

func NewStage(space PhysicsSpace, gravitation GravitationQuery, logger Logger) *Stage {
	return &Stage{
		Space:       func() PhysicsSpace { return space },
		Gravitation: gravitation,
		Logger:      loggerOrNop(logger),
	}
}

func (s *Stage) PhysicsSpace() PhysicsSpace {
	if s.Space == nil {
		return nil
	}
	return s.Space()
}

// Add readies the object's components in order. During Update the object is
// buffered and joins after the frame.
func (s *Stage) Add(o *Object) {
	if s.updating {
		s.added = append(s.added, o)
		return
	}
	o.stage = s
	s.objects = append(s.objects, o)
	for _, c := range o.components {
		c.OnReady(o, s)
	}
}

// Remove detaches the object and lets its components release resources.
// Removing an object whose addition is still buffered cancels the addition.
func (s *Stage) Remove(o *Object) bool {
	if s.updating {
		if i := slices.Index(s.added, o); i >= 0 {
			s.added = slices.Delete(s.added, i, i+1)
			return true
		}
		s.removed = append(s.removed, o)
		return slices.Contains(s.objects, o)
	}
	i := slices.Index(s.objects, o)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	for _, c := range o.components {
		if r, ok := c.(Remover); ok {
			r.OnRemoved()
		}
	}
	o.stage = nil
	return true
}

func (s *Stage) Objects() []*Object { return s.objects }

// Update runs every component in insertion order, steps the physics space
// and then applies buffered additions and removals.
func (s *Stage) Update(t Time) {
	s.updating = true
	for _, o := range s.objects {
		for _, c := range o.components {
			c.Update(t)
		}
	}
	if stepper, ok := s.PhysicsSpace().(Stepper); ok {
		stepper.Step(t.DtSeconds())
	}
	s.updating = false
	s.flush()
}

func (s *Stage) flush() {
	// Removals first so we don't ready objects that are already gone
	for _, o := range s.removed {
		s.Remove(o)
	}
	s.removed = s.removed[:0]

	for _, o := range s.added {
		s.Add(o)
	}
	s.added = s.added[:0]
}
