package physics

import "github.com/jakecoffman/cp"

const AllCategories = ^uint32(0)

// CollisionFilter decides which shapes may touch. Shapes sharing a non-zero
// Group never collide; otherwise each side's Categories must intersect the
// other side's Mask.
type CollisionFilter struct {
	Group      uint32
	Categories uint32
	Mask       uint32
}

func DefaultFilter() CollisionFilter {
	return CollisionFilter{Categories: AllCategories, Mask: AllCategories}
}

func (f CollisionFilter) Rejects(other CollisionFilter) bool {
	return f.shapeFilter().Reject(other.shapeFilter())
}

func (f CollisionFilter) shapeFilter() cp.ShapeFilter {
	return cp.ShapeFilter{Group: uint(f.Group), Categories: uint(f.Categories), Mask: uint(f.Mask)}
}

func fromShapeFilter(sf cp.ShapeFilter) CollisionFilter {
	return CollisionFilter{Group: uint32(sf.Group), Categories: uint32(sf.Categories), Mask: uint32(sf.Mask)}
}
