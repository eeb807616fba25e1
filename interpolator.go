package particles

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Interpolator samples evenly spaced keyframes over normalized time [0,1].
// A single keyframe is a constant.
type Interpolator[T any] struct {
	values []T
	lerp   func(a, b T, t float64) T
}

// NewInterpolator panics if values is empty.
func NewInterpolator[T any](lerp func(a, b T, t float64) T, values ...T) Interpolator[T] {
	if len(values) == 0 {
		panic("particles: interpolator requires at least one keyframe")
	}
	return Interpolator[T]{values: append([]T(nil), values...), lerp: lerp}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpColor(a, b mgl64.Vec4, t float64) mgl64.Vec4 { return a.Add(b.Sub(a).Mul(t)) }

func Scalars(values ...float64) Interpolator[float64] {
	return NewInterpolator(lerp, values...)
}

func Colors(values ...mgl64.Vec4) Interpolator[mgl64.Vec4] {
	return NewInterpolator(lerpColor, values...)
}

func (in Interpolator[T]) ValueAt(t float64) T {
	if len(in.values) == 0 {
		panic("particles: sampling an empty interpolator")
	}
	last := len(in.values) - 1
	if t <= 0 || last == 0 || math.IsNaN(t) {
		return in.values[0]
	}
	if t >= 1 {
		return in.values[last]
	}
	pos := t * float64(last)
	i := int(math.Floor(pos))
	if i >= last {
		return in.values[last]
	}
	return in.lerp(in.values[i], in.values[i+1], pos-float64(i))
}

func (in Interpolator[T]) Len() int { return len(in.values) }

func (in Interpolator[T]) Keyframes() []T { return append([]T(nil), in.values...) }

// Map returns a copy with every keyframe passed through fn.
func (in Interpolator[T]) Map(fn func(T) T) Interpolator[T] {
	out := make([]T, len(in.values))
	for i, v := range in.values {
		out[i] = fn(v)
	}
	return NewInterpolator(in.lerp, out...)
}

// IsZero reports whether the interpolator was never constructed.
func (in Interpolator[T]) IsZero() bool { return len(in.values) == 0 }
