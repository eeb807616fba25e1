package particles

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolatorClampsToEnds(t *testing.T) {
	in := Scalars(2, 4, 8)

	for _, tt := range []float64{-5, -0.001, 0} {
		assert.Equal(t, 2.0, in.ValueAt(tt), "t=%v", tt)
	}
	for _, tt := range []float64{1, 1.001, 7} {
		assert.Equal(t, 8.0, in.ValueAt(tt), "t=%v", tt)
	}
}

func TestInterpolatorBlendsEvenlySpacedKeyframes(t *testing.T) {
	in := Scalars(2, 4, 8)

	assert.InDelta(t, 3.0, in.ValueAt(0.25), 1e-12)
	assert.InDelta(t, 4.0, in.ValueAt(0.5), 1e-12)
	assert.InDelta(t, 6.0, in.ValueAt(0.75), 1e-12)
}

func TestInterpolatorSingleKeyframeIsConstant(t *testing.T) {
	in := Scalars(3)
	for _, tt := range []float64{-1, 0, 0.3, 0.999, 1, 42, math.NaN()} {
		assert.Equal(t, 3.0, in.ValueAt(tt))
	}
}

func TestInterpolatorEmptyPanics(t *testing.T) {
	require.Panics(t, func() { Scalars() })

	var zero Interpolator[float64]
	assert.True(t, zero.IsZero())
	require.Panics(t, func() { zero.ValueAt(0.5) })
}

func TestColorInterpolator(t *testing.T) {
	in := Colors(mgl64.Vec4{1, 1, 1, 1}, mgl64.Vec4{1, 0, 0, 0})

	c := in.ValueAt(0.5)
	assert.True(t, c.ApproxEqual(mgl64.Vec4{1, 0.5, 0.5, 0.5}), "got %v", c)
}

func TestInterpolatorMapCopies(t *testing.T) {
	in := Scalars(1, 2)
	doubled := in.Map(func(v float64) float64 { return v * 2 })

	assert.Equal(t, []float64{2, 4}, doubled.Keyframes())
	assert.Equal(t, []float64{1, 2}, in.Keyframes(), "source must be untouched")
}
