package particles

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// AtlasType selects a sprite-sheet layout for multi-variant particle textures.
type AtlasType int

const (
	AtlasNone AtlasType = iota
	Atlas2x2
	Atlas4x4
)

// Atlas holds the per-cell UV offsets and the uniform UV scale of one layout.
type Atlas struct {
	Type    AtlasType
	Offsets []mgl64.Vec2
	Scale   float64
}

func (a Atlas) Count() int { return len(a.Offsets) }

var (
	atlasNone = Atlas{Type: AtlasNone, Offsets: []mgl64.Vec2{{0, 0}}, Scale: 1}
	atlas2x2  = Atlas{Type: Atlas2x2, Offsets: gridOffsets(2), Scale: 0.5}
	atlas4x4  = Atlas{Type: Atlas4x4, Offsets: gridOffsets(4), Scale: 0.25}
)

// gridOffsets lays cells out row-major starting at the top-left.
func gridOffsets(n int) []mgl64.Vec2 {
	step := 1 / float64(n)
	out := make([]mgl64.Vec2, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			out = append(out, mgl64.Vec2{float64(col) * step, float64(row) * step})
		}
	}
	return out
}

// AtlasFor returns the layout table for t. Unknown values map to AtlasNone.
func AtlasFor(t AtlasType) Atlas {
	switch t {
	case Atlas2x2:
		return atlas2x2
	case Atlas4x4:
		return atlas4x4
	default:
		return atlasNone
	}
}

// ParseAtlasType never fails; anything unrecognized is AtlasNone.
func ParseAtlasType(s string) AtlasType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2x2", "atlas_2x2":
		return Atlas2x2
	case "4x4", "atlas_4x4":
		return Atlas4x4
	default:
		return AtlasNone
	}
}

func (t AtlasType) String() string {
	switch t {
	case Atlas2x2:
		return "2x2"
	case Atlas4x4:
		return "4x4"
	default:
		return "none"
	}
}

// CellUV returns the offset of cell idx, wrapping out-of-range indices.
func (a Atlas) CellUV(idx int) mgl64.Vec2 {
	n := len(a.Offsets)
	idx %= n
	if idx < 0 {
		idx += n
	}
	return a.Offsets[idx]
}
