package content

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ModelType is the shape kind a block renders as.
// Consumers switch over every kind; adding one means updating each switch.
type ModelType uint8

const (
	// ModelNone draws nothing (air, markers).
	ModelNone ModelType = iota
	// ModelBlock is a full unit cube.
	ModelBlock
	// ModelAABB is a cuboid sized by the block's first hitbox.
	ModelAABB
)

func (t ModelType) String() string {
	switch t {
	case ModelNone:
		return "none"
	case ModelBlock:
		return "block"
	case ModelAABB:
		return "aabb"
	}
	return fmt.Sprintf("ModelType(%d)", uint8(t))
}

// ParseModelType maps a definition file name to a ModelType.
func ParseModelType(s string) (ModelType, error) {
	switch s {
	case "none":
		return ModelNone, nil
	case "", "block":
		return ModelBlock, nil
	case "aabb":
		return ModelAABB, nil
	}
	return ModelNone, fmt.Errorf("unknown model %q", s)
}

// AABB is an axis-aligned box in block-local coordinates ([0,1] for a full block).
type AABB struct {
	Min, Max mgl32.Vec3
}

// FullBlock is the unit cube hitbox.
var FullBlock = AABB{Max: mgl32.Vec3{1, 1, 1}}

// Size returns the box extent.
func (b AABB) Size() mgl32.Vec3 { return b.Max.Sub(b.Min) }

// Center returns the box midpoint.
func (b AABB) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// rotate returns the box rotated around the block centre: r%4 quarter turns
// about Y, then flipped upside down when r >= 4.
func (b AABB) rotate(r uint8) AABB {
	out := b
	for i := uint8(0); i < r%4; i++ {
		// (x, z) -> (1-z, x)
		out = AABB{
			Min: mgl32.Vec3{1 - out.Max[2], out.Min[1], out.Min[0]},
			Max: mgl32.Vec3{1 - out.Min[2], out.Max[1], out.Max[0]},
		}
	}
	if r >= 4 {
		out.Min[1], out.Max[1] = 1-out.Max[1], 1-out.Min[1]
	}
	return out
}
