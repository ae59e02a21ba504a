package voxels

import "mini-vox/internal/world"

// Volume is a positioned box of voxels and lights used as meshing input.
type Volume struct {
	x, y, z int
	w, h, d int
	voxels  []world.Voxel
	lights  []world.Light
}

// NewVolume allocates a w x h x d volume at the origin.
func NewVolume(w, h, d int) *Volume {
	n := w * h * d
	return &Volume{
		w:      w,
		h:      h,
		d:      d,
		voxels: make([]world.Voxel, n),
		lights: make([]world.Light, n),
	}
}

// SetPosition moves the volume's minimum corner to world coordinates (x, y, z).
func (v *Volume) SetPosition(x, y, z int) {
	v.x, v.y, v.z = x, y, z
}

// Bounds returns position and size.
func (v *Volume) Bounds() (x, y, z, w, h, d int) {
	return v.x, v.y, v.z, v.w, v.h, v.d
}

// Data exposes the backing slices for filling.
func (v *Volume) Data() ([]world.Voxel, []world.Light) {
	return v.voxels, v.lights
}

func (v *Volume) index(bx, by, bz int) int {
	lx, ly, lz := bx-v.x, by-v.y, bz-v.z
	if lx < 0 || ly < 0 || lz < 0 || lx >= v.w || ly >= v.h || lz >= v.d {
		return -1
	}
	return world.VoxelIndex(lx, ly, lz, v.w, v.d)
}

// Pick returns the voxel at world coordinates; void outside the volume.
func (v *Volume) Pick(bx, by, bz int) world.Voxel {
	if i := v.index(bx, by, bz); i >= 0 {
		return v.voxels[i]
	}
	return world.Voxel{ID: world.BlockVoid}
}

// PickLight returns the light at world coordinates; 0 outside the volume.
func (v *Volume) PickLight(bx, by, bz int) world.Light {
	if i := v.index(bx, by, bz); i >= 0 {
		return v.lights[i]
	}
	return 0
}

// Footprint is the volume's memory size in bytes.
func (v *Volume) Footprint() int {
	return len(v.voxels)*4 + len(v.lights)*2
}
