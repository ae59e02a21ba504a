package content

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-vox/internal/world"
)

// RotationCount is the number of rotation profiles a rotatable block can take.
const RotationCount = 8

// Def describes how a block type looks and interacts with light.
type Def struct {
	ID   world.BlockID
	Name string

	Model ModelType
	// Variants override Model for specific user bits.
	Variants map[uint8]ModelType

	Hitboxes []AABB
	// RotatedHitboxes[r] is Hitboxes rotated by profile r; filled for rotatable blocks.
	RotatedHitboxes [RotationCount][]AABB
	Rotatable       bool

	Solid        bool // opaque full-face occluder when drawn as ModelBlock
	Translucent  bool // depth-sorted geometry
	LightPassing bool
	Emission     [3]uint8

	Textures  [world.FaceCount]string
	Tint      mgl32.Vec3
	TintFaces uint8 // bit i tints face i
}

// ModelFor returns the model used for the given user bits.
func (d *Def) ModelFor(userbits uint8) ModelType {
	if m, ok := d.Variants[userbits]; ok {
		return m
	}
	return d.Model
}

// HitboxesFor returns the hitboxes for the voxel state's rotation.
func (d *Def) HitboxesFor(state world.State) []AABB {
	if d.Rotatable {
		return d.RotatedHitboxes[state.Rotation()]
	}
	return d.Hitboxes
}

// Hitbox returns the first hitbox for the state, or the full block.
func (d *Def) Hitbox(state world.State) AABB {
	if boxes := d.HitboxesFor(state); len(boxes) > 0 {
		return boxes[0]
	}
	return FullBlock
}

// Occludes reports whether the block hides faces of its neighbours.
func (d *Def) Occludes() bool {
	return d.Solid && d.Model == ModelBlock && !d.Translucent
}

// FaceTint returns the tint for face f, white when untinted.
func (d *Def) FaceTint(f world.Face) mgl32.Vec3 {
	if d.TintFaces&(1<<f) != 0 {
		return d.Tint
	}
	return mgl32.Vec3{1, 1, 1}
}

func (d *Def) prepare() {
	if len(d.Hitboxes) == 0 {
		d.Hitboxes = []AABB{FullBlock}
	}
	if !d.Rotatable {
		return
	}
	for r := range RotationCount {
		boxes := make([]AABB, len(d.Hitboxes))
		for i, b := range d.Hitboxes {
			boxes[i] = b.rotate(uint8(r))
		}
		d.RotatedHitboxes[r] = boxes
	}
}
