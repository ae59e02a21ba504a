package world

// BlockID identifies a block definition in the content index.
type BlockID uint16

const (
	// BlockAir is the empty block.
	BlockAir BlockID = 0
	// BlockVoid marks cells outside of any loaded chunk.
	BlockVoid BlockID = 0xFFFF
)

// State packs per-voxel block state: rotation in the low 3 bits,
// user bits in the high byte.
type State uint16

// MakeState builds a State from a rotation index and user bits.
func MakeState(rotation, userbits uint8) State {
	return State(rotation&0x7) | State(userbits)<<8
}

// Rotation returns the rotation profile index.
func (s State) Rotation() uint8 { return uint8(s & 0x7) }

// Userbits returns the block-specific user bits.
func (s State) Userbits() uint8 { return uint8(s >> 8) }

// Voxel is a single world cell.
type Voxel struct {
	ID    BlockID
	State State
}

// IsVoid reports whether v lies outside loaded chunks.
func (v Voxel) IsVoid() bool { return v.ID == BlockVoid }

// VoxelIndex converts box-local coordinates to a flat index (x fastest, then z, then y).
func VoxelIndex(x, y, z, w, d int) int {
	return (y*d+z)*w + x
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
