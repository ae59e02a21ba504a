package world

import "fmt"

// Face is one side of a cube. The order matches per-face arrays
// (textures, tints, culling bits): bit i of a mask is face i.
type Face int

const (
	FaceWest  Face = iota // -X
	FaceEast              // +X
	FaceDown              // -Y
	FaceUp                // +Y
	FaceNorth             // -Z
	FaceSouth             // +Z
)

// FaceCount is the number of cube faces.
const FaceCount = 6

// AllFaces is a culling mask with every face enabled.
const AllFaces uint8 = 0x3F

var faceNames = [FaceCount]string{"west", "east", "down", "up", "north", "south"}

// FaceNormals are the outward unit offsets of each face.
var FaceNormals = [FaceCount][3]int{
	{-1, 0, 0},
	{1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
}

func (f Face) String() string {
	if f < 0 || f >= FaceCount {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceNames[f]
}

// ParseFace returns the face with the given name.
func ParseFace(name string) (Face, error) {
	for i, n := range faceNames {
		if n == name {
			return Face(i), nil
		}
	}
	return 0, fmt.Errorf("unknown face %q", name)
}
