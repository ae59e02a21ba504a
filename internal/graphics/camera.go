package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the view and projection matrices
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // degrees
	Pitch    float32 // degrees

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	// Orthographic cameras (shadow maps) use OrthoSize as the half extent.
	Ortho     bool
	OrthoSize float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:       60.0,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) GetFrontVector() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(c.Yaw))
	pt := float64(mgl32.DegToRad(c.Pitch))
	fx := float32(math.Cos(y) * math.Cos(pt))
	fy := float32(math.Sin(pt))
	fz := float32(math.Sin(y) * math.Cos(pt))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	if c.Ortho {
		s := c.OrthoSize
		return mgl32.Ortho(-s, s, -s, s, c.NearPlane, c.FarPlane)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	front := c.GetFrontVector()
	up := mgl32.Vec3{0, 1, 0}
	// looking straight up or down
	if math.Abs(float64(front.Y())) > 0.999 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(c.Position, c.Position.Add(front), up)
}

// ProjView returns projection * view.
func (c *Camera) ProjView() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}
