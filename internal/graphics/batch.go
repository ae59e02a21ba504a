package graphics

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mini-vox/internal/world"
)

// CubeFace describes how to lay out one face of an axis-aligned box.
// Right x Up equals Normal, so vertices wind counter-clockwise seen from outside.
type CubeFace struct {
	Normal mgl32.Vec3
	Right  mgl32.Vec3
	Up     mgl32.Vec3
	// indices of the box size components spanning Right and Up
	RightAxis, UpAxis int
}

// CubeFaces is indexed by world.Face.
var CubeFaces = [world.FaceCount]CubeFace{
	{Normal: mgl32.Vec3{-1, 0, 0}, Right: mgl32.Vec3{0, 0, 1}, Up: mgl32.Vec3{0, 1, 0}, RightAxis: 2, UpAxis: 1},
	{Normal: mgl32.Vec3{1, 0, 0}, Right: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, 1, 0}, RightAxis: 2, UpAxis: 1},
	{Normal: mgl32.Vec3{0, -1, 0}, Right: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, 0, 1}, RightAxis: 0, UpAxis: 2},
	{Normal: mgl32.Vec3{0, 1, 0}, Right: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, 0, 1}, RightAxis: 0, UpAxis: 2},
	{Normal: mgl32.Vec3{0, 0, -1}, Right: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, 1, 0}, RightAxis: 0, UpAxis: 1},
	{Normal: mgl32.Vec3{0, 0, 1}, Right: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, 1, 0}, RightAxis: 0, UpAxis: 1},
}

// FaceShading is the directional brightness of each face.
var FaceShading = [world.FaceCount]float32{0.9, 0.8, 0.7, 1.0, 0.9, 0.8}

// MainBatch accumulates textured quads and draws them in as few calls as
// texture switches allow.
type MainBatch struct {
	dev      Device
	mesh     BatchMesh
	buffer   []BatchVertex
	index    int
	texture  Texture
	blank    Texture
	region   UVRegion
	flushes  int
	capacity int
}

// NewMainBatch creates a batch holding up to capacity vertices between flushes.
func NewMainBatch(dev Device, capacity int) *MainBatch {
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	return &MainBatch{
		dev:      dev,
		mesh:     dev.NewBatchMesh(capacity),
		buffer:   make([]BatchVertex, capacity),
		blank:    dev.NewTexture(white),
		region:   FullRegion,
		capacity: capacity,
	}
}

// Begin resets the bound texture to the blank one.
func (b *MainBatch) Begin() {
	b.texture = nil
	b.dev.BindTexture(b.blank)
}

// SetTexture switches texture, flushing pending vertices on change.
// A nil texture selects the blank white texture.
func (b *MainBatch) SetTexture(t Texture) {
	if t == nil {
		t = b.blank
	}
	if t != b.texture {
		b.Flush()
	}
	b.texture = t
	b.region = FullRegion
}

// SetTextureRegion switches texture and sets the default region.
func (b *MainBatch) SetTextureRegion(t Texture, r UVRegion) {
	b.SetTexture(t)
	b.region = r
}

// Flush draws pending vertices.
func (b *MainBatch) Flush() {
	if b.index == 0 {
		return
	}
	if b.texture == nil {
		b.texture = b.blank
	}
	b.dev.BindTexture(b.texture)
	b.mesh.Reload(b.buffer[:b.index])
	b.mesh.Draw()
	b.index = 0
	b.flushes++
}

// Flushes returns how many draw calls the batch issued.
func (b *MainBatch) Flushes() int { return b.flushes }

func (b *MainBatch) prepare(vertices int) {
	if b.index+vertices > b.capacity {
		b.Flush()
	}
}

func (b *MainBatch) vertex(pos mgl32.Vec3, uv mgl32.Vec2, c mgl32.Vec4) {
	b.buffer[b.index] = BatchVertex{Position: pos, UV: uv, Color: c}
	b.index++
}

// Quad emits a rectangle centred at pos spanning right x up.
func (b *MainBatch) Quad(pos, right, up mgl32.Vec3, size mgl32.Vec2, light mgl32.Vec4, tint mgl32.Vec3, r UVRegion) {
	b.prepare(6)
	c := mgl32.Vec4{light[0] * tint[0], light[1] * tint[1], light[2] * tint[2], light[3]}
	hr := right.Mul(size[0] * 0.5)
	hu := up.Mul(size[1] * 0.5)

	p0 := pos.Sub(hr).Sub(hu)
	p1 := pos.Add(hr).Sub(hu)
	p2 := pos.Add(hr).Add(hu)
	p3 := pos.Sub(hr).Add(hu)
	uv0 := mgl32.Vec2{r.U1, r.V1}
	uv1 := mgl32.Vec2{r.U2, r.V1}
	uv2 := mgl32.Vec2{r.U2, r.V2}
	uv3 := mgl32.Vec2{r.U1, r.V2}

	b.vertex(p0, uv0, c)
	b.vertex(p1, uv1, c)
	b.vertex(p2, uv2, c)

	b.vertex(p0, uv0, c)
	b.vertex(p2, uv2, c)
	b.vertex(p3, uv3, c)
}

// Cube emits the faces of a box centred at coord whose bit is set in cullingBits.
// Emission brightens the face shading towards 1.
func (b *MainBatch) Cube(
	coord, size mgl32.Vec3,
	faces *[world.FaceCount]UVRegion,
	light mgl32.Vec4,
	tints *[world.FaceCount]mgl32.Vec3,
	emission float32,
	cullingBits uint8,
) {
	for i := world.FaceCount - 1; i >= 0; i-- {
		if cullingBits&(1<<i) == 0 {
			continue
		}
		f := &CubeFaces[i]
		shade := (1-emission)*FaceShading[i] + emission
		l := mgl32.Vec4{light[0] * shade, light[1] * shade, light[2] * shade, light[3]}
		center := coord.Add(f.Normal.Mul(size.Dot(absVec(f.Normal)) * 0.5))
		b.Quad(center, f.Right, f.Up, mgl32.Vec2{size[f.RightAxis], size[f.UpAxis]}, l, tints[i], faces[i])
	}
}

func absVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{abs32(v[0]), abs32(v[1]), abs32(v[2])}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// SampleLight reads the world light at pos normalized to [0,1]. With backlight
// every channel is at least 1/15.
func SampleLight(pos mgl32.Vec3, chunks *world.Chunks, backlight bool) mgl32.Vec4 {
	l := chunks.GetLight(
		int(math.Floor(float64(pos.X()))),
		int(math.Floor(float64(min(world.ChunkH-1, pos.Y())))),
		int(math.Floor(float64(pos.Z()))),
	)
	var minIntensity uint8
	if backlight {
		minIntensity = 1
	}
	var out mgl32.Vec4
	for ch := range 4 {
		out[ch] = float32(max(l.Extract(ch), minIntensity)) / world.MaxLight
	}
	return out
}
