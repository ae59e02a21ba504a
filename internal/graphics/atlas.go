package graphics

import (
	"image"
	"image/color"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// NotFound names the region missing textures resolve to.
const NotFound = "notfound"

// UVRegion is a rectangle in texture coordinates.
type UVRegion struct {
	U1, V1, U2, V2 float32
}

// FullRegion covers a whole texture.
var FullRegion = UVRegion{0, 0, 1, 1}

func (r UVRegion) Width() float32  { return r.U2 - r.U1 }
func (r UVRegion) Height() float32 { return r.V2 - r.V1 }

// Scale shrinks or grows the region around its centre.
func (r *UVRegion) Scale(x, y float32) {
	cu := (r.U1 + r.U2) * 0.5
	cv := (r.V1 + r.V2) * 0.5
	hw := r.Width() * 0.5 * x
	hh := r.Height() * 0.5 * y
	r.U1, r.U2 = cu-hw, cu+hw
	r.V1, r.V2 = cv-hh, cv+hh
}

// UVResolver maps texture names to atlas regions. Implementations must be
// safe for concurrent readers; mesh builders call them from workers.
type UVResolver interface {
	Region(name string) UVRegion
}

// Atlas is a texture made of equally sized named tiles. Immutable once built.
type Atlas struct {
	texture Texture
	img     *image.RGBA
	regions map[string]UVRegion
}

// Texture returns the GPU texture.
func (a *Atlas) Texture() Texture { return a.texture }

// Image returns the CPU copy of the atlas pixels.
func (a *Atlas) Image() *image.RGBA { return a.img }

// Get returns the region of a tile.
func (a *Atlas) Get(name string) (UVRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Region returns the tile's region, or the NotFound tile.
func (a *Atlas) Region(name string) UVRegion {
	if r, ok := a.regions[name]; ok {
		return r
	}
	return a.regions[NotFound]
}

// Has reports whether the atlas contains the tile.
func (a *Atlas) Has(name string) bool {
	_, ok := a.regions[name]
	return ok
}

// AtlasBuilder collects tiles and packs them into a square grid.
type AtlasBuilder struct {
	tile   int
	images map[string]image.Image
}

// NewAtlasBuilder creates a builder whose tiles are scaled to tile x tile pixels.
func NewAtlasBuilder(tile int) *AtlasBuilder {
	return &AtlasBuilder{tile: tile, images: make(map[string]image.Image)}
}

// Add registers a tile image. A later Add with the same name replaces it.
func (b *AtlasBuilder) Add(name string, img image.Image) {
	b.images[name] = img
}

// AddColor registers a flat-colored tile.
func (b *AtlasBuilder) AddColor(name string, c color.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	b.images[name] = img
}

// Len returns the number of tiles added.
func (b *AtlasBuilder) Len() int { return len(b.images) }

func notFoundImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := max(size/2, 1)
	for y := range size {
		for x := range size {
			c := color.RGBA{0, 0, 0, 255}
			if (x/half+y/half)%2 == 0 {
				c = color.RGBA{255, 0, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Build packs the tiles (plus a NotFound tile if missing) and uploads the atlas with dev.
func (b *AtlasBuilder) Build(dev Device) *Atlas {
	if _, ok := b.images[NotFound]; !ok {
		b.images[NotFound] = notFoundImage(b.tile)
	}
	names := make([]string, 0, len(b.images))
	for name := range b.images {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := int(math.Ceil(math.Sqrt(float64(len(names)))))
	size := cols * b.tile
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	regions := make(map[string]UVRegion, len(names))

	for i, name := range names {
		x := (i % cols) * b.tile
		y := (i / cols) * b.tile
		cell := image.Rect(x, y, x+b.tile, y+b.tile)
		src := b.images[name]
		xdraw.NearestNeighbor.Scale(img, cell, src, src.Bounds(), xdraw.Src, nil)
		regions[name] = UVRegion{
			U1: float32(x) / float32(size),
			V1: float32(y) / float32(size),
			U2: float32(x+b.tile) / float32(size),
			V2: float32(y+b.tile) / float32(size),
		}
	}
	return &Atlas{texture: dev.NewTexture(img), img: img, regions: regions}
}
