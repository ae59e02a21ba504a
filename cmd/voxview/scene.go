package main

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"mini-vox/internal/config"
	"mini-vox/internal/content"
	"mini-vox/internal/graphics"
	"mini-vox/internal/graphics/renderables/blockwraps"
	"mini-vox/internal/graphics/renderables/chunks"
	"mini-vox/internal/graphics/renderer"
	"mini-vox/internal/metrics"
	"mini-vox/internal/world"
)

const (
	tileSize     = 16
	windowWidth  = 900
	windowHeight = 600
)

type options struct {
	idx         *content.Indices
	metrics     *metrics.Render
	texturesDir string
	lightCache  string
}

// scene is everything one viewer run renders.
type scene struct {
	idx      *content.Indices
	world    *world.Chunks
	chunks   *chunks.ChunksRenderer
	wraps    *blockwraps.Renderer
	renderer *renderer.Renderer
	camera   *graphics.Camera
	atlas    *graphics.Atlas

	gen      *world.Generator
	wrapIDs  []uint64
	toggleAt [3]int
	toggle   world.BlockID
}

func newScene(dev graphics.Device, opts options, width, height int) (*scene, error) {
	wg := config.GetWorldGen()
	r := wg.Radius
	area := world.NewChunks(2*r+1, 2*r+1, -r, -r)
	area.LightPassing = opts.idx.LightPassing

	palette, err := opts.idx.Palette("bedrock", "stone", "dirt", "grass", "sand", "water")
	if err != nil {
		return nil, fmt.Errorf("generator palette: %w", err)
	}
	gen := world.NewGenerator(wg.Seed, wg.SeaLevel, palette)
	start := time.Now()
	if err := populate(area, gen, r); err != nil {
		return nil, err
	}
	log.Info("generated %d chunks in %s", area.Volume(), time.Since(start).Round(time.Millisecond))
	lightWorld(area, opts, wg.Seed, r)

	atlas := buildAtlas(dev, opts.idx.Textures(), opts.texturesDir)
	textures := graphics.NewTextures("blocks")
	textures.AddAtlas("blocks", atlas)

	camera := graphics.NewCamera(width, height)
	camera.Position = mgl32.Vec3{0.5, float32(gen.HeightAt(0, 0) + 12), 0.5}
	camera.Pitch = -25

	chunksR := chunks.New(dev, area, opts.idx, atlas, config.GetGraphics(), opts.metrics)
	wraps := blockwraps.New(dev, area, opts.idx, textures, opts.metrics)

	rend, err := renderer.NewRenderer(dev, camera, chunksR, wraps)
	if err != nil {
		return nil, err
	}

	s := &scene{
		idx:      opts.idx,
		world:    area,
		chunks:   chunksR,
		wraps:    wraps,
		renderer: rend,
		camera:   camera,
		atlas:    atlas,
		gen:      gen,
	}
	s.spawnWraps(wg.Seed, wg.Wraps, r*world.ChunkW)

	glass, err := opts.idx.ByName("glass")
	if err != nil {
		return nil, err
	}
	s.toggle = glass.ID
	s.toggleAt = [3]int{2, gen.HeightAt(2, 2) + 1, 2}
	return s, nil
}

// populate generates every chunk of the area in parallel. Put is safe for
// concurrent callers.
func populate(area *world.Chunks, gen *world.Generator, radius int) error {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			g.Go(func() error {
				c := world.NewChunk(cx, cz)
				gen.PopulateChunk(c)
				if !area.Put(c) {
					return fmt.Errorf("chunk %d,%d is outside the area", cx, cz)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// lightWorld restores lightmaps from the light cache when it matches the
// world, otherwise computes sky light and rewrites the cache.
func lightWorld(area *world.Chunks, opts options, seed int64, radius int) {
	if opts.lightCache != "" {
		err := loadLightCache(opts.lightCache, seed, radius, area)
		if err == nil {
			log.Info("lightmaps loaded from %s", opts.lightCache)
			return
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("light cache %s: %v", opts.lightCache, err)
		}
	}
	for _, c := range area.Chunks() {
		if c != nil {
			world.ComputeSkyLight(c, opts.idx.LightPassing)
		}
	}
	if opts.lightCache == "" {
		return
	}
	if err := saveLightCache(opts.lightCache, seed, radius, area); err != nil {
		log.Warn("light cache %s: %v", opts.lightCache, err)
	}
}

// spawnWraps places n highlighted wrappers on random surface blocks.
func (s *scene) spawnWraps(seed int64, n, extent int) {
	rng := rand.New(rand.NewSource(seed))
	tints := []mgl32.Vec3{{1, 0.4, 0.4}, {0.4, 1, 0.4}, {0.4, 0.4, 1}}
	for i := range n {
		x := rng.Intn(2*extent) - extent
		z := rng.Intn(2*extent) - extent
		y := s.gen.HeightAt(x, z)
		var emission float32
		if i%4 == 0 {
			emission = 1
		}
		s.wrapIDs = append(s.wrapIDs, s.wraps.Add([3]int{x, y, z}, "stone", tints[i%len(tints)], emission))
	}
}

// tick pans the camera. Once per second it also toggles a glass block and
// cycles the wrapper textures.
func (s *scene) tick(elapsed float64, second bool) {
	s.camera.Yaw = float32(elapsed*15) - 180
	if !second {
		return
	}
	x, y, z := s.toggleAt[0], s.toggleAt[1], s.toggleAt[2]
	v := s.world.Get(x, y, z)
	if v == nil {
		return
	}
	next := world.Voxel{ID: s.toggle}
	if v.ID == s.toggle {
		next = world.Voxel{ID: world.BlockAir}
	}
	s.world.Set(x, y, z, next)

	faces := [...]string{"stone", "sand", "dirt"}
	for i, id := range s.wrapIDs {
		s.wraps.SetTexture(id, faces[(int(elapsed)+i)%len(faces)])
	}
}

func (s *scene) dispose() {
	s.renderer.Dispose()
	s.atlas.Texture().Delete()
}

// buildAtlas packs <dir>/<name>.png for every texture; names without a file
// get a flat color derived from the name.
func buildAtlas(dev graphics.Device, names []string, dir string) *graphics.Atlas {
	b := graphics.NewAtlasBuilder(tileSize)
	for _, name := range names {
		if dir != "" {
			img, err := graphics.LoadImage(filepath.Join(dir, name+".png"))
			if err == nil {
				b.Add(name, img)
				continue
			}
			log.Debug("texture %s: %v", name, err)
		}
		b.AddColor(name, flatColor(name))
	}
	log.Info("atlas has %d tiles", b.Len())
	return b.Build(dev)
}

func flatColor(name string) color.RGBA {
	var h uint32 = 2166136261
	for i := range len(name) {
		h = (h ^ uint32(name[i])) * 16777619
	}
	return color.RGBA{uint8(96 + h%128), uint8(96 + (h>>8)%128), uint8(96 + (h>>16)%128), 255}
}
