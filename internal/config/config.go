package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by Load when neither a path nor MINIVOX_CONFIG is set.
var ErrNoConfig = errors.New("no config file given")

// Graphics holds chunk rendering configuration
type Graphics struct {
	ChunkMaxVertices      int     `yaml:"chunk_max_vertices"`
	ChunkMaxVerticesDense int     `yaml:"chunk_max_vertices_dense"`
	DenseRender           bool    `yaml:"dense_render"`
	DenseRenderDistance   float32 `yaml:"dense_render_distance"`
	ChunkMaxRenderers     int     `yaml:"chunk_max_renderers"`
	Backlight             bool    `yaml:"backlight"`
	FrustumCulling        bool    `yaml:"frustum_culling"`
	RenderDistance        int     `yaml:"render_distance"` // in chunks
}

// File is the on-disk config layout.
type File struct {
	Graphics Graphics `yaml:"graphics"`
	WorldGen WorldGen `yaml:"worldgen"`
	LogLevel string   `yaml:"log_level"`
	Metrics  string   `yaml:"metrics_addr"`
}

// DefaultGraphics returns the built-in graphics settings.
func DefaultGraphics() Graphics {
	return Graphics{
		ChunkMaxVertices:      200_000,
		ChunkMaxVerticesDense: 800_000,
		DenseRender:           true,
		DenseRenderDistance:   56,
		ChunkMaxRenderers:     4,
		Backlight:             true,
		FrustumCulling:        true,
		RenderDistance:        12,
	}
}

var (
	mu             sync.RWMutex
	globalGraphics = DefaultGraphics()
	globalLogLevel = "info"
	globalMetrics  = ""
)

// GetGraphics returns a copy of the current graphics settings
func GetGraphics() Graphics {
	mu.RLock()
	defer mu.RUnlock()
	return globalGraphics
}

// SetGraphics replaces the graphics settings, clamping out-of-range values
func SetGraphics(g Graphics) {
	mu.Lock()
	defer mu.Unlock()
	globalGraphics = clampGraphics(g)
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	mu.RLock()
	defer mu.RUnlock()
	return globalGraphics.RenderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	mu.Lock()
	defer mu.Unlock()
	globalGraphics.RenderDistance = clampInt(distance, 2, 50)
}

// GetLogLevel returns the configured log level name.
func GetLogLevel() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogLevel
}

// GetMetricsAddr returns the prometheus listen address, empty when disabled.
func GetMetricsAddr() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalMetrics
}

// ChunkMaxVerticesFor returns the builder capacity for the dense/normal mode.
func (g Graphics) ChunkMaxVerticesFor() int {
	if g.DenseRender {
		return g.ChunkMaxVerticesDense
	}
	return g.ChunkMaxVertices
}

func clampGraphics(g Graphics) Graphics {
	d := DefaultGraphics()
	if g.ChunkMaxVertices <= 0 {
		g.ChunkMaxVertices = d.ChunkMaxVertices
	}
	if g.ChunkMaxVerticesDense <= 0 {
		g.ChunkMaxVerticesDense = d.ChunkMaxVerticesDense
	}
	if g.ChunkMaxRenderers <= 0 {
		g.ChunkMaxRenderers = d.ChunkMaxRenderers
	}
	g.ChunkMaxRenderers = clampInt(g.ChunkMaxRenderers, 1, 64)
	if g.RenderDistance == 0 {
		g.RenderDistance = d.RenderDistance
	}
	g.RenderDistance = clampInt(g.RenderDistance, 2, 50)
	if g.DenseRenderDistance < 0 {
		g.DenseRenderDistance = 0
	}
	return g
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Load reads a YAML config file and installs it as the global settings.
// An empty path falls back to $MINIVOX_CONFIG; if that is unset too,
// ErrNoConfig is returned and the defaults stay in place.
func Load(path string) (*File, error) {
	if path == "" {
		path = os.Getenv("MINIVOX_CONFIG")
		if path == "" {
			return nil, ErrNoConfig
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	Apply(f)
	return f, nil
}

// Parse decodes YAML on top of the defaults, so omitted keys keep their default value.
func Parse(data []byte) (*File, error) {
	f := &File{
		Graphics: DefaultGraphics(),
		WorldGen: DefaultWorldGen(),
		LogLevel: "info",
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	f.Graphics = clampGraphics(f.Graphics)
	return f, nil
}

// Apply installs f as the global settings.
func Apply(f *File) {
	mu.Lock()
	globalGraphics = clampGraphics(f.Graphics)
	globalLogLevel = f.LogLevel
	globalMetrics = f.Metrics
	mu.Unlock()
	SetWorldGen(f.WorldGen)
}
