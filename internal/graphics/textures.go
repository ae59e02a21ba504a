package graphics

import (
	"strings"
	"sync"

	"mini-vox/internal/logging"
)

var texLog = logging.New("textures")

// TextureRegion is a texture plus the part of it to sample.
type TextureRegion struct {
	Texture Texture
	Region  UVRegion
}

// TextureResolver turns symbolic texture names into GPU textures and regions.
type TextureResolver interface {
	Resolve(name string) TextureRegion
}

// Textures resolves "atlas:tile" names and standalone textures. Missing names
// resolve to the default atlas NotFound tile and are logged once.
type Textures struct {
	mu           sync.RWMutex
	atlases      map[string]*Atlas
	textures     map[string]Texture
	cache        map[string]TextureRegion
	defaultAtlas string
}

// NewTextures creates a resolver. Plain tile names are looked up in defaultAtlas.
func NewTextures(defaultAtlas string) *Textures {
	return &Textures{
		atlases:      make(map[string]*Atlas),
		textures:     make(map[string]Texture),
		cache:        make(map[string]TextureRegion),
		defaultAtlas: defaultAtlas,
	}
}

// AddAtlas registers an atlas under name.
func (t *Textures) AddAtlas(name string, a *Atlas) {
	t.mu.Lock()
	t.atlases[name] = a
	clear(t.cache)
	t.mu.Unlock()
}

// AddTexture registers a standalone texture under name.
func (t *Textures) AddTexture(name string, tex Texture) {
	t.mu.Lock()
	t.textures[name] = tex
	clear(t.cache)
	t.mu.Unlock()
}

// Resolve returns the region for name, caching the result.
func (t *Textures) Resolve(name string) TextureRegion {
	t.mu.RLock()
	if r, ok := t.cache[name]; ok {
		t.mu.RUnlock()
		return r
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double check locking
	if r, ok := t.cache[name]; ok {
		return r
	}
	r, ok := t.lookup(name)
	if !ok {
		texLog.Warn("texture %q not found", name)
		r = t.fallback()
	}
	t.cache[name] = r
	return r
}

func (t *Textures) lookup(name string) (TextureRegion, bool) {
	if atlasName, tile, found := strings.Cut(name, ":"); found {
		if a := t.atlases[atlasName]; a != nil {
			if reg, ok := a.Get(tile); ok {
				return TextureRegion{Texture: a.Texture(), Region: reg}, true
			}
		}
		return TextureRegion{}, false
	}
	if tex, ok := t.textures[name]; ok {
		return TextureRegion{Texture: tex, Region: FullRegion}, true
	}
	if a := t.atlases[t.defaultAtlas]; a != nil {
		if reg, ok := a.Get(name); ok {
			return TextureRegion{Texture: a.Texture(), Region: reg}, true
		}
	}
	return TextureRegion{}, false
}

func (t *Textures) fallback() TextureRegion {
	if a := t.atlases[t.defaultAtlas]; a != nil {
		return TextureRegion{Texture: a.Texture(), Region: a.Region(NotFound)}
	}
	return TextureRegion{Region: FullRegion}
}
