package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-vox/internal/world"
)

func litArea(t *testing.T) *world.Chunks {
	t.Helper()
	area := world.NewChunks(2, 1, 0, 0)
	for cx := range 2 {
		c := world.NewChunk(cx, 0)
		for x := range world.ChunkW {
			c.Set(x, 40+cx, 3, world.Voxel{ID: 1})
		}
		world.ComputeSkyLight(c, nil)
		require.True(t, area.Put(c))
	}
	return area
}

func TestLightCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lights.bin")
	src := litArea(t)
	require.NoError(t, saveLightCache(path, 7, 1, src))

	dst := world.NewChunks(2, 1, 0, 0)
	for cx := range 2 {
		require.True(t, dst.Put(world.NewChunk(cx, 0)))
	}
	require.NoError(t, loadLightCache(path, 7, 1, dst))

	for i, c := range dst.Chunks() {
		want := src.Chunks()[i]
		assert.True(t, c.Flags.Lighted)
		assert.Equal(t, want.Lightmap.Get(2, 39, 3), c.Lightmap.Get(2, 39, 3))
		assert.Equal(t, want.Lightmap.Get(2, 60, 3), c.Lightmap.Get(2, 60, 3))
	}
}

func TestLightCacheStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lights.bin")
	require.NoError(t, saveLightCache(path, 7, 1, litArea(t)))

	err := loadLightCache(path, 8, 1, litArea(t))
	assert.ErrorIs(t, err, errStaleLightCache)

	err = loadLightCache(filepath.Join(t.TempDir(), "missing.bin"), 7, 1, litArea(t))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
