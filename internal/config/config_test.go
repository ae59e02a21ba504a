package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	f, err := Parse([]byte("graphics:\n  chunk_max_renderers: 2\n  frustum_culling: false\n"))
	require.NoError(t, err)

	d := DefaultGraphics()
	assert.Equal(t, 2, f.Graphics.ChunkMaxRenderers)
	assert.False(t, f.Graphics.FrustumCulling)
	assert.Equal(t, d.ChunkMaxVertices, f.Graphics.ChunkMaxVertices)
	assert.Equal(t, d.RenderDistance, f.Graphics.RenderDistance)
	assert.Equal(t, DefaultWorldGen().SeaLevel, f.WorldGen.SeaLevel)
}

func TestParseClampsRenderers(t *testing.T) {
	f, err := Parse([]byte("graphics:\n  chunk_max_renderers: 1000\n  render_distance: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 64, f.Graphics.ChunkMaxRenderers)
	assert.Equal(t, 2, f.Graphics.RenderDistance)
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("graphics: [1, 2"))
	assert.Error(t, err)
}

func TestLoadWithoutPath(t *testing.T) {
	t.Setenv("MINIVOX_CONFIG", "")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadInstallsGlobals(t *testing.T) {
	prev := GetGraphics()
	prevGen := GetWorldGen()
	t.Cleanup(func() {
		SetGraphics(prev)
		SetWorldGen(prevGen)
	})

	path := filepath.Join(t.TempDir(), "minivox.yaml")
	data := "log_level: debug\ngraphics:\n  dense_render: false\n  chunk_max_vertices: 1234\nworldgen:\n  sea_level: 40\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.NoError(t, err)

	g := GetGraphics()
	assert.Equal(t, 1234, g.ChunkMaxVerticesFor())
	assert.Equal(t, "debug", GetLogLevel())
	assert.Equal(t, 40, GetSeaLevel())
}
