package world

import (
	"crypto/sha256"
	"testing"
)

var testPalette = Palette{Bedrock: 1, Stone: 2, Dirt: 3, Grass: 4, Sand: 5, Water: 6}

// hashChunkBlocks computes a SHA-256 hash of all voxels in a chunk
func hashChunkBlocks(c *Chunk) [32]byte {
	h := sha256.New()
	for _, v := range c.Voxels {
		h.Write([]byte{byte(v.ID), byte(v.ID >> 8)})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewChunk(3, -2)
	b := NewChunk(3, -2)
	NewGenerator(42, 63, testPalette).PopulateChunk(a)
	NewGenerator(42, 63, testPalette).PopulateChunk(b)
	if hashChunkBlocks(a) != hashChunkBlocks(b) {
		t.Fatalf("same seed produced different chunks")
	}
}

func TestGeneratorColumnLayout(t *testing.T) {
	g := NewGenerator(7, 63, testPalette)
	c := NewChunk(0, 0)
	g.PopulateChunk(c)

	if got := c.Get(0, 0, 0).ID; got != testPalette.Bedrock {
		t.Fatalf("y=0: got %d, want bedrock", got)
	}
	h := g.HeightAt(0, 0)
	top := c.Get(0, h, 0).ID
	if top != testPalette.Grass && top != testPalette.Sand {
		t.Fatalf("surface at y=%d is %d", h, top)
	}
	if above := c.Get(0, max(h+1, 64), 0).ID; above != BlockAir {
		t.Fatalf("above surface is %d, want air", above)
	}
	if !c.Flags.Modified || !c.Flags.DirtyHeights {
		t.Fatalf("populated chunk should be flagged modified")
	}
}

func BenchmarkPopulateChunk(b *testing.B) {
	g := NewGenerator(1, 63, testPalette)
	c := NewChunk(0, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.PopulateChunk(c)
	}
}
