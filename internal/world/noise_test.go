package world

import (
	"math/rand"
	"testing"
)

// TestHash2Deterministic verifies hash2 produces identical results for same inputs
func TestHash2Deterministic(t *testing.T) {
	first := hash2(10, 20, 42)
	for i := 0; i < 100; i++ {
		if h := hash2(10, 20, 42); h != first {
			t.Fatalf("hash2 not deterministic: %d != %d", h, first)
		}
	}
}

func TestHash2DifferentInputs(t *testing.T) {
	base := hash2(1, 2, 42)
	if hash2(2, 1, 42) == base {
		t.Errorf("swapped coordinates should hash differently")
	}
	if hash2(1, 2, 43) == base {
		t.Errorf("different seed should hash differently")
	}
}

// TestSampleValueRange checks lattice interpolation stays in [0,1]
func TestSampleValueRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		x := rng.Float64()*2000 - 1000
		z := rng.Float64()*2000 - 1000
		v := sampleValue(x, z, 7)
		if v < 0 || v > 1 {
			t.Fatalf("sampleValue(%f, %f) = %f out of range", x, z, v)
		}
	}
}

func TestSampleValueLatticePoints(t *testing.T) {
	for x := int64(-3); x <= 3; x++ {
		for z := int64(-3); z <= 3; z++ {
			want := latticeValue(x, z, 5)
			if got := sampleValue(float64(x), float64(z), 5); got != want {
				t.Fatalf("at lattice (%d, %d): got %f, want %f", x, z, got, want)
			}
		}
	}
}

func TestValueNoiseOctavesRange(t *testing.T) {
	n := valueNoise{seed: 9, octaves: 4, persistence: 0.5, lacunarity: 2}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 5000; i++ {
		x := rng.Float64() * 100
		z := rng.Float64() * 100
		v := n.At(x, z)
		if v < 0 || v > 1 {
			t.Fatalf("At(%f, %f) = %f out of range", x, z, v)
		}
	}
	if v := (valueNoise{seed: 9}).At(1, 1); v != 0 {
		t.Fatalf("zero octaves: got %f, want 0", v)
	}
}

func TestHeightAtBounds(t *testing.T) {
	g := NewGenerator(3, 63, testPalette)
	for x := -200; x < 200; x += 7 {
		h := g.HeightAt(x, -x)
		if h < 1 || h > ChunkH-2 {
			t.Fatalf("HeightAt(%d) = %d out of bounds", x, h)
		}
		if h != g.HeightAt(x, -x) {
			t.Fatalf("HeightAt not deterministic at %d", x)
		}
	}
}
