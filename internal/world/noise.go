package world

import "math"

// valueNoise is seeded 2D value noise summed over octaves. Each octave uses
// its own derived seed so octaves do not line up on the lattice.
type valueNoise struct {
	seed        int64
	octaves     int
	persistence float64 // amplitude factor per octave
	lacunarity  float64 // frequency factor per octave
}

// At returns the normalized octave sum in [0,1]; zero octaves give 0.
func (n valueNoise) At(x, z float64) float64 {
	amplitude, frequency := 1.0, 1.0
	var sum, norm float64
	for i := range n.octaves {
		sum += sampleValue(x*frequency, z*frequency, n.seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= n.persistence
		frequency *= n.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// sampleValue interpolates the four lattice values around (x, z) with a
// quintic fade.
func sampleValue(x, z float64, seed int64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	fx, fz := fade(x-x0), fade(z-z0)
	ix, iz := int64(x0), int64(z0)

	top := lerp(latticeValue(ix, iz, seed), latticeValue(ix+1, iz, seed), fx)
	bottom := lerp(latticeValue(ix, iz+1, seed), latticeValue(ix+1, iz+1, seed), fx)
	return lerp(top, bottom, fz)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// latticeValue maps a lattice point to [0,1]
func latticeValue(x, z, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// hash2 is a splitmix64 finalizer over the packed coordinates.
func hash2(x, z, seed int64) uint64 {
	v := uint64(x) + uint64(z)<<1 + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ v>>30) * 0xBF58476D1CE4E5B9
	v = (v ^ v>>27) * 0x94D049BB133111EB
	return v ^ v>>31
}
