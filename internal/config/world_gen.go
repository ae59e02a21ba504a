package config

import "sync"

// WorldGen holds settings of the demo terrain generator
type WorldGen struct {
	Seed     int64 `yaml:"seed"`
	SeaLevel int   `yaml:"sea_level"`
	Radius   int   `yaml:"radius"` // chunks generated around the origin
	Wraps    int   `yaml:"wraps"`  // block wraps spawned on the surface
}

// DefaultWorldGen returns the built-in generator settings.
func DefaultWorldGen() WorldGen {
	return WorldGen{
		Seed:     1337,
		SeaLevel: 63,
		Radius:   6,
		Wraps:    8,
	}
}

var (
	worldGenMu     sync.RWMutex
	globalWorldGen = DefaultWorldGen()
)

// GetWorldGen returns the current generator settings
func GetWorldGen() WorldGen {
	worldGenMu.RLock()
	defer worldGenMu.RUnlock()
	return globalWorldGen
}

// SetWorldGen sets the generator settings
func SetWorldGen(w WorldGen) {
	worldGenMu.Lock()
	defer worldGenMu.Unlock()
	if w.Radius <= 0 {
		w.Radius = DefaultWorldGen().Radius
	}
	globalWorldGen = w
}

// GetSeaLevel returns the configured sea level
func GetSeaLevel() int {
	worldGenMu.RLock()
	defer worldGenMu.RUnlock()
	return globalWorldGen.SeaLevel
}
