package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Light packs four 4-bit channels: red, green, blue and sun.
type Light uint16

// Light channels.
const (
	ChannelR = 0
	ChannelG = 1
	ChannelB = 2
	ChannelS = 3

	MaxLight = 15
)

// LightmapDataLen is the size of an encoded lightmap: two cells per byte.
const LightmapDataLen = ChunkVol / 2

// ErrBadLightmap is returned when decoding data of the wrong size.
var ErrBadLightmap = errors.New("bad lightmap data")

// Extract returns the value of one channel.
func (l Light) Extract(channel int) uint8 {
	return uint8(l>>(channel<<2)) & 0xF
}

// CombineLight packs four channel values.
func CombineLight(r, g, b, s uint8) Light {
	return Light(r&0xF) | Light(g&0xF)<<4 | Light(b&0xF)<<8 | Light(s&0xF)<<12
}

// Normalized returns the channels scaled to [0, 1].
func (l Light) Normalized() mgl32.Vec4 {
	return mgl32.Vec4{
		float32(l.Extract(ChannelR)) / MaxLight,
		float32(l.Extract(ChannelG)) / MaxLight,
		float32(l.Extract(ChannelB)) / MaxLight,
		float32(l.Extract(ChannelS)) / MaxLight,
	}
}

// Lightmap holds the light of every cell of a chunk.
type Lightmap struct {
	Map [ChunkVol]Light
}

// Get returns the light at chunk-local coordinates.
func (m *Lightmap) Get(x, y, z int) Light {
	return m.Map[VoxelIndex(x, y, z, ChunkW, ChunkD)]
}

// Set stores the light at chunk-local coordinates.
func (m *Lightmap) Set(x, y, z int, l Light) {
	m.Map[VoxelIndex(x, y, z, ChunkW, ChunkD)] = l
}

// Fill sets every cell to l.
func (m *Lightmap) Fill(l Light) {
	for i := range m.Map {
		m.Map[i] = l
	}
}

// Encode packs the sun channel of two cells into each byte.
// Block light is recomputed on load and is not persisted.
func (m *Lightmap) Encode() []byte {
	buf := make([]byte, LightmapDataLen)
	for i := 0; i < ChunkVol; i += 2 {
		buf[i/2] = byte((m.Map[i]>>12)&0xF) | byte((m.Map[i+1]>>8)&0xF0)
	}
	return buf
}

// Decode restores the sun channel from Encode output. Other channels are cleared.
func (m *Lightmap) Decode(src []byte) error {
	if len(src) != LightmapDataLen {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBadLightmap, len(src), LightmapDataLen)
	}
	for i := 0; i < ChunkVol; i += 2 {
		b := src[i/2]
		m.Map[i] = Light(b&0xF) << 12
		m.Map[i+1] = Light(b&0xF0) << 8
	}
	return nil
}
