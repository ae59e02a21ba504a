package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightExtractCombine(t *testing.T) {
	l := CombineLight(1, 2, 3, 15)
	assert.Equal(t, uint8(1), l.Extract(ChannelR))
	assert.Equal(t, uint8(2), l.Extract(ChannelG))
	assert.Equal(t, uint8(3), l.Extract(ChannelB))
	assert.Equal(t, uint8(15), l.Extract(ChannelS))
	assert.InDelta(t, 1.0, l.Normalized()[3], 1e-6)
}

func TestLightmapEncodeKeepsSunOnly(t *testing.T) {
	var src Lightmap
	src.Set(0, 0, 0, CombineLight(5, 5, 5, 12))
	src.Set(1, 0, 0, CombineLight(0, 0, 0, 3))

	data := src.Encode()
	require.Len(t, data, LightmapDataLen)
	assert.Equal(t, byte(0x3C), data[0])

	var dst Lightmap
	require.NoError(t, dst.Decode(data))
	assert.Equal(t, CombineLight(0, 0, 0, 12), dst.Get(0, 0, 0))
	assert.Equal(t, CombineLight(0, 0, 0, 3), dst.Get(1, 0, 0))
}

func TestLightmapDecodeRejectsShortData(t *testing.T) {
	var m Lightmap
	assert.ErrorIs(t, m.Decode(make([]byte, 10)), ErrBadLightmap)
}

func TestLightmapCompressed(t *testing.T) {
	var src Lightmap
	src.Fill(CombineLight(0, 0, 0, 15))
	src.Set(4, 100, 4, CombineLight(0, 0, 0, 2))

	data, err := src.MarshalCompressed()
	require.NoError(t, err)
	assert.Less(t, len(data), LightmapDataLen)

	var dst Lightmap
	require.NoError(t, dst.UnmarshalCompressed(data))
	assert.Equal(t, src.Encode(), dst.Encode())

	assert.ErrorIs(t, dst.UnmarshalCompressed([]byte("garbage")), ErrBadLightmap)
}
