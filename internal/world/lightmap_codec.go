package world

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() {
	encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if codecErr != nil {
		return
	}
	decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
}

// MarshalCompressed returns the encoded lightmap wrapped in a zstd frame.
func (m *Lightmap) MarshalCompressed() ([]byte, error) {
	codecOnce.Do(initCodec)
	if codecErr != nil {
		return nil, fmt.Errorf("lightmap codec: %w", codecErr)
	}
	return encoder.EncodeAll(m.Encode(), make([]byte, 0, LightmapDataLen/8)), nil
}

// UnmarshalCompressed decodes MarshalCompressed output into m.
func (m *Lightmap) UnmarshalCompressed(data []byte) error {
	codecOnce.Do(initCodec)
	if codecErr != nil {
		return fmt.Errorf("lightmap codec: %w", codecErr)
	}
	raw, err := decoder.DecodeAll(data, make([]byte, 0, LightmapDataLen))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadLightmap, err)
	}
	return m.Decode(raw)
}
