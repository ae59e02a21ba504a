package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"mini-vox/internal/world"
)

var lightCacheMagic = [4]byte{'M', 'V', 'L', 'C'}

var errStaleLightCache = errors.New("light cache does not match the world")

// lightCacheHeader identifies the world a cache was written for.
type lightCacheHeader struct {
	Magic  [4]byte
	Seed   int64
	Radius int32
	Chunks uint32
}

// saveLightCache writes the compressed sun lightmap of every loaded chunk.
func saveLightCache(path string, seed int64, radius int, area *world.Chunks) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create light cache: %w", err)
	}
	defer f.Close()

	chunks := area.Chunks()
	w := bufio.NewWriter(f)
	hdr := lightCacheHeader{Magic: lightCacheMagic, Seed: seed, Radius: int32(radius), Chunks: uint32(len(chunks))}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	for _, c := range chunks {
		if c == nil {
			if err := binary.Write(w, binary.LittleEndian, uint32(0)); err != nil {
				return err
			}
			continue
		}
		data, err := c.Lightmap.MarshalCompressed()
		if err != nil {
			return fmt.Errorf("chunk %d,%d: %w", c.X, c.Z, err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return w.Flush()
}

// loadLightCache restores chunk lightmaps written by saveLightCache for the
// same seed and radius. Chunks are marked lighted and modified.
func loadLightCache(path string, seed int64, radius int, area *world.Chunks) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var hdr lightCacheHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("read light cache header: %w", err)
	}
	chunks := area.Chunks()
	if hdr.Magic != lightCacheMagic || hdr.Seed != seed || int(hdr.Radius) != radius || int(hdr.Chunks) != len(chunks) {
		return errStaleLightCache
	}

	var buf []byte
	for _, c := range chunks {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("read light cache: %w", err)
		}
		if n == 0 || c == nil {
			if _, err := r.Discard(int(n)); err != nil {
				return err
			}
			continue
		}
		if cap(buf) < int(n) {
			buf = make([]byte, n)
		}
		buf = buf[:n]
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read light cache: %w", err)
		}
		if err := c.Lightmap.UnmarshalCompressed(buf); err != nil {
			return fmt.Errorf("chunk %d,%d: %w", c.X, c.Z, err)
		}
		c.Flags.Lighted = true
		c.Flags.Modified = true
	}
	return nil
}
