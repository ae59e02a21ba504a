package world

// ComputeSkyLight fills the chunk's sun channel top-down: full sun until the
// first block that does not let light through, dimming by one per
// light-passing block below it. Block light channels are left untouched.
// The chunk is flagged lighted and modified afterwards.
func ComputeSkyLight(c *Chunk, passing func(BlockID) bool) {
	if passing == nil {
		passing = func(id BlockID) bool { return id == BlockAir }
	}
	for lx := range ChunkW {
		for lz := range ChunkD {
			sun := uint8(MaxLight)
			for y := ChunkH - 1; y >= 0; y-- {
				idx := VoxelIndex(lx, y, lz, ChunkW, ChunkD)
				id := c.Voxels[idx].ID
				if !passing(id) {
					sun = 0
				} else if id != BlockAir && sun > 0 {
					sun--
				}
				l := c.Lightmap.Map[idx]
				c.Lightmap.Map[idx] = CombineLight(l.Extract(ChannelR), l.Extract(ChannelG), l.Extract(ChannelB), sun)
			}
		}
	}
	c.Flags.Lighted = true
	c.Flags.Modified = true
}
