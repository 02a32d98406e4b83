package tiff

import (
	"maps"
	"slices"
)

// TileCoverage records which pixels of each tile have been written since
// the tile was last flushed. The writer uses it to encode a tile as soon
// as it is complete and to find partially written tiles when the
// directory is closed.
//
// Contiguous tiles are tracked per sample, so a tile written one sample
// at a time is complete only when every sample has been written.
type TileCoverage struct {
	info    TileInfo
	samples int
	regions map[int][][]PlaneRegion // tile -> sample -> written regions
}

func newTileCoverage(info TileInfo) *TileCoverage {
	return &TileCoverage{
		info:    info,
		samples: max(info.SamplesPerTile(), 1),
		regions: make(map[int][][]PlaneRegion),
	}
}

// Insert records r as written for every sample of tile. r is clipped to
// the tile.
func (c *TileCoverage) Insert(tile int, r PlaneRegion) {
	for s := range c.samples {
		c.InsertSample(tile, s, r)
	}
}

// InsertSample records r as written for one sample of a contiguous tile.
func (c *TileCoverage) InsertSample(tile, sample int, r PlaneRegion) {
	if sample < 0 || sample >= c.samples {
		return
	}
	r = r.Intersect(c.info.ClippedRegion(tile))
	if r.Empty() {
		return
	}
	per, ok := c.regions[tile]
	if !ok {
		per = make([][]PlaneRegion, c.samples)
		c.regions[tile] = per
	}
	per[sample] = addRegion(per[sample], r)
}

// CoveredArea returns the number of pixels of tile written for every
// sample. For tiles written sample by sample it is the smallest count.
func (c *TileCoverage) CoveredArea(tile int) int {
	per, ok := c.regions[tile]
	if !ok {
		return 0
	}
	area := -1
	for _, rs := range per {
		if a := unionArea(rs); area < 0 || a < area {
			area = a
		}
	}
	return area
}

// Covered reports whether every pixel of tile within the image has been
// written.
func (c *TileCoverage) Covered(tile int) bool {
	if _, ok := c.regions[tile]; !ok {
		return false
	}
	return c.CoveredArea(tile) == c.info.ClippedRegion(tile).Area()
}

// Remove forgets the coverage of tile.
func (c *TileCoverage) Remove(tile int) {
	delete(c.regions, tile)
}

// Pending returns the tiles with recorded coverage, in increasing order.
func (c *TileCoverage) Pending() []int {
	return slices.Sorted(maps.Keys(c.regions))
}
