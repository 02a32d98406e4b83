package tiff

import "github.com/mrjoshuak/go-omefiles"

// TileInfo describes how an image is split into strips or tiles. Strips
// are treated as tiles spanning the full image width.
type TileInfo struct {
	TileType        TileType
	ImageWidth      int
	ImageHeight     int
	TileWidth       int
	TileHeight      int
	TileColumnCount int
	TileRowCount    int
	TileCount       int
	Samples         int // samples per pixel
	PlanarConfig    PlanarConfig
	BitsPerSample   int

	// BufferSize is the size of one uncompressed tile in bytes.
	BufferSize int
}

// TileInfo derives the tiling of ifd. It fails when the image or tile
// extents are missing or zero, or when tile extents are not multiples
// of 16.
func (ifd *IFD) TileInfo() (TileInfo, error) {
	var ti TileInfo
	w, err := ifd.ImageWidth()
	if err != nil {
		return ti, err
	}
	h, err := ifd.ImageHeight()
	if err != nil {
		return ti, err
	}
	if w == 0 || h == 0 {
		return ti, omefiles.Formatf("TileInfo", "invalid image size %dx%d", w, h)
	}
	ti.TileType = ifd.TileType()
	tw, err := ifd.TileWidth()
	if err != nil {
		return ti, err
	}
	th, err := ifd.TileHeight()
	if err != nil {
		return ti, err
	}
	if tw == 0 || th == 0 {
		return ti, omefiles.Formatf("TileInfo", "invalid %s size %dx%d", ti.TileType, tw, th)
	}
	if ti.TileType == Tile && (tw%16 != 0 || th%16 != 0) {
		return ti, omefiles.Formatf("TileInfo", "tile size %dx%d is not a multiple of 16", tw, th)
	}
	spp, err := ifd.SamplesPerPixel()
	if err != nil {
		return ti, err
	}
	bps, err := ifd.BitsPerSample()
	if err != nil {
		return ti, err
	}
	pc, err := ifd.PlanarConfiguration()
	if err != nil {
		return ti, err
	}

	ti.ImageWidth, ti.ImageHeight = int(w), int(h)
	ti.TileWidth, ti.TileHeight = int(tw), int(th)
	ti.Samples = int(spp)
	ti.BitsPerSample = int(bps)
	ti.PlanarConfig = pc
	ti.TileColumnCount = (ti.ImageWidth + ti.TileWidth - 1) / ti.TileWidth
	ti.TileRowCount = (ti.ImageHeight + ti.TileHeight - 1) / ti.TileHeight
	ti.TileCount = ti.TileColumnCount * ti.TileRowCount
	if pc == Separate {
		ti.TileCount *= ti.Samples
	}
	ti.BufferSize = ti.RowBytes() * ti.TileHeight
	return ti, nil
}

// SamplesPerTile returns the number of samples stored per pixel in each
// tile: all of them for Contig, one for Separate.
func (ti TileInfo) SamplesPerTile() int {
	if ti.PlanarConfig == Separate {
		return 1
	}
	return ti.Samples
}

// RowBytes returns the size of one tile row in bytes.
func (ti TileInfo) RowBytes() int {
	return (ti.TileWidth*ti.SamplesPerTile()*ti.BitsPerSample + 7) / 8
}

// TileIndex returns the tile holding pixel (x, y) of sample.
func (ti TileInfo) TileIndex(x, y, sample int) int {
	idx := (y/ti.TileHeight)*ti.TileColumnCount + x/ti.TileWidth
	if ti.PlanarConfig == Separate {
		idx += sample * ti.TileColumnCount * ti.TileRowCount
	}
	return idx
}

// TileSample returns the sample stored in tile, which is always 0 for
// Contig images.
func (ti TileInfo) TileSample(tile int) int {
	if ti.PlanarConfig != Separate {
		return 0
	}
	return tile / (ti.TileColumnCount * ti.TileRowCount)
}

// TileRegion returns the full extent of tile, which may reach past the
// image edge.
func (ti TileInfo) TileRegion(tile int) PlaneRegion {
	i := tile % (ti.TileColumnCount * ti.TileRowCount)
	col, row := i%ti.TileColumnCount, i/ti.TileColumnCount
	return PlaneRegion{X: col * ti.TileWidth, Y: row * ti.TileHeight, W: ti.TileWidth, H: ti.TileHeight}
}

// ClippedRegion returns the part of tile inside the image.
func (ti TileInfo) ClippedRegion(tile int) PlaneRegion {
	return ti.TileRegion(tile).Intersect(PlaneRegion{W: ti.ImageWidth, H: ti.ImageHeight})
}

// StoredRows returns the number of rows stored for tile. Tiles always
// store TileHeight rows; the last strip stores only the rows left in the
// image.
func (ti TileInfo) StoredRows(tile int) int {
	if ti.TileType == Tile {
		return ti.TileHeight
	}
	return ti.ClippedRegion(tile).H
}

// TileCoverage returns the tiles of sample that intersect r, in
// increasing order. Contig images ignore sample.
func (ti TileInfo) TileCoverage(r PlaneRegion, sample int) []int {
	r = r.Intersect(PlaneRegion{W: ti.ImageWidth, H: ti.ImageHeight})
	if r.Empty() {
		return nil
	}
	c0, c1 := r.X/ti.TileWidth, (r.X+r.W-1)/ti.TileWidth
	r0, r1 := r.Y/ti.TileHeight, (r.Y+r.H-1)/ti.TileHeight
	tiles := make([]int, 0, (c1-c0+1)*(r1-r0+1))
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			tiles = append(tiles, ti.TileIndex(col*ti.TileWidth, row*ti.TileHeight, sample))
		}
	}
	return tiles
}
