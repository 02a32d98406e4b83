package tiff

import (
	"bytes"
	"slices"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/internal/binio"
	"github.com/mrjoshuak/go-omefiles/internal/bufpool"
)

func sortTags(ids []TagID) { slices.Sort(ids) }

// hasData reports whether pixel data has been written to ifd.
func (ifd *IFD) hasData() bool {
	return len(ifd.pending) > 0 || slices.ContainsFunc(ifd.counts, func(c uint64) bool { return c != 0 })
}

// flush writes the remaining tiles and the directory itself. Tiles that
// were never written are stored as zeros.
func (ifd *IFD) flush() error {
	if ifd.written {
		return omefiles.Logicf("WriteDirectory", "directory %d already written", ifd.index)
	}
	if GetField(ifd, TagImageWidth).IsSet() {
		if err := ifd.flushTiles(); err != nil {
			return err
		}
	}
	if err := ifd.writeDirectory(); err != nil {
		return err
	}
	ifd.written = true
	ifd.coverage = nil
	return nil
}

func (ifd *IFD) flushTiles() error {
	ti, err := ifd.TileInfo()
	if err != nil {
		return err
	}
	pt, err := ifd.PixelType()
	if err != nil {
		return err
	}
	tc, err := ifd.newTileCodec("WriteDirectory", ti, pt)
	if err != nil {
		return err
	}
	ifd.prepareWrite(ti)
	for tile := range ti.TileCount {
		if ifd.counts[tile] != 0 {
			continue
		}
		if _, ok := ifd.pending[tile]; !ok {
			ifd.pending[tile] = bufpool.GetZeroed(tc.nativeSize())
		}
		if err := ifd.writeTile(tc, tile); err != nil {
			return err
		}
	}

	if !GetField(ifd, TagPhotometricInterpretation).IsSet() {
		p := PhotometricMinIsBlack
		if ti.Samples == 3 || ti.Samples == 4 {
			p = PhotometricRGB
		}
		if err := GetField(ifd, TagPhotometricInterpretation).Set(p); err != nil {
			return err
		}
	}
	if !GetField(ifd, TagCompression).IsSet() {
		GetField(ifd, TagCompression).Set(CompressionNone)
	}
	if ti.TileType == Tile {
		GetField(ifd, TagTileOffsets).Set(ifd.offsets)
		GetField(ifd, TagTileByteCounts).Set(ifd.counts)
		return nil
	}
	GetField(ifd, TagRowsPerStrip).Set(uint32(ti.TileHeight))
	GetField(ifd, TagStripOffsets).Set(ifd.offsets)
	GetField(ifd, TagStripByteCounts).Set(ifd.counts)
	return nil
}

// writeDirectory appends the out-of-line values and the entry table,
// then links the directory from the previous one.
func (ifd *IFD) writeDirectory() error {
	t := ifd.tiff
	order := ifd.order()
	countSize, entrySize, fieldSize := t.entryLayout()
	spp, _ := ifd.SamplesPerPixel()

	ids := ifd.Tags()
	entries := make([]*entry, len(ids))
	for i, id := range ids {
		e := ifd.entries[id]
		if perSampleTags[id] && e.count == 1 && spp > 1 {
			e = &entry{typ: e.typ, count: uint64(spp), data: bytes.Repeat(e.data, int(spp))}
		}
		entries[i] = e
	}

	// Values too large for the entry are stored before the directory.
	base := t.end + t.end&1
	var values []byte
	valueOffsets := make([]uint64, len(entries))
	for i, e := range entries {
		if len(e.data) <= fieldSize {
			continue
		}
		valueOffsets[i] = uint64(base) + uint64(len(values))
		values = append(values, e.data...)
		if len(values)&1 == 1 {
			values = append(values, 0)
		}
	}

	dirOff := uint64(base) + uint64(len(values))
	w := binio.NewBufferWriter(len(values)+countSize+len(entries)*entrySize+fieldSize, order)
	w.WriteBytes(values)
	if t.big {
		w.WriteUint64(uint64(len(entries)))
	} else {
		w.WriteUint16(uint16(len(entries)))
	}
	for i, e := range entries {
		w.WriteUint16(uint16(ids[i]))
		w.WriteUint16(uint16(e.typ))
		w.WriteOffset(t.big, e.count)
		if len(e.data) > fieldSize {
			w.WriteOffset(t.big, valueOffsets[i])
			continue
		}
		w.WriteBytes(e.data)
		w.WriteBytes(make([]byte, fieldSize-len(e.data)))
	}
	w.WriteOffset(t.big, 0)

	if _, err := t.append(w.Bytes()); err != nil {
		return err
	}
	if err := t.patch.PutOffsetAt(t.link, t.big, dirOff); err != nil {
		return err
	}
	t.link = int64(dirOff) + int64(countSize) + int64(len(entries)*entrySize)
	ifd.offset = dirOff
	return nil
}
