// Package tiff reads and writes TIFF and BigTIFF image file directories.
//
// A file is opened with Open, which reads the whole directory chain, or
// created with Create, which appends directories as they are written.
// Tags are read and written through typed descriptors:
//
//	w, err := tiff.GetField(ifd, tiff.TagImageWidth).Get()
//
// Pixel data is read and written by region through pixel.Variant buffers,
// with strip or tile splitting, sample interleaving, predictors and
// compression handled by the IFD.
//
// A TIFF is not safe for concurrent use.
package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/compression"
	"github.com/mrjoshuak/go-omefiles/internal/binio"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

// Header versions.
const (
	VersionClassic = 0x2A
	VersionBig     = 0x2B
)

// ErrClosed is returned by operations on a closed file.
var ErrClosed = errors.New("tiff: file already closed")

// Options configures Create.
type Options struct {
	// BigTIFF selects 8-byte offsets.
	BigTIFF bool
	// ByteOrder of the file. Nil means little endian.
	ByteOrder binary.ByteOrder
	// Codec configures the compression codecs used for writing.
	Codec compression.Options
}

// DefaultOptions returns options for a little-endian classic TIFF.
func DefaultOptions() Options {
	return Options{
		ByteOrder: binary.LittleEndian,
		Codec:     compression.DefaultOptions(),
	}
}

// TIFF is an open TIFF or BigTIFF file.
type TIFF struct {
	path  string
	f     *os.File
	order binary.ByteOrder
	big   bool
	write bool
	codec compression.Options
	patch *binio.Patcher

	dirs    []*IFD
	current *IFD

	size int64 // file size when reading
	link int64 // position of the pointer to the next directory
	end  int64 // append position
}

// Open opens path for reading and loads every directory.
func Open(path string) (*TIFF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	t := &TIFF{path: path, f: f, codec: compression.DefaultOptions()}
	if err := t.load(); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// Create creates path, truncating any existing file, and writes a TIFF
// header with no directories.
func Create(path string, opts Options) (*TIFF, error) {
	order := opts.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	order = pixel.EndianOf(order).ByteOrder()
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	t := &TIFF{
		path:  path,
		f:     f,
		order: order,
		big:   opts.BigTIFF,
		write: true,
		codec: opts.Codec,
		patch: binio.NewPatcher(f, order),
	}

	w := binio.NewBufferWriter(16, order)
	mark := binio.Mark(order)
	w.WriteBytes(mark[:])
	if t.big {
		w.WriteUint16(VersionBig)
		w.WriteUint16(8)
		w.WriteUint16(0)
		t.link = 8
	} else {
		w.WriteUint16(VersionClassic)
		t.link = 4
	}
	w.WriteOffset(t.big, 0)
	if _, err := f.WriteAt(w.Bytes(), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("tiff: writing header of %s: %w", path, err)
	}
	t.end = int64(w.Len())
	return t, nil
}

// readHeader parses the file header and returns the first IFD offset.
func (t *TIFF) readHeader() (uint64, error) {
	var hdr [16]byte
	n, err := t.f.ReadAt(hdr[:], 0)
	if n < 8 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, &omefiles.FormatError{Op: "Open", Path: t.path, Msg: "short header", Err: err}
	}
	order, err := binio.DetectOrder([2]byte{hdr[0], hdr[1]})
	if err != nil {
		return 0, &omefiles.FormatError{Op: "Open", Path: t.path, Msg: "not a TIFF file", Err: err}
	}
	t.order = order
	switch v := order.Uint16(hdr[2:]); v {
	case VersionClassic:
		return uint64(order.Uint32(hdr[4:])), nil
	case VersionBig:
		if n < 16 {
			return 0, &omefiles.FormatError{Op: "Open", Path: t.path, Msg: "short BigTIFF header", Err: io.ErrUnexpectedEOF}
		}
		if size := order.Uint16(hdr[4:]); size != 8 {
			return 0, omefiles.Formatf("Open", "%s: unsupported BigTIFF offset size %d", t.path, size)
		}
		t.big = true
		return order.Uint64(hdr[8:]), nil
	default:
		return 0, omefiles.Formatf("Open", "%s: invalid TIFF version 0x%X", t.path, v)
	}
}

func (t *TIFF) load() error {
	st, err := t.f.Stat()
	if err != nil {
		return err
	}
	t.size = st.Size()

	off, err := t.readHeader()
	if err != nil {
		return err
	}
	seen := make(map[uint64]bool)
	for off != 0 {
		if seen[off] {
			return omefiles.Formatf("Open", "%s: directory loop at offset %d", t.path, off)
		}
		seen[off] = true
		ifd, next, err := t.readIFD(off)
		if err != nil {
			return err
		}
		t.dirs = append(t.dirs, ifd)
		off = next
	}
	return nil
}

func (t *TIFF) readAt(off uint64, n int) ([]byte, error) {
	if off > uint64(t.size) || uint64(n) > uint64(t.size)-off {
		return nil, &omefiles.FormatError{Op: "Open", Path: t.path, Msg: fmt.Sprintf("%d bytes at offset %d past end of file", n, off), Err: io.ErrUnexpectedEOF}
	}
	buf := make([]byte, n)
	if _, err := t.f.ReadAt(buf, int64(off)); err != nil {
		return nil, fmt.Errorf("tiff: reading %s: %w", t.path, err)
	}
	return buf, nil
}

// entryLayout returns the sizes of the entry count, one entry and the
// inline value field.
func (t *TIFF) entryLayout() (countSize, entrySize, fieldSize int) {
	if t.big {
		return 8, 20, 8
	}
	return 2, 12, 4
}

func (t *TIFF) readIFD(off uint64) (*IFD, uint64, error) {
	countSize, entrySize, fieldSize := t.entryLayout()
	b, err := t.readAt(off, countSize)
	if err != nil {
		return nil, 0, err
	}
	var count uint64
	if t.big {
		count = t.order.Uint64(b)
	} else {
		count = uint64(t.order.Uint16(b))
	}
	if count > uint64(t.size)/uint64(entrySize) {
		return nil, 0, omefiles.Formatf("Open", "%s: directory at %d has %d entries", t.path, off, count)
	}
	b, err = t.readAt(off+uint64(countSize), int(count)*entrySize+fieldSize)
	if err != nil {
		return nil, 0, err
	}

	ifd := newIFD(t, len(t.dirs))
	ifd.offset = off
	r := binio.NewReader(b, t.order)
	for i := uint64(0); i < count; i++ {
		id, _ := r.ReadUint16()
		typ, _ := r.ReadUint16()
		n, _ := r.ReadOffset(t.big)
		field, _ := r.ReadBytes(fieldSize)

		e := &entry{typ: DataType(typ), count: n}
		size := e.typ.Size()
		if size == 0 {
			continue // unknown type; skip as readers are required to
		}
		if n > uint64(t.size)/uint64(size) {
			return nil, 0, omefiles.Formatf("Open", "%s: tag %s has invalid count %d", t.path, TagID(id), n)
		}
		total := int(n) * size
		if total <= fieldSize {
			e.data = append([]byte(nil), field[:total]...)
		} else {
			voff := binio.NewReader(field, t.order)
			at, _ := voff.ReadOffset(t.big)
			if e.data, err = t.readAt(at, total); err != nil {
				return nil, 0, err
			}
		}
		ifd.entries[TagID(id)] = e
	}
	next, err := r.ReadOffset(t.big)
	if err != nil {
		return nil, 0, &omefiles.FormatError{Op: "Open", Path: t.path, Msg: "truncated directory", Err: err}
	}

	if GetField(ifd, TagTileWidth).IsSet() {
		ifd.tileType = Tile
	}
	return ifd, next, nil
}

// Path returns the file name passed to Open or Create.
func (t *TIFF) Path() string { return t.path }

// IsBigTIFF reports whether the file uses 8-byte offsets.
func (t *TIFF) IsBigTIFF() bool { return t.big }

// ByteOrder returns the byte order of the file.
func (t *TIFF) ByteOrder() binary.ByteOrder { return t.order }

// DirectoryCount returns the number of directories read or written.
func (t *TIFF) DirectoryCount() int { return len(t.dirs) }

// Directory returns directory i.
func (t *TIFF) Directory(i int) (*IFD, error) {
	if i < 0 || i >= len(t.dirs) {
		return nil, omefiles.Logicf("Directory", "%s: directory %d out of range [0, %d)", t.path, i, len(t.dirs))
	}
	return t.dirs[i], nil
}

// Directories returns every directory in file order.
func (t *TIFF) Directories() []*IFD { return t.dirs }

// CurrentDirectory returns the directory being written, creating it if
// needed. Only files opened with Create have one.
func (t *TIFF) CurrentDirectory() (*IFD, error) {
	if !t.write {
		return nil, omefiles.Logicf("CurrentDirectory", "%s: file is open for reading", t.path)
	}
	if t.f == nil {
		return nil, ErrClosed
	}
	if t.current == nil {
		t.current = newIFD(t, len(t.dirs))
	}
	return t.current, nil
}

// WriteCurrentDirectory flushes the pixel data and tags of the current
// directory and links it into the chain. The next call to
// CurrentDirectory starts a new directory.
func (t *TIFF) WriteCurrentDirectory() error {
	ifd, err := t.CurrentDirectory()
	if err != nil {
		return err
	}
	if err := ifd.flush(); err != nil {
		return err
	}
	t.dirs = append(t.dirs, ifd)
	t.current = nil
	return nil
}

// Close writes the current directory, if pixel data has been written to
// it, and closes the file.
func (t *TIFF) Close() error {
	if t.f == nil {
		return nil
	}
	var err error
	if t.write && t.current != nil && t.current.hasData() {
		err = t.WriteCurrentDirectory()
	}
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	t.f = nil
	return err
}

// append writes b at the end of the file on a word boundary and returns
// its offset.
func (t *TIFF) append(b []byte) (uint64, error) {
	if t.f == nil {
		return 0, ErrClosed
	}
	t.end += t.end & 1
	off := t.end
	if !t.big && uint64(off)+uint64(len(b)) > 1<<32-1 {
		return 0, omefiles.Formatf("Write", "%s: data exceeds the 4 GiB limit of classic TIFF", t.path)
	}
	if _, err := t.f.WriteAt(b, off); err != nil {
		return 0, fmt.Errorf("tiff: writing %s: %w", t.path, err)
	}
	t.end += int64(len(b))
	return uint64(off), nil
}
