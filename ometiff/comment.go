package ometiff

import (
	"fmt"
	"os"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/internal/binio"
	"github.com/mrjoshuak/go-omefiles/tiff"
)

// placeholderDescription is written as the ImageDescription of the first
// directory of every file and replaced by SaveComment.
const placeholderDescription = "OME-TIFF"

// SaveComment replaces the placeholder ImageDescription of the first
// directory of a closed TIFF file with xml. The text is appended to the
// end of the file and the directory entry is patched in place to point at
// it; nothing else in the file moves.
func SaveComment(path, xml string) error {
	const op = "SaveComment"
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	var mark [2]byte
	if _, err := f.ReadAt(mark[:], 0); err != nil {
		return &omefiles.FormatError{Op: op, Path: path, Msg: "reading header", Err: err}
	}
	order, err := binio.DetectOrder(mark)
	if err != nil {
		return omefiles.Formatf(op, "%s is not a valid TIFF file: Invalid endian header %q", path, mark[:])
	}
	p := binio.NewPatcher(f, order)

	version, err := p.Uint16At(2)
	if err != nil {
		return &omefiles.FormatError{Op: op, Path: path, Msg: "reading version", Err: err}
	}
	var big bool
	switch version {
	case tiff.VersionClassic:
	case tiff.VersionBig:
		big = true
	default:
		return omefiles.Formatf(op, "%s is not a valid TIFF file: Invalid version %d", path, version)
	}
	if big {
		size, err := p.Uint16At(4)
		if err != nil {
			return &omefiles.FormatError{Op: op, Path: path, Msg: "reading offset size", Err: err}
		}
		if size != 4 && size != 8 {
			return omefiles.Formatf(op, "%s uses a nonstandard offset size of %d bytes", path, size)
		}
	}

	linkAt := int64(4)
	if big {
		linkAt = 8
	}
	ifd0, err := p.OffsetAt(linkAt, big)
	if err != nil {
		return &omefiles.FormatError{Op: op, Path: path, Msg: "reading first directory offset", Err: err}
	}

	st, err := f.Stat()
	if err != nil {
		return err
	}
	descAt := st.Size()
	text := make([]byte, len(xml)+1)
	copy(text, xml)
	if _, err := f.WriteAt(text, descAt); err != nil {
		return fmt.Errorf("ometiff: appending description to %s: %w", path, err)
	}

	var entries uint64
	if big {
		entries, err = p.Uint64At(int64(ifd0))
	} else {
		var n uint16
		n, err = p.Uint16At(int64(ifd0))
		entries = uint64(n)
	}
	if err != nil {
		return &omefiles.FormatError{Op: op, Path: path, Msg: "reading directory entry count", Err: err}
	}

	found := false
	for i := range entries {
		at := int64(ifd0) + 2 + int64(i)*12
		if big {
			at = int64(ifd0) + 8 + int64(i)*20
		}
		id, err := p.Uint16At(at)
		if err != nil {
			return &omefiles.FormatError{Op: op, Path: path, Msg: "reading directory entry", Err: err}
		}
		if tiff.TagID(id) != tiff.TagImageDescription.ID {
			continue
		}
		found = true

		typ, err := p.Uint16At(at + 2)
		if err != nil {
			return &omefiles.FormatError{Op: op, Path: path, Msg: "reading directory entry", Err: err}
		}
		if tiff.DataType(typ) != tiff.ASCII {
			return omefiles.Formatf(op, "Invalid TIFF ImageDescription type %d", typ)
		}
		count, err := p.OffsetAt(at+4, big)
		if err != nil {
			return &omefiles.FormatError{Op: op, Path: path, Msg: "reading directory entry", Err: err}
		}
		if count != uint64(len(placeholderDescription)+1) {
			return omefiles.Formatf(op, "TIFF ImageDescription size is incorrect")
		}

		valueAt := at + 8
		if big {
			valueAt = at + 12
		}
		if !big && uint64(descAt) > 1<<32-1 {
			return omefiles.Formatf(op, "%s: description offset %d exceeds classic TIFF limits", path, descAt)
		}
		if err := p.PutOffsetAt(at+4, big, uint64(len(text))); err != nil {
			return fmt.Errorf("ometiff: patching %s: %w", path, err)
		}
		if err := p.PutOffsetAt(valueAt, big, uint64(descAt)); err != nil {
			return fmt.Errorf("ometiff: patching %s: %w", path, err)
		}
	}
	if !found {
		return omefiles.Formatf(op, "Could not find TIFF ImageDescription tag")
	}
	return f.Close()
}
