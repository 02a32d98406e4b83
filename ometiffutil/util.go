// Package ometiffutil provides higher-level operations on OME-TIFF
// datasets: summaries, validation, comparison and recompression.
//
// Example usage:
//
//	info, _ := ometiffutil.GetFileInfo("cells.ome.tif")
//	fmt.Printf("%d series in %s\n", len(info.Series), info.HumanSize)
//
//	res, _ := ometiffutil.ValidateFile("cells.ome.tif")
package ometiffutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/meta"
	"github.com/mrjoshuak/go-omefiles/ometiff"
	"github.com/mrjoshuak/go-omefiles/omexml"
	"github.com/mrjoshuak/go-omefiles/pixel"
	"github.com/mrjoshuak/go-omefiles/tiff"
)

// ===========================================
// File Information
// ===========================================

// SeriesInfo summarizes one image series.
type SeriesInfo struct {
	Name           string
	SizeX, SizeY   int
	SizeZ, SizeC   int
	SizeT          int
	ImageCount     int
	PixelType      pixel.Type
	DimensionOrder dimension.Order
	RGB            bool
	Interleaved    bool
	PlaneBytes     uint64
}

// FileInfo provides a summary of an OME-TIFF dataset.
type FileInfo struct {
	Path        string
	FileSize    int64
	HumanSize   string
	BigTIFF     bool
	Directories int
	Compression tiff.Compression
	IsTiled     bool
	UUID        string
	Series      []SeriesInfo
	UsedFiles   []string
}

// PixelBytes is the size of the pixel data of every series, unpadded and
// uncompressed.
func (fi *FileInfo) PixelBytes() uint64 {
	var n uint64
	for _, s := range fi.Series {
		n += s.PlaneBytes * uint64(s.ImageCount)
	}
	return n
}

// String renders the summary the way the ometiffcheck tool prints it.
func (fi *FileInfo) String() string {
	kind := "TIFF"
	if fi.BigTIFF {
		kind = "BigTIFF"
	}
	layout := "strips"
	if fi.IsTiled {
		layout = "tiles"
	}
	s := fmt.Sprintf("%s: %s, %s, %d directories in %s, compression %v, %d file(s)\n",
		fi.Path, fi.HumanSize, kind, fi.Directories, layout, fi.Compression, len(fi.UsedFiles))
	for i, si := range fi.Series {
		s += fmt.Sprintf("  series %d %q: %dx%d Z=%d C=%d T=%d %s %s, %s per plane\n",
			i, si.Name, si.SizeX, si.SizeY, si.SizeZ, si.SizeC, si.SizeT,
			si.PixelType, si.DimensionOrder, humanize.IBytes(si.PlaneBytes))
	}
	return s
}

func seriesInfo(name string, c *meta.CoreMetadata) SeriesInfo {
	return SeriesInfo{
		Name:           name,
		SizeX:          c.SizeX,
		SizeY:          c.SizeY,
		SizeZ:          c.SizeZ,
		SizeC:          c.SizeC,
		SizeT:          c.SizeT,
		ImageCount:     c.ImageCount,
		PixelType:      c.PixelType,
		DimensionOrder: c.DimensionOrder,
		RGB:            c.RGB,
		Interleaved:    c.Interleaved,
		PlaneBytes:     uint64(c.SizeX) * uint64(c.SizeY) * uint64(c.RGBChannelCount()) * uint64(c.PixelType.BytesPerPixel()),
	}
}

// GetFileInfo returns summary information about an OME-TIFF file.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	f, err := tiff.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info := &FileInfo{
		Path:        path,
		FileSize:    stat.Size(),
		HumanSize:   humanize.IBytes(uint64(stat.Size())),
		BigTIFF:     f.IsBigTIFF(),
		Directories: f.DirectoryCount(),
	}
	if ifd, err := f.Directory(0); err == nil {
		info.IsTiled = ifd.TileType() == tiff.Tile
		if c, err := ifd.Compression(); err == nil {
			info.Compression = c
		}
	}

	r, err := ometiff.OpenWithLogger(path, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	info.UUID = r.Metadata().Root.UUID
	info.UsedFiles = r.UsedFiles()
	for s := range r.SeriesCount() {
		c, err := r.CoreMetadata(s)
		if err != nil {
			return nil, err
		}
		info.Series = append(info.Series, seriesInfo(r.Metadata().Root.Images[s].Name, c))
	}
	return info, nil
}

// ===========================================
// Validation
// ===========================================

// ValidationResult contains the results of file validation.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// ValidateFile opens an OME-TIFF dataset, checks its metadata against
// the TIFF directories and decodes every plane. Problems the reader
// tolerates are reported as warnings.
func ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}
	fail := func(format string, args ...any) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	stat, err := os.Stat(path)
	if err != nil {
		fail("cannot access file: %v", err)
		return result, nil
	}
	if stat.Size() < 8 {
		fail("file too small to be valid TIFF")
		return result, nil
	}
	if !ometiff.HasSuffix(path) {
		result.Warnings = append(result.Warnings, "file name does not end with an OME-TIFF suffix")
	}

	warnings := &collector{}
	r, err := ometiff.OpenWithLogger(path, slog.New(warnings))
	if err != nil {
		fail("cannot open file: %v", err)
		return result, nil
	}
	defer r.Close()

	if r.SeriesCount() == 0 {
		fail("no image series with planes")
	}
	md := r.Metadata()
	if !md.ValidateModel(false) {
		result.Warnings = append(result.Warnings, "SizeC does not match the channel samples per pixel")
	}

	var buf pixel.Variant
	for s := range r.SeriesCount() {
		c, err := r.CoreMetadata(s)
		if err != nil {
			fail("series %d: %v", s, err)
			continue
		}
		if err := c.Validate(); err != nil {
			fail("series %d: %v", s, err)
		}
		if c.SizeX > 65535 || c.SizeY > 65535 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("series %d: very large plane %dx%d", s, c.SizeX, c.SizeY))
		}
		for p := range c.ImageCount {
			if err := r.ReadPlane(s, p, &buf); err != nil {
				fail("series %d plane %d: %v", s, p, err)
			}
		}
	}
	result.Warnings = append(result.Warnings, warnings.messages()...)
	return result, nil
}

// collector is a slog.Handler that keeps warning messages.
type collector struct {
	mu   sync.Mutex
	msgs []string
}

func (h *collector) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelWarn }

func (h *collector) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, r.Message)
	return nil
}

func (h *collector) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *collector) WithGroup(string) slog.Handler      { return h }

func (h *collector) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.msgs)
}

// ===========================================
// Comparison
// ===========================================

// CompareOptions configures file comparison behavior.
type CompareOptions struct {
	IgnoreMetadata bool // compare geometry and pixels only
}

// CompareFiles checks whether two OME-TIFF datasets hold the same images.
// It returns true when they match, along with any differences found.
func CompareFiles(path1, path2 string, opts CompareOptions) (bool, []string, error) {
	r1, err := ometiff.OpenWithLogger(path1, slog.New(slog.DiscardHandler))
	if err != nil {
		return false, nil, fmt.Errorf("cannot open %s: %w", path1, err)
	}
	defer r1.Close()
	r2, err := ometiff.OpenWithLogger(path2, slog.New(slog.DiscardHandler))
	if err != nil {
		return false, nil, fmt.Errorf("cannot open %s: %w", path2, err)
	}
	defer r2.Close()

	var diffs []string
	if r1.SeriesCount() != r2.SeriesCount() {
		diffs = append(diffs, fmt.Sprintf("series count differs: %d vs %d", r1.SeriesCount(), r2.SeriesCount()))
		return false, diffs, nil
	}

	var b1, b2 pixel.Variant
	for s := range r1.SeriesCount() {
		c1, err := r1.CoreMetadata(s)
		if err != nil {
			return false, nil, err
		}
		c2, err := r2.CoreMetadata(s)
		if err != nil {
			return false, nil, err
		}
		i1, i2 := seriesInfo("", c1), seriesInfo("", c2)
		i1.Interleaved, i2.Interleaved = false, false
		if i1 != i2 {
			diffs = append(diffs, fmt.Sprintf("series %d: geometry differs: %+v vs %+v", s, i1, i2))
			continue
		}
		if !opts.IgnoreMetadata {
			n1 := r1.Metadata().Root.Images[s].Name
			n2 := r2.Metadata().Root.Images[s].Name
			if n1 != n2 {
				diffs = append(diffs, fmt.Sprintf("series %d: name differs: %q vs %q", s, n1, n2))
			}
		}

		differ := 0
		for p := range c1.ImageCount {
			if err := r1.ReadPlane(s, p, &b1); err != nil {
				return false, nil, fmt.Errorf("reading series %d plane %d from %s: %w", s, p, path1, err)
			}
			if err := r2.ReadPlane(s, p, &b2); err != nil {
				return false, nil, fmt.Errorf("reading series %d plane %d from %s: %w", s, p, path2, err)
			}
			if !b1.Equal(&b2) {
				differ++
			}
		}
		if differ > 0 {
			diffs = append(diffs, fmt.Sprintf("series %d: %d of %d planes differ", s, differ, c1.ImageCount))
		}
	}
	return len(diffs) == 0, diffs, nil
}

// ===========================================
// Conversion Utilities
// ===========================================

// Convert rewrites the dataset at input into a single file at output
// using opts, keeping the OME metadata apart from the plane locations.
func Convert(input, output string, opts ometiff.WriterOptions) error {
	r, err := ometiff.OpenWithLogger(input, opts.Logger)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	defer r.Close()

	md, err := CopyMetadata(r.Metadata())
	if err != nil {
		return err
	}
	// Series the reader skipped have no planes to carry over.
	if len(md.Root.Images) != r.SeriesCount() {
		return fmt.Errorf("ometiffutil: %s has %d images but %d readable series", input, len(md.Root.Images), r.SeriesCount())
	}

	w := ometiff.NewWriter(md, opts)
	if err := w.SetID(output); err != nil {
		return err
	}
	var buf pixel.Variant
	for s := range r.SeriesCount() {
		if err := w.SetSeries(s); err != nil {
			w.Close()
			return err
		}
		c, err := r.CoreMetadata(s)
		if err != nil {
			w.Close()
			return err
		}
		for p := range c.ImageCount {
			if err := r.ReadPlane(s, p, &buf); err != nil {
				w.Close()
				return err
			}
			if err := w.SaveBytes(p, &buf); err != nil {
				w.Close()
				return err
			}
		}
	}
	return w.Close()
}

// CopyMetadata returns a deep copy of md without plane locations or
// inline pixel data, ready to describe a new file.
func CopyMetadata(md *omexml.Metadata) (*omexml.Metadata, error) {
	xml, err := md.XML()
	if err != nil {
		return nil, err
	}
	out, err := omexml.ParseString(xml)
	if err != nil {
		return nil, err
	}
	out.Root.UUID = ""
	out.Root.BinaryOnly = nil
	for i := range out.Root.Images {
		out.Root.Images[i].Pixels.TiffData = nil
	}
	out.RemoveBinData()
	return out, nil
}
