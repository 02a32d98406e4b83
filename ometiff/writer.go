// Package ometiff writes and reads OME-TIFF datasets: multi-dimensional
// image series stored as TIFF directories, one per plane, described by
// OME-XML embedded in the ImageDescription of each file.
//
// A dataset may span several files. The Writer records which file and
// directory every plane went to and, on Close, writes into each file the
// full model with TiffData elements cross-referencing all of them by
// UUID.
package ometiff

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/twinj/uuid"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/meta"
	"github.com/mrjoshuak/go-omefiles/pixel"
	"github.com/mrjoshuak/go-omefiles/tiff"
)

// Suffixes lists the file name suffixes of OME-TIFF files. The last three
// denote BigTIFF.
var Suffixes = []string{".ome.tif", ".ome.tiff", ".ome.tf2", ".ome.tf8", ".ome.btf"}

// HasSuffix reports whether path ends with one of Suffixes, ignoring case.
func HasSuffix(path string) bool {
	lower := strings.ToLower(path)
	return slices.ContainsFunc(Suffixes, func(s string) bool { return strings.HasSuffix(lower, s) })
}

type planeStatus uint8

const (
	planeAbsent planeStatus = iota
	planePresent
)

type planeState struct {
	file    string
	ifd     int
	certain bool
	status  planeStatus
}

type fileState struct {
	uuid     string // "urn:uuid:" form
	tiff     *tiff.TIFF
	ifdCount int
	pending  bool // the current directory holds pixel data
}

// Cursor is the series and plane the next write goes to.
type Cursor struct {
	Series, Plane int
}

// Writer writes the series described by a Metadata to one or more
// OME-TIFF files.
//
// Series and planes are written in order: SetSeries and SetPlane accept
// the current index or the next one only. Every plane must be written
// before Close.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	md      Metadata
	opts    WriterOptions
	bigTIFF *bool

	baseDir string
	current string
	files   map[string]*fileState
	opened  []string // canonical paths in creation order
	planes  [][]planeState
	started bool
	big     bool
	cursor  Cursor
}

// NewWriter returns a Writer for the series described by md. No file is
// created until SetID.
func NewWriter(md Metadata, opts WriterOptions) *Writer {
	return &Writer{
		md:      md,
		opts:    opts,
		bigTIFF: opts.BigTIFF,
		files:   make(map[string]*fileState),
	}
}

// SetBigTIFF overrides the BigTIFF decision for files not yet created.
// Nil restores automatic selection.
func (w *Writer) SetBigTIFF(big *bool) { w.bigTIFF = big }

// BigTIFF returns the BigTIFF override.
func (w *Writer) BigTIFF() *bool { return w.bigTIFF }

// Cursor returns the current series and plane.
func (w *Writer) Cursor() Cursor { return w.cursor }

// canonicalPath resolves path to an absolute path with the symbolic
// links of its directory evaluated. The file itself need not exist.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return abs
	}
	return filepath.Join(dir, filepath.Base(abs))
}

// SetID directs subsequent writes to path, creating the file on first
// use. Returning to a file already created continues it.
func (w *Writer) SetID(path string) error {
	canonical := canonicalPath(path)
	if w.current == canonical {
		return nil
	}

	if !w.started {
		w.baseDir = filepath.Dir(canonical)
		w.validateModel()
		if err := w.initPlanes(); err != nil {
			return err
		}
		w.big = tiff.EnableBigTIFF(w.bigTIFF, w.significantPixelSize(), canonical, w.opts.logger())
		w.started = true
	}

	if w.current != "" {
		if err := w.nextIFD(); err != nil {
			return err
		}
	}

	if _, ok := w.files[canonical]; !ok {
		t, err := tiff.Create(canonical, tiff.Options{
			BigTIFF:   w.big,
			ByteOrder: w.opts.ByteOrder,
			Codec:     w.opts.Codec,
		})
		if err != nil {
			return err
		}
		w.files[canonical] = &fileState{
			uuid: uuid.Formatter(uuid.NewV4(), uuid.FormatUrn),
			tiff: t,
		}
		w.opened = append(w.opened, canonical)
	}
	w.current = canonical
	return w.setupIFD()
}

func (w *Writer) validateModel() {
	if w.md.ValidateModel(false) {
		return
	}
	log := w.opts.logger()
	w.md.ValidateModel(true)
	if w.md.ValidateModel(false) {
		log.Warn("Correction of model SizeC/ChannelCount/SamplesPerPixel inconsistency attempted")
	} else {
		log.Error("Correction of model SizeC/ChannelCount/SamplesPerPixel inconsistency attempted (but inconsistencies remain)")
	}
}

func (w *Writer) planeCount(series int) int {
	return w.md.PixelsSizeZ(series) * w.md.PixelsSizeT(series) * w.md.ChannelCount(series)
}

func (w *Writer) initPlanes() error {
	n := w.md.ImageCount()
	if n == 0 {
		return omefiles.Logicf("SetID", "metadata describes no images")
	}
	w.planes = make([][]planeState, n)
	for s := range n {
		w.planes[s] = make([]planeState, w.planeCount(s))
		for p := range w.planes[s] {
			w.planes[s][p] = planeState{certain: true, status: planeAbsent}
		}
	}
	return nil
}

// significantPixelSize returns the bytes of pixel data every series
// occupies, counting only the significant bits of each sample.
func (w *Writer) significantPixelSize() uint64 {
	var total uint64
	for s := range w.md.ImageCount() {
		pt, err := w.md.PixelsType(s)
		if err != nil {
			continue
		}
		bits := uint64(w.md.PixelsSizeX(s)) * uint64(w.md.PixelsSizeY(s)) *
			uint64(w.md.PixelsSizeZ(s)) * uint64(w.md.PixelsSizeT(s)) *
			uint64(w.md.PixelsSizeC(s)) * uint64(pt.SignificantBitsPerPixel())
		total += (bits + 7) / 8
	}
	return total
}

func (w *Writer) checkOpen(op string) error {
	if w.current == "" {
		return omefiles.Logicf(op, "no file set; call SetID first")
	}
	return nil
}

// SetSeries selects the series to write. The plane is reset to 0.
func (w *Writer) SetSeries(series int) error {
	if err := w.checkOpen("SetSeries"); err != nil {
		return err
	}
	cur := w.cursor.Series
	if series == cur {
		return nil
	}
	if series != cur+1 {
		return omefiles.Logicf("SetSeries", "series %d is not the current series %d or the next", series, cur)
	}
	if series >= len(w.planes) {
		return omefiles.Logicf("SetSeries", "series %d out of range [0, %d)", series, len(w.planes))
	}
	if err := w.nextIFD(); err != nil {
		return err
	}
	w.cursor = Cursor{Series: series}
	return w.setupIFD()
}

// SetPlane selects the plane of the current series to write.
func (w *Writer) SetPlane(plane int) error {
	if err := w.checkOpen("SetPlane"); err != nil {
		return err
	}
	cur := w.cursor.Plane
	if plane == cur {
		return nil
	}
	if plane != cur+1 {
		return omefiles.Logicf("SetPlane", "plane %d is not the current plane %d or the next", plane, cur)
	}
	if n := len(w.planes[w.cursor.Series]); plane >= n {
		return omefiles.Logicf("SetPlane", "plane %d out of range [0, %d)", plane, n)
	}
	if err := w.nextIFD(); err != nil {
		return err
	}
	w.cursor.Plane = plane
	return w.setupIFD()
}

// nextIFD writes the current directory of the current file if it holds
// pixel data.
func (w *Writer) nextIFD() error {
	fs := w.files[w.current]
	if !fs.pending {
		return nil
	}
	if err := fs.tiff.WriteCurrentDirectory(); err != nil {
		return err
	}
	fs.ifdCount++
	fs.pending = false
	return nil
}

// planeMetadata describes the current plane as a single-plane series.
func (w *Writer) planeMetadata() (*meta.CoreMetadata, error) {
	s := w.cursor.Series
	pt, err := w.md.PixelsType(s)
	if err != nil {
		return nil, err
	}
	order, err := w.md.PixelsDimensionOrder(s)
	if err != nil {
		return nil, err
	}
	channel := 0
	if n := w.planeCount(s); n > 0 {
		coords, err := dimension.PlaneCoords(string(order), w.md.PixelsSizeZ(s), w.md.ChannelCount(s), w.md.PixelsSizeT(s), n, w.cursor.Plane)
		if err != nil {
			return nil, err
		}
		channel = coords.C
	}
	spp := max(w.md.ChannelSamplesPerPixel(s, channel), 1)

	c := meta.NewCoreMetadata()
	c.SizeX = w.md.PixelsSizeX(s)
	c.SizeY = w.md.PixelsSizeY(s)
	c.SizeC = spp
	c.PixelType = pt
	c.BitsPerPixel = pt.BitsPerPixel()
	c.RGB = spp > 1
	c.Interleaved = w.md.PixelsInterleaved(s)
	return c, nil
}

func (w *Writer) setupIFD() error {
	fs := w.files[w.current]
	ifd, err := fs.tiff.CurrentDirectory()
	if err != nil {
		return err
	}
	c, err := w.planeMetadata()
	if err != nil {
		return err
	}
	if err := ifd.SetCoreMetadata(c); err != nil {
		return err
	}

	if w.opts.tiled() {
		if err := ifd.SetTileType(tiff.Tile); err != nil {
			return err
		}
		if err := ifd.SetTileWidth(uint32(w.opts.TileWidth)); err != nil {
			return err
		}
		if err := ifd.SetTileHeight(uint32(w.opts.TileHeight)); err != nil {
			return err
		}
	} else {
		if err := ifd.SetTileType(tiff.Strip); err != nil {
			return err
		}
		if err := ifd.SetTileHeight(1); err != nil {
			return err
		}
	}
	// Zero values mean no compression and no predictor.
	if c := w.opts.Compression; c != 0 && c != tiff.CompressionNone {
		if err := ifd.SetCompression(c); err != nil {
			return err
		}
	}
	if p := w.opts.Predictor; p != 0 && p != tiff.PredictorNone {
		if err := ifd.SetPredictor(p); err != nil {
			return err
		}
	}

	if fs.ifdCount == 0 {
		return tiff.GetField(ifd, tiff.TagImageDescription).Set(placeholderDescription)
	}
	return nil
}

// SaveBytes writes a whole plane of the current series.
func (w *Writer) SaveBytes(plane int, buf *pixel.Variant) error {
	if err := w.checkOpen("SaveBytes"); err != nil {
		return err
	}
	s := w.cursor.Series
	return w.SaveRegion(plane, buf, 0, 0, w.md.PixelsSizeX(s), w.md.PixelsSizeY(s))
}

// SaveRegion writes region (x, y, w, h) of a plane of the current series.
// buf holds every sample of the region, with extents
// (w, h, 1, 1, 1, samples, 1, 1, 1).
func (w *Writer) SaveRegion(plane int, buf *pixel.Variant, x, y, width, height int) error {
	if err := w.checkOpen("SaveRegion"); err != nil {
		return err
	}
	if n := len(w.planes[w.cursor.Series]); plane < 0 || plane >= n {
		return omefiles.Logicf("SaveRegion", "plane %d out of range [0, %d)", plane, n)
	}
	if err := w.SetPlane(plane); err != nil {
		return err
	}
	fs := w.files[w.current]
	ifd, err := fs.tiff.CurrentDirectory()
	if err != nil {
		return err
	}
	if err := ifd.WriteImage(buf, x, y, width, height); err != nil {
		return err
	}
	fs.pending = true
	w.planes[w.cursor.Series][plane] = planeState{
		file:    w.current,
		ifd:     fs.ifdCount,
		certain: true,
		status:  planePresent,
	}
	return nil
}

// Close writes the last directory, checks that every plane has been
// written and embeds the OME-XML in every file. Files are closed even
// when the check fails, in which case the error counts the missing
// planes and no description is written.
func (w *Writer) Close() error {
	if w.current == "" {
		return nil
	}
	var errs []error
	if err := w.nextIFD(); err != nil {
		errs = append(errs, err)
	}

	w.md.RemoveBinData()
	if err := w.fillMetadata(); err != nil {
		errs = append(errs, err)
	} else if len(errs) == 0 {
		for _, path := range w.opened {
			if err := w.finishFile(path); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, path := range w.opened {
		if err := w.files[path].tiff.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	*w = Writer{md: w.md, opts: w.opts, bigTIFF: w.opts.BigTIFF, files: make(map[string]*fileState)}
	return errors.Join(errs...)
}

func (w *Writer) finishFile(path string) error {
	fs := w.files[path]
	if fs.ifdCount == 0 {
		return &omefiles.FormatError{Op: "Close", Path: path, Msg: "no planes were written to this file"}
	}
	w.md.SetUUID(fs.uuid)
	xml, err := w.md.XML()
	if err != nil {
		return err
	}
	if err := fs.tiff.Close(); err != nil {
		return err
	}
	return SaveComment(path, xml)
}

// fillMetadata records a TiffData element with the file UUID, the plane
// coordinates and the directory index of every plane.
func (w *Writer) fillMetadata() error {
	missing := 0
	for _, planes := range w.planes {
		for _, p := range planes {
			if p.status != planePresent {
				missing++
			}
		}
	}
	if missing > 0 {
		return &omefiles.FormatError{
			Op:  "Close",
			Msg: fmt.Sprintf("Inconsistent writer state: %d planes have not been written", missing),
		}
	}

	for s, planes := range w.planes {
		order, err := w.md.PixelsDimensionOrder(s)
		if err != nil {
			return err
		}
		sizeZ, sizeT, effC := w.md.PixelsSizeZ(s), w.md.PixelsSizeT(s), w.md.ChannelCount(s)
		if len(planes) == 0 {
			w.md.SetTiffDataPlaneCount(0, s, 0)
		}
		for p, state := range planes {
			coords, err := dimension.PlaneCoords(string(order), sizeZ, effC, sizeT, len(planes), p)
			if err != nil {
				return err
			}
			fs, ok := w.files[state.file]
			if !ok {
				return &omefiles.FormatError{
					Op:   "Close",
					Path: state.file,
					Msg:  "Inconsistent writer state: TIFF file not registered with a UUID",
				}
			}
			rel, err := filepath.Rel(w.baseDir, state.file)
			if err != nil {
				rel = state.file
			}
			w.md.SetUUIDFileName(filepath.ToSlash(rel), s, p)
			w.md.SetUUIDValue(fs.uuid, s, p)
			w.md.SetTiffDataFirstZ(coords.Z, s, p)
			w.md.SetTiffDataFirstT(coords.T, s, p)
			w.md.SetTiffDataFirstC(coords.C, s, p)
			w.md.SetTiffDataIFD(state.ifd, s, p)
			w.md.SetTiffDataPlaneCount(1, s, p)
		}
	}
	return nil
}
