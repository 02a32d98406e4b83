package ometiff

import (
	"encoding/binary"
	"log/slog"

	"github.com/mrjoshuak/go-omefiles/compression"
	"github.com/mrjoshuak/go-omefiles/tiff"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// BigTIFF forces (true) or forbids (false) 8-byte offsets. Nil
	// decides from the file suffix and the pixel data volume.
	BigTIFF *bool

	// Compression and Predictor apply to every plane. Zero values mean
	// none.
	Compression tiff.Compression
	Predictor   tiff.Predictor

	// TileWidth and TileHeight select tiled storage when both are
	// non-zero. Otherwise planes are stored in strips of one row.
	TileWidth, TileHeight int

	// ByteOrder of the written files. Nil means little endian.
	ByteOrder binary.ByteOrder

	Codec compression.Options

	// Logger receives BigTIFF decisions and model corrections. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// DefaultWriterOptions returns options for uncompressed, little-endian
// strips with automatic BigTIFF selection.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Compression: tiff.CompressionNone,
		Predictor:   tiff.PredictorNone,
		ByteOrder:   binary.LittleEndian,
		Codec:       compression.DefaultOptions(),
	}
}

func (o WriterOptions) tiled() bool {
	return o.TileWidth > 0 && o.TileHeight > 0
}

func (o WriterOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
