package tiff

import (
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// bigTIFFExtensions force BigTIFF when no explicit choice is made.
var bigTIFFExtensions = map[string]bool{
	".tf2": true,
	".tf8": true,
	".btf": true,
}

// EnableBigTIFF decides whether a file should use 8-byte offsets. An
// explicit want wins; otherwise BigTIFF is used for the .tf2, .tf8 and
// .btf extensions and whenever pixelBytes exceeds the 4 GiB reach of
// classic TIFF. The decision is logged to log, or slog.Default if nil.
func EnableBigTIFF(want *bool, pixelBytes uint64, path string, log *slog.Logger) bool {
	if log == nil {
		log = slog.Default()
	}
	if want != nil {
		log.Debug("BigTIFF set explicitly", "path", path, "bigtiff", *want)
		return *want
	}
	if ext := strings.ToLower(filepath.Ext(path)); bigTIFFExtensions[ext] {
		log.Info("using BigTIFF for file extension", "path", path, "extension", ext)
		return true
	}
	if pixelBytes > math.MaxUint32 {
		log.Info("switching to BigTIFF: pixel data exceeds 4 GiB",
			"path", path,
			"bytes", pixelBytes,
			"size", humanize.IBytes(pixelBytes))
		return true
	}
	return false
}
