// Package omefiles is the root of a library for reading and writing
// multi-dimensional scientific image data stored as TIFF and OME-TIFF.
//
// The library is organised in layers:
//
//   - dimension maps linear plane indices to Z/C/T coordinates (with
//     optional modulo sub-dimensions) for a given dimension order.
//   - pixel describes the supported sample types and provides a typed,
//     9-dimensional pixel buffer with an explicit storage order.
//   - tiff reads and writes TIFF image file directories, including tile and
//     strip geometry, region I/O and CoreMetadata derivation.
//   - omexml models the OME-XML document that describes every series.
//   - ometiff maps multi-series, multi-plane datasets onto one or more TIFF
//     files and maintains the embedded OME-XML description.
//   - ometiffutil summarizes, validates, compares and converts datasets;
//     cmd/ometiffcheck and cmd/ometiffconvert expose it on the command line.
//
// This package holds the error classes shared by all layers. Precondition
// violations match ErrLogic; unusable input or writer state matches
// ErrFormat:
//
//	if errors.Is(err, omefiles.ErrFormat) {
//		// the file or dataset cannot be used as requested
//	}
package omefiles
