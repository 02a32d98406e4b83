package compression

import "errors"

// PackBits errors
var (
	ErrPackBitsCorrupted = errors.New("compression: corrupted PackBits data")
	ErrPackBitsOverflow  = errors.New("compression: PackBits decompressed size overflow")
)

const (
	packBitsMinRun = 3
	packBitsMaxRun = 128
)

// PackBitsCompress compresses src with the Apple PackBits scheme used by
// TIFF compression 32773.
//
// Each block starts with a signed count byte n:
//   - 0 to 127: the next n+1 bytes are copied literally
//   - -1 to -127: the next byte is repeated 1-n times
//   - -128: no operation
//
// For example:
//
//	[A, A, A, A, B, C, D] -> [-3, A, 2, B, C, D]
//
// Rows must be compressed separately; callers pass one row at a time.
func PackBitsCompress(src []byte) []byte {
	dst := make([]byte, 0, len(src)+len(src)/128+1)

	i := 0
	for i < len(src) {
		val := src[i]
		runEnd := i + 1
		for runEnd < len(src) && src[runEnd] == val && runEnd-i < packBitsMaxRun {
			runEnd++
		}
		if runLength := runEnd - i; runLength >= packBitsMinRun {
			dst = append(dst, byte(-(runLength - 1)), val)
			i = runEnd
			continue
		}

		literalStart := i
		for i < len(src) && i-literalStart < packBitsMaxRun {
			if i+packBitsMinRun <= len(src) && src[i+1] == src[i] && src[i+2] == src[i] {
				break
			}
			i++
		}
		dst = append(dst, byte(i-literalStart-1))
		dst = append(dst, src[literalStart:i]...)
	}

	return dst
}

// PackBitsDecompressTo decompresses src into dst, which must be exactly
// the decompressed size.
func PackBitsDecompressTo(dst, src []byte) error {
	pos := 0
	i := 0
	for i < len(src) && pos < len(dst) {
		count := int(int8(src[i]))
		i++

		switch {
		case count == -128:
		case count < 0:
			runLength := -count + 1
			if i >= len(src) {
				return ErrPackBitsCorrupted
			}
			if pos+runLength > len(dst) {
				return ErrPackBitsOverflow
			}
			val := src[i]
			i++
			for end := pos + runLength; pos < end; pos++ {
				dst[pos] = val
			}
		default:
			literalLength := count + 1
			if i+literalLength > len(src) {
				return ErrPackBitsCorrupted
			}
			if pos+literalLength > len(dst) {
				return ErrPackBitsOverflow
			}
			copy(dst[pos:], src[i:i+literalLength])
			pos += literalLength
			i += literalLength
		}
	}

	if pos != len(dst) {
		return ErrPackBitsCorrupted
	}
	return nil
}

type packBitsCodec struct{}

// Encode compresses each row of the tile separately.
func (packBitsCodec) Encode(src []byte, p Params) ([]byte, error) {
	row := p.RowBytes()
	if row <= 0 || len(src)%row != 0 {
		return PackBitsCompress(src), nil
	}
	out := make([]byte, 0, len(src)+len(src)/128+p.Rows())
	for off := 0; off < len(src); off += row {
		out = append(out, PackBitsCompress(src[off:off+row])...)
	}
	return out, nil
}

func (packBitsCodec) Decode(dst, src []byte, _ Params) error {
	return PackBitsDecompressTo(dst, src)
}
