// Package interleave moves samples between chunky (interleaved) and planar
// layouts, and groups the bytes of multi-byte samples.
//
// Chunky data stores the samples of one pixel together:
//
//	[R0 G0 B0 R1 G1 B1 ...]
//
// while planar data stores one sample plane after another:
//
//	[R0 R1 ...] [G0 G1 ...] [B0 B1 ...]
//
// All functions take the sample size in bytes, so they work for any pixel
// type without decoding values.
package interleave

// Extract copies sample number sample of every pixel in the chunky src
// into the planar dst. Pixels have samples samples of size bytes each.
// It returns the number of pixels copied.
func Extract(dst, src []byte, samples, sample, size int) int {
	if samples <= 0 || size <= 0 || sample < 0 || sample >= samples {
		return 0
	}
	pixel := samples * size
	n := min(len(src)/pixel, len(dst)/size)
	if size == 1 {
		for i, s := 0, sample; i < n; i, s = i+1, s+pixel {
			dst[i] = src[s]
		}
		return n
	}
	for i := 0; i < n; i++ {
		s := i*pixel + sample*size
		copy(dst[i*size:(i+1)*size], src[s:s+size])
	}
	return n
}

// Insert is the inverse of Extract: it scatters the planar src into
// sample number sample of every pixel of the chunky dst.
func Insert(dst, src []byte, samples, sample, size int) int {
	if samples <= 0 || size <= 0 || sample < 0 || sample >= samples {
		return 0
	}
	pixel := samples * size
	n := min(len(dst)/pixel, len(src)/size)
	if size == 1 {
		for i, d := 0, sample; i < n; i, d = i+1, d+pixel {
			dst[d] = src[i]
		}
		return n
	}
	for i := 0; i < n; i++ {
		d := i*pixel + sample*size
		copy(dst[d:d+size], src[i*size:(i+1)*size])
	}
	return n
}

// Split converts chunky src into one plane per sample. Each planes[s]
// must hold len(src)/samples bytes.
func Split(planes [][]byte, src []byte, size int) {
	for s := range planes {
		Extract(planes[s], src, len(planes), s, size)
	}
}

// Merge converts per-sample planes into chunky dst.
func Merge(dst []byte, planes [][]byte, size int) {
	for s := range planes {
		Insert(dst, planes[s], len(planes), s, size)
	}
}

// Bytes groups the bytes of stride-byte elements by position: all first
// bytes, then all second bytes, and so on.
//
//	[a0,a1, b0,b1, c0,c1] -> [a0,b0,c0, a1,b1,c1]
//
// Trailing bytes that do not fill an element are copied unchanged. If out
// is nil a new buffer is allocated.
func Bytes(data []byte, stride int, out []byte) []byte {
	if out == nil {
		out = make([]byte, len(data))
	}
	if len(data) == 0 || stride <= 1 {
		copy(out, data)
		return out
	}

	numElements := len(data) / stride
	for offset := 0; offset < stride; offset++ {
		dstBase := offset * numElements
		for elem := 0; elem < numElements; elem++ {
			out[dstBase+elem] = data[elem*stride+offset]
		}
	}
	copy(out[stride*numElements:], data[stride*numElements:])
	return out
}

// Unbytes reverses Bytes.
func Unbytes(data []byte, stride int, out []byte) []byte {
	if out == nil {
		out = make([]byte, len(data))
	}
	if len(data) == 0 || stride <= 1 {
		copy(out, data)
		return out
	}

	numElements := len(data) / stride
	for offset := 0; offset < stride; offset++ {
		srcBase := offset * numElements
		for elem := 0; elem < numElements; elem++ {
			out[elem*stride+offset] = data[srcBase+elem]
		}
	}
	copy(out[stride*numElements:], data[stride*numElements:])
	return out
}
