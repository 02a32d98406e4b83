package compression

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/mrjoshuak/go-jpeg2000"
)

// JPEG 2000 errors
var (
	ErrJPEG2000Corrupted   = errors.New("compression: corrupted JPEG 2000 data")
	ErrJPEG2000Unsupported = errors.New("compression: JPEG 2000 needs 8 or 16-bit unsigned gray or RGB samples")
)

// DefaultJ2KBlockSize is the code-block edge used when Options leaves it
// unset.
const DefaultJ2KBlockSize = 64

func checkJ2K(p Params) error {
	if (p.BitsPerSample != 8 && p.BitsPerSample != 16) || (p.Samples != 1 && p.Samples != 3) || p.Signed || p.Float {
		return fmt.Errorf("%w: %d samples of %d bits", ErrJPEG2000Unsupported, p.Samples, p.BitsPerSample)
	}
	return nil
}

// toImage wraps contiguous tile data as an image.Image.
func toImage(src []byte, p Params) image.Image {
	r := image.Rect(0, 0, p.Width, p.Height)
	bo := p.order()
	switch {
	case p.Samples == 1 && p.BitsPerSample == 8:
		return &image.Gray{Pix: src, Stride: p.Width, Rect: r}
	case p.Samples == 1:
		img := image.NewGray16(r)
		for i := 0; i < p.Width*p.Height; i++ {
			v := bo.Uint16(src[i*2:])
			img.Pix[i*2], img.Pix[i*2+1] = byte(v>>8), byte(v)
		}
		return img
	case p.BitsPerSample == 8:
		img := image.NewNRGBA(r)
		for i := 0; i < p.Width*p.Height; i++ {
			copy(img.Pix[i*4:i*4+3], src[i*3:i*3+3])
			img.Pix[i*4+3] = 0xff
		}
		return img
	default:
		img := image.NewNRGBA64(r)
		for i := 0; i < p.Width*p.Height; i++ {
			for s := 0; s < 3; s++ {
				v := bo.Uint16(src[(i*3+s)*2:])
				img.Pix[i*8+s*2], img.Pix[i*8+s*2+1] = byte(v>>8), byte(v)
			}
			img.Pix[i*8+6], img.Pix[i*8+7] = 0xff, 0xff
		}
		return img
	}
}

// JPEG2000Compress encodes a contiguous tile as a lossless JPEG 2000
// codestream (TIFF compression 34712).
func JPEG2000Compress(src []byte, p Params, blockSize int) ([]byte, error) {
	if err := checkJ2K(p); err != nil {
		return nil, err
	}
	if blockSize <= 0 {
		blockSize = DefaultJ2KBlockSize
	}
	opts := &jpeg2000.Options{
		Format:         jpeg2000.FormatJ2K,
		Lossless:       true,
		HighThroughput: true,
		HTBlockWidth:   blockSize,
		HTBlockHeight:  blockSize,
		NumResolutions: 6,
	}

	var buf bytes.Buffer
	if err := jpeg2000.Encode(&buf, toImage(src, p), opts); err != nil {
		return nil, fmt.Errorf("compression: jpeg2000 encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// JPEG2000DecompressTo decodes a codestream into dst as contiguous samples
// in p's byte order.
func JPEG2000DecompressTo(dst, src []byte, p Params) error {
	if err := checkJ2K(p); err != nil {
		return err
	}
	if len(dst) != p.Width*p.Height*p.Samples*p.BitsPerSample/8 {
		return ErrJPEG2000Corrupted
	}
	img, err := jpeg2000.Decode(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("compression: jpeg2000 decode failed: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != p.Width || b.Dy() != p.Height {
		return fmt.Errorf("%w: decoded %dx%d, want %dx%d", ErrJPEG2000Corrupted, b.Dx(), b.Dy(), p.Width, p.Height)
	}

	bo := p.order()
	i := 0
	put := func(v uint16) {
		if p.BitsPerSample == 8 {
			dst[i] = byte(v >> 8)
			i++
			return
		}
		bo.PutUint16(dst[i:], v)
		i += 2
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if p.Samples == 1 {
				put(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
				continue
			}
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			put(c.R)
			put(c.G)
			put(c.B)
		}
	}
	return nil
}

type jpeg2000Codec struct {
	blockSize int
}

func (c jpeg2000Codec) Encode(src []byte, p Params) ([]byte, error) {
	return JPEG2000Compress(src, p, c.blockSize)
}

func (c jpeg2000Codec) Decode(dst, src []byte, p Params) error {
	return JPEG2000DecompressTo(dst, src, p)
}
