package compression

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrZstdCorrupted is returned for Zstandard frames that do not decode to
// the expected size.
var ErrZstdCorrupted = errors.New("compression: corrupted Zstandard data")

var (
	zstdDecoderOnce sync.Once
	zstdDecoder     *zstd.Decoder
	zstdDecoderErr  error

	zstdEncoders sync.Map // zstd.EncoderLevel -> *zstd.Encoder
)

func sharedZstdDecoder() (*zstd.Decoder, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, zstdDecoderErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return zstdDecoder, zstdDecoderErr
}

func zstdEncoder(level int) (*zstd.Encoder, error) {
	l := zstd.EncoderLevelFromZstd(level)
	if e, ok := zstdEncoders.Load(l); ok {
		return e.(*zstd.Encoder), nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(l), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	actual, _ := zstdEncoders.LoadOrStore(l, enc)
	return actual.(*zstd.Encoder), nil
}

// ZstdCompress compresses src as one Zstandard frame (TIFF compression
// 50000). level follows the zstd command-line scale, 1 to 22.
func ZstdCompress(src []byte, level int) ([]byte, error) {
	enc, err := zstdEncoder(level)
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

// ZstdDecompressTo decodes a Zstandard frame into dst, which must be
// exactly the decompressed size.
func ZstdDecompressTo(dst, src []byte) error {
	dec, err := sharedZstdDecoder()
	if err != nil {
		return err
	}
	out, err := dec.DecodeAll(src, dst[:0])
	if err != nil {
		return errors.Join(ErrZstdCorrupted, err)
	}
	if len(out) != len(dst) {
		return ErrZstdCorrupted
	}
	if len(dst) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return nil
}

type zstdCodec struct {
	level int
}

func (c zstdCodec) Encode(src []byte, _ Params) ([]byte, error) {
	return ZstdCompress(src, c.level)
}

func (c zstdCodec) Decode(dst, src []byte, _ Params) error {
	return ZstdDecompressTo(dst, src)
}
