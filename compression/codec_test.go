package compression

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"
)

func testData(n int) []byte {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, n)
	for i := range data {
		if i%7 < 4 {
			data[i] = byte(i / 64)
		} else {
			data[i] = byte(rng.Intn(256))
		}
	}
	return data
}

func TestPackBitsKnownVector(t *testing.T) {
	// Example from the TIFF 6.0 specification, section 9.
	unpacked := []byte{
		0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0xAA, 0xAA, 0xAA, 0xAA,
		0x80, 0x00, 0x2A, 0x22, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA,
		0xAA, 0xAA, 0xAA, 0xAA,
	}
	packed := []byte{0xFE, 0xAA, 0x02, 0x80, 0x00, 0x2A, 0xFD, 0xAA, 0x03, 0x80, 0x00, 0x2A, 0x22, 0xF7, 0xAA}

	if got := PackBitsCompress(unpacked); !bytes.Equal(got, packed) {
		t.Errorf("PackBitsCompress() = % X, want % X", got, packed)
	}

	dst := make([]byte, len(unpacked))
	if err := PackBitsDecompressTo(dst, packed); err != nil {
		t.Fatalf("PackBitsDecompressTo() error = %v", err)
	}
	if !bytes.Equal(dst, unpacked) {
		t.Errorf("PackBitsDecompressTo() = % X, want % X", dst, unpacked)
	}
}

func TestPackBitsLongRuns(t *testing.T) {
	src := append(bytes.Repeat([]byte{5}, 300), testData(400)...)
	packed := PackBitsCompress(src)
	dst := make([]byte, len(src))
	if err := PackBitsDecompressTo(dst, packed); err != nil {
		t.Fatalf("PackBitsDecompressTo() error = %v", err)
	}
	if !bytes.Equal(dst, src) {
		t.Error("PackBits round trip mismatch")
	}
}

func TestPackBitsCorrupted(t *testing.T) {
	dst := make([]byte, 4)
	if err := PackBitsDecompressTo(dst, []byte{0x05, 1, 2}); !errors.Is(err, ErrPackBitsCorrupted) {
		t.Errorf("truncated literal error = %v, want ErrPackBitsCorrupted", err)
	}
	if err := PackBitsDecompressTo(dst, []byte{0xF0, 1}); !errors.Is(err, ErrPackBitsOverflow) {
		t.Errorf("oversized run error = %v, want ErrPackBitsOverflow", err)
	}
	if err := PackBitsDecompressTo(dst, []byte{0x80, 0x01, 1, 2}); !errors.Is(err, ErrPackBitsCorrupted) {
		t.Errorf("short output error = %v, want ErrPackBitsCorrupted", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	p := Params{Width: 64, Height: 16, Samples: 1, BitsPerSample: 8, ByteOrder: binary.LittleEndian}
	src := testData(p.Size())

	for _, scheme := range []Scheme{None, AdobeDeflate, Deflate, PackBits, Zstd} {
		t.Run(scheme.String(), func(t *testing.T) {
			c, err := New(scheme, DefaultOptions())
			if err != nil {
				t.Fatalf("New(%v) error = %v", scheme, err)
			}
			enc, err := c.Encode(src, p)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			dst := make([]byte, len(src))
			if err := c.Decode(dst, enc, p); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(dst, src) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestDeflateLevels(t *testing.T) {
	src := testData(4096)
	for _, level := range []Level{LevelHuffmanOnly, LevelNone, LevelBestSpeed, LevelBestSize} {
		enc, err := DeflateCompress(src, level)
		if err != nil {
			t.Fatalf("DeflateCompress(level %d) error = %v", level, err)
		}
		dst := make([]byte, len(src))
		if err := DeflateDecompressTo(dst, enc); err != nil {
			t.Fatalf("DeflateDecompressTo(level %d) error = %v", level, err)
		}
		if !bytes.Equal(dst, src) {
			t.Errorf("level %d: round trip mismatch", level)
		}
	}

	if err := DeflateDecompressTo(make([]byte, 10), []byte{1, 2, 3}); !errors.Is(err, ErrDeflateCorrupted) {
		t.Errorf("DeflateDecompressTo(garbage) error = %v, want ErrDeflateCorrupted", err)
	}
}

func TestZstdSizeMismatch(t *testing.T) {
	enc, err := ZstdCompress(testData(100), 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := ZstdDecompressTo(make([]byte, 99), enc); !errors.Is(err, ErrZstdCorrupted) {
		t.Errorf("ZstdDecompressTo(short dst) error = %v, want ErrZstdCorrupted", err)
	}
}

func TestLZWDecode(t *testing.T) {
	// Short input: the code width never changes, so the GIF-style
	// encoder output is also valid TIFF LZW.
	src := []byte("TOBEORNOTTOBEORTOBEORNOT")
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	w.Write(src)
	w.Close()

	c, err := New(LZW, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, len(src))
	if err := c.Decode(dst, buf.Bytes(), Params{}); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(dst, src) {
		t.Errorf("Decode() = %q, want %q", dst, src)
	}

	if _, err := c.Encode(src, Params{}); !errors.Is(err, ErrEncodeUnsupported) {
		t.Errorf("Encode() error = %v, want ErrEncodeUnsupported", err)
	}
	if LZW.CanEncode() {
		t.Error("LZW.CanEncode() = true")
	}
}

func TestUnsupportedScheme(t *testing.T) {
	if _, err := New(Scheme(7), DefaultOptions()); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("New(7) error = %v, want ErrUnsupportedScheme", err)
	}
	if got := Scheme(7).String(); got != "Scheme(7)" {
		t.Errorf("String() = %q", got)
	}
}

func TestJPEG2000Compress(t *testing.T) {
	p := Params{Width: 16, Height: 16, Samples: 1, BitsPerSample: 16, ByteOrder: binary.BigEndian}
	src := make([]byte, p.Size())
	for i := 0; i < p.Width*p.Height; i++ {
		binary.BigEndian.PutUint16(src[i*2:], uint16(i*64))
	}

	c, err := New(JPEG2000, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	enc, err := c.Encode(src, p)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(enc) == 0 {
		t.Fatal("Encode() returned no data")
	}
	dst := make([]byte, len(src))
	if err := c.Decode(dst, enc, p); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	t.Logf("JPEG 2000: %d bytes to %d bytes", len(src), len(enc))
}

func TestJPEG2000Unsupported(t *testing.T) {
	p := Params{Width: 4, Height: 4, Samples: 1, BitsPerSample: 32, Float: true}
	if _, err := JPEG2000Compress(make([]byte, p.Size()), p, 0); !errors.Is(err, ErrJPEG2000Unsupported) {
		t.Errorf("JPEG2000Compress(float) error = %v, want ErrJPEG2000Unsupported", err)
	}
	p = Params{Width: 4, Height: 4, Samples: 2, BitsPerSample: 8}
	if _, err := JPEG2000Compress(make([]byte, p.Size()), p, 0); !errors.Is(err, ErrJPEG2000Unsupported) {
		t.Errorf("JPEG2000Compress(2 samples) error = %v, want ErrJPEG2000Unsupported", err)
	}
}

func TestParams(t *testing.T) {
	p := Params{Width: 10, Height: 3, Samples: 1, BitsPerSample: 1}
	if p.RowBytes() != 2 || p.Size() != 6 {
		t.Errorf("1-bit RowBytes() = %d, Size() = %d, want 2, 6", p.RowBytes(), p.Size())
	}
	p = Params{Width: 10, Height: 3, Samples: 3, BitsPerSample: 16}
	if p.RowBytes() != 60 {
		t.Errorf("RowBytes() = %d, want 60", p.RowBytes())
	}
}

func TestParseScheme(t *testing.T) {
	for _, s := range []Scheme{None, LZW, AdobeDeflate, PackBits, Deflate, JPEG2000, Zstd} {
		got, err := ParseScheme(s.String())
		if err != nil || got != s {
			t.Errorf("ParseScheme(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, err := ParseScheme("zstd"); err != nil || got != Zstd {
		t.Errorf("ParseScheme(zstd) = %v, %v", got, err)
	}
	if _, err := ParseScheme("jpegxl"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("ParseScheme(jpegxl) error = %v, want ErrUnsupportedScheme", err)
	}
}
