package tiff

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/echoflaresat/raytrace/texture/tiff/compression"
	"golang.org/x/exp/mmap"
)

type stripedTiff struct {
	header Header
	reader io.ReaderAt
	closer io.Closer
}

// LoadStriped maps an uncompressed, strip-organized TIFF. The returned image
// reads pixels directly from the mapping; Close releases it.
func LoadStriped(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	img, err := newStriped(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	img.closer = reader
	return img, nil
}

func newStriped(reader io.ReaderAt) (*stripedTiff, error) {
	header, err := parseHeader(reader)
	if err != nil {
		return nil, err
	}
	if len(header.StripOffsets) == 0 {
		return nil, fmt.Errorf("%w: no strips", ErrUnsupported)
	}
	if header.Compression != compression.None {
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, header.Compression)
	}
	if err := header.checkPixelLayout(); err != nil {
		return nil, err
	}
	if len(header.StripOffsets) != len(header.StripByteCounts) {
		return nil, fmt.Errorf("%w: %d strip offsets, %d byte counts", ErrInvalidTiffHeader, len(header.StripOffsets), len(header.StripByteCounts))
	}
	if header.RowsPerStrip <= 0 {
		header.RowsPerStrip = header.Height
	}
	return &stripedTiff{header: header, reader: reader}, nil
}

func (t *stripedTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.RGBA{}
	}

	strip := y / h.RowsPerStrip
	localY := y % h.RowsPerStrip
	idx := h.StripOffsets[strip] + (localY*h.Width+x)*h.SamplesPerPixel

	var buf [3]byte
	if _, err := t.reader.ReadAt(buf[:h.SamplesPerPixel], int64(idx)); err != nil {
		panic(fmt.Sprintf("tiff: reading pixel (%d,%d): %v", x, y, err))
	}
	r, g, b := h.pixel(buf[:])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func (t *stripedTiff) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
