// Package tiff reads uncompressed striped and tiled 8-bit TIFF textures
// straight from a memory-mapped file, so large texture maps are paged in on
// demand instead of being decoded up front.
package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/echoflaresat/raytrace/texture/tiff/photometric"
)

type Header struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagStripOffsets              = 273
	TagSamplesPerPixel           = 277
	TagRowsPerStrip              = 278
	TagStripByteCounts           = 279
	TagPlanarConfiguration       = 284
	TagTileWidth                 = 322
	TagTileLength                = 323
	TagTileOffsets               = 324
	TagTileByteCounts            = 325
)

var (
	ErrInvalidTiffHeader = errors.New("invalid TIFF header")
	ErrUnsupported       = errors.New("unsupported TIFF layout")
)

const ifdEntrySize = 12

func parseHeader(reader io.ReaderAt) (Header, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := reader.ReadAt(buf, offset)
		return buf, err
	}

	raw, err := read(0, 8)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrInvalidTiffHeader, err)
	}

	var bo binary.ByteOrder
	switch string(raw[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return Header{}, ErrInvalidTiffHeader
	}
	if bo.Uint16(raw[2:4]) != 42 {
		return Header{}, ErrInvalidTiffHeader
	}
	ifdOffset := int64(bo.Uint32(raw[4:8]))

	countRaw, err := read(ifdOffset, 2)
	if err != nil {
		return Header{}, err
	}
	numEntries := int(bo.Uint16(countRaw))
	entries, err := read(ifdOffset+2, numEntries*ifdEntrySize)
	if err != nil {
		return Header{}, err
	}

	hdr := Header{
		ByteOrder:       bo,
		SamplesPerPixel: -1,
		Photometric:     -1,
		Compression:     -1,
		PlanarConfig:    1,
	}

	for i := 0; i < numEntries; i++ {
		entry := entries[i*ifdEntrySize : (i+1)*ifdEntrySize]
		tag := bo.Uint16(entry[0:2])
		count := bo.Uint32(entry[4:8])
		value := int64(bo.Uint32(entry[8:12]))
		short := int(bo.Uint16(entry[8:10]))

		shorts := func() ([]int, error) {
			if count == 1 {
				return []int{short}, nil
			}
			// Up to two shorts fit inline in the value field.
			src := entry[8:12]
			if count > 2 {
				buf, err := read(value, int(count*2))
				if err != nil {
					return nil, err
				}
				src = buf
			}
			out := make([]int, count)
			for i := range out {
				out[i] = int(bo.Uint16(src[i*2:]))
			}
			return out, nil
		}
		longs := func() ([]int, error) {
			if count == 1 {
				return []int{int(value)}, nil
			}
			buf, err := read(value, int(count*4))
			if err != nil {
				return nil, err
			}
			out := make([]int, count)
			for i := range out {
				out[i] = int(bo.Uint32(buf[i*4:]))
			}
			return out, nil
		}

		switch tag {
		case TagImageWidth:
			hdr.Width = int(value)
		case TagImageLength:
			hdr.Height = int(value)
		case TagBitsPerSample:
			hdr.BitsPerSample, err = shorts()
		case TagCompression:
			hdr.Compression = short
		case TagPhotometricInterpretation:
			hdr.Photometric = short
		case TagSamplesPerPixel:
			hdr.SamplesPerPixel = short
		case TagRowsPerStrip:
			hdr.RowsPerStrip = int(value)
		case TagPlanarConfiguration:
			hdr.PlanarConfig = short
		case TagStripOffsets:
			hdr.StripOffsets, err = longs()
		case TagStripByteCounts:
			hdr.StripByteCounts, err = longs()
		case TagTileWidth:
			hdr.TileWidth = int(value)
		case TagTileLength:
			hdr.TileHeight = int(value)
		case TagTileOffsets:
			hdr.TileOffsets, err = longs()
		case TagTileByteCounts:
			hdr.TileByteCounts, err = longs()
		}
		if err != nil {
			return Header{}, err
		}
	}

	if hdr.Width <= 0 || hdr.Height <= 0 {
		return Header{}, fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidTiffHeader, hdr.Width, hdr.Height)
	}
	return hdr, nil
}

// checkPixelLayout accepts 8-bit chunky grayscale or RGB images.
func (h Header) checkPixelLayout() error {
	if len(h.BitsPerSample) == 0 || h.BitsPerSample[0] != 8 {
		return fmt.Errorf("%w: bits per sample %v", ErrUnsupported, h.BitsPerSample)
	}
	if h.PlanarConfig != 1 {
		return fmt.Errorf("%w: planar configuration %d", ErrUnsupported, h.PlanarConfig)
	}
	switch h.Photometric {
	case photometric.BlackIsZero:
		if h.SamplesPerPixel != 1 {
			return fmt.Errorf("%w: grayscale with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	case photometric.RGB:
		if h.SamplesPerPixel != 3 {
			return fmt.Errorf("%w: RGB with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	default:
		return fmt.Errorf("%w: photometric interpretation %d", ErrUnsupported, h.Photometric)
	}
	return nil
}

// pixel decodes the sample at buf[0:SamplesPerPixel].
func (h Header) pixel(buf []byte) (r, g, b uint8) {
	if h.Photometric == photometric.BlackIsZero {
		return buf[0], buf[0], buf[0]
	}
	return buf[0], buf[1], buf[2]
}
