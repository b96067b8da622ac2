package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/echoflaresat/raytrace/texture/tiff/compression"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

// Image is a lazily read TIFF backed by a file mapping.
type Image interface {
	image.Image
	io.Closer
}

// tileCacheSize is the number of decompressed tiles kept per image.
const tileCacheSize = 200

type tiledTiff struct {
	header Header
	reader io.ReaderAt
	closer io.Closer
	cache  *lru.Cache // tile index -> []byte
}

// LoadTiled maps a tiled TIFF, uncompressed or deflated. Tiles are
// decompressed on first access and kept in an LRU cache.
func LoadTiled(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	img, err := newTiled(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	img.closer = reader
	return img, nil
}

func newTiled(reader io.ReaderAt) (*tiledTiff, error) {
	header, err := parseHeader(reader)
	if err != nil {
		return nil, err
	}
	if len(header.TileOffsets) == 0 {
		return nil, fmt.Errorf("%w: no tiles", ErrUnsupported)
	}
	if header.Compression != compression.None && header.Compression != compression.Deflate {
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, header.Compression)
	}
	if err := header.checkPixelLayout(); err != nil {
		return nil, err
	}
	if len(header.TileOffsets) != len(header.TileByteCounts) {
		return nil, fmt.Errorf("%w: %d tile offsets, %d byte counts", ErrInvalidTiffHeader, len(header.TileOffsets), len(header.TileByteCounts))
	}
	if header.TileWidth <= 0 || header.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidTiffHeader, header.TileWidth, header.TileHeight)
	}

	cache, err := lru.New(tileCacheSize)
	if err != nil {
		return nil, err
	}
	return &tiledTiff{header: header, reader: reader, cache: cache}, nil
}

func (t *tiledTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *tiledTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *tiledTiff) At(x, y int) color.Color {
	h := t.header
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.RGBA{}
	}

	tilesAcross := (h.Width + h.TileWidth - 1) / h.TileWidth
	tileIndex := (y/h.TileHeight)*tilesAcross + x/h.TileWidth

	var tile []byte
	if val, ok := t.cache.Get(tileIndex); ok {
		tile = val.([]byte)
	} else {
		tile = t.loadTile(tileIndex)
		t.cache.Add(tileIndex, tile)
	}

	localX := x % h.TileWidth
	localY := y % h.TileHeight
	off := (localY*h.TileWidth + localX) * h.SamplesPerPixel
	r, g, b := h.pixel(tile[off:])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func (t *tiledTiff) loadTile(index int) []byte {
	h := t.header
	buf := make([]byte, h.TileByteCounts[index])
	if _, err := t.reader.ReadAt(buf, int64(h.TileOffsets[index])); err != nil {
		panic(fmt.Sprintf("tiff: reading tile %d: %v", index, err))
	}

	if h.Compression != compression.Deflate {
		return buf
	}
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		panic(fmt.Sprintf("tiff: inflating tile %d: %v", index, err))
	}
	defer r.Close()
	tile, err := io.ReadAll(r)
	if err != nil {
		panic(fmt.Sprintf("tiff: inflating tile %d: %v", index, err))
	}
	return tile
}

func (t *tiledTiff) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
