// Package bundle decodes sprite-sheet library bundles.
//
// A bundle document carries one atlas image plus named frames inside it
// (texture names such as "hh_human_hair_h_std_hr_10_2_0.png") and per-asset
// metadata (asset ids such as "h_std_hr_10_2_0" with an "x,y" offset).
// Encoded documents may be lz4-framed; Unmarshal detects that on its own.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/pierrec/lz4/v4"
	_ "golang.org/x/image/webp"

	"github.com/unkn0wn-root/wardrobe/codec"
	"github.com/unkn0wn-root/wardrobe/fetch"
	"github.com/unkn0wn-root/wardrobe/loader"
)

var (
	ErrFrameOutOfBounds = errors.New("bundle: frame outside atlas")
	ErrNoAtlas          = errors.New("bundle: atlas is empty")
)

// lz4 frame magic, little endian 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// Frame is a texture rectangle inside the atlas.
type Frame struct {
	X int `json:"x" yaml:"x" msgpack:"x"`
	Y int `json:"y" yaml:"y" msgpack:"y"`
	W int `json:"w" yaml:"w" msgpack:"w"`
	H int `json:"h" yaml:"h" msgpack:"h"`
}

// Asset is per-asset metadata. Offset is "x,y" in pixels.
type Asset struct {
	Offset string `json:"offset,omitempty" yaml:"offset,omitempty" msgpack:"offset,omitempty"`
}

// Document is the serialized form of a library bundle.
type Document struct {
	Name   string           `json:"name" yaml:"name" msgpack:"name"`
	Atlas  []byte           `json:"atlas" yaml:"atlas" msgpack:"atlas"` // PNG, JPEG or WebP
	Frames map[string]Frame `json:"frames" yaml:"frames" msgpack:"frames"`
	Assets map[string]Asset `json:"assets" yaml:"assets" msgpack:"assets"`
}

// Library is a loaded bundle: texture name -> texture and asset id -> metadata.
type Library struct {
	ID       string
	Textures map[string]image.Image
	Assets   map[string]Asset
}

// HasTexture reports whether name is a texture of l.
func (l *Library) HasTexture(name string) bool {
	_, ok := l.Textures[name]
	return ok
}

// HasAsset reports whether id has metadata in l.
func (l *Library) HasAsset(id string) bool {
	_, ok := l.Assets[id]
	return ok
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Decode decodes the atlas once and slices every frame out of it.
func Decode(doc Document) (*Library, error) {
	lib := &Library{
		ID:       doc.Name,
		Textures: make(map[string]image.Image, len(doc.Frames)),
		Assets:   make(map[string]Asset, len(doc.Assets)),
	}
	for id, a := range doc.Assets {
		lib.Assets[id] = a
	}
	if len(doc.Frames) == 0 {
		return lib, nil
	}
	if len(doc.Atlas) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAtlas, doc.Name)
	}

	atlas, _, err := image.Decode(bytes.NewReader(doc.Atlas))
	if err != nil {
		return nil, fmt.Errorf("bundle %s: decode atlas: %w", doc.Name, err)
	}
	si, ok := atlas.(subImager)
	if !ok {
		return nil, fmt.Errorf("bundle %s: atlas %T cannot be sliced", doc.Name, atlas)
	}
	bounds := atlas.Bounds()
	for name, f := range doc.Frames {
		r := image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H).Add(bounds.Min)
		if f.W <= 0 || f.H <= 0 || !r.In(bounds) {
			return nil, fmt.Errorf("%w: %s frame %q %v not in %v", ErrFrameOutOfBounds, doc.Name, name, r, bounds)
		}
		lib.Textures[name] = si.SubImage(r)
	}
	return lib, nil
}

// Unmarshal decodes raw (optionally lz4-framed) bytes with c, then the document.
// When c reports a decode limit (codec.LimitCodec does), decompression stops
// one byte past it and the bundle is rejected with *codec.TooLargeError.
func Unmarshal(raw []byte, c codec.Codec[Document]) (*Library, error) {
	if bytes.HasPrefix(raw, lz4Magic) {
		limit := 0
		if l, ok := c.(interface{ Limit() int }); ok {
			limit = l.Limit()
		}
		b, err := inflate(raw, limit)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	doc, err := c.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("bundle: decode document: %w", err)
	}
	return Decode(doc)
}

func inflate(raw []byte, limit int) ([]byte, error) {
	var r io.Reader = lz4.NewReader(bytes.NewReader(raw))
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bundle: lz4: %w", err)
	}
	if limit > 0 && len(b) > limit {
		return nil, fmt.Errorf("bundle: lz4: %w", &codec.TooLargeError{Size: len(b), Max: limit})
	}
	return b, nil
}

// Compress lz4-frames an encoded document.
func Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fetcher adapts a byte Source into the loader's fetch contract.
// The library id is the requested name when the document leaves it empty.
func Fetcher(src fetch.Source, c codec.Codec[Document]) loader.FetchFunc[*Library] {
	if c == nil {
		c = codec.JSON[Document]{}
	}
	return func(ctx context.Context, name string) (*Library, error) {
		raw, err := src.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		lib, err := Unmarshal(raw, c)
		if err != nil {
			return nil, err
		}
		if lib.ID == "" {
			lib.ID = name
		}
		return lib, nil
	}
}
