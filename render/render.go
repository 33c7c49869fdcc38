// Package render describes the drawing surface the compositor submits layers to.
//
// A surface collects sprites into named groups and bakes a group into one
// texture sized to the bounding box of its sprites. Implementations live in
// subpackages; render/gg rasterizes with gogpu/gg.
package render

import (
	"errors"
	"image"
	"image/color"
)

var ErrEmptyGroup = errors.New("render: group has no sprites")

// Texture is a baked image with its anchor point.
type Texture struct {
	Image image.Image
	Pivot image.Point
}

// NewTexture anchors img at its center, rounded up.
func NewTexture(img image.Image) *Texture {
	b := img.Bounds()
	return &Texture{Image: img, Pivot: image.Pt((b.Dx()+1)/2, (b.Dy()+1)/2)}
}

// EmptyTexture is a single transparent pixel, the bake result of an entry
// whose every part was skipped.
func EmptyTexture() *Texture {
	return NewTexture(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
}

func (t *Texture) Width() int  { return t.Image.Bounds().Dx() }
func (t *Texture) Height() int { return t.Image.Bounds().Dy() }

// Sprite is one layer: an image anchored at Pivot and placed at Position.
// Its top-left corner lands on Position - Pivot.
type Sprite struct {
	// Name identifies the texture; surfaces may key tint memos on it.
	Name     string
	Image    image.Image
	Tint     color.Color // nil => untinted
	Pivot    image.Point
	Position image.Point
	// Z orders sprites within a group, lowest first. Equal values keep
	// submission order.
	Z float64
}

// Rect is the area the sprite covers.
func (s Sprite) Rect() image.Rectangle {
	b := s.Image.Bounds()
	min := s.Position.Sub(s.Pivot)
	return image.Rectangle{Min: min, Max: min.Add(b.Size())}
}

// Surface accepts sprite groups and bakes them. Implementations must be safe
// for concurrent use across distinct groups.
type Surface interface {
	DrawSprite(group string, s Sprite)
	// Bake flattens group into one texture and releases the group.
	// An unknown or empty group returns ErrEmptyGroup.
	Bake(group string) (*Texture, error)
	// Resize records the rendered size of a container.
	Resize(container string, width, height int)
}
