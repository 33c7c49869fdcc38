// Package gg implements render.Surface on top of the gogpu/gg software rasterizer.
package gg

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"

	gogpu "github.com/gogpu/gg"
	"github.com/gogpu/gg/cache"

	"github.com/unkn0wn-root/wardrobe/render"
)

// DefaultTintCacheSize is the per-shard capacity of the tinted image memo.
const DefaultTintCacheSize = 256

type Options struct {
	// TintCacheSize bounds the tinted copy memo per shard; <0 disables it.
	TintCacheSize int
}

// Surface keeps sprite groups in memory until they are baked.
type Surface struct {
	mu     sync.Mutex
	groups map[string][]render.Sprite
	sizes  map[string]image.Point

	tints *cache.ShardedCache[string, *image.NRGBA]
}

var _ render.Surface = (*Surface)(nil)

func New(opts Options) *Surface {
	s := &Surface{
		groups: make(map[string][]render.Sprite),
		sizes:  make(map[string]image.Point),
	}
	if opts.TintCacheSize >= 0 {
		n := opts.TintCacheSize
		if n == 0 {
			n = DefaultTintCacheSize
		}
		s.tints = cache.NewSharded[string, *image.NRGBA](n, cache.StringHasher)
	}
	return s
}

func (s *Surface) DrawSprite(group string, sp render.Sprite) {
	if sp.Image == nil {
		return
	}
	s.mu.Lock()
	s.groups[group] = append(s.groups[group], sp)
	s.mu.Unlock()
}

// Pending reports how many sprites group holds.
func (s *Surface) Pending(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups[group])
}

func (s *Surface) Bake(group string) (*render.Texture, error) {
	s.mu.Lock()
	sprites := s.groups[group]
	delete(s.groups, group)
	s.mu.Unlock()

	if len(sprites) == 0 {
		return nil, fmt.Errorf("%w: %q", render.ErrEmptyGroup, group)
	}

	sort.SliceStable(sprites, func(i, j int) bool { return sprites[i].Z < sprites[j].Z })

	bounds := sprites[0].Rect()
	for _, sp := range sprites[1:] {
		bounds = bounds.Union(sp.Rect())
	}
	if bounds.Empty() {
		return render.EmptyTexture(), nil
	}

	dc := gogpu.NewContext(bounds.Dx(), bounds.Dy())
	defer dc.Close()
	for _, sp := range sprites {
		at := sp.Rect().Min.Sub(bounds.Min)
		dc.DrawImageEx(gogpu.ImageBufFromImage(s.tinted(sp)), gogpu.DrawImageOptions{
			X:             float64(at.X),
			Y:             float64(at.Y),
			Interpolation: gogpu.InterpNearest,
			Opacity:       1,
			BlendMode:     gogpu.BlendNormal,
		})
	}
	return render.NewTexture(dc.Image()), nil
}

func (s *Surface) Resize(container string, width, height int) {
	s.mu.Lock()
	s.sizes[container] = image.Pt(width, height)
	s.mu.Unlock()
}

// Size returns the last size recorded for container.
func (s *Surface) Size(container string) (width, height int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.sizes[container]
	return p.X, p.Y, ok
}

func (s *Surface) tinted(sp render.Sprite) image.Image {
	if sp.Tint == nil {
		return sp.Image
	}
	if s.tints == nil || sp.Name == "" {
		return Tint(sp.Image, sp.Tint)
	}
	// Tint uses straight channels, so the key must too
	tc := color.NRGBAModel.Convert(sp.Tint).(color.NRGBA)
	key := fmt.Sprintf("%s#%02x%02x%02x", sp.Name, tc.R, tc.G, tc.B)
	if img, ok := s.tints.Get(key); ok {
		return img
	}
	img := Tint(sp.Image, sp.Tint)
	s.tints.Set(key, img)
	return img
}

// Tint multiplies the color channels of src by c. Alpha is kept; the alpha
// of c is ignored.
func Tint(src image.Image, c color.Color) *image.NRGBA {
	tc := color.NRGBAModel.Convert(c).(color.NRGBA)
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			p := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, color.NRGBA{
				R: mul8(p.R, tc.R),
				G: mul8(p.G, tc.G),
				B: mul8(p.B, tc.B),
				A: p.A,
			})
		}
	}
	return dst
}

func mul8(a, b uint8) uint8 { return uint8((uint16(a)*uint16(b) + 127) / 255) }
