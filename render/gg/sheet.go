package gg

import (
	"image"
	"image/color"

	gogpu "github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/unkn0wn-root/wardrobe/layout"
	"github.com/unkn0wn-root/wardrobe/render"
)

// Tile is one cell of a picker sheet. A nil Texture draws the button only.
type Tile struct {
	ID      string
	Cell    layout.Cell
	Texture *render.Texture
}

// Sheet draws the picker grid: a translucent round button per cell, a white
// ring around the selected one and the baked texture centered on top.
type Sheet struct {
	Grid        layout.Grid
	ButtonColor color.Color // nil => white
	Selected    string
}

const buttonAlpha = 0.25

// Render rasterizes tiles. The canvas is Grid.Width wide and tall enough for
// every tile.
func (s Sheet) Render(tiles []Tile) image.Image {
	dc := s.draw(tiles)
	defer dc.Close()
	return dc.Image()
}

// SavePNG renders tiles into a PNG file at path.
func (s Sheet) SavePNG(path string, tiles []Tile) error {
	dc := s.draw(tiles)
	defer dc.Close()
	return dc.SavePNG(path)
}

func (s Sheet) draw(tiles []Tile) *gogpu.Context {
	g := s.Grid.Normalize()
	h := g.Height(len(tiles))
	for _, t := range tiles {
		h = max(h, t.Cell.Bounds.Max.Y+g.MarginPx())
	}

	dc := gogpu.NewContext(g.Width, h)

	br, bg, bb := rgb(s.ButtonColor)
	border := float64(g.BorderPx())
	for _, t := range tiles {
		c := t.Cell.Bounds
		cx := float64(c.Min.X) + float64(c.Dx())/2
		cy := float64(c.Min.Y) + float64(c.Dy())/2
		r := float64(c.Dx()+c.Dy()) / 4

		dc.SetRGBA(br, bg, bb, buttonAlpha)
		dc.DrawCircle(cx, cy, r)
		_ = dc.Fill()

		if t.ID != "" && t.ID == s.Selected && border > 0 {
			// ring drawn inside the button edge
			dc.SetRGBA(1, 1, 1, 1)
			dc.SetLineWidth(border)
			dc.DrawCircle(cx, cy, r-border/2)
			_ = dc.Stroke()
		}

		if t.Texture == nil {
			continue
		}
		img, pivot := fit(t.Texture, c.Dx(), c.Dy())
		dc.DrawImageEx(gogpu.ImageBufFromImage(img), gogpu.DrawImageOptions{
			X:             float64(c.Min.X + c.Dx()/2 - pivot.X),
			Y:             float64(c.Min.Y + c.Dy()/2 - pivot.Y),
			Interpolation: gogpu.InterpNearest,
			Opacity:       1,
			BlendMode:     gogpu.BlendNormal,
		})
	}
	return dc
}

// fit scales tex down to fit w x h, keeping its aspect ratio and pivot.
func fit(tex *render.Texture, w, h int) (image.Image, image.Point) {
	tw, th := tex.Width(), tex.Height()
	if tw <= w && th <= h {
		return tex.Image, tex.Pivot
	}
	scale := min(float64(w)/float64(tw), float64(h)/float64(th))
	dw := max(int(float64(tw)*scale), 1)
	dh := max(int(float64(th)*scale), 1)
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), tex.Image, tex.Image.Bounds(), xdraw.Src, nil)
	return dst, image.Pt((dw+1)/2, (dh+1)/2)
}

func rgb(c color.Color) (r, g, b float64) {
	if c == nil {
		return 1, 1, 1
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float64(n.R) / 255, float64(n.G) / 255, float64(n.B) / 255
}
