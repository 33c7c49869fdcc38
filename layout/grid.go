// Package layout places picker cells on a fixed-width grid.
package layout

import "image"

const (
	DefaultCellWidth  = 50
	DefaultCellHeight = 50
	DefaultMargin     = 4
	DefaultBorder     = 4
	DefaultWidth      = 300
)

// Grid describes the picker grid. Zero fields take the Default* values;
// a negative Margin or Border means none.
type Grid struct {
	Width      int // container width the columns are fitted into
	CellWidth  int
	CellHeight int
	Margin     int
	Border     int
}

// Cell is one placed grid cell.
type Cell struct {
	Index  int
	Bounds image.Rectangle
}

// Center returns the center of the cell, rounded down.
func (c Cell) Center() image.Point {
	return image.Pt(c.Bounds.Min.X+c.Bounds.Dx()/2, c.Bounds.Min.Y+c.Bounds.Dy()/2)
}

func coalesce(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Normalize fills zero fields with defaults. It is idempotent.
func (g Grid) Normalize() Grid {
	if g.Width < 0 {
		g.Width = 0
	}
	g.Width = coalesce(g.Width, DefaultWidth)
	g.CellWidth = coalesce(max(g.CellWidth, 0), DefaultCellWidth)
	g.CellHeight = coalesce(max(g.CellHeight, 0), DefaultCellHeight)
	g.Margin = coalesce(g.Margin, DefaultMargin)
	g.Border = coalesce(g.Border, DefaultBorder)
	return g
}

// MarginPx and BorderPx return the effective spacing in pixels.
func (g Grid) MarginPx() int { return max(g.Normalize().Margin, 0) }
func (g Grid) BorderPx() int { return max(g.Normalize().Border, 0) }

// Columns is floor(Width / (CellWidth + 2*Margin)), at least 1.
func (g Grid) Columns() int {
	n := g.Normalize()
	cols := n.Width / (n.CellWidth + 2*g.MarginPx())
	return max(cols, 1)
}

// Cell returns the i-th cell in row-major order.
func (g Grid) Cell(i int) Cell {
	n := g.Normalize()
	m, b := g.MarginPx(), g.BorderPx()
	cols := g.Columns()
	x := b + (n.CellWidth+m+b)*(i%cols)
	y := b + (n.CellHeight+m+b)*(i/cols)
	return Cell{Index: i, Bounds: image.Rect(x, y, x+n.CellWidth, y+n.CellHeight)}
}

// Cells places n cells.
func (g Grid) Cells(n int) []Cell {
	out := make([]Cell, n)
	for i := range out {
		out[i] = g.Cell(i)
	}
	return out
}

// Height is the container height for n cells: the extent of the placed rows
// plus a margin above and below.
func (g Grid) Height(n int) int {
	m := g.MarginPx()
	if n <= 0 {
		return 2 * m
	}
	content := g.Cell(n-1).Bounds.Max.Y - g.Cell(0).Bounds.Min.Y
	return content + 2*m
}
