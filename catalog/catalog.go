// Package catalog is a read-only view over figure metadata: set types and
// their entries, the part -> library index, palettes and geometry stacking.
//
// A Catalog is immutable after Build and safe for concurrent use. Lookups
// never fail loudly: a miss is reported through the ok result and callers
// apply their own skip or fallback rule.
package catalog

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	ErrSetTypeNotFound = errors.New("catalog: set type not found")
	ErrLibIndex        = errors.New("catalog: library index out of range")
	ErrBadColor        = errors.New("catalog: invalid palette color")
)

// Part is one body part slot of an Entry.
type Part struct {
	Type       string
	ID         string
	Colorable  bool
	ColorIndex int // 1-based color slot
}

// Entry is one selectable variant of a set type.
type Entry struct {
	ID           string
	Gender       string
	Selectable   bool
	PaletteID    string
	HiddenLayers []string
	Parts        []Part
}

// SetType groups entries sharing a palette.
type SetType struct {
	Type         string
	PaletteID    string
	HiddenLayers []string
	Entries      []Entry // natural order
}

type palette struct {
	order  []string
	colors map[string]color.NRGBA
}

type Catalog struct {
	setTypes map[string]SetType
	libs     map[string]map[string]string   // part type -> part id -> library
	palettes map[string]palette             // palette id -> colors
	zorder   map[string]map[string]float64 // geometry -> part type -> order
}

// Build indexes the three documents. Entries, palettes and geometry body parts
// keep the natural order of their keys.
func Build(fd FigureData, fm FigureMap, geo Geometry) (*Catalog, error) {
	c := &Catalog{
		setTypes: make(map[string]SetType, len(fd.SetTypes)),
		libs:     make(map[string]map[string]string, len(fm.Parts)),
		palettes: make(map[string]palette, len(fd.Palettes)),
		zorder:   make(map[string]map[string]float64, len(geo.Types)),
	}

	for typ, st := range fd.SetTypes {
		out := SetType{
			Type:         typ,
			PaletteID:    st.PaletteID,
			HiddenLayers: append([]string(nil), st.HiddenLayers...),
			Entries:      make([]Entry, 0, len(st.Sets)),
		}
		for _, id := range naturalKeys(st.Sets) {
			e := st.Sets[id]
			entry := Entry{
				ID:           id,
				Gender:       e.Gender,
				Selectable:   e.Selectable == 1,
				PaletteID:    st.PaletteID,
				HiddenLayers: append([]string(nil), e.HiddenLayers...),
				Parts:        make([]Part, 0, len(e.Parts)),
			}
			for _, p := range e.Parts {
				entry.Parts = append(entry.Parts, Part{
					Type:       p.Type,
					ID:         p.ID,
					Colorable:  p.Colorable == 1,
					ColorIndex: p.ColorIndex,
				})
			}
			out.Entries = append(out.Entries, entry)
		}
		c.setTypes[typ] = out
	}

	for typ, ids := range fm.Parts {
		m := make(map[string]string, len(ids))
		for id, idx := range ids {
			if idx < 0 || idx >= len(fm.Libs) {
				return nil, fmt.Errorf("%w: parts[%s][%s]=%d (libs=%d)", ErrLibIndex, typ, id, idx, len(fm.Libs))
			}
			m[id] = fm.Libs[idx].ID
		}
		c.libs[typ] = m
	}

	for pid, colors := range fd.Palettes {
		p := palette{order: naturalKeys(colors), colors: make(map[string]color.NRGBA, len(colors))}
		for id, pc := range colors {
			col, err := ParseColor(pc.Color)
			if err != nil {
				return nil, fmt.Errorf("palette %s color %s: %w", pid, id, err)
			}
			p.colors[id] = col
		}
		c.palettes[pid] = p
	}

	for name, bodyParts := range geo.Types {
		z := make(map[string]float64)
		// the first body part (natural order) listing a type owns its order
		for _, bp := range naturalKeys(bodyParts) {
			for typ, item := range bodyParts[bp].Items {
				if _, taken := z[typ]; !taken {
					z[typ] = item.Radius
				}
			}
		}
		c.zorder[name] = z
	}

	return c, nil
}

// SetType returns the set type with its entries in natural order.
func (c *Catalog) SetType(setType string) (SetType, bool) {
	st, ok := c.setTypes[setType]
	return st, ok
}

// Entries returns every entry of setType in natural order, eligible or not.
func (c *Catalog) Entries(setType string) ([]Entry, error) {
	st, ok := c.setTypes[setType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetTypeNotFound, setType)
	}
	return st.Entries, nil
}

// PartsForSet returns the ordered parts of one entry.
func (c *Catalog) PartsForSet(setType, entryID string) ([]Part, bool) {
	st, ok := c.setTypes[setType]
	if !ok {
		return nil, false
	}
	for _, e := range st.Entries {
		if e.ID == entryID {
			return e.Parts, true
		}
	}
	return nil, false
}

// LibraryFor returns the library owning the sprites of (partType, partID).
func (c *Catalog) LibraryFor(partType, partID string) (string, bool) {
	lib, ok := c.libs[partType][partID]
	return lib, ok && lib != ""
}

// ColorFor returns the palette color colorID, falling back to the palette's
// first color when colorID is absent. ok is false only for unknown or empty palettes.
func (c *Catalog) ColorFor(paletteID, colorID string) (color.NRGBA, bool) {
	p, ok := c.palettes[paletteID]
	if !ok || len(p.order) == 0 {
		return color.NRGBA{}, false
	}
	if col, ok := p.colors[colorID]; ok {
		return col, true
	}
	return p.colors[p.order[0]], true
}

// ZOrderFor returns the stacking order of partType in geometry.
func (c *Catalog) ZOrderFor(partType, geometry string) (float64, bool) {
	z, ok := c.zorder[geometry][partType]
	return z, ok
}

// ParseColor parses RRGGBB with an optional "#" or "0x" prefix.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
