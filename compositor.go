package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/wardrobe/catalog"
	"github.com/unkn0wn-root/wardrobe/internal/util"
	"github.com/unkn0wn-root/wardrobe/loader"
	"github.com/unkn0wn-root/wardrobe/render"
)

// job is one entry's composition input, fixed when the pass starts.
type job struct {
	setType  string
	entry    catalog.Entry
	colors   []string
	hidden   map[string]struct{}
	hiddenID string // canonical form of hidden, for memo keys
	group    string
}

// Generate starts a pass over every eligible entry of req.SetType.
//
// Eligibility (gender in {req.Gender, "U"} and selectable) and grid cells are
// fixed before any library is requested; each entry is then composed in its
// own goroutine. Generate returns once the pass is started. A failed library
// fails only the entries that need it.
func (c *Compositor) Generate(ctx context.Context, req Request) (*Pass, error) {
	st, ok := c.cat.SetType(req.SetType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrSetTypeNotFound, req.SetType)
	}
	gender := coalesce(req.Gender, DefaultGender)

	eligible := make([]catalog.Entry, 0, len(st.Entries))
	for _, e := range st.Entries {
		if (e.Gender == gender || e.Gender == "U") && e.Selectable {
			eligible = append(eligible, e)
		}
	}

	selected := req.Selected
	if selected == "" {
		selected = c.Selected()
	}
	p := newPass(uuid.NewString(), req.SetType, selected, eligible, c.grid.Cells(len(eligible)))
	c.surf.Resize(c.container, c.grid.Width, c.grid.Height(len(eligible)))

	c.log.Debug("pass started", Fields{
		"pass":     p.ID,
		"set_type": req.SetType,
		"gender":   gender,
		"entries":  len(eligible),
	})

	colors := slices.Clone(req.Colors)
	for i, e := range eligible {
		j := c.newJob(st, e, colors, p.ID+"/"+e.ID)
		go c.runEntry(ctx, p, i, j)
	}
	return p, nil
}

// Compose composes a single entry of req.SetType synchronously, ignoring
// eligibility. Failed libraries surface as *CompositionError.
func (c *Compositor) Compose(ctx context.Context, req Request, entry catalog.Entry) (*render.Texture, error) {
	st, ok := c.cat.SetType(req.SetType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrSetTypeNotFound, req.SetType)
	}
	return c.compose(ctx, c.newJob(st, entry, slices.Clone(req.Colors), uuid.NewString()))
}

func (c *Compositor) newJob(st catalog.SetType, e catalog.Entry, colors []string, group string) job {
	hidden := hiddenSet(c.hidden, st.HiddenLayers, e.HiddenLayers)
	ids := make([]string, 0, len(hidden))
	for t := range hidden {
		ids = append(ids, t)
	}
	slices.Sort(ids)
	return job{
		setType:  st.Type,
		entry:    e,
		colors:   colors,
		hidden:   hidden,
		hiddenID: strings.Join(ids, ","),
		group:    group,
	}
}

func (c *Compositor) runEntry(ctx context.Context, p *Pass, i int, j job) {
	tex, err := c.compose(ctx, j)
	if err != nil {
		c.log.Warn("composition failed", Fields{"pass": p.ID, "entry": j.entry.ID, "err": err})
		c.hooks.CompositionFailed(j.entry.ID, err)
	} else {
		c.hooks.CompositionComplete(j.entry.ID, tex)
	}
	p.record(Result{
		Index:   i,
		EntryID: j.entry.ID,
		Cell:    p.cells[i],
		Texture: tex,
		Err:     err,
	})
}

func (c *Compositor) compose(ctx context.Context, j job) (_ *render.Texture, err error) {
	e := j.entry
	ctx, span := c.tracer.Start(ctx, "wardrobe.compose", trace.WithAttributes(
		attribute.String("wardrobe.entry", e.ID),
		attribute.Int("wardrobe.parts", len(e.Parts)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "composition failed")
		}
		span.End()
	}()

	key := c.bakeKey(j)
	if c.bakes != nil {
		if tex, ok := c.bakes.Get(key); ok {
			span.SetAttributes(attribute.Bool("wardrobe.bake_cached", true))
			return tex, nil
		}
	}

	parts, libs := c.discover(e)
	span.SetAttributes(attribute.StringSlice("wardrobe.libraries", libs))
	if len(libs) > 0 {
		if err := c.ld.Request(ctx, libs...).Wait(ctx); err != nil {
			return nil, &CompositionError{EntryID: e.ID, Err: err}
		}
	}

	drawn := 0
	for _, p := range parts {
		if c.drawPart(j, p) {
			drawn++
		}
	}

	tex, err := c.surf.Bake(j.group)
	switch {
	case errors.Is(err, render.ErrEmptyGroup):
		tex = render.EmptyTexture()
	case err != nil:
		return nil, &CompositionError{EntryID: e.ID, Err: err}
	}

	c.log.Debug("entry baked", Fields{"entry": e.ID, "layers": drawn, "w": tex.Width(), "h": tex.Height()})
	if c.bakes != nil {
		c.bakes.Set(key, tex)
	}
	return tex, nil
}

// discover returns the parts that resolve to a library, and the distinct
// libraries to load for them in first-seen order: each part's own library
// plus the aliased texture library when the part type has one.
func (c *Compositor) discover(e catalog.Entry) ([]catalog.Part, []string) {
	parts := make([]catalog.Part, 0, len(e.Parts))
	var libs []string
	seen := make(map[string]struct{}, len(e.Parts))
	add := func(lib string) {
		if _, dup := seen[lib]; !dup {
			seen[lib] = struct{}{}
			libs = append(libs, lib)
		}
	}

	for _, p := range e.Parts {
		lib, ok := c.cat.LibraryFor(p.Type, p.ID)
		if !ok {
			c.hooks.PartSkipped(e.ID, p.Type, SkipNoLibrary)
			continue
		}
		parts = append(parts, p)
		add(lib)
		if t := textureType(p.Type); t != p.Type {
			if alias, ok := c.cat.LibraryFor(t, p.ID); ok {
				add(alias)
			}
		}
	}
	return parts, libs
}

// drawPart resolves one part and submits it to the entry's group.
func (c *Compositor) drawPart(j job, p catalog.Part) bool {
	e := j.entry
	if _, hidden := j.hidden[p.Type]; hidden {
		c.hooks.PartSkipped(e.ID, p.Type, SkipHidden)
		return false
	}

	libID, ok := c.cat.LibraryFor(textureType(p.Type), p.ID)
	if !ok {
		c.hooks.PartSkipped(e.ID, p.Type, SkipNoLibrary)
		return false
	}
	lib, state, _ := c.ld.Get(libID)
	if state != loader.Ready || lib == nil {
		c.hooks.PartSkipped(e.ID, p.Type, SkipNoLibrary)
		return false
	}

	res, ok := resolveTexture(lib, libID, p)
	if !ok {
		c.hooks.PartSkipped(e.ID, p.Type, SkipNoTexture)
		return false
	}

	sp := render.Sprite{
		Name:  res.texture,
		Image: res.img,
	}
	if res.asset != "" {
		sp.Pivot = parseOffset(lib.Assets[res.asset].Offset)
	}
	if _, never := untintedTypes[p.Type]; p.Colorable && !never {
		if col, ok := c.cat.ColorFor(e.PaletteID, colorChoice(j.colors, p.ColorIndex)); ok {
			sp.Tint = col
		}
	}
	if z, ok := c.cat.ZOrderFor(p.Type, c.geometry); ok {
		sp.Z = z
	}

	c.surf.DrawSprite(j.group, sp)
	return true
}

// bakeKey identifies everything a baked texture depends on besides library
// contents, which never change for a Loader.
func (c *Compositor) bakeKey(j job) string {
	var b strings.Builder
	b.WriteString(j.setType)
	b.WriteByte('|')
	b.WriteString(j.entry.PaletteID)
	b.WriteByte('|')
	b.WriteString(j.entry.ID)
	b.WriteByte('|')
	b.WriteString(c.geometry)
	b.WriteByte('|')
	b.WriteString(j.hiddenID)
	for _, p := range j.entry.Parts {
		b.WriteByte('|')
		b.WriteString(p.Type)
		b.WriteByte(':')
		b.WriteString(p.ID)
		if p.Colorable {
			b.WriteByte('#')
			b.WriteString(strconv.Quote(colorChoice(j.colors, p.ColorIndex)))
		}
	}
	return util.DigestKey("bake", b.String())
}
