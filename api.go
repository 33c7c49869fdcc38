package wardrobe

import (
	"errors"
	"slices"
	"sync"

	"github.com/gogpu/gg/cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/wardrobe/bundle"
	"github.com/unkn0wn-root/wardrobe/catalog"
	"github.com/unkn0wn-root/wardrobe/layout"
	"github.com/unkn0wn-root/wardrobe/loader"
	"github.com/unkn0wn-root/wardrobe/log"
	"github.com/unkn0wn-root/wardrobe/render"
)

const tracerName = "github.com/unkn0wn-root/wardrobe"

// Options configure a Compositor.
// Catalog, Loader and Surface are required; others have sensible defaults.
type Options struct {
	// Required
	Catalog *catalog.Catalog
	Loader  *loader.Loader[*bundle.Library]
	Surface render.Surface

	Logger       Logger       // if nil, NopLogger is used
	Hooks        Hooks        // if nil, NopHooks is used
	Tracer       trace.Tracer // nil => global otel tracer
	Geometry     string       // "" => "vertical"
	HiddenLayers []string     // nil => DefaultHiddenLayers; empty non-nil => none
	Grid         layout.Grid  // zero fields => layout defaults
	Container    string       // Surface.Resize target; "" => "picker"
	// BakeCacheSize memoizes baked textures per identical input (per shard).
	// <=0 disables the memo.
	BakeCacheSize int
}

// Request selects what a pass composes.
type Request struct {
	SetType string
	Gender  string // "" => "M"; "U" entries always qualify
	// Colors holds the color id chosen for each 1-based color slot.
	Colors []string
	// Selected is the entry highlighted in this pass; "" => Compositor selection.
	Selected string
}

// Compositor turns set entries into baked thumbnails. Safe for concurrent use.
type Compositor struct {
	cat    *catalog.Catalog
	ld     *loader.Loader[*bundle.Library]
	surf   render.Surface
	log    Logger
	hooks  Hooks
	tracer trace.Tracer

	geometry  string
	hidden    []string
	grid      layout.Grid
	container string

	bakes *cache.ShardedCache[string, *render.Texture] // nil => disabled

	mu       sync.Mutex
	selected string
}

func New(opts Options) (*Compositor, error) {
	if opts.Catalog == nil {
		return nil, errors.New("wardrobe: catalog is required")
	}
	if opts.Loader == nil {
		return nil, errors.New("wardrobe: loader is required")
	}
	if opts.Surface == nil {
		return nil, errors.New("wardrobe: surface is required")
	}

	c := &Compositor{
		cat:       opts.Catalog,
		ld:        opts.Loader,
		surf:      opts.Surface,
		log:       log.OrNop(opts.Logger),
		hooks:     NopHooks{},
		tracer:    opts.Tracer,
		geometry:  coalesce(opts.Geometry, DefaultGeometry),
		hidden:    DefaultHiddenLayers,
		grid:      opts.Grid.Normalize(),
		container: coalesce(opts.Container, DefaultContainer),
	}
	if opts.Hooks != nil {
		c.hooks = opts.Hooks
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	if opts.HiddenLayers != nil {
		c.hidden = slices.Clone(opts.HiddenLayers)
	}
	if opts.BakeCacheSize > 0 {
		c.bakes = cache.NewSharded[string, *render.Texture](opts.BakeCacheSize, cache.StringHasher)
	}
	return c, nil
}

// Select marks entryID as the current selection and reports it to Hooks.
// Later passes without Request.Selected highlight it.
func (c *Compositor) Select(entryID string) {
	c.mu.Lock()
	changed := c.selected != entryID
	c.selected = entryID
	c.mu.Unlock()
	if changed {
		c.hooks.EntrySelected(entryID)
	}
}

// Selected returns the current selection.
func (c *Compositor) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Grid returns the effective grid.
func (c *Compositor) Grid() layout.Grid { return c.grid }
