package wardrobe

import (
	"context"
	"slices"
	"sync"

	"github.com/unkn0wn-root/wardrobe/catalog"
	"github.com/unkn0wn-root/wardrobe/layout"
	"github.com/unkn0wn-root/wardrobe/render"
)

// Result is the outcome of one entry. Exactly one of Texture and Err is set.
type Result struct {
	Index   int // position in catalog order, and grid cell index
	EntryID string
	Cell    layout.Cell
	Texture *render.Texture
	Err     error
}

// Pass is one Generate run. Entries and cells are fixed at creation; results
// arrive as entries finish.
type Pass struct {
	ID       string
	SetType  string
	Selected string

	entries []catalog.Entry
	cells   []layout.Cell
	results chan Result
	done    chan struct{}

	mu        sync.Mutex
	slots     []Result
	remaining int
}

func newPass(id, setType, selected string, entries []catalog.Entry, cells []layout.Cell) *Pass {
	p := &Pass{
		ID:        id,
		SetType:   setType,
		Selected:  selected,
		entries:   entries,
		cells:     cells,
		results:   make(chan Result, len(entries)),
		done:      make(chan struct{}),
		slots:     make([]Result, len(entries)),
		remaining: len(entries),
	}
	if p.remaining == 0 {
		close(p.results)
		close(p.done)
	}
	return p
}

// Len is the number of eligible entries.
func (p *Pass) Len() int { return len(p.entries) }

// Entries returns the eligible entries in catalog order.
func (p *Pass) Entries() []catalog.Entry { return slices.Clone(p.entries) }

// Cells returns the grid cell of each eligible entry, in catalog order.
func (p *Pass) Cells() []layout.Cell { return slices.Clone(p.cells) }

// Results delivers every Result once, in completion order, then closes.
// The channel is buffered for the whole pass; readers may start late.
func (p *Pass) Results() <-chan Result { return p.results }

// Done is closed once every entry finished.
func (p *Pass) Done() <-chan struct{} { return p.done }

// Wait blocks until every entry finished and returns the results in catalog
// order. Failed entries carry their error in Result.Err; the returned error
// is only ever ctx.Err().
func (p *Pass) Wait(ctx context.Context) ([]Result, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.slots), nil
}

// Failed returns the failed results seen so far, in catalog order.
func (p *Pass) Failed() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Result
	for _, r := range p.slots {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// record never blocks: results holds one slot per entry.
func (p *Pass) record(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots[r.Index] = r
	p.results <- r
	p.remaining--
	if p.remaining == 0 {
		close(p.results)
		close(p.done)
	}
}
