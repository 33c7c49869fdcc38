package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/wardrobe/genstore"
	"github.com/unkn0wn-root/wardrobe/internal/wire"
	"github.com/unkn0wn-root/wardrobe/log"
	"github.com/unkn0wn-root/wardrobe/provider"
)

var ErrNoInner = errors.New("fetch: Cached requires an inner source")

type CachedOptions struct {
	Inner    Source
	Provider provider.Provider
	// Revisions defaults to an in-process LocalGenStore. Use a shared store
	// when several processes read the same provider.
	Revisions genstore.GenStore
	Namespace string        // "" => "default"
	TTL       time.Duration // 0 => provider default
	// Cost of one bundle for cost-aware providers; nil => framed length.
	Cost   func(name string, framed []byte) int64
	Logger log.Logger
}

// Cached is a read-through byte cache in front of a Source. Entries are
// framed with the bundle revision; corrupt or stale entries are deleted and
// refetched from Inner.
type Cached struct {
	inner Source
	p     provider.Provider
	revs  genstore.GenStore
	ns    string
	ttl   time.Duration
	cost  func(string, []byte) int64
	log   log.Logger
	owned bool
}

var _ Source = (*Cached)(nil)

func NewCached(opts CachedOptions) (*Cached, error) {
	if opts.Inner == nil {
		return nil, ErrNoInner
	}
	if opts.Provider == nil {
		return nil, errors.New("fetch: Cached requires a provider")
	}
	c := &Cached{
		inner: opts.Inner,
		p:     opts.Provider,
		revs:  opts.Revisions,
		ns:    opts.Namespace,
		ttl:   opts.TTL,
		cost:  opts.Cost,
		log:   log.OrNop(opts.Logger),
	}
	if c.ns == "" {
		c.ns = "default"
	}
	if c.revs == nil {
		c.revs = genstore.NewLocalGenStore(0, 0)
		c.owned = true
	}
	if c.cost == nil {
		c.cost = func(_ string, b []byte) int64 { return int64(len(b)) }
	}
	return c, nil
}

// Key returns the provider key of bundle name.
func (c *Cached) Key(name string) string { return "bundle:" + c.ns + ":" + name }

func (c *Cached) Fetch(ctx context.Context, name string) ([]byte, error) {
	k := c.Key(name)

	rev, err := c.revs.Snapshot(ctx, k)
	if err != nil {
		// without a revision the cached copy cannot be validated; go to origin
		c.log.Warn("revision snapshot failed", log.Fields{"key": k, "err": err})
		return c.inner.Fetch(ctx, name)
	}

	raw, ok, err := c.p.Get(ctx, k)
	switch {
	case err != nil:
		c.log.Warn("provider get failed", log.Fields{"key": k, "err": err})
	case ok:
		got, payload, derr := wire.Decode(raw)
		if derr == nil && got == rev {
			c.log.Debug("bundle cache hit", log.Fields{"key": k, "bytes": len(payload)})
			return payload, nil
		}
		reason := "stale"
		if derr != nil {
			reason = "corrupt"
		}
		c.log.Debug("bundle cache self-heal", log.Fields{"key": k, "reason": reason})
		if err := c.p.Del(ctx, k); err != nil {
			c.log.Warn("provider del failed", log.Fields{"key": k, "err": err})
		}
	}

	b, err := c.inner.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	framed := wire.Encode(rev, b)
	if ok, err := c.p.Set(ctx, k, framed, c.cost(name, framed), c.ttl); err != nil {
		c.log.Warn("provider set failed", log.Fields{"key": k, "err": err})
	} else if !ok {
		c.log.Debug("provider rejected bundle", log.Fields{"key": k, "bytes": len(framed)})
	}
	return b, nil
}

// Invalidate bumps the revision of name and deletes the cached copy.
// The bump alone is enough for correctness; the delete frees space early.
func (c *Cached) Invalidate(ctx context.Context, name string) error {
	k := c.Key(name)
	_, bumpErr := c.revs.Bump(ctx, k)
	delErr := c.p.Del(ctx, k)
	if bumpErr == nil {
		if delErr != nil {
			c.log.Debug("provider del failed after bump", log.Fields{"key": k, "err": delErr})
		}
		return nil
	}
	if delErr == nil {
		// the stale copy is gone but a writer holding the old revision may
		// put it back
		return fmt.Errorf("invalidate %q: revision bump: %w", name, bumpErr)
	}
	return &InvalidateError{Name: name, BumpErr: bumpErr, DelErr: delErr}
}

// Close releases the revision store when Cached created it.
func (c *Cached) Close(ctx context.Context) error {
	if c.owned {
		return c.revs.Close(ctx)
	}
	return nil
}

// InvalidateError reports that neither the revision bump nor the delete
// succeeded, usually a backend outage.
type InvalidateError struct {
	Name    string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	return fmt.Sprintf("invalidate %q: bump=%v; delete=%v", e.Name, e.BumpErr, e.DelErr)
}

func (e *InvalidateError) Unwrap() []error { return []error{e.BumpErr, e.DelErr} }
