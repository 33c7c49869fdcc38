// Package ristretto keeps framed bundles in a cost-bounded ristretto cache.
// Costs are byte sizes, so MaxCost is the memory budget for bundles.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/wardrobe/provider"
)

// typical framed bundle (atlas plus metadata), used to size the admission counters
const avgBundleBytes = 64 << 10

var ErrNoBudget = errors.New("ristretto provider: MaxCost must be positive")

type Config struct {
	MaxCost     int64 // bytes, required
	NumCounters int64 // 0 => 10 per expected bundle
	BufferItems int64 // 0 => 64
	Metrics     bool
}

type Provider struct {
	c *rc.Cache
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if cfg.MaxCost <= 0 {
		return nil, ErrNoBudget
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = max(10*cfg.MaxCost/avgBundleBytes, 1000)
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set admits value at its byte size when cost is not positive. A false
// result means the admission policy rejected the bundle.
func (p *Provider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if cost <= 0 {
		cost = int64(len(value))
	}
	ok := p.c.SetWithTTL(key, value, cost, max(ttl, 0))
	// writes are buffered; wait so the next pass observes the bundle
	p.c.Wait()
	return ok, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Close()
	return nil
}

// Metrics exposes hit/miss counters; nil unless Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
