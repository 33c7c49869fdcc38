// Package bigcache keeps framed bundles off the GC-scanned heap in bigcache
// shards. Expiry is global (LifeWindow); per-bundle TTLs are ignored.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/wardrobe/provider"
)

type Config struct {
	LifeWindow         time.Duration // 0 => 1h
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int // initial shard sizing hint in bytes; bundles run to hundreds of KiB
	HardMaxCacheSizeMB int // 0 = unlimited
}

type Provider struct {
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = time.Hour
	}
	conf := bc.DefaultConfig(life)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	} else {
		conf.CleanWindow = life / 4
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	switch {
	case errors.Is(err, bc.ErrEntryNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	if err := p.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}

// Len is the number of stored bundles, expired ones included until cleanup.
func (p *Provider) Len() int { return p.c.Len() }

// Stats returns the hit, miss and collision counters.
func (p *Provider) Stats() bc.Stats { return p.c.Stats() }
