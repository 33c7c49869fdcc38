package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/wardrobe/fetch"
	"github.com/unkn0wn-root/wardrobe/genstore"
	"github.com/unkn0wn-root/wardrobe/log"
	"github.com/unkn0wn-root/wardrobe/provider"
	bcp "github.com/unkn0wn-root/wardrobe/provider/bigcache"
	rdp "github.com/unkn0wn-root/wardrobe/provider/redis"
	rsp "github.com/unkn0wn-root/wardrobe/provider/ristretto"
)

// source builds the bundle byte source, wrapped in a read-through cache
// when a provider is configured. The closer releases everything it opened.
func source(cfg config, logger log.Logger) (fetch.Source, func(context.Context) error, error) {
	var origin fetch.Source
	if cfg.BundleURL != "" {
		origin = fetch.HTTP{BaseURL: cfg.BundleURL, Ext: cfg.BundleFormat.Ext(), MaxBytes: cfg.BundleMaxBytes}
	} else {
		origin = fetch.Dir{Root: cfg.BundleDir, Ext: cfg.BundleFormat.Ext()}
	}
	nop := func(context.Context) error { return nil }
	if cfg.Cache == "none" {
		return origin, nop, nil
	}

	var rdb goredis.UniversalClient
	if cfg.Cache == "redis" || cfg.Revisions == "redis" {
		rdb = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	}
	closeRedis := func() error {
		if rdb == nil {
			return nil
		}
		return rdb.Close()
	}

	p, err := newProvider(cfg, rdb)
	if err != nil {
		_ = closeRedis()
		return nil, nop, err
	}

	var revs genstore.GenStore
	if cfg.Revisions == "redis" {
		if revs, err = genstore.NewRedisGenStore(genstore.RedisOptions{
			Client:    rdb,
			Namespace: cfg.CacheNamespace,
			TTL:       cfg.RevisionTTL,
		}); err != nil {
			_ = p.Close(context.Background())
			_ = closeRedis()
			return nil, nop, err
		}
	}

	cached, err := fetch.NewCached(fetch.CachedOptions{
		Inner:     origin,
		Provider:  p,
		Revisions: revs,
		Namespace: cfg.CacheNamespace,
		TTL:       cfg.CacheTTL,
		Logger:    logger,
	})
	if err != nil {
		_ = p.Close(context.Background())
		_ = closeRedis()
		return nil, nop, err
	}

	closer := func(ctx context.Context) error {
		err := cached.Close(ctx)
		if perr := p.Close(ctx); err == nil {
			err = perr
		}
		if rerr := closeRedis(); err == nil {
			err = rerr
		}
		return err
	}
	return cached, closer, nil
}

func newProvider(cfg config, rdb goredis.UniversalClient) (provider.Provider, error) {
	maxBytes := int64(cfg.CacheMaxMB) << 20
	switch cfg.Cache {
	case "ristretto":
		return rsp.New(rsp.Config{MaxCost: maxBytes})
	case "bigcache":
		return bcp.New(bcp.Config{
			LifeWindow:         cfg.CacheTTL,
			MaxEntriesInWindow: 4096,
			MaxEntrySize:       512 << 10, // initial shard sizing only, larger bundles still fit
			HardMaxCacheSizeMB: cfg.CacheMaxMB,
		})
	case "redis":
		return rdp.New(rdp.Config{Client: rdb, DefaultTTL: cfg.CacheTTL})
	default:
		return nil, fmt.Errorf("unknown cache %q", cfg.Cache)
	}
}
