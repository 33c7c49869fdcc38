// Package genstore keeps a revision counter per cached bundle. A persisted
// bundle is served only while its framed revision equals the current one, so
// bumping a revision invalidates every replica's copy at once.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where revisions live.
// Use LocalGenStore for a single process, RedisGenStore for revisions shared
// by every replica reading the same provider.
type GenStore interface {
	// Snapshot returns the current revision; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new revision.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	Close(context.Context) error
}
