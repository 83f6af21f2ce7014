// Package cache stores rendered diagrams so unchanged family graphs are not
// sent through Graphviz twice.
//
// Keys come from [RenderKey], a SHA-256 over the DOT source and the output
// format, so any change to a person, a link or a position yields a new key
// and stale entries are simply never read again.
//
// Two implementations are provided:
//   - [FileCache]: entries on disk, used by the CLI (~/.cache/kintree)
//   - [NullCache]: stores nothing, for --no-cache and tests
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiration.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired and unreadable entries are misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
