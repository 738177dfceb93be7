// Package cache provides the byte cache shared by the collagefm HTTP clients
// and image loader.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entries under a directory, for CLI use
//   - [RedisCache]: shared cache for the HTTP API and scheduler
//   - [BadgerCache]: embedded key-value store, on disk or in memory
//
// All backends treat a zero TTL as "never expires".
//
// # Keys
//
// Keys are built by a [Keyer] so that every component namespaces its entries
// the same way. [ScopedKeyer] adds a prefix for multi-tenant isolation.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLChart     = time.Hour
	TTLTrackInfo = 7 * 24 * time.Hour
	TTLImage     = 7 * 24 * time.Hour
	TTLArtist    = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Get returns (nil, false, nil) on a miss; an error means the backend itself
// failed. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names a cache implementation.
type Backend string

const (
	BackendNone   Backend = "none"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendBadger Backend = "badger"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend  Backend
	Dir      string // file and badger; empty badger dir means in-memory
	RedisURL string
}

// Open creates the cache described by opts. An empty backend disables caching.
func Open(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	}

	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(opts.RedisURL)
	case BackendBadger:
		c, err = NewBadgerCache(opts.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be none, file, redis or badger)", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
