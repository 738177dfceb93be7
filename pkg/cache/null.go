package cache

import (
	"context"
	"time"
)

// NullCache is the "none" backend, selected with backend = "none" in the
// [cache] config section or with --no-cache. Every chart, image and
// collage lookup misses, so each run talks to Last.fm and renders afresh.
type NullCache struct{}

// NewNullCache returns the "none" backend.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
