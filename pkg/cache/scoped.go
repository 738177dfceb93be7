package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several tenants (API
// clients, scheduled jobs) can share one backend without key collisions.
//
//	jobKeyer := NewScopedKeyer(NewDefaultKeyer(), "job:weekly-rj:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) ImageKey(locator string) string {
	return k.prefix + k.inner.ImageKey(locator)
}

func (k *ScopedKeyer) ChartKey(opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(opts)
}

func (k *ScopedKeyer) CollageKey(opts CollageKeyOpts) string {
	return k.prefix + k.inner.CollageKey(opts)
}
