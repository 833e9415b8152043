package store

import "context"

// Prefixed scopes a shared Store to one profile by prefixing every key.
type Prefixed struct {
	inner  Store
	prefix string
}

// NewPrefixed returns a Store that reads and writes inner under "prefix:key".
func NewPrefixed(inner Store, prefix string) *Prefixed {
	return &Prefixed{inner: inner, prefix: prefix + ":"}
}

func (p *Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

var _ Store = (*Prefixed)(nil)
