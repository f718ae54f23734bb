// Package cache defines the byte-value cache contract shared by the
// short-lived result cache and the long-lived provider cache.
package cache

type Interface interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte)
}

// Noop satisfies Interface with no storage. Used when caching is disabled.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) { return nil, false }
func (Noop) Set(string, []byte)        {}

// Layered reads through a fast short-TTL tier into a slower long-TTL tier,
// promoting long-tier hits back into the short tier. Writes land in both.
type Layered struct {
	Short Interface
	Long  Interface
}

func (l Layered) Get(key string) ([]byte, bool) {
	if b, ok := l.Short.Get(key); ok {
		return b, true
	}
	if b, ok := l.Long.Get(key); ok {
		l.Short.Set(key, b)
		return b, true
	}
	return nil, false
}

func (l Layered) Set(key string, val []byte) {
	l.Short.Set(key, val)
	l.Long.Set(key, val)
}
