package localstore

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Transient is a size- and TTL-bounded cache that never outlives the process.
type Transient struct {
	cache *expirable.LRU[string, []byte]
}

func NewTransient(maxEntries int, ttl time.Duration) *Transient {
	return &Transient{cache: expirable.NewLRU[string, []byte](maxEntries, nil, ttl)}
}

func (t *Transient) Get(key string) ([]byte, bool) {
	return t.cache.Get(key)
}

func (t *Transient) Set(key string, value []byte) {
	t.cache.Add(key, value)
}

func (t *Transient) Delete(key string) {
	t.cache.Remove(key)
}

// Clear drops every entry.
func (t *Transient) Clear() {
	t.cache.Purge()
}

func (t *Transient) Len() int {
	return t.cache.Len()
}
