package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ResultCache memoises deterministic simulation results. Cached values are
// shared between callers and must be treated as read-only.
type ResultCache struct {
	c *gocache.Cache
}

func New(ttl, cleanupInterval time.Duration) *ResultCache {
	return &ResultCache{c: gocache.New(ttl, cleanupInterval)}
}

func (r *ResultCache) Get(key string) (interface{}, bool) {
	return r.c.Get(key)
}

func (r *ResultCache) Set(key string, value interface{}) {
	r.c.Set(key, value, gocache.DefaultExpiration)
}

func (r *ResultCache) ItemCount() int {
	return r.c.ItemCount()
}

func (r *ResultCache) Flush() {
	r.c.Flush()
}

// Key joins prefix and params into a cache key. Structs are rendered with
// their field names so two parameter sets only collide when equal.
func Key(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += ":" + fmt.Sprintf("%+v", param)
	}
	return key
}
