// Package cache stores compiled templates for the lifetime of a view
// instance. Entries live in one of two tiers so content templates (keyed by
// file path) and layouts (keyed by layout name) never collide.
package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/goliatone/go-viewkit/pkg/engine"
)

// Tier partitions the key space.
type Tier string

const (
	TierContent Tier = "content"
	TierLayout  Tier = "layout"
)

// Cache is a goroutine-safe, append-mostly store of compiled templates. It
// has no eviction and no TTL: the template set of an application is bounded
// by its view tree.
type Cache struct {
	items *gocache.Cache
}

// New creates an empty cache. The zero janitor interval keeps go-cache from
// starting a cleanup goroutine.
func New() *Cache {
	return &Cache{items: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the template stored under (tier, key).
func (c *Cache) Get(tier Tier, key string) (engine.Template, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	value, ok := c.items.Get(composeKey(tier, key))
	if !ok {
		return nil, false
	}
	tpl, ok := value.(engine.Template)
	return tpl, ok
}

// Put stores tpl under (tier, key) when enabled is true. Writing a key twice
// is harmless: both values compile from the same source.
func (c *Cache) Put(tier Tier, key string, tpl engine.Template, enabled bool) bool {
	if c == nil || !enabled || key == "" || tpl == nil {
		return false
	}
	c.items.Set(composeKey(tier, key), tpl, gocache.NoExpiration)
	return true
}

// Len reports the number of cached templates across both tiers.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.items.ItemCount()
}

// Flush drops every entry. Views edited on disk are picked up on the next
// render afterwards.
func (c *Cache) Flush() {
	if c == nil {
		return
	}
	c.items.Flush()
}

func composeKey(tier Tier, key string) string {
	return string(tier) + "\x00" + key
}
