package menu

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"credwallet/pkg/platform/sentinel"
)

// ViewCache keeps assembled views addressable by id between interactions.
// A view expires once it has not been read for the configured ttl.
type ViewCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewViewCache creates a cache. A ttl of zero or less keeps views forever.
func NewViewCache(ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		return &ViewCache{cache: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &ViewCache{cache: cache.New(ttl, ttl/2), ttl: ttl}
}

// Put stores v under its id.
func (c *ViewCache) Put(v *View) {
	c.cache.Set(v.ID.String(), v, c.ttl)
}

// Get returns the view with id and extends its lifetime.
func (c *ViewCache) Get(id string) (*View, error) {
	x, found := c.cache.Get(id)
	if !found {
		return nil, fmt.Errorf("view %s: %w", id, sentinel.ErrNotFound)
	}
	v := x.(*View)
	c.cache.Set(id, v, c.ttl)
	return v, nil
}

// Delete drops the view with id.
func (c *ViewCache) Delete(id string) {
	c.cache.Delete(id)
}

// Len reports the number of cached views, including expired ones not yet purged.
func (c *ViewCache) Len() int {
	return c.cache.ItemCount()
}
