package secrets

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes a connector's secrets so a context fetches them at most
// once. Concurrent callers racing on the first fetch join a single in-flight
// call instead of triggering duplicates. A failed fetch is not memoized, so
// a later caller can retry.
type Cache struct {
	mu       sync.Mutex
	group    singleflight.Group
	resolved map[string]Secret
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the memoized secrets, fetching them from the store on first
// use.
func (c *Cache) Get(ctx context.Context, store Store, connector string) (map[string]Secret, error) {
	c.mu.Lock()
	if c.resolved != nil {
		cached := c.resolved
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	value, err, _ := c.group.Do(connector, func() (any, error) {
		fetched, err := store.Fetch(ctx, connector)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.resolved = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(map[string]Secret), nil
}
