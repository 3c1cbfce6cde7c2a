package listings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "catalog:snapshot"

// Cache keeps a short-lived copy of the catalog snapshot in Redis so that
// search traffic does not hammer the snapshot query. It degrades to the
// loader when Redis is unavailable.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// cachedView restores the author locations that ListingView hides from
// API serialization.
type cachedView struct {
	View      ListingView `json:"view"`
	Locations []string    `json:"locations"`
}

// Fetch returns the cached snapshot, populating it via loader on a miss.
func (c *Cache) Fetch(ctx context.Context, loader func(context.Context) ([]ListingView, error)) ([]ListingView, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err == nil {
		if snapshot, ok := decodeSnapshot(raw); ok {
			return snapshot, nil
		}
		// Corrupt entry, fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return loader(ctx)
	}

	snapshot, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := encodeSnapshot(snapshot); err == nil {
		_ = c.client.Set(ctx, snapshotKey, data, c.ttl).Err()
	}
	return snapshot, nil
}

// Invalidate drops the cached snapshot after a mutation.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, snapshotKey).Err()
}

func encodeSnapshot(snapshot []ListingView) ([]byte, error) {
	wrapped := make([]cachedView, len(snapshot))
	for i, v := range snapshot {
		wrapped[i] = cachedView{View: v, Locations: v.AuthorLocations}
	}
	return json.Marshal(wrapped)
}

func decodeSnapshot(raw []byte) ([]ListingView, bool) {
	var wrapped []cachedView
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false
	}
	snapshot := make([]ListingView, len(wrapped))
	for i, cv := range wrapped {
		snapshot[i] = cv.View
		snapshot[i].AuthorLocations = cv.Locations
	}
	return snapshot, true
}
