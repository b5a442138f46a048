package capability

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryTier keeps snapshots in a size bounded, expiring in-process LRU.
type MemoryTier struct {
	cache *lru.LRU[Key, Snapshot]
}

// NewMemoryTier returns a tier holding up to size snapshots for ttl each.
func NewMemoryTier(size int, ttl time.Duration) *MemoryTier {
	return &MemoryTier{cache: lru.NewLRU[Key, Snapshot](size, nil, ttl)}
}

// Get implements Tier.
func (t *MemoryTier) Get(_ context.Context, key Key) (Snapshot, bool) {
	return t.cache.Get(key)
}

// Set implements Tier.
func (t *MemoryTier) Set(_ context.Context, key Key, snapshot Snapshot) {
	t.cache.Add(key, snapshot)
}

// Delete implements Tier.
func (t *MemoryTier) Delete(_ context.Context, keys ...Key) {
	for _, key := range keys {
		t.cache.Remove(key)
	}
}

// DeleteTenant implements Tier.
func (t *MemoryTier) DeleteTenant(_ context.Context, tenantID int) {
	for _, key := range t.cache.Keys() {
		if key.TenantID == tenantID {
			t.cache.Remove(key)
		}
	}
}

// Len returns the number of live entries.
func (t *MemoryTier) Len() int {
	return t.cache.Len()
}
