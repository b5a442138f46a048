package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisScanCount = 100

// RedisTier shares snapshots between replicas.
// Without a client every call is a no-op, redis failures are logged and read as misses.
type RedisTier struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisTier returns a tier storing keys below prefix:name with ttl.
func NewRedisTier(client redis.UniversalClient, prefix, name string, ttl time.Duration) *RedisTier {
	return &RedisTier{
		client: client,
		prefix: prefix + ":" + name,
		ttl:    ttl,
	}
}

func (t *RedisTier) cacheKey(key Key) string {
	return fmt.Sprintf("%s:%d:%s:%s", t.prefix, key.TenantID, key.UserID, key.RoleCode)
}

// Get implements Tier.
func (t *RedisTier) Get(ctx context.Context, key Key) (Snapshot, bool) {
	if t.client == nil {
		return Snapshot{}, false
	}

	data, err := t.client.Get(ctx, t.cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", t.cacheKey(key)).Msg("redis snapshot read failed")
		return Snapshot{}, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Warn().Err(err).Str("key", t.cacheKey(key)).Msg("redis snapshot is corrupt")
		return Snapshot{}, false
	}

	return snapshot, true
}

// Set implements Tier.
func (t *RedisTier) Set(ctx context.Context, key Key, snapshot Snapshot) {
	if t.client == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot can not be encoded")
		return
	}

	if err := t.client.Set(ctx, t.cacheKey(key), data, t.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", t.cacheKey(key)).Msg("redis snapshot write failed")
	}
}

// Delete implements Tier.
func (t *RedisTier) Delete(ctx context.Context, keys ...Key) {
	if t.client == nil || len(keys) == 0 {
		return
	}

	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = t.cacheKey(key)
	}

	if err := t.client.Del(ctx, names...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", names).Msg("redis snapshot delete failed")
	}
}

// DeleteTenant implements Tier.
func (t *RedisTier) DeleteTenant(ctx context.Context, tenantID int) {
	if t.client == nil {
		return
	}

	pattern := fmt.Sprintf("%s:%d:*", t.prefix, tenantID)
	iter := t.client.Scan(ctx, 0, pattern, redisScanCount).Iterator()

	var names []string
	for iter.Next(ctx) {
		names = append(names, iter.Val())
	}

	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Int("tenant", tenantID).Msg("redis tenant scan failed")
		return
	}

	if len(names) > 0 {
		if err := t.client.Del(ctx, names...).Err(); err != nil {
			log.Warn().Err(err).Int("tenant", tenantID).Msg("redis tenant delete failed")
		}
	}
}
