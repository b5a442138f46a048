package capability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Key identifies a cached snapshot.
// The role code, not the legacy label, is part of the key so that every
// spelling of a label shares one entry.
type Key struct {
	TenantID int
	UserID   uuid.UUID
	RoleCode string
}

// NewKey returns the key of a principal.
func NewKey(tenantID int, userID uuid.UUID, legacyRole string) Key {
	return Key{TenantID: tenantID, UserID: userID, RoleCode: ToRoleCode(legacyRole)}
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s:%s", k.TenantID, k.UserID, k.RoleCode)
}

// userKeys enumerates every key a user can be cached under.
func userKeys(tenantID int, userID uuid.UUID) []Key {
	codes := RoleCodes()

	keys := make([]Key, len(codes))
	for i, code := range codes {
		keys[i] = Key{TenantID: tenantID, UserID: userID, RoleCode: code}
	}

	return keys
}

// Tier is one storage level of the snapshot cache.
// Implementations degrade to misses instead of failing.
type Tier interface {
	Get(ctx context.Context, key Key) (Snapshot, bool)
	Set(ctx context.Context, key Key, snapshot Snapshot)
	Delete(ctx context.Context, keys ...Key)
	DeleteTenant(ctx context.Context, tenantID int)
}

type chain []Tier

// Chain combines tiers: reads return the first hit, writes and deletes go to all of them.
func Chain(tiers ...Tier) Tier {
	if len(tiers) == 1 {
		return tiers[0]
	}

	return chain(tiers)
}

func (c chain) Get(ctx context.Context, key Key) (Snapshot, bool) {
	for _, t := range c {
		if snapshot, ok := t.Get(ctx, key); ok {
			return snapshot, true
		}
	}

	return Snapshot{}, false
}

func (c chain) Set(ctx context.Context, key Key, snapshot Snapshot) {
	for _, t := range c {
		t.Set(ctx, key, snapshot)
	}
}

func (c chain) Delete(ctx context.Context, keys ...Key) {
	for _, t := range c {
		t.Delete(ctx, keys...)
	}
}

func (c chain) DeleteTenant(ctx context.Context, tenantID int) {
	for _, t := range c {
		t.DeleteTenant(ctx, tenantID)
	}
}

// Source tells where a served snapshot came from.
type Source string

const (
	// SourceFresh is a hit in the fresh tier.
	SourceFresh Source = "fresh"
	// SourceBuilt is a snapshot rebuilt from the store.
	SourceBuilt Source = "built"
	// SourceStale is the stale mirror served after a failed rebuild.
	SourceStale Source = "stale"
	// SourceLegacy is a disabled snapshot served when nothing else was available.
	SourceLegacy Source = "legacy"
)

// Cache serves snapshots from a fresh tier, rebuilds on a miss and falls back
// to the stale tier and finally to a legacy snapshot when the rebuild fails.
// Concurrent misses of the same key share one rebuild.
type Cache struct {
	builder SnapshotBuilder
	fresh   Tier
	stale   Tier
	timeout time.Duration
	metrics *Metrics
	group   singleflight.Group
	now     func() time.Time

	// epochs move on every invalidation; a build started under an older
	// epoch is returned to its waiters but never written to the tiers.
	mu           sync.Mutex
	tenantEpochs map[int]uint64
	userEpochs   map[userScope]uint64
}

type userScope struct {
	tenantID int
	userID   uuid.UUID
}

type epoch struct {
	tenant, user uint64
}

// NewCache returns a Cache rebuilding through builder.
func NewCache(builder SnapshotBuilder, fresh, stale Tier, opts Options, metrics *Metrics) *Cache {
	opts = opts.WithDefaults()

	return &Cache{
		builder: builder,
		fresh:   fresh,
		stale:   stale,
		timeout: opts.BuildTimeout,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },

		tenantEpochs: make(map[int]uint64),
		userEpochs:   make(map[userScope]uint64),
	}
}

func (c *Cache) epochLocked(key Key) epoch {
	return epoch{
		tenant: c.tenantEpochs[key.TenantID],
		user:   c.userEpochs[userScope{tenantID: key.TenantID, userID: key.UserID}],
	}
}

func (c *Cache) epochOf(key Key) epoch {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.epochLocked(key)
}

// store writes a built snapshot unless the key was invalidated since started.
func (c *Cache) store(ctx context.Context, key Key, started epoch, snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epochLocked(key) != started {
		log.Debug().Str("key", key.String()).Msg("discarding snapshot built before an invalidation")
		return
	}

	c.fresh.Set(ctx, key, snapshot)
	c.stale.Set(ctx, key, snapshot)
}

// Get returns the snapshot of a principal. It never fails.
func (c *Cache) Get(ctx context.Context, userID uuid.UUID, tenantID int, legacyRole string) (Snapshot, Source) {
	key := NewKey(tenantID, userID, legacyRole)

	if snapshot, ok := c.fresh.Get(ctx, key); ok {
		c.metrics.lookup(SourceFresh)
		return snapshot.withLabel(legacyRole), SourceFresh
	}

	res := c.rebuild(ctx, key, legacyRole)
	if res.Usable() {
		c.metrics.lookup(SourceBuilt)
		return res.Snapshot.withLabel(legacyRole), SourceBuilt
	}

	if snapshot, ok := c.stale.Get(ctx, key); ok {
		log.Warn().Err(res.Err).Str("key", key.String()).Msg("serving stale snapshot")
		c.metrics.lookup(SourceStale)

		return snapshot.withLabel(legacyRole), SourceStale
	}

	log.Warn().Err(res.Err).Str("key", key.String()).Msg("serving legacy snapshot")
	c.metrics.lookup(SourceLegacy)

	return DisabledSnapshot(userID, tenantID, legacyRole, versionOf(c.now())), SourceLegacy
}

// rebuild runs one build per key at a time.
// The build is detached from the caller so a cancelled request does not fail
// the other waiters; every waiter still honors its own context.
func (c *Cache) rebuild(ctx context.Context, key Key, legacyRole string) BuildResult {
	started := c.epochOf(key)
	flight := fmt.Sprintf("%s@%d.%d", key, started.tenant, started.user)

	ch := c.group.DoChan(flight, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		start := time.Now()
		res := c.builder.Build(bctx, key.UserID, key.TenantID, legacyRole)
		c.metrics.build(res.Kind, time.Since(start))

		// cache writes happen only after the store call returned
		if res.Usable() {
			c.store(bctx, key, started, res.Snapshot)
		}

		return res, nil
	})

	select {
	case <-ctx.Done():
		return BuildResult{Kind: ResultStoreError, Err: &StoreError{Op: "build", Err: ctx.Err()}}
	case r := <-ch:
		res, _ := r.Val.(BuildResult)
		return res
	}
}

// Invalidate removes every fresh and stale entry of a user.
// Builds already running for the user are not cached.
func (c *Cache) Invalidate(ctx context.Context, tenantID int, userID uuid.UUID) {
	keys := userKeys(tenantID, userID)

	c.mu.Lock()
	c.userEpochs[userScope{tenantID: tenantID, userID: userID}]++
	c.mu.Unlock()

	c.fresh.Delete(ctx, keys...)
	c.stale.Delete(ctx, keys...)
	c.metrics.invalidation("user")
}

// InvalidateTenant removes every entry of a tenant.
// Builds already running for the tenant are not cached.
func (c *Cache) InvalidateTenant(ctx context.Context, tenantID int) {
	c.mu.Lock()
	c.tenantEpochs[tenantID]++
	c.mu.Unlock()

	c.fresh.DeleteTenant(ctx, tenantID)
	c.stale.DeleteTenant(ctx, tenantID)
	c.metrics.invalidation("tenant")
}
