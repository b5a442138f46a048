package capability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/isl-service/capcore/internal/db/controller/companysetting"
)

// Config wires a Service.
type Config struct {
	DB      *gorm.DB
	Options Options
	// Redis adds a shared tier behind each in-process tier when set.
	Redis       redis.UniversalClient
	RedisPrefix string
	// Registerer receives the cache metrics, prometheus.DefaultRegisterer when nil.
	Registerer prometheus.Registerer
	// Legacy replaces DefaultLegacyPolicy when set.
	Legacy LegacyPolicy
}

// Service is the entry point of the capability subsystem: snapshots,
// authorization decisions, readers and mutators of one tenant database.
type Service struct {
	opts       Options
	store      *Store
	flags      *FeatureFlags
	cache      *Cache
	authorizer *Authorizer
}

// New builds a Service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.DB == nil {
		return nil, companysetting.ErrDBNil
	}

	opts := cfg.Options.WithDefaults()

	prefix := cfg.RedisPrefix
	if prefix == "" {
		prefix = "capcore"
	}

	fresh := tiers(cfg.Redis, prefix, "fresh", opts.CacheSize, opts.FreshTTL)
	stale := tiers(cfg.Redis, prefix, "stale", opts.CacheSize, opts.StaleTTL)

	store := NewStore(cfg.DB, opts)
	flags := NewFeatureFlags(cfg.DB, opts.FeatureKey)
	cache := NewCache(NewBuilder(store, flags), fresh, stale, opts, NewMetrics(cfg.Registerer))

	return &Service{
		opts:       opts,
		store:      store,
		flags:      flags,
		cache:      cache,
		authorizer: NewAuthorizer(cache, cfg.Legacy, opts.Widenings),
	}, nil
}

func tiers(client redis.UniversalClient, prefix, name string, size int, ttl time.Duration) Tier {
	memory := NewMemoryTier(size, ttl)
	if client == nil {
		return memory
	}

	return Chain(memory, NewRedisTier(client, prefix, name, ttl))
}

// Snapshot returns the effective permissions of p.
func (s *Service) Snapshot(ctx context.Context, p Principal) (Snapshot, Source) {
	return s.cache.Get(ctx, p.UserID, p.TenantID, p.LegacyRole)
}

// Authorize decides whether p holds key.
func (s *Service) Authorize(ctx context.Context, p Principal, key string) Decision {
	return s.authorizer.Authorize(ctx, p, key)
}

// FeatureStatus returns the feature flag of tenantID.
func (s *Service) FeatureStatus(ctx context.Context, tenantID int) (FeatureStatus, error) {
	return s.flags.Status(ctx, tenantID)
}

// SetFeature switches fine grained permissions for tenantID and drops its cached snapshots.
func (s *Service) SetFeature(ctx context.Context, tenantID int, enabled bool) (FeatureStatus, error) {
	status, err := s.flags.Set(ctx, tenantID, enabled)
	if err != nil {
		return FeatureStatus{}, err
	}

	s.cache.InvalidateTenant(ctx, tenantID)

	return status, nil
}

// FeatureHistory lists the flag changes of tenantID, latest first.
func (s *Service) FeatureHistory(ctx context.Context, tenantID int) ([]FeatureStatus, error) {
	return s.flags.History(ctx, tenantID)
}
