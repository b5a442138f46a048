package capability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Snapshot is the effective permission set of one principal at one point in time.
type Snapshot struct {
	UserID             uuid.UUID `json:"userId"`
	TenantID           int       `json:"empresaId"`
	LegacyRole         string    `json:"rolLegacy"`
	PermissionsEnabled bool      `json:"permissionsEnabled"`
	Permissions        []string  `json:"permissions"`
	Version            string    `json:"permissionsVersion"`
}

// Has reports whether key is part of the snapshot, ignoring case.
func (s Snapshot) Has(key string) bool {
	key = strings.TrimSpace(key)
	for _, p := range s.Permissions {
		if strings.EqualFold(strings.TrimSpace(p), key) {
			return true
		}
	}

	return false
}

// withLabel returns a copy carrying legacyRole.
// Snapshots are shared between role label spellings of the same role code.
func (s Snapshot) withLabel(legacyRole string) Snapshot {
	s.LegacyRole = legacyRole
	s.Permissions = append([]string(nil), s.Permissions...)

	return s
}

// DisabledSnapshot is an empty snapshot with fine grained permissions off.
func DisabledSnapshot(userID uuid.UUID, tenantID int, legacyRole, version string) Snapshot {
	return Snapshot{
		UserID:      userID,
		TenantID:    tenantID,
		LegacyRole:  legacyRole,
		Permissions: []string{},
		Version:     version,
	}
}

// ResultKind tags the outcome of a snapshot build.
type ResultKind int

const (
	// ResultOK carries a usable snapshot, enabled or disabled by the feature flag.
	ResultOK ResultKind = iota
	// ResultSchemaUnavailable carries a disabled snapshot, the tenant has no capability tables.
	ResultSchemaUnavailable
	// ResultConfigurationError means the capability tables exist but can not be read.
	ResultConfigurationError
	// ResultStoreError means the store failed or the build timed out.
	ResultStoreError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultSchemaUnavailable:
		return "schema_unavailable"
	case ResultConfigurationError:
		return "configuration_error"
	case ResultStoreError:
		return "store_error"
	default:
		return "unknown"
	}
}

// BuildResult is the tagged outcome of SnapshotBuilder.Build.
type BuildResult struct {
	Kind     ResultKind
	Snapshot Snapshot
	Err      error
}

// Usable reports whether Snapshot may be served and cached.
func (r BuildResult) Usable() bool {
	return r.Kind == ResultOK || r.Kind == ResultSchemaUnavailable
}

// failed classifies err into a ConfigurationError or StoreError result.
func failed(err error) BuildResult {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return BuildResult{Kind: ResultConfigurationError, Err: err}
	}

	return BuildResult{Kind: ResultStoreError, Err: storeErr("build", err)}
}

// SnapshotBuilder computes a snapshot from the store.
type SnapshotBuilder interface {
	Build(ctx context.Context, userID uuid.UUID, tenantID int, legacyRole string) BuildResult
}

// BuilderFunc adapts a function to SnapshotBuilder.
type BuilderFunc func(ctx context.Context, userID uuid.UUID, tenantID int, legacyRole string) BuildResult

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, userID uuid.UUID, tenantID int, legacyRole string) BuildResult {
	return f(ctx, userID, tenantID, legacyRole)
}

// Builder computes snapshots as (role keys ∪ allow) \ deny.
type Builder struct {
	store *Store
	flags *FeatureFlags
	now   func() time.Time
}

// NewBuilder returns a Builder reading from store and flags.
func NewBuilder(store *Store, flags *FeatureFlags) *Builder {
	return &Builder{
		store: store,
		flags: flags,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Build resolves the schema, the feature flag, the role code and the override
// rows, in that order, and returns the tagged result.
func (b *Builder) Build(ctx context.Context, userID uuid.UUID, tenantID int, legacyRole string) BuildResult {
	sc, err := b.store.Schema(ctx)
	switch {
	case errors.Is(err, ErrSchemaUnavailable):
		log.Debug().Int("tenant", tenantID).Msg("capability tables not available, permissions disabled")

		return BuildResult{
			Kind:     ResultSchemaUnavailable,
			Snapshot: DisabledSnapshot(userID, tenantID, legacyRole, versionOf(b.now())),
			Err:      err,
		}
	case err != nil:
		return b.fail(tenantID, userID, err)
	}

	status, err := b.flags.Status(ctx, tenantID)
	if err != nil {
		return b.fail(tenantID, userID, err)
	}

	if !status.Enabled {
		return BuildResult{Kind: ResultOK, Snapshot: DisabledSnapshot(userID, tenantID, legacyRole, status.Version)}
	}

	roleKeys, err := b.store.RoleKeys(ctx, sc, tenantID, ToRoleCode(legacyRole))
	if err != nil {
		return b.fail(tenantID, userID, err)
	}

	allow, deny, err := b.store.OverrideKeys(ctx, sc, tenantID, userID)
	if err != nil {
		return b.fail(tenantID, userID, err)
	}

	return BuildResult{
		Kind: ResultOK,
		Snapshot: Snapshot{
			UserID:             userID,
			TenantID:           tenantID,
			LegacyRole:         legacyRole,
			PermissionsEnabled: true,
			Permissions:        EffectivePermissions(roleKeys, allow, deny),
			Version:            status.Version,
		},
	}
}

func (b *Builder) fail(tenantID int, userID uuid.UUID, err error) BuildResult {
	res := failed(err)

	switch res.Kind {
	case ResultConfigurationError:
		log.Error().Err(err).Int("tenant", tenantID).Msg("capability schema is not compatible")
	default:
		// a renamed column shows up as a query error, rediscover on the next build
		b.store.ForgetSchema()
		log.Warn().Err(err).Int("tenant", tenantID).Str("user", userID.String()).Msg("snapshot build failed")
	}

	return res
}
