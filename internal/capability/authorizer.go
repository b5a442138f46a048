package capability

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Principal is an authenticated caller as supplied by the gateway.
type Principal struct {
	UserID     uuid.UUID `json:"userId"`
	TenantID   int       `json:"empresaId"`
	LegacyRole string    `json:"rolLegacy"`
}

// Reasons reported by Decision.
const (
	ReasonSuperAdmin    = "super_admin"
	ReasonGranted       = "granted"
	ReasonWidened       = "widened"
	ReasonNotGranted    = "not_granted"
	ReasonLegacyAllowed = "legacy_allowed"
	ReasonLegacyDenied  = "legacy_denied"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
	Permission string `json:"permission"`
	Source     Source `json:"source,omitempty"`
}

// SnapshotSource returns the snapshot of a principal and never fails.
type SnapshotSource interface {
	Get(ctx context.Context, userID uuid.UUID, tenantID int, legacyRole string) (Snapshot, Source)
}

// Authorizer answers whether a principal holds a permission.
type Authorizer struct {
	snapshots SnapshotSource
	legacy    LegacyPolicy
	widenings []Widening
}

// NewAuthorizer returns an Authorizer. A nil legacy policy means DefaultLegacyPolicy.
func NewAuthorizer(snapshots SnapshotSource, legacy LegacyPolicy, widenings []Widening) *Authorizer {
	if legacy == nil {
		legacy = DefaultLegacyPolicy()
	}

	return &Authorizer{snapshots: snapshots, legacy: legacy, widenings: widenings}
}

// Authorize decides key for p. The super role is always allowed, enabled
// snapshots decide by membership and disabled ones by the legacy policy.
func (a *Authorizer) Authorize(ctx context.Context, p Principal, key string) Decision {
	key = strings.TrimSpace(key)
	d := Decision{Permission: key}

	if IsSuperAdmin(p.LegacyRole) {
		d.Allowed, d.Reason = true, ReasonSuperAdmin
		return d
	}

	snapshot, source := a.snapshots.Get(ctx, p.UserID, p.TenantID, p.LegacyRole)
	d.Source = source

	if !snapshot.PermissionsEnabled {
		d.Allowed = a.legacy.Allows(p.LegacyRole, key)
		d.Reason = ReasonLegacyDenied

		if d.Allowed {
			d.Reason = ReasonLegacyAllowed
		}

		return d
	}

	d.Allowed, d.Reason = a.Holds(snapshot, key)

	return d
}

// Holds checks key against an enabled snapshot, applying the configured widenings.
func (a *Authorizer) Holds(snapshot Snapshot, key string) (bool, string) {
	if snapshot.Has(key) {
		return true, ReasonGranted
	}

	for _, w := range a.widenings {
		if coarse, ok := w.Apply(key); ok && snapshot.Has(coarse) {
			return true, ReasonWidened
		}
	}

	return false, ReasonNotGranted
}
