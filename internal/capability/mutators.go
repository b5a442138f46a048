package capability

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// transaction runs fn in one database transaction after resolving the schema.
// Every error leaving it is classified by storeErr.
func (s *Service) transaction(ctx context.Context, op string, fn func(tx *gorm.DB, sc Schema) error) error {
	sc, err := s.store.Schema(ctx)
	if err != nil {
		return err
	}

	err = s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, sc)
	})
	if err != nil {
		err = storeErr(op, err)

		var se *StoreError
		if errors.As(err, &se) {
			s.store.ForgetSchema()
			log.Warn().Err(err).Str("op", op).Msg("capability mutation rolled back")
		}

		return err
	}

	return nil
}

// CreateRole adds a role with a normalized code. An existing role is
// returned unchanged with created set to false.
func (s *Service) CreateRole(ctx context.Context, tenantID int, code, name string) (role RoleItem, created bool, err error) {
	normalized, err := NormalizeRoleCode(code)
	if err != nil {
		return RoleItem{}, false, err
	}

	role = RoleItem{Code: normalized, Name: strings.TrimSpace(name)}
	if role.Name == "" {
		role.Name = normalized
	}

	err = s.transaction(ctx, "create role", func(tx *gorm.DB, sc Schema) error {
		existing, ok, err := s.store.roleByCode(tx, sc, tenantID, normalized)
		if err != nil {
			return err
		}

		if ok {
			role = existing
			return nil
		}

		if err := s.store.insertRole(tx, sc, tenantID, role); err != nil {
			return err
		}

		created = true

		return nil
	})
	if err != nil {
		return RoleItem{}, false, err
	}

	return role, created, nil
}

// ReplaceRolePermissions makes keys the exact permission set of roleCode.
// Unknown keys are rejected before the role is resolved; on success every
// snapshot of the tenant is dropped since any user may hold the role.
func (s *Service) ReplaceRolePermissions(ctx context.Context, tenantID int, roleCode string, keys []string) error {
	code := strings.ToUpper(strings.TrimSpace(roleCode))
	if code == "" {
		return &ValidationError{Reason: "role code is required"}
	}

	keys = normalizeKeyList(keys)

	err := s.transaction(ctx, "replace role permissions", func(tx *gorm.DB, sc Schema) error {
		ids, err := s.store.permissionIDs(tx, sc, tenantID, keys)
		if err != nil {
			return err
		}

		if missing := missingFold(keys, ids); len(missing) > 0 {
			return &ValidationError{Reason: "unknown permissions", Keys: missing}
		}

		roleID, ok, err := s.store.roleID(tx, sc, tenantID, code)
		if err != nil {
			return err
		}

		if !ok {
			return &NotFoundError{Kind: "role", ID: code}
		}

		permIDs := make([]any, len(keys))
		for i, key := range keys {
			permIDs[i] = ids[strings.ToLower(key)]
		}

		return s.store.replaceRoleLinks(tx, sc, tenantID, roleID, permIDs)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateTenant(ctx, tenantID)

	return nil
}

// ReplaceUserOverrides makes allow and deny the exact override set of userID.
// A key present in both lists is rejected before anything is read.
func (s *Service) ReplaceUserOverrides(ctx context.Context, tenantID int, userID uuid.UUID, allow, deny []string) error {
	allow = normalizeKeyList(allow)
	deny = normalizeKeyList(deny)

	if both := intersectFold(allow, deny); len(both) > 0 {
		return &ValidationError{Reason: "a permission can not be both allowed and denied", Keys: both}
	}

	combined := append(append([]string{}, allow...), deny...)

	err := s.transaction(ctx, "replace user overrides", func(tx *gorm.DB, sc Schema) error {
		exists, err := s.store.userExists(tx, sc, tenantID, userID)
		if err != nil {
			return err
		}

		if !exists {
			return &NotFoundError{Kind: "user", ID: userID.String()}
		}

		ids, err := s.store.permissionIDs(tx, sc, tenantID, combined)
		if err != nil {
			return err
		}

		if missing := missingFold(combined, ids); len(missing) > 0 {
			return &ValidationError{Reason: "unknown permissions", Keys: missing}
		}

		if err := s.store.deleteOverrides(tx, sc, tenantID, userID); err != nil {
			return err
		}

		for _, key := range allow {
			if err := s.store.insertOverride(tx, sc, tenantID, userID, ids[strings.ToLower(key)], DispositionAllow); err != nil {
				return err
			}
		}

		for _, key := range deny {
			if err := s.store.insertOverride(tx, sc, tenantID, userID, ids[strings.ToLower(key)], DispositionDeny); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, tenantID, userID)

	return nil
}

// SyncPermissionCatalog inserts the seed permissions of modules, all of them
// when modules is empty. Keys already present are reported as skipped, so a
// second run inserts nothing.
func (s *Service) SyncPermissionCatalog(ctx context.Context, tenantID int, modules []string) (SyncResult, error) {
	seeds := seedsFor(modules)
	if len(seeds) == 0 {
		return SyncResult{}, &ValidationError{Reason: "no seed permissions for the requested modules", Keys: modules}
	}

	res := SyncResult{
		TotalSeeds:          len(seeds),
		InsertedPermissions: []string{},
		SkippedPermissions:  []string{},
	}

	err := s.transaction(ctx, "sync catalog", func(tx *gorm.DB, sc Schema) error {
		for _, seed := range seeds {
			exists, err := s.store.permissionExists(tx, sc, tenantID, seed.Key)
			if err != nil {
				return err
			}

			if exists {
				res.SkippedPermissions = append(res.SkippedPermissions, seed.Key)
				continue
			}

			if err := s.store.insertPermission(tx, sc, tenantID, seed, ""); err != nil {
				return err
			}

			res.InsertedPermissions = append(res.InsertedPermissions, seed.Key)
		}

		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}

	res.InsertedCount = len(res.InsertedPermissions)

	return res, nil
}

// CreatePermission adds one permission to the catalog.
// It returns false without error when the key already exists.
func (s *Service) CreatePermission(ctx context.Context, tenantID int, key, name, description string) (bool, error) {
	normalized, err := NormalizePermissionKey(key)
	if err != nil {
		return false, err
	}

	seed := permissionSeed{Key: normalized, Name: strings.TrimSpace(name), Module: ModuleFromKey(normalized)}
	if seed.Name == "" {
		seed.Name = normalized
	}

	var created bool

	err = s.transaction(ctx, "create permission", func(tx *gorm.DB, sc Schema) error {
		exists, err := s.store.permissionExists(tx, sc, tenantID, normalized)
		if err != nil || exists {
			return err
		}

		if err := s.store.insertPermission(tx, sc, tenantID, seed, strings.TrimSpace(description)); err != nil {
			return err
		}

		created = true

		return nil
	})

	return created, err
}
