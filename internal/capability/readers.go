package capability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// MessageUnavailable accompanies payloads of tenants without capability tables.
const MessageUnavailable = "capabilities are not available for this tenant"

// RoleItem is one WRol row.
type RoleItem struct {
	Code string `json:"code" gorm:"column:code"`
	Name string `json:"name" gorm:"column:name"`
}

// PermissionItem is one WPermiso row.
type PermissionItem struct {
	Code string `json:"code" gorm:"column:code"`
	Name string `json:"name" gorm:"column:name"`
}

// RolePermissionItem links a role code to a permission key.
type RolePermissionItem struct {
	RoleCode   string `json:"roleCode" gorm:"column:role_code"`
	Permission string `json:"permission" gorm:"column:permission"`
}

// UserItem is one UsuarioWeb row.
type UserItem struct {
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	RoleLegacy string    `json:"roleLegacy"`
}

// UserOverrideItem groups the override keys of one user.
type UserOverrideItem struct {
	UserID uuid.UUID `json:"userId"`
	Allow  []string  `json:"allow"`
	Deny   []string  `json:"deny"`
}

// RolesBootstrap is the role administration payload.
type RolesBootstrap struct {
	PermissionsEnabled bool                 `json:"permissionsEnabled"`
	Roles              []RoleItem           `json:"roles"`
	Permissions        []PermissionItem     `json:"permissions"`
	RolePermissions    []RolePermissionItem `json:"rolePermissions"`
	Message            string               `json:"message,omitempty"`
}

// Bootstrap is the full administration payload of a tenant.
type Bootstrap struct {
	PermissionsEnabled bool                 `json:"permissionsEnabled"`
	Roles              []RoleItem           `json:"roles"`
	Permissions        []PermissionItem     `json:"permissions"`
	RolePermissions    []RolePermissionItem `json:"rolePermissions"`
	Users              []UserItem           `json:"users"`
	UserOverrides      []UserOverrideItem   `json:"userOverrides"`
	Message            string               `json:"message,omitempty"`
}

// Catalog is the permission catalog with its derived modules.
type Catalog struct {
	PermissionsEnabled bool             `json:"permissionsEnabled"`
	Permissions        []PermissionItem `json:"permissions"`
	Modules            []ModuleItem     `json:"modules"`
	Message            string           `json:"message,omitempty"`
}

func (s *Store) roles(ctx context.Context, sc Schema, tenantID int) ([]RoleItem, error) {
	items := []RoleItem{}

	err := s.db.WithContext(ctx).Raw(s.render(sc, `SELECT r.{code} AS code, r.{name} AS name FROM {roles} r
WHERE r.{tenant} = ? ORDER BY r.{code}`), tenantID).Scan(&items).Error
	if err != nil {
		return nil, &StoreError{Op: "roles", Err: err}
	}

	return items, nil
}

func (s *Store) permissions(ctx context.Context, sc Schema, tenantID int) ([]PermissionItem, error) {
	items := []PermissionItem{}

	err := s.db.WithContext(ctx).Raw(s.render(sc, `SELECT p.{key} AS code, p.{name} AS name FROM {permissions} p
WHERE p.{tenant} = ? ORDER BY p.{key}`), tenantID).Scan(&items).Error
	if err != nil {
		return nil, &StoreError{Op: "permissions", Err: err}
	}

	return items, nil
}

func (s *Store) rolePermissions(ctx context.Context, sc Schema, tenantID int) ([]RolePermissionItem, error) {
	items := []RolePermissionItem{}

	err := s.db.WithContext(ctx).Raw(s.render(sc, `SELECT r.{code} AS role_code, p.{key} AS permission FROM {links} rp
INNER JOIN {roles} r ON r.{tenant} = rp.{tenant} AND r.{role.id} = rp.{link.role}
INNER JOIN {permissions} p ON p.{tenant} = rp.{tenant} AND p.{perm.id} = rp.{link.perm}
WHERE rp.{tenant} = ? ORDER BY r.{code}, p.{key}`), tenantID).Scan(&items).Error
	if err != nil {
		return nil, &StoreError{Op: "role permissions", Err: err}
	}

	return items, nil
}

func (s *Store) users(ctx context.Context, sc Schema, tenantID int) ([]UserItem, error) {
	rows, err := s.db.WithContext(ctx).Raw(s.render(sc, `SELECT u.{user.id}, u.{user.name}, u.{user.role} FROM {users} u
WHERE u.{tenant} = ? ORDER BY u.{user.name}`), tenantID).Rows()
	if err != nil {
		return nil, &StoreError{Op: "users", Err: err}
	}
	defer rows.Close()

	items := []UserItem{}

	for rows.Next() {
		var (
			raw            any
			username, role string
		)
		if err := rows.Scan(&raw, &username, &role); err != nil {
			return nil, &StoreError{Op: "users", Err: err}
		}

		id, ok := asUUID(raw)
		if !ok {
			continue
		}

		items = append(items, UserItem{UserID: id, Username: username, RoleLegacy: role})
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "users", Err: err}
	}

	return items, nil
}

// userOverrides groups the override rows of a tenant by user, ordered by user id.
func (s *Store) userOverrides(ctx context.Context, sc Schema, tenantID int) ([]UserOverrideItem, error) {
	rows, err := s.db.WithContext(ctx).Raw(s.render(sc, `SELECT up.{override.user}, up.{kind}, p.{key} FROM {overrides} up
INNER JOIN {permissions} p ON p.{tenant} = up.{tenant} AND p.{perm.id} = up.{override.perm}
WHERE up.{tenant} = ?`), tenantID).Rows()
	if err != nil {
		return nil, &StoreError{Op: "user overrides", Err: err}
	}
	defer rows.Close()

	byUser := make(map[uuid.UUID]*UserOverrideItem)

	for rows.Next() {
		var (
			raw       any
			kind, key string
		)
		if err := rows.Scan(&raw, &kind, &key); err != nil {
			return nil, &StoreError{Op: "user overrides", Err: err}
		}

		id, ok := asUUID(raw)
		if !ok {
			continue
		}

		item, ok := byUser[id]
		if !ok {
			item = &UserOverrideItem{UserID: id, Allow: []string{}, Deny: []string{}}
			byUser[id] = item
		}

		switch d, _ := ParseDisposition(kind); d {
		case DispositionAllow:
			item.Allow = append(item.Allow, key)
		case DispositionDeny:
			item.Deny = append(item.Deny, key)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "user overrides", Err: err}
	}

	items := make([]UserOverrideItem, 0, len(byUser))
	for _, item := range byUser {
		sort.Strings(item.Allow)
		sort.Strings(item.Deny)
		items = append(items, *item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].UserID.String() < items[j].UserID.String() })

	return items, nil
}

// asUUID reads a user id column, stored as text or as 16 raw bytes depending on the engine.
func asUUID(v any) (uuid.UUID, bool) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, true
	case string:
		id, err := uuid.Parse(x)
		return id, err == nil
	case []byte:
		if len(x) == 16 { //nolint:mnd
			id, err := uuid.FromBytes(x)
			return id, err == nil
		}

		id, err := uuid.ParseBytes(x)

		return id, err == nil
	default:
		id, err := uuid.Parse(fmt.Sprint(x))
		return id, err == nil
	}
}

// Bootstrap returns everything the administration screen needs for tenantID.
func (s *Service) Bootstrap(ctx context.Context, tenantID int) (Bootstrap, error) {
	sc, err := s.store.Schema(ctx)
	if errors.Is(err, ErrSchemaUnavailable) {
		return Bootstrap{
			Roles:           []RoleItem{},
			Permissions:     []PermissionItem{},
			RolePermissions: []RolePermissionItem{},
			Users:           []UserItem{},
			UserOverrides:   []UserOverrideItem{},
			Message:         MessageUnavailable,
		}, nil
	}
	if err != nil {
		return Bootstrap{}, err
	}

	roles, err := s.RolesBootstrap(ctx, tenantID)
	if err != nil {
		return Bootstrap{}, err
	}

	out := Bootstrap{
		PermissionsEnabled: true,
		Roles:              roles.Roles,
		Permissions:        roles.Permissions,
		RolePermissions:    roles.RolePermissions,
	}

	if out.Users, err = s.store.users(ctx, sc, tenantID); err != nil {
		return Bootstrap{}, err
	}

	if out.UserOverrides, err = s.store.userOverrides(ctx, sc, tenantID); err != nil {
		return Bootstrap{}, err
	}

	return out, nil
}

// RolesBootstrap returns the roles, the catalog and their links for tenantID.
func (s *Service) RolesBootstrap(ctx context.Context, tenantID int) (RolesBootstrap, error) {
	sc, err := s.store.Schema(ctx)
	if errors.Is(err, ErrSchemaUnavailable) {
		return RolesBootstrap{
			Roles:           []RoleItem{},
			Permissions:     []PermissionItem{},
			RolePermissions: []RolePermissionItem{},
			Message:         MessageUnavailable,
		}, nil
	}
	if err != nil {
		return RolesBootstrap{}, err
	}

	out := RolesBootstrap{PermissionsEnabled: true}

	if out.Roles, err = s.store.roles(ctx, sc, tenantID); err != nil {
		return RolesBootstrap{}, err
	}

	if out.Permissions, err = s.store.permissions(ctx, sc, tenantID); err != nil {
		return RolesBootstrap{}, err
	}

	if out.RolePermissions, err = s.store.rolePermissions(ctx, sc, tenantID); err != nil {
		return RolesBootstrap{}, err
	}

	return out, nil
}

// Catalog returns the permission catalog of tenantID.
func (s *Service) Catalog(ctx context.Context, tenantID int) (Catalog, error) {
	sc, err := s.store.Schema(ctx)
	if errors.Is(err, ErrSchemaUnavailable) {
		return Catalog{Permissions: []PermissionItem{}, Modules: []ModuleItem{}, Message: MessageUnavailable}, nil
	}
	if err != nil {
		return Catalog{}, err
	}

	items, err := s.store.permissions(ctx, sc, tenantID)
	if err != nil {
		return Catalog{}, err
	}

	return Catalog{PermissionsEnabled: true, Permissions: items, Modules: modulesOf(items)}, nil
}
