package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
)

const schemaCacheKey = "capability"

// Store runs the capability queries against the tenant database.
// Identity columns come from the discovered Schema and every identifier is
// quoted by the active gorm dialector.
type Store struct {
	db      *gorm.DB
	opts    Options
	schemas *lru.LRU[string, Schema]
	now     func() time.Time
}

// NewStore returns a Store using db.
func NewStore(db *gorm.DB, opts Options) *Store {
	opts = opts.WithDefaults()

	return &Store{
		db:      db,
		opts:    opts,
		schemas: lru.NewLRU[string, Schema](1, nil, opts.SchemaTTL),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Schema returns the cached Schema or discovers it.
// Only successfully resolved schemas are cached, so a tenant migrated after a
// SchemaUnavailable answer is picked up by the next call.
func (s *Store) Schema(ctx context.Context) (Schema, error) {
	if sc, ok := s.schemas.Get(schemaCacheKey); ok {
		return sc, nil
	}

	tables, err := introspect(ctx, s.db)
	if err != nil {
		return Schema{}, &StoreError{Op: "introspect", Err: err}
	}

	sc, err := NewSchema(tables)
	if err != nil {
		return Schema{}, err
	}

	s.schemas.Add(schemaCacheKey, sc)

	return sc, nil
}

// ForgetSchema drops the cached Schema.
func (s *Store) ForgetSchema() {
	s.schemas.Purge()
}

func (s *Store) quote(name string) string {
	var b strings.Builder

	s.db.Dialector.QuoteTo(&b, name)

	return b.String()
}

// render replaces {placeholders} in query with quoted physical identifiers.
func (s *Store) render(sc Schema, query string) string {
	pairs := []string{
		"{roles}", s.quote(TableRoles),
		"{permissions}", s.quote(TablePermissions),
		"{links}", s.quote(TableRoleLinks),
		"{overrides}", s.quote(TableOverrides),
		"{users}", s.quote(TableUsers),
		"{tenant}", s.quote(colTenant),
		"{code}", s.quote(colRoleCode),
		"{name}", s.quote(colName),
		"{key}", s.quote(colKey),
		"{kind}", s.quote(colKind),
		"{reason}", s.quote(colReason),
		"{user.id}", s.quote(colUserID),
		"{user.name}", s.quote(colUsername),
		"{user.role}", s.quote(colLegacyRole),
		"{role.id}", s.quote(sc.RoleID),
		"{perm.id}", s.quote(sc.PermissionID),
		"{link.role}", s.quote(sc.RoleLinkRoleID),
		"{link.perm}", s.quote(sc.RoleLinkPermissionID),
		"{override.user}", s.quote(sc.OverrideUserID),
		"{override.perm}", s.quote(sc.OverridePermissionID),
	}

	return strings.NewReplacer(pairs...).Replace(query)
}

// insertStatement builds an INSERT for table with the given physical columns.
func (s *Store) insertStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))

	for i, c := range columns {
		quoted[i] = s.quote(c)
		marks[i] = "?"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// RoleKeys returns the permission keys linked to roleCode.
func (s *Store) RoleKeys(ctx context.Context, sc Schema, tenantID int, roleCode string) ([]string, error) {
	query := s.render(sc, `SELECT p.{key} FROM {roles} r
INNER JOIN {links} rp ON rp.{tenant} = r.{tenant} AND rp.{link.role} = r.{role.id}
INNER JOIN {permissions} p ON p.{tenant} = rp.{tenant} AND p.{perm.id} = rp.{link.perm}
WHERE r.{tenant} = ? AND r.{code} = ?`)

	var keys []string
	if err := s.db.WithContext(ctx).Raw(query, tenantID, roleCode).Scan(&keys).Error; err != nil {
		return nil, &StoreError{Op: "role keys", Err: err}
	}

	return keys, nil
}

type overrideRow struct {
	PermKey string `gorm:"column:perm_key"`
	Kind    string `gorm:"column:kind"`
}

// OverrideKeys returns the allow and deny keys of one user.
// Rows with an unknown Tipo token are ignored.
func (s *Store) OverrideKeys(ctx context.Context, sc Schema, tenantID int, userID uuid.UUID) (allow, deny []string, err error) {
	query := s.render(sc, `SELECT p.{key} AS perm_key, up.{kind} AS kind FROM {overrides} up
INNER JOIN {permissions} p ON p.{tenant} = up.{tenant} AND p.{perm.id} = up.{override.perm}
WHERE up.{tenant} = ? AND up.{override.user} = ?`)

	var rows []overrideRow
	if err := s.db.WithContext(ctx).Raw(query, tenantID, userID.String()).Scan(&rows).Error; err != nil {
		return nil, nil, &StoreError{Op: "override keys", Err: err}
	}

	for _, row := range rows {
		switch d, _ := ParseDisposition(row.Kind); d {
		case DispositionAllow:
			allow = append(allow, row.PermKey)
		case DispositionDeny:
			deny = append(deny, row.PermKey)
		}
	}

	return allow, deny, nil
}

// scalar reads the first column of the first row, ok is false without rows.
func scalar(tx *gorm.DB, query string, args ...any) (value any, ok bool, err error) {
	rows, err := tx.Raw(query, args...).Rows()
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}

	if err := rows.Scan(&value); err != nil {
		return nil, false, err
	}

	return value, true, rows.Err()
}

func (s *Store) roleID(tx *gorm.DB, sc Schema, tenantID int, code string) (any, bool, error) {
	return scalar(tx, s.render(sc, `SELECT r.{role.id} FROM {roles} r WHERE r.{tenant} = ? AND r.{code} = ?`),
		tenantID, code)
}

func (s *Store) roleByCode(tx *gorm.DB, sc Schema, tenantID int, code string) (RoleItem, bool, error) {
	var roles []RoleItem

	err := tx.Raw(s.render(sc, `SELECT r.{code} AS code, r.{name} AS name FROM {roles} r
WHERE r.{tenant} = ? AND r.{code} = ?`), tenantID, code).Scan(&roles).Error
	if err != nil || len(roles) == 0 {
		return RoleItem{}, false, err
	}

	return roles[0], true, nil
}

// permissionIDs maps the lowercased keys found in the catalog to their ids.
func (s *Store) permissionIDs(tx *gorm.DB, sc Schema, tenantID int, keys []string) (map[string]any, error) {
	found := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	lowered := make([]string, len(keys))
	for i, key := range keys {
		lowered[i] = strings.ToLower(key)
	}

	rows, err := tx.Raw(s.render(sc, `SELECT p.{perm.id}, p.{key} FROM {permissions} p
WHERE p.{tenant} = ? AND LOWER(p.{key}) IN ?`), tenantID, lowered).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  any
			key string
		)
		if err := rows.Scan(&id, &key); err != nil {
			return nil, err
		}

		found[strings.ToLower(key)] = id
	}

	return found, rows.Err()
}

func (s *Store) permissionExists(tx *gorm.DB, sc Schema, tenantID int, key string) (bool, error) {
	_, ok, err := scalar(tx, s.render(sc, `SELECT p.{perm.id} FROM {permissions} p
WHERE p.{tenant} = ? AND LOWER(p.{key}) = ?`), tenantID, strings.ToLower(key))

	return ok, err
}

func (s *Store) userExists(tx *gorm.DB, sc Schema, tenantID int, userID uuid.UUID) (bool, error) {
	_, ok, err := scalar(tx, s.render(sc, `SELECT u.{user.id} FROM {users} u WHERE u.{tenant} = ? AND u.{user.id} = ?`),
		tenantID, userID.String())

	return ok, err
}

func (s *Store) insertRole(tx *gorm.DB, sc Schema, tenantID int, role RoleItem) error {
	columns := []string{colTenant, colRoleCode, colName}
	args := []any{tenantID, role.Code, role.Name}

	if sc.RoleCreatedAt != "" {
		columns = append(columns, sc.RoleCreatedAt)
		args = append(args, s.now())
	}

	return tx.Exec(s.insertStatement(TableRoles, columns), args...).Error
}

func (s *Store) insertPermission(tx *gorm.DB, sc Schema, tenantID int, p permissionSeed, description string) error {
	columns := []string{colTenant, colKey, colName}
	args := []any{tenantID, p.Key, p.Name}

	if sc.PermissionDescription != "" {
		if description == "" {
			description = p.Module + ".seed"
		}

		columns = append(columns, sc.PermissionDescription)
		args = append(args, description)
	}

	if sc.PermissionCreatedAt != "" {
		columns = append(columns, sc.PermissionCreatedAt)
		args = append(args, s.now())
	}

	return tx.Exec(s.insertStatement(TablePermissions, columns), args...).Error
}

func (s *Store) replaceRoleLinks(tx *gorm.DB, sc Schema, tenantID int, roleID any, permIDs []any) error {
	del := s.render(sc, `DELETE FROM {links} WHERE {tenant} = ? AND {link.role} = ?`)
	if err := tx.Exec(del, tenantID, roleID).Error; err != nil {
		return err
	}

	columns := []string{colTenant, sc.RoleLinkRoleID, sc.RoleLinkPermissionID}
	if sc.RoleLinkCreatedAt != "" {
		columns = append(columns, sc.RoleLinkCreatedAt)
	}

	insert := s.insertStatement(TableRoleLinks, columns)

	for _, permID := range permIDs {
		args := []any{tenantID, roleID, permID}
		if sc.RoleLinkCreatedAt != "" {
			args = append(args, s.now())
		}

		if err := tx.Exec(insert, args...).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) deleteOverrides(tx *gorm.DB, sc Schema, tenantID int, userID uuid.UUID) error {
	return tx.Exec(s.render(sc, `DELETE FROM {overrides} WHERE {tenant} = ? AND {override.user} = ?`),
		tenantID, userID.String()).Error
}

// insertOverride writes one override row.
// Deployments constrain Tipo to different token sets, so each candidate token
// is tried inside a savepoint until one passes the check constraint.
func (s *Store) insertOverride(tx *gorm.DB, sc Schema, tenantID int, userID uuid.UUID, permID any, d Disposition) error {
	insert := s.insertStatement(TableOverrides,
		[]string{colTenant, sc.OverrideUserID, sc.OverridePermissionID, colKind, colReason})
	reason := truncate(s.opts.OverrideReason, sc.OverrideReasonLength)

	var lastErr error

	for i, token := range d.writeTokens(sc.OverrideKindLength) {
		savepoint := fmt.Sprintf("capcore_tipo_%d", i)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return err
		}

		err := tx.Exec(insert, tenantID, userID.String(), permID, truncate(token, sc.OverrideKindLength), reason).Error
		if err == nil {
			return nil
		}

		if !isCheckViolation(err) {
			return err
		}

		lastErr = err

		if err := tx.RollbackTo(savepoint).Error; err != nil {
			return err
		}
	}

	return lastErr
}

func isCheckViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated) ||
		strings.Contains(strings.ToLower(err.Error()), "check constraint")
}

func truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}

	if r := []rune(value); len(r) > limit {
		return string(r[:limit])
	}

	return value
}
