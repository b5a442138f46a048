package capability

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Physical table names of the capability model.
const (
	TableRoles          = "WRol"
	TablePermissions    = "WPermiso"
	TableRoleLinks      = "WRolPermiso"
	TableOverrides      = "WUsuarioPermiso"
	TableCompanySetting = "WConfiguracionEmpresa"
	TableUsers          = "UsuarioWeb"
)

// Fixed column names shared by every deployment.
const (
	colTenant      = "EmpresaId"
	colRoleCode    = "Codigo"
	colName        = "Nombre"
	colKey         = "Clave"
	colDescription = "Descripcion"
	colCreatedAt   = "FechaCreacion"
	colKind        = "Tipo"
	colReason      = "Motivo"
	colUserID      = "Id"
	colUsername    = "Usuario"
	colLegacyRole  = "Rol"
)

const (
	defaultKindLength   = 20
	defaultReasonLength = 300
)

// Column aliases in preference order.
var (
	roleIDAliases           = []string{"Id", "WRolId", "RolId"}
	permissionIDAliases     = []string{"Id", "WPermisoId", "PermisoId"}
	linkRoleIDAliases       = []string{"WRolId", "RolId"}
	linkPermissionIDAliases = []string{"WPermisoId", "PermisoId"}
	overrideUserIDAliases   = []string{"UsuarioWebId", "UsuarioId", "UserId", "WUsuarioId"}
	overridePermIDAliases   = []string{"WPermisoId", "PermisoId"}
)

// ColumnInfo is the introspected shape of one column.
type ColumnInfo struct {
	Name   string
	Length int64 // 0 when unknown or unbounded
}

// Schema maps the logical capability columns to the physical names of one database.
type Schema struct {
	RoleID                string
	PermissionID          string
	RoleLinkRoleID        string
	RoleLinkPermissionID  string
	OverrideUserID        string
	OverridePermissionID  string
	RoleCreatedAt         string // empty when the column does not exist
	PermissionDescription string
	PermissionCreatedAt   string
	RoleLinkCreatedAt     string
	OverrideKindLength    int
	OverrideReasonLength  int
}

// NewSchema resolves a Schema from the columns of the four capability tables.
// A missing table yields ErrSchemaUnavailable, a table without any accepted
// alias for an identity column yields a *ConfigurationError.
func NewSchema(tables map[string][]ColumnInfo) (Schema, error) {
	for _, name := range []string{TableRoles, TablePermissions, TableRoleLinks, TableOverrides} {
		if _, ok := tables[name]; !ok {
			return Schema{}, ErrSchemaUnavailable
		}
	}

	var (
		s   Schema
		err error
	)

	pick := func(table string, aliases []string) string {
		if err != nil {
			return ""
		}

		name, ok := findColumn(tables[table], aliases...)
		if !ok {
			err = &ConfigurationError{Table: table, Candidates: aliases}
		}

		return name
	}

	s.RoleID = pick(TableRoles, roleIDAliases)
	s.PermissionID = pick(TablePermissions, permissionIDAliases)
	s.RoleLinkRoleID = pick(TableRoleLinks, linkRoleIDAliases)
	s.RoleLinkPermissionID = pick(TableRoleLinks, linkPermissionIDAliases)
	s.OverrideUserID = pick(TableOverrides, overrideUserIDAliases)
	s.OverridePermissionID = pick(TableOverrides, overridePermIDAliases)

	if err != nil {
		return Schema{}, err
	}

	s.RoleCreatedAt, _ = findColumn(tables[TableRoles], colCreatedAt)
	s.PermissionDescription, _ = findColumn(tables[TablePermissions], colDescription)
	s.PermissionCreatedAt, _ = findColumn(tables[TablePermissions], colCreatedAt)
	s.RoleLinkCreatedAt, _ = findColumn(tables[TableRoleLinks], colCreatedAt)

	s.OverrideKindLength = columnLength(tables[TableOverrides], colKind, defaultKindLength)
	s.OverrideReasonLength = columnLength(tables[TableOverrides], colReason, defaultReasonLength)

	return s, nil
}

// findColumn returns the physical spelling of the first alias present, compared case-insensitively.
func findColumn(columns []ColumnInfo, aliases ...string) (string, bool) {
	for _, alias := range aliases {
		for _, c := range columns {
			if strings.EqualFold(c.Name, alias) {
				return c.Name, true
			}
		}
	}

	return "", false
}

func columnLength(columns []ColumnInfo, name string, fallback int) int {
	for _, c := range columns {
		if strings.EqualFold(c.Name, name) && c.Length > 0 {
			return int(c.Length)
		}
	}

	return fallback
}

// introspect reads the columns of every capability table present in db.
func introspect(ctx context.Context, db *gorm.DB) (map[string][]ColumnInfo, error) {
	migrator := db.WithContext(ctx).Migrator()

	present, err := migrator.GetTables()
	if err != nil {
		return nil, err
	}

	tables := make(map[string][]ColumnInfo, 4) //nolint:mnd

	for _, name := range present {
		table, ok := capabilityTable(name)
		if !ok {
			continue
		}

		types, err := migrator.ColumnTypes(name)
		if err != nil {
			return nil, err
		}

		columns := make([]ColumnInfo, 0, len(types))
		for _, ct := range types {
			info := ColumnInfo{Name: ct.Name()}
			if length, ok := ct.Length(); ok && length > 0 {
				info.Length = length
			}

			columns = append(columns, info)
		}

		tables[table] = columns
	}

	return tables, nil
}

// capabilityTable maps a physical table name to its capability table,
// ignoring case (MySQL with lower_case_table_names reports "wrol").
func capabilityTable(name string) (string, bool) {
	for _, table := range []string{TableRoles, TablePermissions, TableRoleLinks, TableOverrides} {
		if strings.EqualFold(name, table) {
			return table, true
		}
	}

	return "", false
}
