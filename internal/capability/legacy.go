package capability

import "strings"

// Canonical role codes stored in WRol.Codigo.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
)

// Legacy role labels carried by principals.
const (
	LegacySuperAdmin = "SuperAdmin"
	LegacyAdmin      = "Admin"
	LegacyUser       = "User"
)

// RoleCodes lists every code ToRoleCode can return.
func RoleCodes() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleUser}
}

// ToRoleCode maps a legacy role label to its canonical role code.
// Unknown labels map to RoleUser.
func ToRoleCode(legacyRole string) string {
	label := strings.TrimSpace(legacyRole)

	switch {
	case strings.EqualFold(label, LegacySuperAdmin):
		return RoleSuperAdmin
	case strings.EqualFold(label, LegacyAdmin):
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsSuperAdmin reports whether legacyRole is the system super role.
func IsSuperAdmin(legacyRole string) bool {
	return strings.EqualFold(strings.TrimSpace(legacyRole), LegacySuperAdmin)
}

// LegacyPolicy maps a permission key to the legacy role labels allowed to use it.
// Keys and labels are stored lowercased.
type LegacyPolicy map[string]map[string]struct{}

// NewLegacyPolicy builds a policy from key -> labels.
func NewLegacyPolicy(rules map[string][]string) LegacyPolicy {
	p := make(LegacyPolicy, len(rules))

	for key, labels := range rules {
		set := make(map[string]struct{}, len(labels))
		for _, label := range labels {
			set[strings.ToLower(label)] = struct{}{}
		}

		p[strings.ToLower(key)] = set
	}

	return p
}

// DefaultLegacyPolicy is the compiled in policy used while fine grained permissions are off.
func DefaultLegacyPolicy() LegacyPolicy {
	all := []string{LegacySuperAdmin, LegacyAdmin, LegacyUser}
	admins := []string{LegacySuperAdmin, LegacyAdmin}
	super := []string{LegacySuperAdmin}

	return NewLegacyPolicy(map[string][]string{
		"usuarios.ver":                 admins,
		"usuarios.crear":               super,
		"usuarios.editar":              super,
		"usuarios.estado.editar":       super,
		"usuarios.password.reset":      super,
		"usuarios.empresa.editar":      super,
		"empresas.ver":                 admins,
		"permisosweb.bootstrap":        admins,
		"permisosweb.roles.editar":     super,
		"permisosweb.overrides.editar": super,
		"permisosweb.catalogo.editar":  super,
		"proveedores.ver":              all,
		"proveedores.crear":            admins,
		"proveedores.editar":           admins,
		"proveedores.estado.editar":    admins,
	})
}

// Allows reports whether legacyRole may use key.
// The super role is always allowed and unlisted keys are open to every authenticated role.
func (p LegacyPolicy) Allows(legacyRole, key string) bool {
	if IsSuperAdmin(legacyRole) {
		return true
	}

	labels, ok := p[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return true
	}

	_, ok = labels[strings.ToLower(strings.TrimSpace(legacyRole))]

	return ok
}
