package capability

import (
	"sort"
	"strings"
)

type permissionSeed struct {
	Key    string
	Name   string
	Module string
}

var seedCatalog = []permissionSeed{
	{Key: "usuarios.ver", Name: "Usuarios - Ver", Module: "usuarios"},
	{Key: "usuarios.crear", Name: "Usuarios - Crear", Module: "usuarios"},
	{Key: "usuarios.editar", Name: "Usuarios - Editar", Module: "usuarios"},
	{Key: "usuarios.estado.editar", Name: "Usuarios - Activar/Inactivar", Module: "usuarios"},
	{Key: "usuarios.password.reset", Name: "Usuarios - Reset Password", Module: "usuarios"},
	{Key: "usuarios.empresa.editar", Name: "Usuarios - Cambiar Empresa", Module: "usuarios"},

	{Key: "empresas.ver", Name: "Empresas - Ver", Module: "empresas"},

	{Key: "permisosweb.bootstrap", Name: "Permisos Web - Ver Administracion", Module: "permisosweb"},
	{Key: "permisosweb.roles.editar", Name: "Permisos Web - Editar Roles", Module: "permisosweb"},
	{Key: "permisosweb.overrides.editar", Name: "Permisos Web - Editar Overrides", Module: "permisosweb"},
	{Key: "permisosweb.catalogo.editar", Name: "Permisos Web - Editar Catalogo", Module: "permisosweb"},

	{Key: "proveedores.ver", Name: "Proveedores - Ver", Module: "proveedores"},
	{Key: "proveedores.crear", Name: "Proveedores - Crear", Module: "proveedores"},
	{Key: "proveedores.editar", Name: "Proveedores - Editar", Module: "proveedores"},
	{Key: "proveedores.estado.editar", Name: "Proveedores - Activar/Inactivar", Module: "proveedores"},

	{Key: "pagosproveedores.ver", Name: "Pagos Proveedores - Ver", Module: "pagosproveedores"},
	{Key: "pagosproveedores.crear", Name: "Pagos Proveedores - Crear", Module: "pagosproveedores"},
	{Key: "pagosproveedores.editar", Name: "Pagos Proveedores - Modificar", Module: "pagosproveedores"},
	{Key: "pagosproveedores.cancelar", Name: "Pagos Proveedores - Cancelar", Module: "pagosproveedores"},

	{Key: "cheques.ver", Name: "Cheques - Entrar", Module: "cheques"},
}

// SeedKeys returns the keys of the built in catalog.
func SeedKeys() []string {
	keys := make([]string, len(seedCatalog))
	for i, seed := range seedCatalog {
		keys[i] = seed.Key
	}

	return keys
}

// seedsFor returns the seeds of the given modules, all seeds when modules is empty.
func seedsFor(modules []string) []permissionSeed {
	filter := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			filter[m] = struct{}{}
		}
	}

	if len(filter) == 0 {
		return seedCatalog
	}

	var out []permissionSeed
	for _, seed := range seedCatalog {
		if _, ok := filter[seed.Module]; ok {
			out = append(out, seed)
		}
	}

	return out
}

// SyncResult reports a catalog sync.
type SyncResult struct {
	TotalSeeds          int      `json:"totalSeeds"`
	InsertedCount       int      `json:"insertedCount"`
	InsertedPermissions []string `json:"insertedPermissions"`
	SkippedPermissions  []string `json:"skippedPermissions"`
}

// ModuleItem counts the permissions of one module.
type ModuleItem struct {
	Module      string `json:"module"`
	Permissions int    `json:"permissions"`
}

// modulesOf derives the module list of a permission catalog, sorted by module.
func modulesOf(items []PermissionItem) []ModuleItem {
	counts := make(map[string]int)
	for _, item := range items {
		counts[ModuleFromKey(strings.ToLower(item.Code))]++
	}

	out := make([]ModuleItem, 0, len(counts))
	for module, n := range counts {
		out = append(out, ModuleItem{Module: module, Permissions: n})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })

	return out
}
