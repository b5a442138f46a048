package permisosweb

// CreateRoleRequest is the body of POST roles.
type CreateRoleRequest struct {
	Code string `json:"code" validate:"required,max=100"`
	Name string `json:"name" validate:"max=100"`
}

// RolePermissionsRequest is the body of PUT roles/:roleCode/permissions.
// RoleCode is optional and must match the route when given.
type RolePermissionsRequest struct {
	RoleCode    string   `json:"roleCode"`
	Permissions []string `json:"permissions" validate:"dive,max=200"`
}

// UserOverridesRequest is the body of PUT usuarios/:userId/overrides.
// UserID is optional and must match the route when given.
type UserOverridesRequest struct {
	UserID string   `json:"userId" validate:"omitempty,uuid"`
	Allow  []string `json:"allow" validate:"dive,max=200"`
	Deny   []string `json:"deny" validate:"dive,max=200"`
}

// SyncCatalogRequest is the optional body of POST catalogo/sync.
type SyncCatalogRequest struct {
	Modules []string `json:"modules" validate:"dive,required"`
}

// CreatePermissionRequest is the body of POST catalogo/permissions.
type CreatePermissionRequest struct {
	Key         string `json:"key" validate:"required,max=200"`
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=500"`
}

// CreateRoleResponse reports the role and whether it was inserted.
type CreateRoleResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// CreatePermissionResponse reports whether the key was inserted.
type CreatePermissionResponse struct {
	Key     string `json:"key"`
	Created bool   `json:"created"`
}
