package models

import "time"

// RolePermission links a role to a permission inside one tenant (table WRolPermiso).
// The set of links of a role is always replaced as a whole.
type RolePermission struct {
	// TenantID is the company of both the role and the permission.
	TenantID int `gorm:"column:EmpresaId;not null"`
	// RoleID references Role.ID.
	RoleID uint `gorm:"column:WRolId;primaryKey;autoIncrement:false"`
	// PermissionID references Permission.ID.
	PermissionID uint `gorm:"column:WPermisoId;primaryKey;autoIncrement:false"`
	// CreatedAt is the timestamp when the link was created.
	CreatedAt time.Time `gorm:"column:FechaCreacion"`
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "WRolPermiso"
}
