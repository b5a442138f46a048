package models

import "time"

// Role represents a role of one tenant (table WRol).
// Roles are collections of permission keys; a user receives the role matching
// the canonical code of its legacy role label.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"column:Id;primaryKey"`
	// TenantID is the company the role belongs to.
	TenantID int `gorm:"column:EmpresaId;not null;uniqueIndex:ux_wrol_empresa_codigo"`
	// Code is the canonical role code, e.g. "ADMIN". Unique per tenant.
	Code string `gorm:"column:Codigo;size:30;not null;uniqueIndex:ux_wrol_empresa_codigo"`
	// Name is the display name of the role.
	Name string `gorm:"column:Nombre;size:100;not null"`
	// CreatedAt is the timestamp when the role was created.
	CreatedAt time.Time `gorm:"column:FechaCreacion"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "WRol"
}
