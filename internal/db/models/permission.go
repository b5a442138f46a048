package models

import "time"

// Permission represents a permission key of one tenant's catalog (table WPermiso).
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"column:Id;primaryKey"`
	// TenantID is the company the permission belongs to.
	TenantID int `gorm:"column:EmpresaId;not null;uniqueIndex:ux_wpermiso_empresa_clave"`
	// Key is the permission key in module.action format (e.g. "usuarios.ver").
	Key string `gorm:"column:Clave;size:200;not null;uniqueIndex:ux_wpermiso_empresa_clave"`
	// Name is the display name of the permission.
	Name string `gorm:"column:Nombre;size:200;not null"`
	// Description is optional, seeded rows carry "<module>.seed".
	Description *string `gorm:"column:Descripcion;size:500"`
	// CreatedAt is the timestamp when the permission was created.
	CreatedAt time.Time `gorm:"column:FechaCreacion"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "WPermiso"
}
