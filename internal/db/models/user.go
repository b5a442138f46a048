package models

import "github.com/google/uuid"

// User is a web user of a tenant (table UsuarioWeb).
// Only the columns the capability subsystem reads are mapped.
type User struct {
	// ID is the user's UUID.
	ID uuid.UUID `gorm:"column:Id;type:varchar(36);primaryKey"`
	// TenantID is the company the user belongs to.
	TenantID int `gorm:"column:EmpresaId;not null;index"`
	// Username is the login name.
	Username string `gorm:"column:Usuario;size:100;not null"`
	// LegacyRole is the coarse role label, e.g. "Admin".
	LegacyRole string `gorm:"column:Rol;size:50;not null"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "UsuarioWeb"
}
