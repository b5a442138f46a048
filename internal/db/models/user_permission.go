package models

// UserPermission is a per user override of one permission (table WUsuarioPermiso).
// Kind holds the disposition token, e.g. "permit" or "deny".
type UserPermission struct {
	ID           uint   `gorm:"column:Id;primaryKey"`
	TenantID     int    `gorm:"column:EmpresaId;not null;index:ix_wusuariopermiso_usuario"`
	UserID       string `gorm:"column:UsuarioWebId;size:36;not null;index:ix_wusuariopermiso_usuario"`
	PermissionID uint   `gorm:"column:WPermisoId;not null"`
	Kind         string `gorm:"column:Tipo;size:10;not null"`
	Reason       string `gorm:"column:Motivo;size:300"`
}

// TableName specifies the database table name for the UserPermission model.
func (UserPermission) TableName() string {
	return "WUsuarioPermiso"
}
