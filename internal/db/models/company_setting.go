package models

import "time"

// CompanySetting is a boolean configuration row of one tenant (table WConfiguracionEmpresa).
// Rows are append only; the most recently updated row of a key wins.
type CompanySetting struct {
	// ID is the unique identifier for the row.
	ID uint `gorm:"column:Id;primaryKey"`
	// TenantID is the company the setting applies to.
	TenantID int `gorm:"column:EmpresaId;not null;index:ix_wconfiguracion_empresa_clave"`
	// Key names the setting, e.g. "autorizacion.capacidades".
	Key string `gorm:"column:Clave;size:200;not null;index:ix_wconfiguracion_empresa_clave"`
	// Active is the value of the setting.
	Active bool `gorm:"column:Activo;not null"`
	// UpdatedAt orders rows of the same key and doubles as version token.
	UpdatedAt time.Time `gorm:"column:FechaActualizacion;not null"`
}

// TableName specifies the database table name for the CompanySetting model.
func (CompanySetting) TableName() string {
	return "WConfiguracionEmpresa"
}
