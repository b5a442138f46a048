// Package companysetting reads and writes per tenant configuration rows.
package companysetting

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/isl-service/capcore/internal/db/models"
)

// latestFirst orders rows of a key newest first.
var latestFirst = clause.OrderByColumn{Column: clause.Column{Name: "FechaActualizacion"}, Desc: true}

func tenantKey(tenantID int, key string) map[string]any {
	return map[string]any{"EmpresaId": tenantID, "Clave": key}
}

var (
	// ErrSettingNotFound is returned when a tenant has no row for a key.
	ErrSettingNotFound = errors.New("company setting not found")
	// ErrSettingKeyEmpty is returned when the key is empty.
	ErrSettingKeyEmpty = errors.New("company setting key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Latest returns the most recently updated row of key for tenant.
func Latest(db *gorm.DB, tenantID int, key string) (*models.CompanySetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var setting models.CompanySetting
	result := db.Where(tenantKey(tenantID, key)).Order(latestFirst).Take(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	return &setting, nil
}

// History returns every row of key for tenant, newest first.
func History(db *gorm.DB, tenantID int, key string) ([]models.CompanySetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var settings []models.CompanySetting
	result := db.Where(tenantKey(tenantID, key)).Order(latestFirst).Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Set appends a new row for key, which becomes the latest value.
// Rows are never updated in place so the update time keeps working as a version.
func Set(db *gorm.DB, tenantID int, key string, active bool) (*models.CompanySetting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	setting := &models.CompanySetting{
		TenantID:  tenantID,
		Key:       key,
		Active:    active,
		UpdatedAt: time.Now().UTC(),
	}

	// the previous row may carry the same timestamp on coarse clocks
	if prev, err := Latest(db, tenantID, key); err == nil && !setting.UpdatedAt.After(prev.UpdatedAt) {
		setting.UpdatedAt = prev.UpdatedAt.Add(time.Microsecond)
	}

	result := db.Create(setting)
	if result.Error != nil {
		return nil, result.Error
	}

	return setting, nil
}
