// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/isl-service/capcore/internal/config"
)

// ErrUnsupportedEngine is returned for a GormEngine without a dialector.
var ErrUnsupportedEngine = errors.New("unsupported gorm engine")

// Create builds the Data Source Name from the configuration.
func Create(cfg *config.Config) (string, error) {
	db := cfg.DB

	switch db.GormEngine {
	case config.EngineMySQL, "":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		), nil
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host,
			db.Port,
			db.User,
			db.Password,
			db.Name,
		)
		if db.Extras != "" {
			out += " " + db.Extras
		}

		return out, nil
	case config.EngineSQLite:
		if db.Extras != "" {
			return db.Name + "?" + db.Extras, nil
		}

		return db.Name, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEngine, db.GormEngine)
	}
}

// Open returns the gorm dialector of the configured engine.
func Open(cfg *config.Config) (gorm.Dialector, error) {
	out, err := Create(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return postgres.Open(out), nil
	case config.EngineSQLite:
		return sqlite.Open(out), nil
	default:
		return mysql.Open(out), nil
	}
}
