package config

// Supported gorm engines.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras      string `mapstructure:"extras" toml:"extras"`
	Host        string `mapstructure:"host" toml:"host"`
	Port        int    `mapstructure:"port" toml:"port"`
	User        string `mapstructure:"user" toml:"user"`
	Password    string `mapstructure:"password" toml:"-" json:"-"`
	Name        string `mapstructure:"name" toml:"name"` // database name, file path for sqlite
	GormEngine  string `mapstructure:"gormEngine" toml:"gormEngine"`
	AutoMigrate bool   `mapstructure:"autoMigrate" toml:"autoMigrate"` // create the canonical capability tables on start
}
