package config

import (
	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode    bool               `mapstructure:"devMode" toml:"devMode"` // enable dev mode for development
	DB         DB                 `mapstructure:"db" toml:"db"`
	Log        logger.Log         `mapstructure:"log" toml:"log"`
	Title      string             `mapstructure:"title" toml:"title"`
	Webserver  Webserver          `mapstructure:"webserver" toml:"webserver"`
	Capability capability.Options `mapstructure:"capability" toml:"capability"`
	Redis      Redis              `mapstructure:"redis" toml:"redis"`
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   `mapstructure:"disableRecover" toml:"disableRecover"` // disable recover middleware
	EnableMetrics  bool   `mapstructure:"enableMetrics" toml:"enableMetrics"`   // expose /metrics
	Port           int    `mapstructure:"port" toml:"port"`                     // listening port for the webserver
	ShutDownTime   int    `mapstructure:"shutDownTime" toml:"shutDownTime"`     // seconds to answer 503 on /checkalive before stopping
	CheckAliveURI  string `mapstructure:"checkAliveURI" toml:"checkAliveURI"`
}

// Redis holds the optional shared snapshot cache settings.
type Redis struct {
	Enabled  bool   `mapstructure:"enabled" toml:"enabled"`
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"-" json:"-"`
	DB       int    `mapstructure:"db" toml:"db"`
	Prefix   string `mapstructure:"prefix" toml:"prefix"`
}
