// Package config reads the capcore configuration from etc/main.toml,
// a JSON override in CAPCORE_CONFIG_JSON and CAPCORE_* environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes single key environment overrides, e.g. CAPCORE_WEBSERVER_PORT.
	EnvPrefix = "CAPCORE"

	// EnvConfigJSON holds a JSON document merged over the main config file.
	EnvConfigJSON = "CAPCORE_CONFIG_JSON"

	mainConfigFile = "main.toml"

	defaultShutDownTime  = 5
	defaultCheckAliveURI = "/checkalive"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, mainConfigFile))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if raw := os.Getenv(EnvConfigJSON); raw != "" {
		if err := mergeJSON(v, raw); err != nil {
			return Config{}, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	return c, validate(&c)
}

func mergeJSON(v *viper.Viper, configAsJSON string) error {
	jv := viper.New()
	jv.SetConfigType("json")

	if err := jv.ReadConfig(strings.NewReader(configAsJSON)); err != nil {
		return errors.Wrap(err, "failed to read "+EnvConfigJSON)
	}

	return errors.Wrap(v.MergeConfigMap(jv.AllSettings()), "failed to merge "+EnvConfigJSON)
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return string(out), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings capcore can not start without and fills defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	case "":
		c.DB.GormEngine = EngineMySQL
	default:
		return errors.Wrap(ErrUnsupportedGormEngine, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.CheckAliveURI == "" {
		c.Webserver.CheckAliveURI = defaultCheckAliveURI
	}

	c.Capability = c.Capability.WithDefaults()

	if c.Capability.StaleTTL < c.Capability.FreshTTL {
		return errors.Wrap(ErrStaleTTLTooShort, invalidErrMessage)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.Wrap(ErrRedisAddrEmpty, invalidErrMessage)
	}

	return nil
}
