package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if db.gormEngine is not mysql, postgres or sqlite.
	ErrUnsupportedGormEngine = errors.New("config db.gormEngine must be mysql, postgres or sqlite")

	// ErrStaleTTLTooShort error if the stale cache tier would expire before the fresh tier.
	ErrStaleTTLTooShort = errors.New("config capability.staleTTL can not be shorter than capability.freshTTL")

	// ErrRedisAddrEmpty error if redis is enabled without an address.
	ErrRedisAddrEmpty = errors.New("config redis.addr can not be empty when redis is enabled")
)
