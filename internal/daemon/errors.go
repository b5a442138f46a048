package daemon

import "errors"

// ErrConfigNil is returned by New without a config.
var ErrConfigNil = errors.New("config is nil")
