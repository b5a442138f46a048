package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// ErrNoLogFilePath is returned if file logging is enabled without a path.
	ErrNoLogFilePath = errors.New("config Log.File.Path can not be empty when file logging is enabled")
)

// ErrorHandler is installed as zerolog.ErrorHandler and reports failed writes on stderr.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "zerolog: could not write event: %v\n", err)
}
