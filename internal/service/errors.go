// Package service holds the backend business logic behind the HTTP
// endpoints. Services speak in models and sentinel errors; mapping to HTTP
// status codes happens in the server package.
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a request the caller must fix before retrying.
var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
