package interfaces

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError returned from newsroom stores.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
