// Package storage archives rendered certificate documents
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that are empty or escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// Driver is the binary store behind certificate archiving
type Driver interface {
	// Save writes content under key, replacing any previous object
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Delete removes the object; missing objects are not an error
	Delete(ctx context.Context, key string) error
}
