package storage

import (
	"context"
	"errors"
)

// Key represents a key of the persistent session storage
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUser         Key = "user"
)

// SessionKeys contains every key a session persists
var SessionKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyUser}

// ErrNotInitialized is returned by drivers used before Initialize was called
var ErrNotInitialized = errors.New("storage driver is not initialized")

// Driver represents a persistent key/value storage driver.
// Set and Remove apply all given keys in a single atomic operation.
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection)
	Initialize(ctx context.Context) error

	// Get retrieves the value of a key and a boolean indicating whether it is present
	Get(ctx context.Context, key Key) (string, bool, error)

	// Set stores all given key-value pairs
	Set(ctx context.Context, values map[Key]string) error

	// Remove removes all given keys; missing keys are ignored
	Remove(ctx context.Context, keys ...Key) error

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}
