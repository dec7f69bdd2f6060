// Package store defines the persistent key-value boundary the location
// service caches through, so the persistence mechanism is swappable
// without touching acquisition logic.
package store

import (
	"context"
	"errors"
	"time"
)

// Logical keys used by the location service.
const (
	KeyLastKnownLocation = "location:last_known"
	KeyPermissionStatus  = "location:permission"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal typed key-value interface. A zero ttl means the
// entry does not expire at the store level.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
