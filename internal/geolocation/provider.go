// Package geolocation defines the device geolocation capability the
// acquisition service consumes, plus the providers that implement it.
package geolocation

import (
	"context"
	"errors"
	"time"

	"github.com/Surajgore007/oceansaksham-location/types"
)

// Coded provider errors. The acquisition service absorbs all of these
// into its cache-then-fallback path.
var (
	ErrPermissionDenied    = errors.New("geolocation: permission denied")
	ErrPositionUnavailable = errors.New("geolocation: position unavailable")
	ErrTimeout             = errors.New("geolocation: timed out")
)

// Options configure a single acquisition or watch request.
type Options struct {
	// HighAccuracy asks the platform for its most precise fix at the cost
	// of latency and power.
	HighAccuracy bool
	// Timeout is the maximum time the platform may spend on the fix.
	Timeout time.Duration
	// MaximumAge is the oldest platform-cached fix the caller accepts.
	MaximumAge time.Duration
}

// Reading is a raw platform reading before validation and classification.
type Reading struct {
	Latitude         float64
	Longitude        float64
	Accuracy         float64
	HasAccuracy      bool
	Altitude         *float64
	AltitudeAccuracy *float64
	Heading          *float64
	Speed            *float64
	Timestamp        time.Time
}

// Provider is the one-shot and continuous geolocation capability.
type Provider interface {
	// Current returns a single reading or a coded error.
	Current(ctx context.Context, opts Options) (*Reading, error)
	// Watch delivers readings (or coded errors) to fn until the returned
	// stop function is called or ctx is cancelled. Stop is idempotent.
	Watch(ctx context.Context, opts Options, fn func(*Reading, error)) (stop func(), err error)
}

// PermissionQuerier is an optional capability: a prompt-free permission
// query. Providers that cannot answer simply do not implement it.
type PermissionQuerier interface {
	QueryPermission(ctx context.Context) (types.PermissionStatus, error)
}
