package types

import (
	"time"
)

// PositionSource identifies the positioning technology a reading most
// likely came from, inferred from its reported accuracy.
type PositionSource string

const (
	SourceGPS        PositionSource = "GPS"
	SourceGPSGlonass PositionSource = "GPS/GLONASS"
	SourceWiFiCell   PositionSource = "WiFi/Cell"
	SourceNetworkIP  PositionSource = "Network/IP"
	SourceUnknown    PositionSource = "Unknown"
)

// AccuracyQuality is a discrete accuracy bucket used for display and
// classification.
type AccuracyQuality string

const (
	QualityExcellent AccuracyQuality = "excellent"
	QualityVeryGood  AccuracyQuality = "very_good"
	QualityGood      AccuracyQuality = "good"
	QualityFair      AccuracyQuality = "fair"
	QualityPoor      AccuracyQuality = "poor"
	QualityVeryPoor  AccuracyQuality = "very_poor"
	// QualityDemo marks synthesized fallback positions.
	QualityDemo AccuracyQuality = "demo"
)

// DefaultAccuracySentinel is assumed when a reading carries no accuracy
// estimate at all.
const DefaultAccuracySentinel = 10000

// Position is a single geolocation reading plus derived classification
// metadata. It is immutable once produced: newer readings supersede it,
// they never mutate it. The record must round-trip losslessly through
// JSON so it can be persisted in the key-value store.
type Position struct {
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	Accuracy         float64         `json:"accuracy"`
	Altitude         *float64        `json:"altitude,omitempty"`
	AltitudeAccuracy *float64        `json:"altitudeAccuracy,omitempty"`
	Heading          *float64        `json:"heading,omitempty"`
	Speed            *float64        `json:"speed,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
	Source           PositionSource  `json:"source"`
	Quality          AccuracyQuality `json:"quality"`
	IsHighAccuracy   bool            `json:"isHighAccuracy"`
	IsFallback       bool            `json:"isFallback"`
	FallbackName     string          `json:"fallbackLocationName,omitempty"`
	CacheTime        time.Time       `json:"cacheTime"`
}

// Age reports how old the cached record is relative to now.
func (p *Position) Age(now time.Time) time.Duration {
	return now.Sub(p.CacheTime)
}

// ClassifyAccuracy maps an accuracy radius in meters onto a quality
// bucket and a likely source. The partition is accuracy-ordered with
// inclusive upper bounds: ties on a boundary take the better bucket.
func ClassifyAccuracy(accuracy float64) (AccuracyQuality, PositionSource) {
	switch {
	case accuracy <= 10:
		return QualityExcellent, SourceGPS
	case accuracy <= 50:
		return QualityVeryGood, SourceGPS
	case accuracy <= 100:
		return QualityGood, SourceGPSGlonass
	case accuracy <= 500:
		return QualityFair, SourceWiFiCell
	case accuracy <= 2000:
		return QualityPoor, SourceWiFiCell
	default:
		return QualityVeryPoor, SourceNetworkIP
	}
}

// PermissionStatus mirrors the platform permission API states. Unavailable
// means the platform offers no permission query at all.
type PermissionStatus string

const (
	PermissionGranted     PermissionStatus = "granted"
	PermissionDenied      PermissionStatus = "denied"
	PermissionPrompt      PermissionStatus = "prompt"
	PermissionUnavailable PermissionStatus = "unavailable"
)

// PermissionRecord is the persisted permission state with its check time.
// Records older than the configured TTL are treated as stale and force a
// re-check instead of reusing an old grant or denial.
type PermissionRecord struct {
	Status    PermissionStatus `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// AccuracyStatus is a presentation-oriented summary of a position's
// quality, consumed by UI surfaces. Derivation is pure: no device access.
type AccuracyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

// DeviceCapabilities describes what the wired geolocation provider can do.
type DeviceCapabilities struct {
	HasGeolocation     bool `json:"hasGeolocation"`
	HasPermissionQuery bool `json:"hasPermissionQuery"`
	SupportsWatch      bool `json:"supportsWatch"`
}

// ReverseGeocodeResult is a human-readable address resolved from
// coordinates via nearest-reference-point lookup.
type ReverseGeocodeResult struct {
	Address  string `json:"address"`
	District string `json:"district"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

// NamedLocation is a fixed reference coastal location used both for
// reverse geocoding and for fallback position synthesis.
type NamedLocation struct {
	Name      string  `json:"name"`
	District  string  `json:"district"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
