package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSymmetry(t *testing.T) {
	// Chennai and Visakhapatnam
	ab := Distance(13.0500, 80.2824, 17.7140, 83.3240)
	ba := Distance(17.7140, 83.3240, 13.0500, 80.2824)

	assert.InDelta(t, ab, ba, 1e-9)
	assert.Greater(t, ab, 0.0)
}

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, Distance(13.0500, 80.2824, 13.0500, 80.2824))
	assert.Equal(t, 0.0, Distance(0, 0, 0, 0))
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		expectedMeters         float64
		tolerance              float64
	}{
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lng1: 0, lat2: 0, lng2: 1,
			expectedMeters: 111195,
			tolerance:      100,
		},
		{
			name: "small offset near the equator",
			lat1: 0, lng1: 0, lat2: 0, lng2: 0.0001,
			expectedMeters: 11.1,
			tolerance:      0.2,
		},
		{
			name: "Chennai to Mumbai",
			lat1: 13.0500, lng1: 80.2824, lat2: 18.9220, lng2: 72.8347,
			expectedMeters: 1030000,
			tolerance:      10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expectedMeters, d, tt.tolerance)
		})
	}
}

func TestNewGeoPoint(t *testing.T) {
	p, err := NewGeoPoint(13.05, 80.28)
	require.NoError(t, err)
	assert.Equal(t, 13.05, p.Latitude())
	assert.Equal(t, 80.28, p.Longitude())

	other, err := NewGeoPoint(13.05, 80.28)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.DistanceTo(*other))
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 45.0, -75.0, false},
		{"boundary latitude", 90.0, 0, false},
		{"boundary longitude", 0, -180.0, false},
		{"latitude too high", 90.1, 0, true},
		{"latitude too low", -90.1, 0, true},
		{"longitude too high", 0, 180.1, true},
		{"longitude too low", 0, -180.1, true},
		{"NaN latitude", math.NaN(), 0, true},
		{"infinite longitude", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
