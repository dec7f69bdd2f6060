package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAccuracy(t *testing.T) {
	tests := []struct {
		accuracy float64
		quality  AccuracyQuality
		source   PositionSource
	}{
		{5, QualityExcellent, SourceGPS},
		{10, QualityExcellent, SourceGPS},
		{10.1, QualityVeryGood, SourceGPS},
		{50, QualityVeryGood, SourceGPS},
		{100, QualityGood, SourceGPSGlonass},
		{500, QualityFair, SourceWiFiCell},
		{1000, QualityPoor, SourceWiFiCell},
		{2000, QualityPoor, SourceWiFiCell},
		{2001, QualityVeryPoor, SourceNetworkIP},
		{50000, QualityVeryPoor, SourceNetworkIP},
	}

	for _, tt := range tests {
		quality, source := ClassifyAccuracy(tt.accuracy)
		assert.Equal(t, tt.quality, quality, "accuracy %v", tt.accuracy)
		assert.Equal(t, tt.source, source, "accuracy %v", tt.accuracy)
	}
}

func TestPositionAge(t *testing.T) {
	now := time.Now()
	pos := Position{CacheTime: now.Add(-90 * time.Second)}
	assert.Equal(t, 90*time.Second, pos.Age(now))
}

func TestPositionJSONRoundTrip(t *testing.T) {
	altitude := 12.5
	heading := 270.0
	original := Position{
		Latitude:       13.0500,
		Longitude:      80.2824,
		Accuracy:       42,
		Altitude:       &altitude,
		Heading:        &heading,
		Timestamp:      time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		Source:         SourceGPS,
		Quality:        QualityVeryGood,
		IsHighAccuracy: true,
		CacheTime:      time.Date(2026, 5, 4, 10, 30, 1, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Position
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestFallbackPositionJSONRoundTrip(t *testing.T) {
	original := Position{
		Latitude:     19.7983,
		Longitude:    85.8249,
		Accuracy:     DefaultAccuracySentinel,
		Timestamp:    time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		Source:       SourceUnknown,
		Quality:      QualityDemo,
		IsFallback:   true,
		FallbackName: "Puri",
		CacheTime:    time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Position
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
	assert.True(t, decoded.IsFallback)
	assert.Equal(t, "Puri", decoded.FallbackName)
}
