package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Redis.Address)
	assert.Equal(t, "ipapi", cfg.Provider.Kind)

	assert.Equal(t, 100.0, cfg.Location.AccuracyThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Location.CacheTimeout)
	assert.Equal(t, time.Hour, cfg.Location.PermissionTTL)
	assert.Equal(t, 2*time.Second, cfg.Location.GraceBuffer)
	assert.Len(t, cfg.Location.Strategies, 3)
	assert.Len(t, cfg.Location.FallbackLocations, 6)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("OSL_SERVER_PORT", "9090")
	t.Setenv("OSL_PROVIDER_KIND", "none")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "none", cfg.Provider.Kind)
}

func TestDefaultStrategiesOrdering(t *testing.T) {
	strategies := DefaultStrategies()
	require.Len(t, strategies, 3)

	// Ladder runs from strictest to most permissive.
	assert.Equal(t, "high_accuracy", strategies[0].Name)
	assert.Equal(t, "balanced", strategies[1].Name)
	assert.Equal(t, "power_saving", strategies[2].Name)
	assert.True(t, strategies[0].HighAccuracy)
	assert.False(t, strategies[2].HighAccuracy)

	for i := 1; i < len(strategies); i++ {
		assert.Greater(t, strategies[i].Timeout, strategies[i-1].Timeout)
		assert.Greater(t, strategies[i].MaxAge, strategies[i-1].MaxAge)
	}
}

func TestDefaultFallbackLocationsAreValid(t *testing.T) {
	locations := DefaultFallbackLocations()
	require.NotEmpty(t, locations)

	seen := make(map[string]bool)
	for _, loc := range locations {
		assert.NotEmpty(t, loc.Name)
		assert.NotEmpty(t, loc.District)
		assert.NotEmpty(t, loc.State)
		assert.GreaterOrEqual(t, loc.Latitude, -90.0)
		assert.LessOrEqual(t, loc.Latitude, 90.0)
		assert.GreaterOrEqual(t, loc.Longitude, -180.0)
		assert.LessOrEqual(t, loc.Longitude, 180.0)
		assert.False(t, seen[loc.Name], "duplicate fallback location %s", loc.Name)
		seen[loc.Name] = true
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Location: DefaultLocationConfig()}
	}

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("non-positive accuracy threshold", func(t *testing.T) {
		cfg := valid()
		cfg.Location.AccuracyThreshold = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive cache timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Location.CacheTimeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive permission ttl", func(t *testing.T) {
		cfg := valid()
		cfg.Location.PermissionTTL = -time.Minute
		assert.Error(t, cfg.Validate())
	})

	t.Run("strategy with zero timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Location.Strategies[0].Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("strategy with negative max age", func(t *testing.T) {
		cfg := valid()
		cfg.Location.Strategies[1].MaxAge = -time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("fallback location out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Location.FallbackLocations[0].Latitude = 95
		assert.Error(t, cfg.Validate())
	})
}
