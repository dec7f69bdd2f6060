// Package config handles loading and validation of application configuration
// from environment variables and an optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Surajgore007/oceansaksham-location/types"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"environment" yaml:"environment"`
	Port           string      `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Version        string      `mapstructure:"version" yaml:"version"`
}

// RedisConfig holds Redis connection details. Leaving Address empty runs
// the service on the in-memory store with no pub/sub fan-out.
type RedisConfig struct {
	Address  string `mapstructure:"address" yaml:"address"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// ProviderConfig selects and tunes the geolocation provider.
type ProviderConfig struct {
	// Kind is "ipapi" or "none". "none" leaves the service without a
	// device capability, which makes live acquisition a fatal error.
	Kind string `mapstructure:"kind" yaml:"kind"`
	// IPAPIEndpoint is the JSON IP-geolocation endpoint queried by the
	// ipapi provider.
	IPAPIEndpoint string `mapstructure:"ipapi_endpoint" yaml:"ipapi_endpoint"`
	// WatchInterval is the polling cadence the ipapi provider uses in
	// watch mode.
	WatchInterval time.Duration `mapstructure:"watch_interval" yaml:"watch_interval"`
}

// Strategy is one rung of the acquisition ladder: an accuracy mode, a
// timeout, and the maximum platform-cached fix age it will accept.
type Strategy struct {
	Name         string        `mapstructure:"name" yaml:"name"`
	HighAccuracy bool          `mapstructure:"high_accuracy" yaml:"high_accuracy"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxAge       time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// LocationConfig tunes the acquisition service.
type LocationConfig struct {
	// AccuracyThreshold is the radius in meters at or under which a
	// position counts as high accuracy.
	AccuracyThreshold float64 `mapstructure:"accuracy_threshold" yaml:"accuracy_threshold"`
	// MaxPlausibleAccuracy rejects readings whose accuracy radius exceeds
	// it as network geolocation noise.
	MaxPlausibleAccuracy float64 `mapstructure:"max_plausible_accuracy" yaml:"max_plausible_accuracy"`
	// CacheTimeout is how long a cached position stays usable.
	CacheTimeout time.Duration `mapstructure:"cache_timeout" yaml:"cache_timeout"`
	// PermissionTTL is how long a cached permission check stays usable.
	PermissionTTL time.Duration `mapstructure:"permission_ttl" yaml:"permission_ttl"`
	// GraceBuffer is added to each strategy timeout before the service
	// gives up independently of the platform timeout.
	GraceBuffer time.Duration `mapstructure:"grace_buffer" yaml:"grace_buffer"`
	// WatchMinDistance is the floor, in meters, of the movement required
	// for a watch update to be considered meaningful.
	WatchMinDistance float64 `mapstructure:"watch_min_distance" yaml:"watch_min_distance"`
	// WatchStaleAfter forces acceptance of a watch update once the held
	// position is older than this.
	WatchStaleAfter time.Duration `mapstructure:"watch_stale_after" yaml:"watch_stale_after"`

	Strategies        []Strategy            `mapstructure:"strategies" yaml:"strategies"`
	FallbackLocations []types.NamedLocation `mapstructure:"fallback_locations" yaml:"fallback_locations"`
}

// Config aggregates all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Location LocationConfig `mapstructure:"location" yaml:"location"`
}

// DefaultStrategies is the fixed degradation ladder: most to least
// aggressive, tried sequentially, never raced.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "high_accuracy", HighAccuracy: true, Timeout: 10 * time.Second, MaxAge: 30 * time.Second},
		{Name: "balanced", HighAccuracy: true, Timeout: 20 * time.Second, MaxAge: 120 * time.Second},
		{Name: "power_saving", HighAccuracy: false, Timeout: 30 * time.Second, MaxAge: 300 * time.Second},
	}
}

// DefaultFallbackLocations is the fixed set of named reference coastal
// locations used for fallback synthesis and reverse geocoding.
func DefaultFallbackLocations() []types.NamedLocation {
	return []types.NamedLocation{
		{Name: "Chennai", District: "Chennai", State: "Tamil Nadu", Latitude: 13.0500, Longitude: 80.2824},
		{Name: "Mumbai", District: "Mumbai City", State: "Maharashtra", Latitude: 18.9220, Longitude: 72.8347},
		{Name: "Visakhapatnam", District: "Visakhapatnam", State: "Andhra Pradesh", Latitude: 17.7140, Longitude: 83.3240},
		{Name: "Kochi", District: "Ernakulam", State: "Kerala", Latitude: 9.9658, Longitude: 76.2421},
		{Name: "Puri", District: "Puri", State: "Odisha", Latitude: 19.7983, Longitude: 85.8249},
		{Name: "Panaji", District: "North Goa", State: "Goa", Latitude: 15.4989, Longitude: 73.8278},
	}
}

// LoadConfig reads configuration from config.yaml (if present) and the
// environment (prefix OSL_, e.g. OSL_SERVER_PORT), applying defaults for
// everything unset.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("OSL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Location.Strategies) == 0 {
		cfg.Location.Strategies = DefaultStrategies()
	}
	if len(cfg.Location.FallbackLocations) == 0 {
		cfg.Location.FallbackLocations = DefaultFallbackLocations()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultLocationConfig returns a LocationConfig with all defaults
// applied, used by tests and embedded deployments that skip viper.
func DefaultLocationConfig() LocationConfig {
	return LocationConfig{
		AccuracyThreshold:    100,
		MaxPlausibleAccuracy: 100000,
		CacheTimeout:         5 * time.Minute,
		PermissionTTL:        time.Hour,
		GraceBuffer:          2 * time.Second,
		WatchMinDistance:     50,
		WatchStaleAfter:      5 * time.Minute,
		Strategies:           DefaultStrategies(),
		FallbackLocations:    DefaultFallbackLocations(),
	}
}

// Validate checks configuration invariants that would otherwise surface
// as confusing runtime behavior.
func (c *Config) Validate() error {
	if c.Location.AccuracyThreshold <= 0 {
		return fmt.Errorf("location.accuracy_threshold must be positive, got %f", c.Location.AccuracyThreshold)
	}
	if c.Location.CacheTimeout <= 0 {
		return fmt.Errorf("location.cache_timeout must be positive, got %v", c.Location.CacheTimeout)
	}
	if c.Location.PermissionTTL <= 0 {
		return fmt.Errorf("location.permission_ttl must be positive, got %v", c.Location.PermissionTTL)
	}
	for i, s := range c.Location.Strategies {
		if s.Timeout <= 0 {
			return fmt.Errorf("location.strategies[%d].timeout must be positive, got %v", i, s.Timeout)
		}
		if s.MaxAge < 0 {
			return fmt.Errorf("location.strategies[%d].max_age must not be negative, got %v", i, s.MaxAge)
		}
	}
	for i, loc := range c.Location.FallbackLocations {
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("location.fallback_locations[%d] (%s) has out-of-range coordinates", i, loc.Name)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", string(EnvDevelopment))
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.version", "dev")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("provider.kind", "ipapi")
	v.SetDefault("provider.ipapi_endpoint", "http://ip-api.com/json")
	v.SetDefault("provider.watch_interval", 30*time.Second)

	v.SetDefault("location.accuracy_threshold", float64(100))
	v.SetDefault("location.max_plausible_accuracy", float64(100000))
	v.SetDefault("location.cache_timeout", 5*time.Minute)
	v.SetDefault("location.permission_ttl", time.Hour)
	v.SetDefault("location.grace_buffer", 2*time.Second)
	v.SetDefault("location.watch_min_distance", float64(50))
	v.SetDefault("location.watch_stale_after", 5*time.Minute)
}
