package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Surajgore007/oceansaksham-location/config"
	"github.com/Surajgore007/oceansaksham-location/handlers"
	"github.com/Surajgore007/oceansaksham-location/internal/events"
	"github.com/Surajgore007/oceansaksham-location/internal/geolocation"
	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/router"
	"github.com/Surajgore007/oceansaksham-location/services"
	"github.com/Surajgore007/oceansaksham-location/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.InitLogger()
	defer func() {
		_ = logger.Close()
	}()
	log := logger.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}

	// Persistent store: Redis when configured, in-memory otherwise.
	var kv store.Store
	var serviceOpts []services.Option
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalw("Failed to connect to Redis", "address", cfg.Redis.Address, "error", err)
		}
		cancel()
		defer func() {
			_ = redisClient.Close()
		}()

		kv = store.NewRedis(redisClient)
		serviceOpts = append(serviceOpts, services.WithPublisher(events.NewRedisPublisher(redisClient)))
		log.Infow("Using Redis store", "address", cfg.Redis.Address)
	} else {
		kv = store.NewMemory()
		log.Infow("Using in-memory store")
	}

	var provider geolocation.Provider
	switch cfg.Provider.Kind {
	case "ipapi":
		provider = geolocation.NewIPAPIProvider(cfg.Provider.IPAPIEndpoint, cfg.Provider.WatchInterval)
		log.Infow("Using IP geolocation provider", "endpoint", cfg.Provider.IPAPIEndpoint)
	case "none":
		log.Warnw("No geolocation provider configured, live acquisition will be unavailable")
	default:
		log.Fatalw("Unknown provider kind", "kind", cfg.Provider.Kind)
	}

	locationService := services.NewLocationService(provider, kv, cfg.Location, serviceOpts...)
	defer locationService.Cleanup()

	// Continuous tracking feeds the WebSocket live-map stream; one-shot
	// requests keep working either way.
	if provider != nil {
		if err := locationService.StartWatchingPosition(context.Background(), true); err != nil {
			log.Warnw("Failed to start position watch", "error", err)
		}
	}

	geocodeService := services.NewGeocodeService(cfg.Location.FallbackLocations)

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		LocationHandler: handlers.NewLocationHandler(locationService, geocodeService),
		WSHandler:       handlers.NewWSHandler(locationService, &cfg.Server),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
}
