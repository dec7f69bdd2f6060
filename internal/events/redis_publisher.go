package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PositionChannel is the Redis Pub/Sub channel accepted position updates
// are broadcast on.
const PositionChannel = "oceansaksham:location:updates"

// PositionPublisher broadcasts accepted position updates to out-of-process
// consumers.
type PositionPublisher interface {
	Publish(ctx context.Context, pos *types.Position) error
}

var (
	publishLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oceansaksham_location_publish_duration_seconds",
		Help:    "Time taken to publish position updates",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oceansaksham_location_publish_errors_total",
		Help: "Total number of position publish errors",
	})
)

// RedisPublisher implements PositionPublisher over Redis Pub/Sub.
type RedisPublisher struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

var _ PositionPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher returns a publisher on the shared position channel.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		log:    logger.GetLogger().Named("redis_publisher"),
	}
}

// Publish serializes the position and publishes it on the position channel.
func (p *RedisPublisher) Publish(ctx context.Context, pos *types.Position) error {
	startTime := time.Now()
	defer func() {
		publishLatency.Observe(time.Since(startTime).Seconds())
	}()

	payload, err := json.Marshal(pos)
	if err != nil {
		publishErrors.Inc()
		return fmt.Errorf("failed to marshal position: %w", err)
	}

	if err := p.client.Publish(ctx, PositionChannel, payload).Err(); err != nil {
		publishErrors.Inc()
		p.log.Errorw("Failed to publish position update", "error", err)
		return fmt.Errorf("failed to publish position update: %w", err)
	}
	return nil
}
