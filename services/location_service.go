package services

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Surajgore007/oceansaksham-location/config"
	apperrors "github.com/Surajgore007/oceansaksham-location/errors"
	"github.com/Surajgore007/oceansaksham-location/internal/events"
	"github.com/Surajgore007/oceansaksham-location/internal/geolocation"
	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/pkg/geo"
	"github.com/Surajgore007/oceansaksham-location/store"
	"github.com/Surajgore007/oceansaksham-location/types"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// AcquireOptions tune a single GetCurrentPosition call.
type AcquireOptions struct {
	// Silent suppresses diagnostic logging for the absorbed failure
	// modes (denial, timeout, invalid reading).
	Silent bool
}

// LocationService provides the best available device position to callers,
// balancing accuracy, latency, and permission constraints. It never
// propagates ordinary failures: permission denial, timeouts, sensor
// errors, and implausible readings all degrade to cache, then to a
// synthesized fallback position. The only fatal condition is the absence
// of any geolocation capability.
//
// All state is guarded by a mutex so the service is safe to share across
// goroutines.
type LocationService struct {
	mu        sync.Mutex
	provider  geolocation.Provider
	kv        store.Store
	publisher events.PositionPublisher
	registry  *events.Registry
	clock     clockwork.Clock
	cfg       config.LocationConfig
	log       *zap.SugaredLogger
	rng       *rand.Rand

	current    *types.Position
	permission *types.PermissionRecord
	watchStop  func()
}

// Option configures a LocationService.
type Option func(*LocationService)

// WithClock injects a clock, letting tests step time across cache expiry
// boundaries.
func WithClock(clock clockwork.Clock) Option {
	return func(s *LocationService) { s.clock = clock }
}

// WithPublisher wires an out-of-process publisher for accepted position
// updates.
func WithPublisher(p events.PositionPublisher) Option {
	return func(s *LocationService) { s.publisher = p }
}

// WithRand injects the random source used for fallback selection.
func WithRand(rng *rand.Rand) Option {
	return func(s *LocationService) { s.rng = rng }
}

// NewLocationService creates the acquisition service. A nil provider
// models an environment without any geolocation capability: every live
// acquisition then fails with the fatal error. Cached permission state
// and the last known position are loaded from the store so the service
// can answer "roughly where is the user" without touching the sensor.
func NewLocationService(provider geolocation.Provider, kv store.Store, cfg config.LocationConfig, opts ...Option) *LocationService {
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = config.DefaultStrategies()
	}
	if len(cfg.FallbackLocations) == 0 {
		cfg.FallbackLocations = config.DefaultFallbackLocations()
	}

	s := &LocationService{
		provider: provider,
		kv:       kv,
		registry: events.NewRegistry(),
		clock:    clockwork.NewRealClock(),
		cfg:      cfg,
		log:      logger.GetLogger().Named("location_service"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.loadCachedState(context.Background())
	return s
}

// loadCachedState hydrates the in-memory permission and position caches
// from the persistent store, discarding stale entries.
func (s *LocationService) loadCachedState(ctx context.Context) {
	if s.kv == nil {
		return
	}

	if data, err := s.kv.Get(ctx, store.KeyPermissionStatus); err == nil {
		var record types.PermissionRecord
		if err := json.Unmarshal(data, &record); err == nil &&
			s.clock.Since(record.Timestamp) <= s.cfg.PermissionTTL {
			s.mu.Lock()
			s.permission = &record
			s.mu.Unlock()
		}
	}

	if data, err := s.kv.Get(ctx, store.KeyLastKnownLocation); err == nil {
		var pos types.Position
		if err := json.Unmarshal(data, &pos); err == nil &&
			pos.Age(s.clock.Now()) <= s.cfg.CacheTimeout {
			s.mu.Lock()
			s.current = &pos
			s.mu.Unlock()
		}
	}
}

// CheckPermissionStatus queries the platform permission state without
// triggering a prompt and persists the result with a fresh timestamp.
// It never fails: providers without a permission query resolve to
// prompt, and a missing provider resolves to unavailable.
func (s *LocationService) CheckPermissionStatus(ctx context.Context) types.PermissionStatus {
	status := types.PermissionPrompt

	switch {
	case s.provider == nil:
		status = types.PermissionUnavailable
	default:
		if querier, ok := s.provider.(geolocation.PermissionQuerier); ok {
			queried, err := querier.QueryPermission(ctx)
			if err != nil {
				s.log.Warnw("Permission query failed", "error", err)
				status = types.PermissionUnavailable
			} else {
				status = queried
			}
		}
	}

	s.setPermission(ctx, status)
	return status
}

// HasLocationPermission reports whether permission is currently granted,
// using the cached state when it is fresh enough.
func (s *LocationService) HasLocationPermission(ctx context.Context) bool {
	return s.permissionStatus(ctx) == types.PermissionGranted
}

// RequestLocationPermission provokes the platform permission prompt by
// attempting a short acquisition, records the resulting permission state,
// and reports whether permission ended up granted.
func (s *LocationService) RequestLocationPermission(ctx context.Context) bool {
	if s.provider == nil {
		return false
	}

	strategy := s.cfg.Strategies[0]
	pos, err := s.tryStrategy(ctx, strategy)
	switch {
	case err == nil:
		s.setPermission(ctx, types.PermissionGranted)
		s.setCurrent(ctx, pos)
		return true
	case err == geolocation.ErrPermissionDenied:
		s.setPermission(ctx, types.PermissionDenied)
		return false
	default:
		// Timeout or sensor failure says nothing about permission.
		s.log.Debugw("Permission request acquisition failed", "error", err)
		return s.permissionStatus(ctx) == types.PermissionGranted
	}
}

// PermissionInstructions returns user-facing guidance for re-enabling
// location access after a denial.
func (s *LocationService) PermissionInstructions() string {
	return "Location access is blocked. Open your browser's site settings, " +
		"allow Location for this site, and reload the page. On mobile, also " +
		"check that system location services are turned on."
}

// DeviceCapabilities describes what the wired provider can do.
func (s *LocationService) DeviceCapabilities() types.DeviceCapabilities {
	_, hasQuery := s.provider.(geolocation.PermissionQuerier)
	return types.DeviceCapabilities{
		HasGeolocation:     s.provider != nil,
		HasPermissionQuery: hasQuery,
		SupportsWatch:      s.provider != nil,
	}
}

// GetCurrentPosition acquires the best available position. It walks the
// strategy ladder sequentially, falls back to a fresh-enough cached
// position, and finally synthesizes a fallback position. The only error
// it can return is the fatal no-capability error.
func (s *LocationService) GetCurrentPosition(ctx context.Context, opts AcquireOptions) (*types.Position, error) {
	if s.provider == nil {
		return nil, apperrors.GeolocationUnavailable("no geolocation provider is wired")
	}

	startTime := s.clock.Now()
	defer func() {
		acquisitionDuration.Observe(s.clock.Since(startTime).Seconds())
	}()

	if status := s.permissionStatus(ctx); status == types.PermissionDenied {
		if !opts.Silent {
			s.log.Warnw("Location permission denied, using fallback position")
		}
		return s.newFallbackPosition(ctx), nil
	}

	for _, strategy := range s.cfg.Strategies {
		pos, err := s.tryStrategy(ctx, strategy)
		if err != nil {
			acquisitionAttempts.WithLabelValues(strategy.Name, "failure").Inc()
			if !opts.Silent {
				s.log.Warnw("Acquisition strategy failed",
					"strategy", strategy.Name,
					"error", err,
				)
			}
			if err == geolocation.ErrPermissionDenied {
				// The remaining rungs would prompt-and-fail the same way.
				s.setPermission(ctx, types.PermissionDenied)
				break
			}
			continue
		}

		acquisitionAttempts.WithLabelValues(strategy.Name, "success").Inc()
		s.setCurrent(ctx, pos)
		return pos, nil
	}

	if cached := s.GetCachedPosition(ctx); cached != nil {
		if !opts.Silent {
			s.log.Infow("All strategies failed, returning cached position",
				"age", cached.Age(s.clock.Now()),
			)
		}
		return cached, nil
	}

	return s.newFallbackPosition(ctx), nil
}

// GetCurrentPositionWithFallback tries a silent live acquisition, prefers
// a cache entry fresher than maxCacheAge on failure, and otherwise
// synthesizes a fallback. It never fails, even without a provider.
func (s *LocationService) GetCurrentPositionWithFallback(ctx context.Context, maxCacheAge time.Duration) *types.Position {
	pos, err := s.GetCurrentPosition(ctx, AcquireOptions{Silent: true})
	if err == nil {
		return pos
	}

	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current != nil && current.Age(s.clock.Now()) <= maxCacheAge {
		return current
	}

	return s.newFallbackPosition(ctx)
}

// GetCachedPosition returns the freshest known position if its age is
// within the cache timeout, checking memory first and the persistent
// store second. Pure read: no device access, no side effects.
func (s *LocationService) GetCachedPosition(ctx context.Context) *types.Position {
	now := s.clock.Now()

	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current != nil && current.Age(now) <= s.cfg.CacheTimeout {
		return current
	}

	if s.kv == nil {
		return nil
	}
	data, err := s.kv.Get(ctx, store.KeyLastKnownLocation)
	if err != nil {
		return nil
	}
	var pos types.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil
	}
	if pos.Age(now) > s.cfg.CacheTimeout {
		return nil
	}
	return &pos
}

// RefreshLocation is the user-initiated refresh: it discards all cached
// position state and repeats acquisition with a zero-max-age,
// high-accuracy strategy. Failures still degrade to a fallback position,
// but they are logged loudly instead of being absorbed silently.
func (s *LocationService) RefreshLocation(ctx context.Context) (*types.Position, error) {
	if s.provider == nil {
		return nil, apperrors.GeolocationUnavailable("no geolocation provider is wired")
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if s.kv != nil {
		if err := s.kv.Delete(ctx, store.KeyLastKnownLocation); err != nil {
			s.log.Warnw("Failed to clear persisted position", "error", err)
		}
	}

	strategy := config.Strategy{
		Name:         "refresh",
		HighAccuracy: true,
		Timeout:      30 * time.Second,
		MaxAge:       0,
	}
	pos, err := s.tryStrategy(ctx, strategy)
	if err != nil {
		acquisitionAttempts.WithLabelValues(strategy.Name, "failure").Inc()
		s.log.Errorw("Location refresh failed", "error", err)
		if err == geolocation.ErrPermissionDenied {
			s.setPermission(ctx, types.PermissionDenied)
		}
		return s.newFallbackPosition(ctx), nil
	}

	acquisitionAttempts.WithLabelValues(strategy.Name, "success").Inc()
	s.setCurrent(ctx, pos)
	return pos, nil
}

// StartWatchingPosition begins continuous tracking. Calling it while a
// watch is already active is a no-op rather than a duplicate
// subscription. Incoming readings pass the update-worthiness predicate
// before being accepted and broadcast.
func (s *LocationService) StartWatchingPosition(ctx context.Context, highAccuracy bool) error {
	if s.provider == nil {
		return apperrors.GeolocationUnavailable("no geolocation provider is wired")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchStop != nil {
		s.log.Debugw("Watch already active, reusing existing subscription")
		return nil
	}

	opts := geolocation.Options{
		HighAccuracy: highAccuracy,
		Timeout:      30 * time.Second,
		MaximumAge:   30 * time.Second,
	}
	stop, err := s.provider.Watch(ctx, opts, s.handleWatchReading)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ServerError, "failed to start position watch")
	}
	s.watchStop = stop
	s.log.Infow("Started watching position", "highAccuracy", highAccuracy)
	return nil
}

// StopWatchingPosition synchronously stops further callback delivery.
// Idempotent.
func (s *LocationService) StopWatchingPosition() {
	s.mu.Lock()
	stop := s.watchStop
	s.watchStop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
		s.log.Infow("Stopped watching position")
	}
}

// handleWatchReading evaluates one incoming platform reading against the
// update-worthiness predicate and broadcasts it if accepted.
func (s *LocationService) handleWatchReading(reading *geolocation.Reading, err error) {
	if err != nil {
		s.log.Debugw("Watch reading failed", "error", err)
		return
	}

	pos, err := s.formatReading(reading)
	if err != nil {
		watchUpdates.WithLabelValues("rejected").Inc()
		s.log.Debugw("Discarding invalid watch reading", "error", err)
		return
	}

	s.mu.Lock()
	accepted := s.shouldAcceptUpdate(s.current, pos)
	if accepted {
		s.current = pos
	}
	s.mu.Unlock()

	if !accepted {
		watchUpdates.WithLabelValues("rejected").Inc()
		return
	}

	watchUpdates.WithLabelValues("accepted").Inc()
	s.persistAndBroadcast(context.Background(), pos)
}

// shouldAcceptUpdate decides whether a new watch reading should replace
// the currently held position. It keeps noisy low-quality fixes from
// overwriting a good fix: accept only a first fix, a materially better
// accuracy, meaningful movement scaled by uncertainty, or a stale hold.
// Caller must hold s.mu.
func (s *LocationService) shouldAcceptUpdate(current, candidate *types.Position) bool {
	if current == nil {
		return true
	}
	if candidate.Accuracy < current.Accuracy/2 {
		return true
	}
	distance := geo.Distance(current.Latitude, current.Longitude, candidate.Latitude, candidate.Longitude)
	if distance > math.Max(candidate.Accuracy, s.cfg.WatchMinDistance) {
		return true
	}
	return s.clock.Since(current.Timestamp) > s.cfg.WatchStaleAfter
}

// OnLocationUpdate registers an observer for accepted position updates.
// If a current position already exists the callback is invoked with it
// immediately, so new subscribers do not wait for the next device event.
// The returned unsubscribe function is idempotent.
func (s *LocationService) OnLocationUpdate(cb func(*types.Position)) func() {
	unsubscribe := s.registry.Subscribe(cb)

	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current != nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					s.log.Errorw("Position update subscriber panicked on replay", "panic", rec)
				}
			}()
			cb(current)
		}()
	}

	return unsubscribe
}

// FallbackPosition returns the session's fallback position, synthesizing
// one on first use. Repeated calls within a session are stable; only a
// fresh top-level acquisition picks a new random reference location.
func (s *LocationService) FallbackPosition(ctx context.Context) *types.Position {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current != nil && current.IsFallback {
		return current
	}
	return s.newFallbackPosition(ctx)
}

// newFallbackPosition synthesizes a position from a uniformly selected
// named reference coastal location and caches it as the current position.
func (s *LocationService) newFallbackPosition(ctx context.Context) *types.Position {
	s.mu.Lock()
	ref := s.cfg.FallbackLocations[s.rng.Intn(len(s.cfg.FallbackLocations))]
	s.mu.Unlock()

	now := s.clock.Now()
	pos := &types.Position{
		Latitude:     ref.Latitude,
		Longitude:    ref.Longitude,
		Accuracy:     types.DefaultAccuracySentinel,
		Timestamp:    now,
		Source:       types.SourceUnknown,
		Quality:      types.QualityDemo,
		IsFallback:   true,
		FallbackName: ref.Name,
		CacheTime:    now,
	}

	fallbackTotal.Inc()
	s.log.Infow("Synthesized fallback position", "location", ref.Name)

	s.mu.Lock()
	s.current = pos
	s.mu.Unlock()
	s.persistAndBroadcast(ctx, pos)
	return pos
}

// AccuracyStatus derives a presentation-level summary from a position's
// classification fields. Passing nil uses the current position.
func (s *LocationService) AccuracyStatus(pos *types.Position) types.AccuracyStatus {
	if pos == nil {
		s.mu.Lock()
		pos = s.current
		s.mu.Unlock()
	}
	if pos == nil {
		return types.AccuracyStatus{
			Status:  "unknown",
			Message: "Location has not been acquired yet",
			Color:   "#9ca3af",
		}
	}
	if pos.IsFallback {
		return types.AccuracyStatus{
			Status:  "demo",
			Message: "Showing approximate location near " + pos.FallbackName,
			Color:   "#6b7280",
		}
	}

	switch pos.Quality {
	case types.QualityExcellent:
		return types.AccuracyStatus{Status: "excellent", Message: "Pinpoint GPS fix", Color: "#16a34a"}
	case types.QualityVeryGood:
		return types.AccuracyStatus{Status: "very_good", Message: "Strong GPS fix", Color: "#22c55e"}
	case types.QualityGood:
		return types.AccuracyStatus{Status: "good", Message: "Good satellite fix", Color: "#84cc16"}
	case types.QualityFair:
		return types.AccuracyStatus{Status: "fair", Message: "Approximate WiFi/cell fix", Color: "#eab308"}
	case types.QualityPoor:
		return types.AccuracyStatus{Status: "poor", Message: "Coarse WiFi/cell fix", Color: "#f97316"}
	default:
		return types.AccuracyStatus{Status: "very_poor", Message: "Network-level estimate only", Color: "#dc2626"}
	}
}

// Cleanup stops watching and clears in-memory caches and subscribers.
// Called on application teardown; idempotent.
func (s *LocationService) Cleanup() {
	s.StopWatchingPosition()

	s.mu.Lock()
	s.current = nil
	s.permission = nil
	s.mu.Unlock()

	s.registry.Clear()
	s.log.Infow("Location service cleaned up")
}

// tryStrategy runs one rung of the ladder to completion. The context
// deadline adds a grace buffer on top of the strategy timeout to guard
// against platforms that ignore the requested timeout: once it fires
// the rung fails with ErrTimeout and the in-flight call is abandoned,
// so a provider that never honors its context cannot block the caller.
func (s *LocationService) tryStrategy(ctx context.Context, strategy config.Strategy) (*types.Position, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, strategy.Timeout+s.cfg.GraceBuffer)
	defer cancel()

	type readingResult struct {
		reading *geolocation.Reading
		err     error
	}
	results := make(chan readingResult, 1)
	go func() {
		reading, err := s.provider.Current(acquireCtx, geolocation.Options{
			HighAccuracy: strategy.HighAccuracy,
			Timeout:      strategy.Timeout,
			MaximumAge:   strategy.MaxAge,
		})
		results <- readingResult{reading: reading, err: err}
	}()

	select {
	case <-acquireCtx.Done():
		return nil, geolocation.ErrTimeout
	case res := <-results:
		if res.err != nil {
			if acquireCtx.Err() != nil && res.err != geolocation.ErrPermissionDenied {
				return nil, geolocation.ErrTimeout
			}
			return nil, res.err
		}
		return s.formatReading(res.reading)
	}
}

// formatReading validates a raw reading and derives the classification
// metadata. Out-of-range coordinates and implausible accuracy values are
// strategy failures, not positions.
func (s *LocationService) formatReading(reading *geolocation.Reading) (*types.Position, error) {
	if reading == nil {
		return nil, geolocation.ErrPositionUnavailable
	}
	if err := geo.ValidateCoordinates(reading.Latitude, reading.Longitude); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ValidationError, "invalid device reading")
	}

	accuracy := reading.Accuracy
	if !reading.HasAccuracy {
		accuracy = types.DefaultAccuracySentinel
	}
	if accuracy < 0 || math.IsNaN(accuracy) {
		return nil, apperrors.ValidationFailed("invalid device reading", "accuracy is not a non-negative number")
	}
	if accuracy > s.cfg.MaxPlausibleAccuracy {
		return nil, apperrors.ValidationFailed("invalid device reading", "accuracy exceeds plausible bounds")
	}

	quality, source := types.ClassifyAccuracy(accuracy)
	timestamp := reading.Timestamp
	if timestamp.IsZero() {
		timestamp = s.clock.Now()
	}

	return &types.Position{
		Latitude:         reading.Latitude,
		Longitude:        reading.Longitude,
		Accuracy:         accuracy,
		Altitude:         reading.Altitude,
		AltitudeAccuracy: reading.AltitudeAccuracy,
		Heading:          reading.Heading,
		Speed:            reading.Speed,
		Timestamp:        timestamp,
		Source:           source,
		Quality:          quality,
		IsHighAccuracy:   accuracy <= s.cfg.AccuracyThreshold,
		CacheTime:        s.clock.Now(),
	}, nil
}

// setCurrent replaces the held position and broadcasts it.
func (s *LocationService) setCurrent(ctx context.Context, pos *types.Position) {
	s.mu.Lock()
	s.current = pos
	s.mu.Unlock()
	s.persistAndBroadcast(ctx, pos)
}

// persistAndBroadcast writes the position to the store and notifies
// subscribers and the publisher. Persistence and publish failures are
// logged, never propagated.
func (s *LocationService) persistAndBroadcast(ctx context.Context, pos *types.Position) {
	if s.kv != nil {
		if data, err := json.Marshal(pos); err == nil {
			if err := s.kv.Set(ctx, store.KeyLastKnownLocation, data, s.cfg.CacheTimeout); err != nil {
				s.log.Warnw("Failed to persist position", "error", err)
			}
		}
	}

	s.registry.Notify(pos)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, pos); err != nil {
			s.log.Warnw("Failed to publish position update", "error", err)
		}
	}
}

// permissionStatus returns the cached permission state when fresh,
// re-checking otherwise.
func (s *LocationService) permissionStatus(ctx context.Context) types.PermissionStatus {
	s.mu.Lock()
	record := s.permission
	s.mu.Unlock()

	if record != nil && s.clock.Since(record.Timestamp) <= s.cfg.PermissionTTL {
		return record.Status
	}
	return s.CheckPermissionStatus(ctx)
}

// setPermission records and persists a permission state change.
func (s *LocationService) setPermission(ctx context.Context, status types.PermissionStatus) {
	record := &types.PermissionRecord{Status: status, Timestamp: s.clock.Now()}

	s.mu.Lock()
	s.permission = record
	s.mu.Unlock()

	if s.kv == nil {
		return
	}
	if data, err := json.Marshal(record); err == nil {
		if err := s.kv.Set(ctx, store.KeyPermissionStatus, data, s.cfg.PermissionTTL); err != nil {
			s.log.Warnw("Failed to persist permission state", "error", err)
		}
	}
}
