package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/types"
)

// IP geolocation is city-grade at best.
const ipAccuracyMeters = 25000

// IPAPIProvider resolves a coarse position from the caller's public IP
// address. It is the capability wired in deployments without a device
// sensor; its readings land in the Network/IP classification bucket.
type IPAPIProvider struct {
	endpoint      string
	watchInterval time.Duration
	httpClient    *http.Client
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewIPAPIProvider creates a provider against an ip-api.com style JSON
// endpoint.
func NewIPAPIProvider(endpoint string, watchInterval time.Duration) *IPAPIProvider {
	if watchInterval <= 0 {
		watchInterval = 30 * time.Second
	}
	return &IPAPIProvider{
		endpoint:      endpoint,
		watchInterval: watchInterval,
		httpClient:    &http.Client{},
	}
}

// Current performs a single IP-geolocation lookup.
func (p *IPAPIProvider) Current(ctx context.Context, opts Options) (*Reading, error) {
	log := logger.GetLogger()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		log.Warnw("IP geolocation request failed", "endpoint", p.endpoint, "error", err)
		return nil, ErrPositionUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("IP geolocation returned non-OK status", "statusCode", resp.StatusCode)
		return nil, ErrPositionUnavailable
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, ErrPositionUnavailable
	}
	if body.Status != "" && body.Status != "success" {
		log.Warnw("IP geolocation lookup failed", "message", body.Message)
		return nil, ErrPositionUnavailable
	}

	return &Reading{
		Latitude:    body.Lat,
		Longitude:   body.Lon,
		Accuracy:    ipAccuracyMeters,
		HasAccuracy: true,
		Timestamp:   time.Now(),
	}, nil
}

// Watch polls Current on the configured interval. The platform has no
// push capability for IP lookups, so polling is the continuous mode.
func (p *IPAPIProvider) Watch(ctx context.Context, opts Options, fn func(*Reading, error)) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(p.watchInterval)
		defer ticker.Stop()

		for {
			reading, err := p.Current(watchCtx, opts)
			if watchCtx.Err() != nil {
				return
			}
			fn(reading, err)

			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(cancel)
	}
	return stop, nil
}

// QueryPermission reports granted: IP lookup needs no user consent.
func (p *IPAPIProvider) QueryPermission(_ context.Context) (types.PermissionStatus, error) {
	return types.PermissionGranted, nil
}
