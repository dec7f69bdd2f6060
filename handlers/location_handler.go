package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/Surajgore007/oceansaksham-location/errors"
	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/services"
	"github.com/gin-gonic/gin"
)

// LocationHandler exposes the acquisition service to the report
// submission, live map, and login flows.
type LocationHandler struct {
	locationService *services.LocationService
	geocodeService  *services.GeocodeService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locationService *services.LocationService, geocodeService *services.GeocodeService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		geocodeService:  geocodeService,
	}
}

// GetCurrentPositionHandler handles GET /v1/location/current.
// Query params: silent (bool, default true).
func (h *LocationHandler) GetCurrentPositionHandler(c *gin.Context) {
	log := logger.GetLogger()

	silent := true
	if raw := c.Query("silent"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "silent must be a boolean"})
			return
		}
		silent = parsed
	}

	position, err := h.locationService.GetCurrentPosition(c.Request.Context(), services.AcquireOptions{Silent: silent})
	if err != nil {
		log.Errorw("GetCurrentPositionHandler: acquisition failed", "error", err)
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

// GetPositionWithFallbackHandler handles GET /v1/location/with-fallback.
// Query params: maxCacheAge (seconds, default 300). Never fails.
func (h *LocationHandler) GetPositionWithFallbackHandler(c *gin.Context) {
	maxCacheAge := 5 * time.Minute
	if raw := c.Query("maxCacheAge"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxCacheAge must be a non-negative number of seconds"})
			return
		}
		maxCacheAge = time.Duration(seconds) * time.Second
	}

	position := h.locationService.GetCurrentPositionWithFallback(c.Request.Context(), maxCacheAge)
	c.JSON(http.StatusOK, position)
}

// GetCachedPositionHandler handles GET /v1/location/cached.
func (h *LocationHandler) GetCachedPositionHandler(c *gin.Context) {
	position := h.locationService.GetCachedPosition(c.Request.Context())
	if position == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No fresh cached position"})
		return
	}
	c.JSON(http.StatusOK, position)
}

// RefreshLocationHandler handles POST /v1/location/refresh, the
// user-initiated "refresh my GPS" action.
func (h *LocationHandler) RefreshLocationHandler(c *gin.Context) {
	log := logger.GetLogger()

	position, err := h.locationService.RefreshLocation(c.Request.Context())
	if err != nil {
		log.Errorw("RefreshLocationHandler: refresh failed", "error", err)
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

// GetAccuracyStatusHandler handles GET /v1/location/status.
func (h *LocationHandler) GetAccuracyStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.locationService.AccuracyStatus(nil))
}

// GetPermissionHandler handles GET /v1/location/permission.
func (h *LocationHandler) GetPermissionHandler(c *gin.Context) {
	status := h.locationService.CheckPermissionStatus(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// RequestPermissionHandler handles POST /v1/location/permission/request.
// Used by the login flow to mark the session as having location access.
func (h *LocationHandler) RequestPermissionHandler(c *gin.Context) {
	granted := h.locationService.RequestLocationPermission(c.Request.Context())
	response := gin.H{"granted": granted}
	if !granted {
		response["instructions"] = h.locationService.PermissionInstructions()
	}
	c.JSON(http.StatusOK, response)
}

// GetCapabilitiesHandler handles GET /v1/location/capabilities.
func (h *LocationHandler) GetCapabilitiesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.locationService.DeviceCapabilities())
}

// ReverseGeocodeHandler handles GET /v1/geocode/reverse?lat=&lng=, used
// by the report flow to attach a human-readable address.
func (h *LocationHandler) ReverseGeocodeHandler(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng must be a number"})
		return
	}

	result, geocodeErr := h.geocodeService.ReverseGeocode(lat, lng)
	if geocodeErr != nil {
		respondWithError(c, geocodeErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondWithError maps AppError types onto HTTP statuses.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.GetHTTPStatus(), gin.H{"error": appErr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
