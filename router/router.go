package router

import (
	"net/http"

	"github.com/Surajgore007/oceansaksham-location/config"
	"github.com/Surajgore007/oceansaksham-location/handlers"
	"github.com/Surajgore007/oceansaksham-location/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds everything required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	LocationHandler *handlers.LocationHandler
	WSHandler       *handlers.WSHandler
}

// SetupRouter configures and returns the main Gin engine with all routes
// defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Config.Server.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		location := v1.Group("/location")
		{
			location.GET("/current", deps.LocationHandler.GetCurrentPositionHandler)
			location.GET("/with-fallback", deps.LocationHandler.GetPositionWithFallbackHandler)
			location.GET("/cached", deps.LocationHandler.GetCachedPositionHandler)
			location.POST("/refresh", deps.LocationHandler.RefreshLocationHandler)
			location.GET("/status", deps.LocationHandler.GetAccuracyStatusHandler)
			location.GET("/permission", deps.LocationHandler.GetPermissionHandler)
			location.POST("/permission/request", deps.LocationHandler.RequestPermissionHandler)
			location.GET("/capabilities", deps.LocationHandler.GetCapabilitiesHandler)
			location.GET("/ws", deps.WSHandler.HandleLocationStream)
		}

		v1.GET("/geocode/reverse", deps.LocationHandler.ReverseGeocodeHandler)
	}

	return r
}
