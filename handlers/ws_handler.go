package handlers

import (
	"context"
	"time"

	"github.com/Surajgore007/oceansaksham-location/config"
	"github.com/Surajgore007/oceansaksham-location/logger"
	"github.com/Surajgore007/oceansaksham-location/services"
	"github.com/Surajgore007/oceansaksham-location/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler streams accepted position updates to live-map clients over
// WebSocket, backed by the service's observer registration.
type WSHandler struct {
	log             *zap.SugaredLogger
	locationService *services.LocationService
	allowedOrigins  []string
	isDevelopment   bool
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(locationService *services.LocationService, serverCfg *config.ServerConfig) *WSHandler {
	return &WSHandler{
		log:             logger.GetLogger().Named("ws_handler"),
		locationService: locationService,
		allowedOrigins:  serverCfg.AllowedOrigins,
		isDevelopment:   serverCfg.Environment == config.EnvDevelopment,
	}
}

// getAcceptOptions returns WebSocket accept options based on
// configuration. Development allows all origins; production validates
// against the configured patterns.
func (h *WSHandler) getAcceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if h.isDevelopment {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.allowedOrigins
	}
	return opts
}

// HandleLocationStream handles GET /v1/location/ws: it subscribes the
// connection to position updates and writes each accepted update as a
// JSON frame until the client disconnects.
func (h *WSHandler) HandleLocationStream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, h.getAcceptOptions())
	if err != nil {
		h.log.Errorw("Failed to accept WebSocket connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Buffered so a slow client can't block the observer callback; an
	// overflowing client simply drops intermediate updates.
	updates := make(chan *types.Position, 16)
	unsubscribe := h.locationService.OnLocationUpdate(func(pos *types.Position) {
		select {
		case updates <- pos:
		default:
		}
	})
	defer unsubscribe()

	// Reader goroutine: we send only, but reading surfaces client close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "stream closed")
			return
		case pos := <-updates:
			writeCtx, writeCancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, pos)
			writeCancel()
			if err != nil {
				h.log.Debugw("Failed to write position update, closing stream", "error", err)
				_ = conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}
