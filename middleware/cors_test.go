package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Surajgore007/oceansaksham-location/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupCORSRouter(cfg *config.ServerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}

func TestCORSMiddlewareAllowAll(t *testing.T) {
	r := setupCORSRouter(&config.ServerConfig{AllowedOrigins: []string{"*"}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://dashboard.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewareSpecificOrigins(t *testing.T) {
	cfg := &config.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000", "https://oceansaksham.in"},
	}

	testCases := []struct {
		name           string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "allowed origin",
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://localhost:3000",
		},
		{
			name:           "another allowed origin",
			origin:         "https://oceansaksham.in",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://oceansaksham.in",
		},
		{
			name:           "disallowed origin",
			origin:         "http://malicious.example.com",
			expectedStatus: http.StatusForbidden,
			expectedOrigin: "",
		},
		{
			name:           "no origin header",
			origin:         "",
			expectedStatus: http.StatusOK,
			expectedOrigin: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupCORSRouter(cfg)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	cfg := &config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}}
	r := setupCORSRouter(cfg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
