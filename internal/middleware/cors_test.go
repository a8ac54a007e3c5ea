package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/snooker/internal/config"
)

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		env     string
		origin  string
		upgrade bool
		want    int
	}{
		{"plain request passes", "production", "", false, http.StatusOK},
		{"missing origin", "production", "", true, http.StatusBadRequest},
		{"dev localhost", "development", "http://localhost:5173", true, http.StatusOK},
		{"dev foreign origin", "development", "https://evil.example", true, http.StatusForbidden},
		{"prod allowed", "production", "https://snooker.playmatatu.com", true, http.StatusOK},
		{"prod frontend url", "production", "https://tables.example", true, http.StatusOK},
		{"prod localhost", "production", "http://localhost:5173", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Environment: tt.env, FrontendURL: "https://tables.example"}
			router := gin.New()
			router.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
