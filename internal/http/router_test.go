package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/fitpilot/fitpilot-backend/internal/http/handlers"
	httpMW "github.com/fitpilot/fitpilot-backend/internal/http/middleware"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
	"github.com/fitpilot/fitpilot-backend/internal/services"
)

func TestRouterProtectsPlanRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	auth := services.NewAuthService(log, "secret", time.Hour)
	r := NewRouter(RouterConfig{
		Log:             log,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		FeedbackHandler: httpH.NewFeedbackHandler(log, nil),
		HealthHandler:   httpH.NewHealthHandler(nil),
	})

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodGet, "/api/feedback/tags", http.StatusOK},
		{http.MethodGet, "/api/feedback/today", http.StatusUnauthorized},
		{http.MethodPost, "/api/feedback", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: status=%d want %d", tc.method, tc.path, rec.Code, tc.want)
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s %s: missing request id header", tc.method, tc.path)
		}
	}
}
