package app

import (
	httpserver "github.com/fitpilot/fitpilot-backend/internal/http"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlerset Handlers, mw Middleware) *httpserver.Server {
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  mw.Auth,
		PlanHandler:     handlerset.Plan,
		ProfileHandler:  handlerset.Profile,
		FeedbackHandler: handlerset.Feedback,
		HealthHandler:   handlerset.Health,
	})
}
