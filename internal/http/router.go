package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/fitpilot/fitpilot-backend/internal/http/handlers"
	httpMW "github.com/fitpilot/fitpilot-backend/internal/http/middleware"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	AuthMiddleware *httpMW.AuthMiddleware

	PlanHandler     *httpH.PlanHandler
	ProfileHandler  *httpH.ProfileHandler
	FeedbackHandler *httpH.FeedbackHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Vocabulary (public)
		if cfg.FeedbackHandler != nil {
			api.GET("/feedback/tags", cfg.FeedbackHandler.ListTags)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Plans
		if cfg.PlanHandler != nil {
			protected.POST("/plans/generate", cfg.PlanHandler.Generate)
			protected.GET("/plans/today", cfg.PlanHandler.GetToday)
			protected.GET("/plans/latest", cfg.PlanHandler.GetLatest)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.Get)
			protected.PUT("/profile", cfg.ProfileHandler.Save)
		}

		// Feedback
		if cfg.FeedbackHandler != nil {
			protected.POST("/feedback", cfg.FeedbackHandler.Create)
			protected.GET("/feedback/today", cfg.FeedbackHandler.GetToday)
		}
	}

	return r
}
