package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/data/cache"
	"github.com/fitpilot/fitpilot-backend/internal/http/handlers"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type Handlers struct {
	Plan     *handlers.PlanHandler
	Profile  *handlers.ProfileHandler
	Feedback *handlers.FeedbackHandler
	Health   *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, planCache cache.Cache, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	probes := map[string]handlers.Probe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if p, ok := planCache.(interface{ Ping(context.Context) error }); ok {
		probes["cache"] = p.Ping
	}
	return Handlers{
		Plan:     handlers.NewPlanHandler(log, serviceset.Orchestrator),
		Profile:  handlers.NewProfileHandler(log, serviceset.Profile),
		Feedback: handlers.NewFeedbackHandler(log, serviceset.Feedback),
		Health:   handlers.NewHealthHandler(probes),
	}
}
