package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/clients/llm"
	"github.com/fitpilot/fitpilot-backend/internal/data/cache"
	"github.com/fitpilot/fitpilot-backend/internal/jobs/dailyplan"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
	"github.com/fitpilot/fitpilot-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Profile      services.ProfileService
	Feedback     services.FeedbackService
	Orchestrator *planning.Orchestrator
	DailyPlan    *dailyplan.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, planCache cache.Cache) (Services, error) {
	log.Info("Wiring services...")
	loc, err := cfg.Planner.Location()
	if err != nil {
		return Services{}, err
	}

	llmCfg := llm.ConfigFromEnv()
	if llmCfg.APIKey == "" {
		log.Warn("LLM_API_KEY not set, every plan will use the rule-based fallback")
	}
	generator, err := llm.New(log, llmCfg)
	if err != nil {
		return Services{}, fmt.Errorf("init generator client: %w", err)
	}

	sources := planning.NewRepoSources(reposet.Profile, reposet.Feedback, reposet.Recommendation, nil, loc)
	orchestrator, err := planning.NewOrchestrator(log, cfg.Planner, planning.Deps{
		Generator: generator,
		Store:     sources,
		Cache:     planCache,
		Profiles:  sources,
		Feedback:  sources,
		History:   sources,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init plan orchestrator: %w", err)
	}

	return Services{
		Auth:         services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Profile:      services.NewProfileService(db, log, reposet.Profile),
		Feedback:     services.NewFeedbackService(db, log, reposet.Feedback, loc, nil),
		Orchestrator: orchestrator,
		DailyPlan:    dailyplan.NewRunner(log, orchestrator, reposet.Profile, cfg.Planner.Batch, loc),
	}, nil
}
