package app

import (
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type Repos struct {
	Profile        repos.UserProfileRepo
	Feedback       repos.UserFeedbackRepo
	Recommendation repos.UserRecommendationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile:        repos.NewUserProfileRepo(db, log),
		Feedback:       repos.NewUserFeedbackRepo(db, log),
		Recommendation: repos.NewUserRecommendationRepo(db, log),
	}
}
