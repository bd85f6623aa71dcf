package repos

import (
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos/feedback"
	"github.com/fitpilot/fitpilot-backend/internal/data/repos/profile"
	"github.com/fitpilot/fitpilot-backend/internal/data/repos/recommendation"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type UserProfileRepo = profile.UserProfileRepo
type UserFeedbackRepo = feedback.UserFeedbackRepo
type UserRecommendationRepo = recommendation.UserRecommendationRepo

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return profile.NewUserProfileRepo(db, baseLog)
}
func NewUserFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) UserFeedbackRepo {
	return feedback.NewUserFeedbackRepo(db, baseLog)
}
func NewUserRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) UserRecommendationRepo {
	return recommendation.NewUserRecommendationRepo(db, baseLog)
}
