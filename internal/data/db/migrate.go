package db

import (
	"gorm.io/gorm"

	types "github.com/fitpilot/fitpilot-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.UserProfile{},
		&types.UserFeedback{},
		&types.UserRecommendation{},
	)
}
