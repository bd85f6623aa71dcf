package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRecommendation is the authoritative plan for a (user, date) slot.
// PlanDate is an ISO YYYY-MM-DD string in the server's local zone.
type UserRecommendation struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_recommendation_user_date,priority:1" json:"user_id"`
	PlanDate string         `gorm:"column:plan_date;not null;size:10;uniqueIndex:idx_recommendation_user_date,priority:2" json:"plan_date"`
	PlanJSON datatypes.JSON `gorm:"column:plan_json;not null" json:"plan_json"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (UserRecommendation) TableName() string { return "user_recommendation" }

func (r *UserRecommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
