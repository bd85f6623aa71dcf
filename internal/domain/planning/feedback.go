package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserFeedback is one post-workout report. Tag columns hold JSON arrays of
// vocabulary codes; records are immutable once written.
type UserFeedback struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_feedback_user_date,priority:1" json:"user_id"`
	FeedbackDate time.Time `gorm:"column:feedback_date;not null;index:idx_feedback_user_date,priority:2" json:"feedback_date"`

	Rating                *int   `gorm:"column:rating" json:"rating,omitempty"`
	CompletionRate        *int   `gorm:"column:completion_rate" json:"completion_rate,omitempty"`
	ActualDurationMinutes *int   `gorm:"column:actual_duration_minutes" json:"actual_duration_minutes,omitempty"`
	Notes                 string `gorm:"column:notes;type:text" json:"notes"`

	PositiveTags datatypes.JSON `gorm:"column:positive_tags" json:"positive_tags,omitempty"`
	NegativeTags datatypes.JSON `gorm:"column:negative_tags" json:"negative_tags,omitempty"`
	PainAreas    datatypes.JSON `gorm:"column:pain_areas" json:"pain_areas,omitempty"`

	// EmotionTags is the pre-vocabulary free-text field, kept for migration.
	EmotionTags string `gorm:"column:emotion_tags;type:text" json:"emotion_tags,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserFeedback) TableName() string { return "user_feedback" }

func (f *UserFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
