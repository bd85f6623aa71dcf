package planning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SexMale    = "male"
	SexFemale  = "female"
	SexUnknown = "unknown"

	GoalCut      = "cut"
	GoalBulk     = "bulk"
	GoalRecomp   = "recomp"
	GoalMaintain = "maintain"

	ActivitySedentary = "sedentary"
	ActivityLight     = "light"
	ActivityModerate  = "moderate"
	ActivityHeavy     = "heavy"
	ActivityAthlete   = "athlete"
)

// UserProfile is the onboarding/health profile. Numeric fields are pointers
// so "not provided" stays distinguishable from zero.
type UserProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Sex          string   `gorm:"column:sex;not null;default:'unknown'" json:"sex"`
	Age          *int     `gorm:"column:age" json:"age,omitempty"`
	HeightCM     *float64 `gorm:"column:height_cm" json:"height_cm,omitempty"`
	WeightKG     *float64 `gorm:"column:weight_kg" json:"weight_kg,omitempty"`
	Goal         string   `gorm:"column:goal" json:"goal"`
	TargetWeight *float64 `gorm:"column:target_weight_kg" json:"target_weight_kg,omitempty"`

	ActivityLevel       string `gorm:"column:activity_level" json:"activity_level"`
	AvailableMinutes    *int   `gorm:"column:available_minutes_per_day" json:"available_minutes_per_day,omitempty"`
	WeeklyFrequency     *int   `gorm:"column:weekly_frequency" json:"weekly_frequency,omitempty"`
	TrainingLocation    string `gorm:"column:training_location" json:"training_location"`
	FitnessLevel        string `gorm:"column:fitness_level" json:"fitness_level"`
	SpecialRestrictions string `gorm:"column:special_restrictions;type:text" json:"special_restrictions"`
	MedicalHistory      string `gorm:"column:medical_history;type:text" json:"medical_history"`

	// LabValues is a flat indicator -> free-text value map as extracted from reports.
	LabValues           datatypes.JSON `gorm:"column:lab_values" json:"lab_values,omitempty"`
	MedicalAdvicePrompt string         `gorm:"column:medical_advice_prompt;type:text" json:"medical_advice_prompt,omitempty"`

	BreakfastTime string `gorm:"column:breakfast_time" json:"breakfast_time,omitempty"`
	LunchTime     string `gorm:"column:lunch_time" json:"lunch_time,omitempty"`
	DinnerTime    string `gorm:"column:dinner_time" json:"dinner_time,omitempty"`
	SnackTime     string `gorm:"column:snack_time" json:"snack_time,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserProfile) TableName() string { return "user_profile" }

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasSnack reports whether the user schedules a snack; it drives the four-meal split.
func (p *UserProfile) HasSnack() bool {
	return p != nil && strings.TrimSpace(p.SnackTime) != ""
}
