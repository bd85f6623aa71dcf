// Package nutrition derives daily calorie and macro targets from a profile
// (Mifflin-St Jeor BMR, activity multiplier, goal adjustment).
package nutrition

import (
	"math"
	"strings"

	"github.com/fitpilot/fitpilot-backend/internal/domain"
)

const (
	DefaultWeightKG = 60.0
	DefaultHeightCM = 170.0
	DefaultAge      = 25

	fatCalorieShare = 0.25
	fatFloorPerKG   = 0.8
	carbFloorGrams  = 50
)

// Target is a mutually consistent calorie/macro target:
// DailyCalories == 4*ProteinG + 9*FatG + 4*CarbG always holds.
type Target struct {
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	DailyCalories int     `json:"daily_calories"`
	ProteinG      int     `json:"protein_g"`
	FatG          int     `json:"fat_g"`
	CarbG         int     `json:"carb_g"`
}

var activityMultipliers = map[string]float64{
	domain.ActivitySedentary: 1.20,
	domain.ActivityLight:     1.375,
	domain.ActivityModerate:  1.55,
	domain.ActivityHeavy:     1.725,
	domain.ActivityAthlete:   1.90,
}

// Calculate never fails; absent or non-positive inputs take the package defaults.
func Calculate(p *domain.UserProfile) Target {
	weight, height, age, female := inputs(p)

	bmr := BMR(weight, height, age, female)
	tdee := bmr * ActivityMultiplier(activityOf(p))
	goal := goalOf(p)
	target := tdee * goalFactor(goal)

	protein := int(math.Floor(weight * proteinRatio(goal)))

	fat := int(math.Floor(target * fatCalorieShare / 9))
	if floor := int(math.Ceil(weight * fatFloorPerKG)); fat < floor {
		fat = floor
	}

	carb := int(math.Floor((target - float64(protein*4) - float64(fat*9)) / 4))
	if carb < carbFloorGrams {
		carb = carbFloorGrams
	}

	return Target{
		BMR:           round1(bmr),
		TDEE:          round1(tdee),
		DailyCalories: protein*4 + fat*9 + carb*4,
		ProteinG:      protein,
		FatG:          fat,
		CarbG:         carb,
	}
}

func BMR(weightKG, heightCM float64, age int, female bool) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if female {
		return bmr - 161
	}
	return bmr + 5
}

// ActivityMultiplier falls back to moderate for blank or unknown levels.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return activityMultipliers[domain.ActivityModerate]
}

// MaintenanceCalories is TDEE before the goal adjustment, rounded to a whole kcal.
func MaintenanceCalories(p *domain.UserProfile) int {
	weight, height, age, female := inputs(p)
	return int(math.Round(BMR(weight, height, age, female) * ActivityMultiplier(activityOf(p))))
}

// BMI returns false when weight or height are not provided.
func BMI(p *domain.UserProfile) (float64, bool) {
	if p == nil || p.WeightKG == nil || p.HeightCM == nil || *p.WeightKG <= 0 || *p.HeightCM <= 0 {
		return 0, false
	}
	m := *p.HeightCM / 100
	return round1(*p.WeightKG / (m * m)), true
}

func goalFactor(goal string) float64 {
	switch goal {
	case domain.GoalCut:
		return 0.85
	case domain.GoalBulk:
		return 1.10
	default:
		return 1.0
	}
}

func proteinRatio(goal string) float64 {
	switch goal {
	case domain.GoalCut, domain.GoalRecomp:
		return 2.0
	case domain.GoalBulk:
		return 1.8
	default:
		return 1.5
	}
}

func inputs(p *domain.UserProfile) (weight, height float64, age int, female bool) {
	weight, height, age = DefaultWeightKG, DefaultHeightCM, DefaultAge
	if p == nil {
		return
	}
	if p.WeightKG != nil && *p.WeightKG > 0 {
		weight = *p.WeightKG
	}
	if p.HeightCM != nil && *p.HeightCM > 0 {
		height = *p.HeightCM
	}
	if p.Age != nil && *p.Age > 0 {
		age = *p.Age
	}
	female = strings.EqualFold(strings.TrimSpace(p.Sex), domain.SexFemale)
	return
}

func activityOf(p *domain.UserProfile) string {
	if p == nil {
		return ""
	}
	return p.ActivityLevel
}

func goalOf(p *domain.UserProfile) string {
	if p == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Goal))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
