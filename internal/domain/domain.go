package domain

import "github.com/fitpilot/fitpilot-backend/internal/domain/planning"

type (
	UserProfile        = planning.UserProfile
	UserFeedback       = planning.UserFeedback
	UserRecommendation = planning.UserRecommendation
)

const (
	SexMale    = planning.SexMale
	SexFemale  = planning.SexFemale
	SexUnknown = planning.SexUnknown

	GoalCut      = planning.GoalCut
	GoalBulk     = planning.GoalBulk
	GoalRecomp   = planning.GoalRecomp
	GoalMaintain = planning.GoalMaintain

	ActivitySedentary = planning.ActivitySedentary
	ActivityLight     = planning.ActivityLight
	ActivityModerate  = planning.ActivityModerate
	ActivityHeavy     = planning.ActivityHeavy
	ActivityAthlete   = planning.ActivityAthlete
)
