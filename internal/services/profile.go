package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos"
	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/medical"
	pkgerrors "github.com/fitpilot/fitpilot-backend/internal/pkg/errors"
	"github.com/fitpilot/fitpilot-backend/internal/pkg/pointers"
	"github.com/fitpilot/fitpilot-backend/internal/platform/apierr"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

// ProfileInput is a full replacement of the user-editable profile fields.
type ProfileInput struct {
	Sex                 string            `json:"sex"`
	Age                 *int              `json:"age"`
	HeightCM            *float64          `json:"height_cm"`
	WeightKG            *float64          `json:"weight_kg"`
	Goal                string            `json:"goal"`
	TargetWeight        *float64          `json:"target_weight_kg"`
	ActivityLevel       string            `json:"activity_level"`
	AvailableMinutes    *int              `json:"available_minutes_per_day"`
	WeeklyFrequency     *int              `json:"weekly_frequency"`
	TrainingLocation    string            `json:"training_location"`
	FitnessLevel        string            `json:"fitness_level"`
	SpecialRestrictions string            `json:"special_restrictions"`
	MedicalHistory      string            `json:"medical_history"`
	LabValues           map[string]string `json:"lab_values"`
	BreakfastTime       string            `json:"breakfast_time"`
	LunchTime           string            `json:"lunch_time"`
	DinnerTime          string            `json:"dinner_time"`
	SnackTime           string            `json:"snack_time"`
}

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	// Save creates or replaces the profile and refreshes the cached medical advice.
	Save(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.UserProfile, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.UserProfileRepo
}

var (
	validSex      = map[string]struct{}{types.SexMale: {}, types.SexFemale: {}, types.SexUnknown: {}}
	validGoals    = map[string]struct{}{types.GoalCut: {}, types.GoalBulk: {}, types.GoalRecomp: {}, types.GoalMaintain: {}}
	validActivity = map[string]struct{}{
		types.ActivitySedentary: {}, types.ActivityLight: {}, types.ActivityModerate: {},
		types.ActivityHeavy: {}, types.ActivityAthlete: {},
	}
	clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

var ErrProfileNotFound = apierr.New(http.StatusNotFound, "profile_not_found", pkgerrors.ErrNotFound)

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.UserProfileRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (s *profileService) Save(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.UserProfile, error) {
	if err := validateProfile(&in); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_profile", err)
	}

	labsJSON, err := encodeLabs(in.LabValues)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_profile", err)
	}

	var saved *types.UserProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.profileRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		p := existing
		if p == nil {
			p = &types.UserProfile{UserID: userID}
		}
		applyProfileInput(p, in, labsJSON)
		p.MedicalAdvicePrompt = adviceFor(p)

		if existing == nil {
			err = s.profileRepo.Create(ctx, tx, p)
		} else {
			err = s.profileRepo.Update(ctx, tx, p)
		}
		if err != nil {
			return err
		}
		saved = p
		return nil
	})
	if errors.Is(err, pkgerrors.ErrConflict) {
		return nil, apierr.New(http.StatusConflict, "profile_conflict", err)
	}
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.log.Info("profile saved", "user_id", userID.String(), "medical_risk", medical.HasAdvice(saved.MedicalAdvicePrompt))
	return saved, nil
}

// adviceFor re-evaluates the lab values; no labs clears the cached text and
// labs without findings store the no-risk marker.
func adviceFor(p *types.UserProfile) string {
	labs := medical.ParseLabValues(p.LabValues)
	if len(labs) == 0 {
		return ""
	}
	return medical.GenerateAdviceText(labs, p.Sex)
}

func applyProfileInput(p *types.UserProfile, in ProfileInput, labs datatypes.JSON) {
	p.Sex = in.Sex
	p.Age = copyInt(in.Age)
	p.HeightCM = roundTenth(in.HeightCM)
	p.WeightKG = roundTenth(in.WeightKG)
	p.Goal = in.Goal
	p.TargetWeight = roundTenth(in.TargetWeight)
	p.ActivityLevel = in.ActivityLevel
	p.AvailableMinutes = copyInt(in.AvailableMinutes)
	p.WeeklyFrequency = copyInt(in.WeeklyFrequency)
	p.TrainingLocation = strings.TrimSpace(in.TrainingLocation)
	p.FitnessLevel = strings.TrimSpace(in.FitnessLevel)
	p.SpecialRestrictions = strings.TrimSpace(in.SpecialRestrictions)
	p.MedicalHistory = strings.TrimSpace(in.MedicalHistory)
	p.LabValues = labs
	p.BreakfastTime = in.BreakfastTime
	p.LunchTime = in.LunchTime
	p.DinnerTime = in.DinnerTime
	p.SnackTime = in.SnackTime
}

// Stored values never alias request pointers.
func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return pointers.Int(*v)
}

// roundTenth keeps body measurements at 0.1 cm/kg precision.
func roundTenth(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return pointers.Float64(math.Round(*v*10) / 10)
}

func validateProfile(in *ProfileInput) error {
	in.Sex = normalizeEnum(in.Sex, types.SexUnknown)
	in.Goal = normalizeEnum(in.Goal, types.GoalMaintain)
	in.ActivityLevel = normalizeEnum(in.ActivityLevel, types.ActivityModerate)

	if _, ok := validSex[in.Sex]; !ok {
		return invalid("sex %q", in.Sex)
	}
	if _, ok := validGoals[in.Goal]; !ok {
		return invalid("goal %q", in.Goal)
	}
	if _, ok := validActivity[in.ActivityLevel]; !ok {
		return invalid("activity_level %q", in.ActivityLevel)
	}
	if in.Age != nil && (*in.Age < 10 || *in.Age > 120) {
		return invalid("age %d", *in.Age)
	}
	if in.HeightCM != nil && (*in.HeightCM < 80 || *in.HeightCM > 260) {
		return invalid("height_cm %.1f", *in.HeightCM)
	}
	if in.WeightKG != nil && (*in.WeightKG < 20 || *in.WeightKG > 400) {
		return invalid("weight_kg %.1f", *in.WeightKG)
	}
	if in.TargetWeight != nil && (*in.TargetWeight < 20 || *in.TargetWeight > 400) {
		return invalid("target_weight_kg %.1f", *in.TargetWeight)
	}
	if in.AvailableMinutes != nil && (*in.AvailableMinutes < 0 || *in.AvailableMinutes > 600) {
		return invalid("available_minutes_per_day %d", *in.AvailableMinutes)
	}
	if in.WeeklyFrequency != nil && (*in.WeeklyFrequency < 0 || *in.WeeklyFrequency > 14) {
		return invalid("weekly_frequency %d", *in.WeeklyFrequency)
	}
	for name, v := range map[string]*string{
		"breakfast_time": &in.BreakfastTime,
		"lunch_time":     &in.LunchTime,
		"dinner_time":    &in.DinnerTime,
		"snack_time":     &in.SnackTime,
	} {
		*v = strings.TrimSpace(*v)
		if *v != "" && !clockTime.MatchString(*v) {
			return invalid("%s %q, want HH:MM", name, *v)
		}
	}
	return nil
}

func encodeLabs(labs map[string]string) (datatypes.JSON, error) {
	clean := map[string]string{}
	for k, v := range labs {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		clean[k] = v
	}
	if len(clean) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("lab_values: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func normalizeEnum(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{pkgerrors.ErrInvalidArgument}, args...)...)
}
