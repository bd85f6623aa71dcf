package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos"
	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/modules/planning/tags"
	"github.com/fitpilot/fitpilot-backend/internal/platform/apierr"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type FeedbackInput struct {
	// Date is YYYY-MM-DD; empty means today.
	Date                  string   `json:"date"`
	Rating                *int     `json:"rating"`
	CompletionRate        *int     `json:"completion_rate"`
	ActualDurationMinutes *int     `json:"actual_duration_minutes"`
	Notes                 string   `json:"notes"`
	PositiveTags          []string `json:"positive_tags"`
	NegativeTags          []string `json:"negative_tags"`
	PainAreas             []string `json:"pain_areas"`
	// EmotionTags is the legacy free-text field; it is mapped onto codes when
	// no coded tags are sent.
	EmotionTags string `json:"emotion_tags"`
}

type FeedbackService interface {
	Create(ctx context.Context, userID uuid.UUID, in FeedbackInput) (*types.UserFeedback, error)
	// GetToday returns nil, nil when nothing was reported today.
	GetToday(ctx context.Context, userID uuid.UUID) (*types.UserFeedback, error)
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	feedbackRepo repos.UserFeedbackRepo
	loc          *time.Location
	now          func() time.Time
}

func NewFeedbackService(db *gorm.DB, log *logger.Logger, feedbackRepo repos.UserFeedbackRepo, loc *time.Location, now func() time.Time) FeedbackService {
	serviceLog := log.With("service", "FeedbackService")
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &feedbackService{db: db, log: serviceLog, feedbackRepo: feedbackRepo, loc: loc, now: now}
}

func (s *feedbackService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *feedbackService) Create(ctx context.Context, userID uuid.UUID, in FeedbackInput) (*types.UserFeedback, error) {
	day, err := s.feedbackDay(in.Date)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_feedback", err)
	}
	if err := validateFeedback(in); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_feedback", err)
	}

	log := s.log.With("user_id", userID.String())
	sets := s.filterTags(log, in)

	f := &types.UserFeedback{
		UserID:                userID,
		FeedbackDate:          day,
		Rating:                copyInt(in.Rating),
		CompletionRate:        copyInt(in.CompletionRate),
		ActualDurationMinutes: copyInt(in.ActualDurationMinutes),
		Notes:                 strings.TrimSpace(in.Notes),
		PositiveTags:          tagJSON(sets.Positive),
		NegativeTags:          tagJSON(sets.Negative),
		PainAreas:             tagJSON(sets.Pain),
		EmotionTags:           strings.TrimSpace(in.EmotionTags),
	}
	if err := s.feedbackRepo.Create(ctx, nil, f); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	log.Info("feedback recorded", "date", day.Format(time.DateOnly), "pain_areas", len(sets.Pain))
	return f, nil
}

func (s *feedbackService) GetToday(ctx context.Context, userID uuid.UUID) (*types.UserFeedback, error) {
	f, err := s.feedbackRepo.GetLatestOnDay(ctx, nil, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	return f, nil
}

func (s *feedbackService) feedbackDay(raw string) (time.Time, error) {
	today := s.today()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q, want YYYY-MM-DD", raw)
	}
	if day.After(today) {
		return time.Time{}, fmt.Errorf("date %s is in the future", raw)
	}
	return day, nil
}

// filterTags keeps vocabulary codes only. Unknown codes are logged and dropped.
func (s *feedbackService) filterTags(log *logger.Logger, in FeedbackInput) tags.Sets {
	var sets tags.Sets
	var rejected []string
	var r []string

	sets.Positive, r = tags.Filter(in.PositiveTags, tags.KindPositive)
	rejected = append(rejected, r...)
	sets.Negative, r = tags.Filter(in.NegativeTags, tags.KindNegative)
	rejected = append(rejected, r...)
	sets.Pain, r = tags.Filter(in.PainAreas, tags.KindPain)
	rejected = append(rejected, r...)

	if len(rejected) > 0 {
		log.Warn("dropping unknown feedback tags", "tags", rejected, "vocabulary_version", tags.VocabularyVersion)
	}
	if sets.Empty() && strings.TrimSpace(in.EmotionTags) != "" {
		sets = tags.MigrateLegacy(in.EmotionTags)
	}
	return sets
}

func validateFeedback(in FeedbackInput) error {
	if in.Rating == nil {
		return invalid("rating is required")
	}
	if *in.Rating < 1 || *in.Rating > 5 {
		return invalid("rating %d, want 1-5", *in.Rating)
	}
	if in.CompletionRate != nil && (*in.CompletionRate < 0 || *in.CompletionRate > 100) {
		return invalid("completion_rate %d, want 0-100", *in.CompletionRate)
	}
	if in.ActualDurationMinutes != nil && (*in.ActualDurationMinutes < 0 || *in.ActualDurationMinutes > 600) {
		return invalid("actual_duration_minutes %d", *in.ActualDurationMinutes)
	}
	return nil
}

func tagJSON(codes []string) datatypes.JSON {
	if codes == nil {
		codes = []string{}
	}
	raw, _ := json.Marshal(codes)
	return datatypes.JSON(raw)
}
