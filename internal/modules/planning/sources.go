package planning

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/data/repos"
	"github.com/fitpilot/fitpilot-backend/internal/domain"
)

// RepoSources serves the orchestrator's read and store interfaces from the
// gorm repos. Day windows are computed in loc from the injected clock.
type RepoSources struct {
	profiles repos.UserProfileRepo
	feedback repos.UserFeedbackRepo
	plans    repos.UserRecommendationRepo
	now      func() time.Time
	loc      *time.Location
}

func NewRepoSources(
	profiles repos.UserProfileRepo,
	feedback repos.UserFeedbackRepo,
	plans repos.UserRecommendationRepo,
	now func() time.Time,
	loc *time.Location,
) *RepoSources {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &RepoSources{profiles: profiles, feedback: feedback, plans: plans, now: now, loc: loc}
}

func (s *RepoSources) today() time.Time {
	return startOfDay(s.now().In(s.loc))
}

func (s *RepoSources) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	return s.profiles.GetByUserID(ctx, nil, userID)
}

func (s *RepoSources) GetRecentFeedback(ctx context.Context, userID uuid.UUID, days int) ([]*domain.UserFeedback, error) {
	today := s.today()
	return s.feedback.ListRange(ctx, nil, userID, today.AddDate(0, 0, -days), today)
}

func (s *RepoSources) GetRecentPlans(ctx context.Context, userID uuid.UUID, days int) ([]*domain.UserRecommendation, error) {
	today := s.today()
	return s.plans.ListRange(ctx, nil, userID, today.AddDate(0, 0, -days).Format(time.DateOnly), today.Format(time.DateOnly))
}

func (s *RepoSources) HasAnyPlan(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.plans.Exists(ctx, nil, userID)
}

func (s *RepoSources) Upsert(ctx context.Context, userID uuid.UUID, date, planJSON string) error {
	return s.plans.Upsert(ctx, nil, userID, date, []byte(planJSON))
}

func (s *RepoSources) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (string, bool, error) {
	row, err := s.plans.GetByUserAndDate(ctx, nil, userID, date)
	if err != nil || row == nil {
		return "", false, err
	}
	return string(row.PlanJSON), true, nil
}

func (s *RepoSources) GetLatestByUser(ctx context.Context, userID uuid.UUID) (string, string, bool, error) {
	row, err := s.plans.GetLatestByUser(ctx, nil, userID)
	if err != nil || row == nil {
		return "", "", false, err
	}
	return row.PlanDate, string(row.PlanJSON), true, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
