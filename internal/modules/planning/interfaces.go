package planning

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fitpilot/fitpilot-backend/internal/clients/llm"
	"github.com/fitpilot/fitpilot-backend/internal/domain"
)

type Generator interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string, opts llm.ChatOptions) (string, error)
}

type PlanStore interface {
	Upsert(ctx context.Context, userID uuid.UUID, date, planJSON string) error
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (planJSON string, ok bool, err error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (date, planJSON string, ok bool, err error)
}

type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

type ProfileReader interface {
	// GetProfile returns nil, nil when the user has not filled in a profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
}

type FeedbackReader interface {
	// GetRecentFeedback covers the given number of days ending yesterday.
	GetRecentFeedback(ctx context.Context, userID uuid.UUID, days int) ([]*domain.UserFeedback, error)
}

type PlanHistoryReader interface {
	// GetRecentPlans covers the given number of days ending yesterday.
	GetRecentPlans(ctx context.Context, userID uuid.UUID, days int) ([]*domain.UserRecommendation, error)
	HasAnyPlan(ctx context.Context, userID uuid.UUID) (bool, error)
}
