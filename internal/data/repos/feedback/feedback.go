package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type UserFeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, f *types.UserFeedback) error
	// ListRange returns feedback with from <= feedback_date < to, newest first.
	ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.UserFeedback, error)
	// GetLatestOnDay returns nil, nil when nothing was reported in [day, day+24h).
	GetLatestOnDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.UserFeedback, error)
}

type userFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) UserFeedbackRepo {
	repoLog := baseLog.With("repo", "UserFeedbackRepo")
	return &userFeedbackRepo{db: db, log: repoLog}
}

func (r *userFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, f *types.UserFeedback) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(f).Error
}

func (r *userFeedbackRepo) ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.UserFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserFeedback
	if !to.After(from) {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND feedback_date >= ? AND feedback_date < ?", userID, from, to).
		Order("feedback_date DESC, created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userFeedbackRepo) GetLatestOnDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.UserFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var f types.UserFeedback
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND feedback_date >= ? AND feedback_date < ?", userID, day, day.AddDate(0, 0, 1)).
		Order("created_at DESC").
		Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
