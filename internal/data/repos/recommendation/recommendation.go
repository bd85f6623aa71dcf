package recommendation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type UserRecommendationRepo interface {
	// Upsert writes the plan for (userID, date); a second write the same day overwrites.
	Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string, planJSON []byte) error
	GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.UserRecommendation, error)
	GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserRecommendation, error)
	// ListRange returns plans with from <= plan_date < to, newest first.
	ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to string) ([]*types.UserRecommendation, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
}

type userRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) UserRecommendationRepo {
	repoLog := baseLog.With("repo", "UserRecommendationRepo")
	return &userRecommendationRepo{db: db, log: repoLog}
}

func (r *userRecommendationRepo) Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string, planJSON []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.UserRecommendation{
		UserID:    userID,
		PlanDate:  date,
		PlanJSON:  datatypes.JSON(planJSON),
		UpdatedAt: time.Now().UTC(),
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "plan_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_json",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *userRecommendationRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (*types.UserRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.UserRecommendation
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND plan_date = ?", userID, date).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userRecommendationRepo) GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.UserRecommendation
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("plan_date DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userRecommendationRepo) ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to string) ([]*types.UserRecommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserRecommendation
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND plan_date >= ? AND plan_date < ?", userID, from, to).
		Order("plan_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRecommendationRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserRecommendation{}).
		Where("user_id = ?", userID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
