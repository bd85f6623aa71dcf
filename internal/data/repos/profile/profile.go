package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/fitpilot/fitpilot-backend/internal/domain"
	pkgerrors "github.com/fitpilot/fitpilot-backend/internal/pkg/errors"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type UserProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, p *types.UserProfile) error
	// GetByUserID returns nil, nil when the user has no profile.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error)
	Update(ctx context.Context, tx *gorm.DB, p *types.UserProfile) error
	UpdateMedicalAdvice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, advice string) error
	// ListUserIDs pages through users with a profile in id order.
	ListUserIDs(ctx context.Context, tx *gorm.DB, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	repoLog := baseLog.With("repo", "UserProfileRepo")
	return &userProfileRepo{db: db, log: repoLog}
}

func (r *userProfileRepo) Create(ctx context.Context, tx *gorm.DB, p *types.UserProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if p == nil || p.UserID == uuid.Nil {
		return fmt.Errorf("create profile: %w", pkgerrors.ErrInvalidArgument)
	}
	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create profile: %w", pkgerrors.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *userProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.UserProfile
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *userProfileRepo) Update(ctx context.Context, tx *gorm.DB, p *types.UserProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if p == nil || p.ID == uuid.Nil {
		return fmt.Errorf("update profile: %w", pkgerrors.ErrInvalidArgument)
	}
	res := transaction.WithContext(ctx).
		Model(&types.UserProfile{}).
		Where("id = ? AND user_id = ?", p.ID, p.UserID).
		Select("*").
		Omit("id", "user_id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update profile: %w", pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *userProfileRepo) UpdateMedicalAdvice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, advice string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.UserProfile{}).
		Where("user_id = ?", userID).
		Update("medical_advice_prompt", advice).Error
}

func (r *userProfileRepo) ListUserIDs(ctx context.Context, tx *gorm.DB, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	q := transaction.WithContext(ctx).
		Model(&types.UserProfile{}).
		Order("user_id ASC").
		Limit(limit)
	if after != uuid.Nil {
		q = q.Where("user_id > ?", after)
	}
	var ids []uuid.UUID
	if err := q.Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// isUniqueViolation recognizes duplicate keys from postgres (23505), gorm's
// translated error and sqlite's constraint message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 23505") || strings.Contains(msg, "unique constraint failed")
}
