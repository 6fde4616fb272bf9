package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"gorm.io/gorm"
)

type ResetTokenRepo interface {
	Create(ctx context.Context, t *model.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type resetTokenRepo struct{ db *gorm.DB }

func NewResetTokenRepo(db *gorm.DB) ResetTokenRepo {
	return &resetTokenRepo{db: db}
}

func (r *resetTokenRepo) Create(ctx context.Context, t *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *resetTokenRepo) GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	return &t, r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error
}

func (r *resetTokenRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PasswordResetToken{}).Error
}

func (r *resetTokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
