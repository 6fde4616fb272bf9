package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"gorm.io/gorm"
)

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
}

func (r *userRepo) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	var u model.User
	return &u, r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&u).Error
}
