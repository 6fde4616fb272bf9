package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"gorm.io/gorm"
)

type ProductRepo interface {
	Create(ctx context.Context, p *model.Product) error
	GetOwnedWithSteps(ctx context.Context, id, userID uuid.UUID) (*model.Product, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Product, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	// Creates the product and its steps in one transaction via the
	// association.
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetOwnedWithSteps(ctx context.Context, id, userID uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	return &p, err
}

func (r *productRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	var items []model.Product
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *productRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&model.Project{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperr.Conflict("product is referenced by existing projects")
		}

		return tx.Delete(&p).Error
	})
}
