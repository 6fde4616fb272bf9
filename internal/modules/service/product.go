package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/repo"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*model.Product, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Product, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}

type CreateProductInput struct {
	UserID      uuid.UUID
	Description string
	Value       string
	Steps       []ProductStepInput
}

type ProductStepInput struct {
	Name  string `json:"name"`
	Days  int    `json:"days"`
	Order int    `json:"order"`
}

type productService struct{ r repo.ProductRepo }

func NewProductService(r repo.ProductRepo) ProductService {
	return &productService{r: r}
}

func (s *productService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if in.Value == "" {
		return nil, apperr.Validation("value is required")
	}

	// Step durations and ordering are validated here, once, so the schedule
	// calculator can assume well-formed input.
	seen := make(map[int]bool, len(in.Steps))
	steps := make([]model.ProductStep, 0, len(in.Steps))
	for _, st := range in.Steps {
		if st.Name == "" {
			return nil, apperr.Validation("step name is required")
		}
		if st.Days <= 0 {
			return nil, apperr.Validationf("step %q: days must be a positive integer", st.Name)
		}
		if seen[st.Order] {
			return nil, apperr.Validationf("step %q: duplicate order %d", st.Name, st.Order)
		}
		seen[st.Order] = true
		steps = append(steps, model.ProductStep{
			Name:  st.Name,
			Days:  st.Days,
			Order: st.Order,
		})
	}

	p := &model.Product{
		UserID:      in.UserID,
		Description: in.Description,
		Value:       in.Value,
		Steps:       steps,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *productService) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.r.Delete(ctx, productID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("product not found")
	}
	return err
}
