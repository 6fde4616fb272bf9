package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"github.com/obraplan/obraplan/internal/pkg/schedule"
)

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) CreateWithSchedules(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetFull(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepo) Save(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) ReplanPending(ctx context.Context, projectID uuid.UUID, updates []schedule.ReplanUpdate) error {
	args := m.Called(ctx, projectID, updates)
	return args.Error(0)
}

func (m *MockProjectRepo) ApplyStepStatus(ctx context.Context, projectID, userID, scheduleID uuid.UUID, target schedule.TargetStatus, actual *time.Time, now time.Time) error {
	args := m.Called(ctx, projectID, userID, scheduleID, target, actual, now)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockProductRepo is a mock implementation of repo.ProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepo) GetOwnedWithSteps(ctx context.Context, id, userID uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func noon(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 12, 0, 0, 0, time.UTC)
}

func TestProjectService_Create(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	stepA, stepB := uuid.New(), uuid.New()

	product := &model.Product{
		ID:     productID,
		UserID: userID,
		Steps: []model.ProductStep{
			{ID: stepA, Name: "foundation", Days: 5, Order: 1},
			{ID: stepB, Name: "framing", Days: 3, Order: 2},
		},
	}

	t.Run("computes back to back schedule from product steps", func(t *testing.T) {
		projects := new(MockProjectRepo)
		products := new(MockProductRepo)

		products.On("GetOwnedWithSteps", mock.Anything, productID, userID).Return(product, nil)
		projects.On("CreateWithSchedules", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
			if len(p.Schedules) != 2 {
				return false
			}
			first, second := p.Schedules[0], p.Schedules[1]
			return first.ProductStepID == stepA &&
				first.PlannedStartDate.Equal(noon(2024, 1, 1)) &&
				first.PlannedEndDate.Equal(noon(2024, 1, 6)) &&
				second.ProductStepID == stepB &&
				second.PlannedStartDate.Equal(noon(2024, 1, 6)) &&
				second.PlannedEndDate.Equal(noon(2024, 1, 9)) &&
				first.Status == model.StepPending &&
				second.Status == model.StepPending
		})).Return(nil)
		projects.On("GetFull", mock.Anything, mock.Anything, userID).Return(&model.Project{}, nil)

		svc := NewProjectService(projects, products)
		_, err := svc.Create(context.Background(), CreateProjectInput{
			UserID:      userID,
			ProjectName: "Casa Alameda",
			ClientName:  "Silva",
			ProductID:   productID,
			StartDate:   noon(2024, 1, 1),
		})

		assert.NoError(t, err)
		projects.AssertExpectations(t)
	})

	t.Run("defaults status to planned", func(t *testing.T) {
		projects := new(MockProjectRepo)
		products := new(MockProductRepo)

		products.On("GetOwnedWithSteps", mock.Anything, productID, userID).Return(product, nil)
		projects.On("CreateWithSchedules", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
			return p.Status == model.ProjectPlanned
		})).Return(nil)
		projects.On("GetFull", mock.Anything, mock.Anything, userID).Return(&model.Project{}, nil)

		svc := NewProjectService(projects, products)
		_, err := svc.Create(context.Background(), CreateProjectInput{
			UserID:      userID,
			ProjectName: "Casa Alameda",
			ClientName:  "Silva",
			ProductID:   productID,
			StartDate:   noon(2024, 1, 1),
		})
		assert.NoError(t, err)
	})

	t.Run("missing names rejected", func(t *testing.T) {
		svc := NewProjectService(new(MockProjectRepo), new(MockProductRepo))
		_, err := svc.Create(context.Background(), CreateProjectInput{
			UserID:    userID,
			ProductID: productID,
			StartDate: noon(2024, 1, 1),
		})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		svc := NewProjectService(new(MockProjectRepo), new(MockProductRepo))
		_, err := svc.Create(context.Background(), CreateProjectInput{
			UserID:      userID,
			ProjectName: "Casa Alameda",
			ClientName:  "Silva",
			ProductID:   productID,
			StartDate:   noon(2024, 1, 1),
			Status:      model.ProjectStatus("archived"),
		})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("product of another user is not found", func(t *testing.T) {
		projects := new(MockProjectRepo)
		products := new(MockProductRepo)
		products.On("GetOwnedWithSteps", mock.Anything, productID, userID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewProjectService(projects, products)
		_, err := svc.Create(context.Background(), CreateProjectInput{
			UserID:      userID,
			ProjectName: "Casa Alameda",
			ClientName:  "Silva",
			ProductID:   productID,
			StartDate:   noon(2024, 1, 1),
		})
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestProjectService_Update(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("patches only the provided fields", func(t *testing.T) {
		projects := new(MockProjectRepo)
		existing := &model.Project{
			ID:          projectID,
			UserID:      userID,
			ProjectName: "old name",
			ClientName:  "old client",
			Status:      model.ProjectPlanned,
		}
		projects.On("GetOwned", mock.Anything, projectID, userID).Return(existing, nil)
		projects.On("Save", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
			return p.ProjectName == "new name" && p.ClientName == "old client"
		})).Return(nil)
		projects.On("GetFull", mock.Anything, projectID, userID).Return(existing, nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		name := "new name"
		_, err := svc.Update(context.Background(), userID, projectID, ProjectPatch{ProjectName: &name})
		assert.NoError(t, err)
		projects.AssertNotCalled(t, "ReplanPending", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("start date change replans only pending steps", func(t *testing.T) {
		projects := new(MockProjectRepo)

		schedPendingID := uuid.New()
		started := noon(2024, 4, 28)
		finished := noon(2024, 5, 4)
		full := &model.Project{
			ID:     projectID,
			UserID: userID,
			Schedules: []model.ProjectStepSchedule{
				{
					ID:              uuid.New(),
					Status:          model.StepCompleted,
					ActualStartDate: &started,
					ActualEndDate:   &finished,
					ProductStep:     &model.ProductStep{Days: 5, Order: 1},
				},
				{
					ID:          schedPendingID,
					Status:      model.StepPending,
					ProductStep: &model.ProductStep{Days: 3, Order: 2},
				},
			},
		}

		projects.On("GetOwned", mock.Anything, projectID, userID).Return(&model.Project{ID: projectID, UserID: userID, ProjectName: "n", ClientName: "c"}, nil)
		projects.On("Save", mock.Anything, mock.Anything).Return(nil)
		projects.On("GetFull", mock.Anything, projectID, userID).Return(full, nil)
		projects.On("ReplanPending", mock.Anything, projectID, mock.MatchedBy(func(updates []schedule.ReplanUpdate) bool {
			// the completed step keeps its dates; the pending one is
			// anchored on the completed step's actual end
			return len(updates) == 1 &&
				updates[0].ScheduleID == schedPendingID &&
				updates[0].PlannedStart.Equal(finished) &&
				updates[0].PlannedEnd.Equal(finished.AddDate(0, 0, 3))
		})).Return(nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		newStart := noon(2024, 5, 1)
		_, err := svc.Update(context.Background(), userID, projectID, ProjectPatch{StartDate: &newStart})
		assert.NoError(t, err)
		projects.AssertExpectations(t)
	})

	t.Run("unknown project collapses to not found", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("GetOwned", mock.Anything, projectID, userID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewProjectService(projects, new(MockProductRepo))
		name := "x"
		_, err := svc.Update(context.Background(), userID, projectID, ProjectPatch{ProjectName: &name})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("GetOwned", mock.Anything, projectID, userID).Return(&model.Project{ID: projectID}, nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		bad := model.ProjectStatus("archived")
		_, err := svc.Update(context.Background(), userID, projectID, ProjectPatch{Status: &bad})
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestProjectService_ApplyStepStatus(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()
	scheduleID := uuid.New()

	t.Run("passes target through to the repo", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("ApplyStepStatus", mock.Anything, projectID, userID, scheduleID,
			schedule.TargetCompleted, (*time.Time)(nil), mock.Anything).Return(nil)
		projects.On("GetFull", mock.Anything, projectID, userID).Return(&model.Project{}, nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		_, err := svc.ApplyStepStatus(context.Background(), userID, projectID, scheduleID, "completed", nil)
		assert.NoError(t, err)
		projects.AssertExpectations(t)
	})

	t.Run("invalid target rejected before touching the repo", func(t *testing.T) {
		projects := new(MockProjectRepo)
		svc := NewProjectService(projects, new(MockProductRepo))

		_, err := svc.ApplyStepStatus(context.Background(), userID, projectID, scheduleID, "pending", nil)
		assert.True(t, apperr.IsValidation(err))
		projects.AssertNotCalled(t, "ApplyStepStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing step collapses to not found", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("ApplyStepStatus", mock.Anything, projectID, userID, scheduleID,
			schedule.TargetInProgress, (*time.Time)(nil), mock.Anything).Return(gorm.ErrRecordNotFound)

		svc := NewProjectService(projects, new(MockProductRepo))
		_, err := svc.ApplyStepStatus(context.Background(), userID, projectID, scheduleID, "in_progress", nil)
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestProjectService_ListByUser(t *testing.T) {
	userID := uuid.New()

	t.Run("flattens step metadata into the summary", func(t *testing.T) {
		projects := new(MockProjectRepo)
		schedID := uuid.New()
		projects.On("ListByUser", mock.Anything, userID).Return([]model.Project{
			{
				ID:          uuid.New(),
				ProjectName: "Casa Alameda",
				Schedules: []model.ProjectStepSchedule{
					{
						ID:               schedID,
						PlannedStartDate: noon(2024, 1, 1),
						PlannedEndDate:   noon(2024, 1, 6),
						Status:           model.StepPending,
						ProductStep:      &model.ProductStep{Name: "foundation", Days: 5, Order: 1},
					},
				},
			},
		}, nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		items, err := svc.ListByUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Len(t, items[0].Schedules, 1)
		assert.Equal(t, "foundation", items[0].Schedules[0].StepName)
		assert.Equal(t, 5, items[0].Schedules[0].Days)
		assert.Equal(t, 1, items[0].Schedules[0].Order)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("ListByUser", mock.Anything, userID).Return([]model.Project{}, nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		items, err := svc.ListByUser(context.Background(), userID)
		assert.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestProjectService_Delete(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("ok", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("Delete", mock.Anything, projectID, userID).Return(nil)

		svc := NewProjectService(projects, new(MockProductRepo))
		assert.NoError(t, svc.Delete(context.Background(), userID, projectID))
	})

	t.Run("unknown project collapses to not found", func(t *testing.T) {
		projects := new(MockProjectRepo)
		projects.On("Delete", mock.Anything, projectID, userID).Return(gorm.ErrRecordNotFound)

		svc := NewProjectService(projects, new(MockProductRepo))
		err := svc.Delete(context.Background(), userID, projectID)
		assert.True(t, apperr.IsNotFound(err))
	})
}
