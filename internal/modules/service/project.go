package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/repo"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"github.com/obraplan/obraplan/internal/pkg/schedule"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	Update(ctx context.Context, userID, projectID uuid.UUID, patch ProjectPatch) (*model.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
	ApplyStepStatus(ctx context.Context, userID, projectID, scheduleID uuid.UUID, status string, actualDate *time.Time) (*model.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ProjectListItem, error)
	GetByID(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error)
}

type CreateProjectInput struct {
	UserID        uuid.UUID
	ProjectName   string
	ClientName    string
	ClientAddress model.Address
	SiteAddress   model.Address
	ProductID     uuid.UUID
	StartDate     time.Time
	Status        model.ProjectStatus // optional, defaults to planned
}

// ProjectPatch carries the mutable project fields; a nil field is left
// untouched. ProductID is deliberately absent, it is immutable.
type ProjectPatch struct {
	ProjectName   *string
	ClientName    *string
	ClientAddress *model.Address
	SiteAddress   *model.Address
	Status        *model.ProjectStatus
	StartDate     *time.Time
}

// ProjectListItem is the condensed listing projection for calendar UIs.
type ProjectListItem struct {
	ID          uuid.UUID           `json:"id"`
	ProjectName string              `json:"project_name"`
	ClientName  string              `json:"client_name"`
	StartDate   time.Time           `json:"start_date"`
	Status      model.ProjectStatus `json:"status"`
	ProductID   uuid.UUID           `json:"product_id"`
	Schedules   []ScheduleSummary   `json:"schedules"`
}

type ScheduleSummary struct {
	ID               uuid.UUID        `json:"id"`
	PlannedStartDate time.Time        `json:"planned_start_date"`
	PlannedEndDate   time.Time        `json:"planned_end_date"`
	ActualStartDate  *time.Time       `json:"actual_start_date"`
	ActualEndDate    *time.Time       `json:"actual_end_date"`
	Status           model.StepStatus `json:"status"`
	StepName         string           `json:"step_name"`
	Days             int              `json:"days"`
	Order            int              `json:"order"`
}

type projectService struct {
	r        repo.ProjectRepo
	products repo.ProductRepo
	now      func() time.Time
}

func NewProjectService(r repo.ProjectRepo, products repo.ProductRepo) ProjectService {
	return &projectService{r: r, products: products, now: time.Now}
}

func validStatus(s model.ProjectStatus) bool {
	switch s {
	case model.ProjectPlanned, model.ProjectInProgress, model.ProjectCompleted:
		return true
	}
	return false
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if in.ProjectName == "" || in.ClientName == "" {
		return nil, apperr.Validation("projectName and clientName are required")
	}
	status := in.Status
	if status == "" {
		status = model.ProjectPlanned
	}
	if !validStatus(status) {
		return nil, apperr.Validationf("invalid project status %q", status)
	}

	product, err := s.products.GetOwnedWithSteps(ctx, in.ProductID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, err
	}

	calcSteps := make([]schedule.Step, 0, len(product.Steps))
	for _, st := range product.Steps {
		calcSteps = append(calcSteps, schedule.Step{ID: st.ID, Days: st.Days, Order: st.Order})
	}
	entries := schedule.Calculate(in.StartDate, calcSteps)

	schedules := make([]model.ProjectStepSchedule, 0, len(entries))
	for _, e := range entries {
		schedules = append(schedules, model.ProjectStepSchedule{
			ProductStepID:    e.ProductStepID,
			PlannedStartDate: e.PlannedStart,
			PlannedEndDate:   e.PlannedEnd,
			Status:           model.StepPending,
		})
	}

	project := &model.Project{
		UserID:        in.UserID,
		ProductID:     in.ProductID,
		ProjectName:   in.ProjectName,
		ClientName:    in.ClientName,
		ClientAddress: datatypes.NewJSONType(in.ClientAddress),
		SiteAddress:   datatypes.NewJSONType(in.SiteAddress),
		Status:        status,
		StartDate:     in.StartDate,
		Schedules:     schedules,
	}
	if err := s.r.CreateWithSchedules(ctx, project); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, in.UserID, project.ID)
}

func (s *projectService) Update(ctx context.Context, userID, projectID uuid.UUID, patch ProjectPatch) (*model.Project, error) {
	project, err := s.r.GetOwned(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, err
	}

	if patch.ProjectName != nil {
		project.ProjectName = *patch.ProjectName
	}
	if patch.ClientName != nil {
		project.ClientName = *patch.ClientName
	}
	if patch.ClientAddress != nil {
		project.ClientAddress = datatypes.NewJSONType(*patch.ClientAddress)
	}
	if patch.SiteAddress != nil {
		project.SiteAddress = datatypes.NewJSONType(*patch.SiteAddress)
	}
	if patch.Status != nil {
		if !validStatus(*patch.Status) {
			return nil, apperr.Validationf("invalid project status %q", *patch.Status)
		}
		project.Status = *patch.Status
	}
	if patch.StartDate != nil {
		project.StartDate = *patch.StartDate
	}

	if err := s.r.Save(ctx, project); err != nil {
		return nil, err
	}

	// Moving the start date replans the steps that have not begun; realized
	// steps keep their dates and a finished step anchors the next pending
	// one on its actual end.
	if patch.StartDate != nil {
		full, err := s.r.GetFull(ctx, projectID, userID)
		if err != nil {
			return nil, err
		}
		replanSteps := make([]schedule.ReplanStep, 0, len(full.Schedules))
		for _, sched := range full.Schedules {
			if sched.ProductStep == nil {
				continue
			}
			replanSteps = append(replanSteps, schedule.ReplanStep{
				ScheduleID:  sched.ID,
				Days:        sched.ProductStep.Days,
				Order:       sched.ProductStep.Order,
				ActualStart: sched.ActualStartDate,
				ActualEnd:   sched.ActualEndDate,
			})
		}
		updates := schedule.Replan(*patch.StartDate, replanSteps)
		if err := s.r.ReplanPending(ctx, projectID, updates); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, userID, projectID)
}

func (s *projectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	err := s.r.Delete(ctx, projectID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("project not found")
	}
	return err
}

func (s *projectService) ApplyStepStatus(ctx context.Context, userID, projectID, scheduleID uuid.UUID, status string, actualDate *time.Time) (*model.Project, error) {
	target := schedule.TargetStatus(status)
	if !target.Valid() {
		return nil, apperr.Validationf("status must be %q or %q", schedule.TargetInProgress, schedule.TargetCompleted)
	}

	err := s.r.ApplyStepStatus(ctx, projectID, userID, scheduleID, target, actualDate, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project or step not found")
		}
		return nil, err
	}

	return s.GetByID(ctx, userID, projectID)
}

func (s *projectService) ListByUser(ctx context.Context, userID uuid.UUID) ([]ProjectListItem, error) {
	projects, err := s.r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]ProjectListItem, 0, len(projects))
	for _, p := range projects {
		item := ProjectListItem{
			ID:          p.ID,
			ProjectName: p.ProjectName,
			ClientName:  p.ClientName,
			StartDate:   p.StartDate,
			Status:      p.Status,
			ProductID:   p.ProductID,
			Schedules:   make([]ScheduleSummary, 0, len(p.Schedules)),
		}
		for _, sched := range p.Schedules {
			sum := ScheduleSummary{
				ID:               sched.ID,
				PlannedStartDate: sched.PlannedStartDate,
				PlannedEndDate:   sched.PlannedEndDate,
				ActualStartDate:  sched.ActualStartDate,
				ActualEndDate:    sched.ActualEndDate,
				Status:           sched.Status,
			}
			if sched.ProductStep != nil {
				sum.StepName = sched.ProductStep.Name
				sum.Days = sched.ProductStep.Days
				sum.Order = sched.ProductStep.Order
			}
			item.Schedules = append(item.Schedules, sum)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *projectService) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.r.GetFull(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, err
	}
	return p, nil
}
