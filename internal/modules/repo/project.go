package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/pkg/schedule"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	CreateWithSchedules(ctx context.Context, p *model.Project) error
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Project, error)
	GetFull(ctx context.Context, id, userID uuid.UUID) (*model.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	Save(ctx context.Context, p *model.Project) error
	ReplanPending(ctx context.Context, projectID uuid.UUID, updates []schedule.ReplanUpdate) error
	ApplyStepStatus(ctx context.Context, projectID, userID, scheduleID uuid.UUID, target schedule.TargetStatus, actual *time.Time, now time.Time) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) CreateWithSchedules(ctx context.Context, p *model.Project) error {
	// The attached schedule rows are inserted with the project in one
	// transaction; a project never exists without its full schedule set.
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	var p model.Project
	return &p, r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
}

func (r *projectRepo) GetFull(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Product.Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("planned_start_date ASC") }).
		Preload("Schedules.ProductStep").
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	return &p, err
}

func (r *projectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var items []model.Project
	err := r.db.WithContext(ctx).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("planned_start_date ASC") }).
		Preload("Schedules.ProductStep").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *projectRepo) Save(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Omit("Schedules", "Product", "User").Save(p).Error
}

func (r *projectRepo) ReplanPending(ctx context.Context, projectID uuid.UUID, updates []schedule.ReplanUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&model.ProjectStepSchedule{}).
				Where("id = ? AND project_id = ?", u.ScheduleID, projectID).
				Updates(map[string]interface{}{
					"planned_start_date": u.PlannedStart,
					"planned_end_date":   u.PlannedEnd,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyStepStatus performs the status transition and the downstream
// re-baseline in one serializable transaction, so concurrent completions in
// the same project are strictly ordered and a partially shifted calendar can
// never be observed. The ownership check runs inside the same transaction.
func (r *projectRepo) ApplyStepStatus(ctx context.Context, projectID, userID, scheduleID uuid.UUID, target schedule.TargetStatus, actual *time.Time, now time.Time) error {
	txOpts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
			return err
		}

		var sched model.ProjectStepSchedule
		err := tx.Preload("ProductStep").
			Where("id = ? AND project_id = ?", scheduleID, projectID).
			First(&sched).Error
		if err != nil {
			return err
		}

		tr, err := schedule.BuildTransition(schedule.StepState{
			Status:       string(sched.Status),
			PlannedStart: sched.PlannedStartDate,
			PlannedEnd:   sched.PlannedEndDate,
			ActualStart:  sched.ActualStartDate,
		}, target, actual, now)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{"status": string(tr.Status)}
		if tr.ActualStart != nil {
			fields["actual_start_date"] = *tr.ActualStart
		}
		if tr.ActualEnd != nil {
			fields["actual_end_date"] = *tr.ActualEnd
		}
		if err := tx.Model(&sched).Updates(fields).Error; err != nil {
			return err
		}

		// Shift every later step by the observed variance, whatever its own
		// status. Actual dates are never touched by the shift.
		if tr.Shift && tr.DiffDays != 0 {
			err := tx.Exec(`
				UPDATE project_step_schedules s
				SET planned_start_date = s.planned_start_date + make_interval(days => ?),
				    planned_end_date   = s.planned_end_date + make_interval(days => ?),
				    updated_at         = now()
				FROM product_steps ps
				WHERE ps.id = s.product_step_id
				  AND s.project_id = ?
				  AND ps.step_order > ?`,
				tr.DiffDays, tr.DiffDays, projectID, sched.ProductStep.Order,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	}, txOpts)
}

func (r *projectRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Project
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
			return err
		}
		// Schedule rows go with the project via the FK cascade.
		return tx.Delete(&p).Error
	})
}
