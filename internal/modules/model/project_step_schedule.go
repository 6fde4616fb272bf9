package model

import (
	"time"

	"github.com/google/uuid"
)

type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

// ProjectStepSchedule is the planned and actual date range of one product
// step within one project. Planned dates move when the schedule is
// re-baselined; actual dates are written once and never cleared.
type ProjectStepSchedule struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID     uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	ProductStepID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_step_id"`

	PlannedStartDate time.Time  `gorm:"not null" json:"planned_start_date"`
	PlannedEndDate   time.Time  `gorm:"not null" json:"planned_end_date"`
	ActualStartDate  *time.Time `json:"actual_start_date"`
	ActualEndDate    *time.Time `json:"actual_end_date"`

	Status StepStatus `gorm:"type:text;not null;default:'pending';check:status IN ('pending','in_progress','completed')" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// ProjectStepSchedule <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// ProjectStepSchedule <-> ProductStep
	ProductStep *ProductStep `gorm:"foreignKey:ProductStepID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"product_step,omitempty"`
}

func (ProjectStepSchedule) TableName() string { return "project_step_schedules" }
