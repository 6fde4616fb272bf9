package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "planned"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

// Project instantiates one Product for one client. ProductID and the
// schedule rows are fixed at creation; correcting them means deleting and
// recreating the project.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`

	ProjectName   string                      `gorm:"type:varchar(255);not null" json:"project_name"`
	ClientName    string                      `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientAddress datatypes.JSONType[Address] `gorm:"type:jsonb" swaggertype:"object" json:"client_address"`
	SiteAddress   datatypes.JSONType[Address] `gorm:"type:jsonb" swaggertype:"object" json:"site_address"`

	Status    ProjectStatus `gorm:"type:text;not null;default:'planned';check:status IN ('planned','in_progress','completed')" json:"status"`
	StartDate time.Time     `gorm:"not null" json:"start_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`

	// Project <-> Product. RESTRICT keeps a referenced product alive.
	Product *Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"product,omitempty"`

	// Project <-> ProjectStepSchedule
	Schedules []ProjectStepSchedule `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"schedules"`
}

func (Project) TableName() string { return "projects" }
