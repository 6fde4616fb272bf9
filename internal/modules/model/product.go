package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a reusable template of ordered work steps. Once a project
// references it the steps are never edited in place; a correction means
// delete and recreate.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Value       string    `gorm:"type:numeric(14,2);not null" json:"value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Product <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Product <-> ProductStep
	Steps []ProductStep `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"steps"`
}

func (Product) TableName() string { return "products" }

type ProductStep struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_product_id_step_order,priority:1" json:"product_id"`

	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Days  int    `gorm:"not null;check:days > 0" json:"days"`
	Order int    `gorm:"column:step_order;not null;uniqueIndex:uq_product_id_step_order,priority:2" json:"order"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// ProductStep <-> Product
	Product *Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (ProductStep) TableName() string { return "product_steps" }
