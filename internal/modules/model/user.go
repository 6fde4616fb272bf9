package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Password *string   `gorm:"type:varchar(255)" json:"-"` // nil for OAuth-only accounts
	GoogleID *string   `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	// AvatarKey is the S3 object key of the uploaded avatar; AvatarURL is a
	// provider-supplied picture URL (Google profile).
	AvatarKey *string `gorm:"type:varchar(512)" json:"-"`
	AvatarURL *string `gorm:"type:varchar(512)" json:"avatar_url,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// User <-> Product
	Products []Product `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// User <-> Project
	Projects []Project `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }
