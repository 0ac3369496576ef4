package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns cards, invoices and points.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Cards    []Card    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"invoices,omitempty"`
	Points   []Point   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"points,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
