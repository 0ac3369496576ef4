package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointStatus is the lifecycle of a point entry.
type PointStatus string

const (
	PointStatusActive   PointStatus = "active"
	PointStatusExpired  PointStatus = "expired"
	PointStatusRedeemed PointStatus = "redeemed"
)

// Point is a signed point movement on a reward program: positive = earned,
// negative = redeemed or expired. TransactionID is a weak back-reference; the
// point entry survives deletion of the originating transaction.
type Point struct {
	ID              uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;not null;index:idx_points_user" json:"user_id"`
	RewardProgramID uuid.UUID   `gorm:"type:uuid;not null;index:idx_points_program" json:"reward_program_id"`
	TransactionID   *uuid.UUID  `gorm:"type:uuid" json:"transaction_id,omitempty"`
	Amount          int64       `gorm:"not null" json:"amount"`
	ExpiresAt       *time.Time  `gorm:"index" json:"expires_at,omitempty"`
	Status          PointStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Description     string      `gorm:"type:text" json:"description,omitempty"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User          User          `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	RewardProgram RewardProgram `gorm:"foreignKey:RewardProgramID;references:ID" json:"reward_program,omitempty"`
}

func (Point) TableName() string {
	return "points"
}

func (p *Point) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
