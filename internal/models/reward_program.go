package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardProgram is a loyalty scheme (airline miles, cashback program, ...)
// independent of any single card.
type RewardProgram struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Code        *string   `gorm:"type:varchar(50);uniqueIndex" json:"code,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Website     string    `gorm:"type:varchar(255)" json:"website,omitempty"`
	LogoURL     string    `gorm:"type:varchar(512)" json:"logo_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Cards []CardRewardProgram `gorm:"foreignKey:RewardProgramID" json:"-"`
}

func (RewardProgram) TableName() string {
	return "reward_programs"
}

func (p *RewardProgram) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
