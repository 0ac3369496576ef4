package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Card is a credit card owned by a user. ConversionRate is the base number of
// points earned per currency unit spent.
type Card struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_cards_user" json:"user_id"`
	BankName       string    `gorm:"type:varchar(255);not null" json:"bank_name"`
	LastFour       string    `gorm:"type:varchar(4);not null" json:"last_four"`
	ConversionRate float64   `gorm:"type:decimal(8,4);not null;default:1" json:"conversion_rate"`
	AnnualFeeCents int64     `gorm:"not null;default:0" json:"annual_fee_cents"`
	Tier           string    `gorm:"type:varchar(50)" json:"tier,omitempty"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User           User                `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	RewardPrograms []CardRewardProgram `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"reward_programs,omitempty"`
}

func (Card) TableName() string {
	return "cards"
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CardRewardProgram is the card <-> reward program association. Each link
// carries its own conversion rate and terms.
type CardRewardProgram struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CardID          uuid.UUID `gorm:"type:uuid;not null;index:idx_crp_card" json:"card_id"`
	RewardProgramID uuid.UUID `gorm:"type:uuid;not null;index:idx_crp_program" json:"reward_program_id"`
	ConversionRate  float64   `gorm:"type:decimal(8,4);not null;default:1" json:"conversion_rate"`
	IsPrimary       bool      `gorm:"not null;default:false" json:"is_primary"`
	Terms           string    `gorm:"type:text" json:"terms,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Card          Card          `gorm:"foreignKey:CardID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	RewardProgram RewardProgram `gorm:"foreignKey:RewardProgramID;references:ID" json:"reward_program,omitempty"`
}

func (CardRewardProgram) TableName() string {
	return "card_reward_programs"
}

func (l *CardRewardProgram) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
