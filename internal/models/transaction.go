package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is one line item extracted from an invoice (or entered
// manually). AmountCents is signed: positive means a charge.
type Transaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InvoiceID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_transactions_invoice" json:"invoice_id"`
	CategoryID      *uuid.UUID `gorm:"type:uuid;index:idx_transactions_category" json:"category_id,omitempty"`
	MerchantName    string     `gorm:"type:varchar(255);not null" json:"merchant_name"`
	TransactionDate time.Time  `gorm:"not null" json:"transaction_date"`
	AmountCents     int64      `gorm:"not null" json:"amount_cents"`
	PointsEarned    int64      `gorm:"not null;default:0" json:"points_earned"`
	IsRecommended   bool       `gorm:"not null;default:false" json:"is_recommended"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Invoice  Invoice   `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
