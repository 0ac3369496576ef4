package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus is the processing lifecycle of an uploaded invoice.
type InvoiceStatus string

const (
	InvoiceStatusProcessing InvoiceStatus = "processing"
	InvoiceStatusPending    InvoiceStatus = "pending"
	InvoiceStatusError      InvoiceStatus = "error"
	InvoiceStatusPaid       InvoiceStatus = "paid"
	InvoiceStatusLate       InvoiceStatus = "late"
)

// Valid reports whether s is one of the enumerated statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusProcessing, InvoiceStatusPending, InvoiceStatusError,
		InvoiceStatusPaid, InvoiceStatusLate:
		return true
	}
	return false
}

// Invoice is one uploaded credit-card statement. TotalAmountCents equals the
// sum of its transactions once the status leaves processing.
type Invoice struct {
	ID               uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID     `gorm:"type:uuid;not null;index:idx_invoices_user" json:"user_id"`
	CardID           uuid.UUID     `gorm:"type:uuid;not null;index:idx_invoices_card" json:"card_id"`
	ReferenceDate    time.Time     `gorm:"not null" json:"reference_date"`
	TotalAmountCents int64         `gorm:"not null;default:0" json:"total_amount_cents"`
	Status           InvoiceStatus `gorm:"type:varchar(20);not null;default:'processing';index" json:"status"`
	FilePath         *string       `gorm:"type:varchar(512)" json:"file_path,omitempty"`
	DueDate          *time.Time    `json:"due_date,omitempty"`
	ClosingDate      *time.Time    `json:"closing_date,omitempty"`
	Notes            string        `gorm:"type:text" json:"notes,omitempty"`
	ErrorMessage     string        `gorm:"type:text" json:"error_message,omitempty"`
	ProcessedAt      *time.Time    `json:"processed_at,omitempty"`
	CreatedAt        time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Card         Card          `gorm:"foreignKey:CardID;references:ID" json:"card,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
