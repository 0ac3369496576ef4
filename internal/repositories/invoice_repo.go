package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/models"
)

// InvoiceRepo defines invoice persistence operations.
type InvoiceRepo interface {
	Create(invoice *models.Invoice) error
	GetByID(id uuid.UUID) (*models.Invoice, error)
	GetByIDWithCard(id uuid.UUID) (*models.Invoice, error)
	UpdateStatus(id uuid.UUID, status models.InvoiceStatus) error
	MarkError(id uuid.UUID, message string) error
	// TransitionStatus updates status only if the current status matches
	// from. Returns KindInvalidStateTransition when the guard fails.
	TransitionStatus(id uuid.UUID, from, to models.InvoiceStatus) error
	// FinalizeWithTransactions persists the extracted transactions, the
	// point accruals derived from them and the recomputed invoice aggregate
	// in a single database transaction, returning the recomputed total in
	// cents. makePoints runs after the transaction rows exist, so their IDs
	// are available for the weak back-references. The closing update only
	// applies while the invoice is still processing; if another writer got
	// there first, everything rolls back with KindInvalidStateTransition.
	FinalizeWithTransactions(invoice *models.Invoice, txs []models.Transaction, makePoints func([]models.Transaction) []models.Point) (int64, error)
	// RecalcTotal recomputes total_amount_cents from the invoice's
	// transactions. Used after manual transaction edits.
	RecalcTotal(id uuid.UUID) error
	ListByUser(userID uuid.UUID, limit int) ([]models.Invoice, error)
}

type invoiceRepo struct {
	db *gorm.DB
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(db *gorm.DB) InvoiceRepo {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

func (r *invoiceRepo) GetByID(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "invoice %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) GetByIDWithCard(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Card").Preload("Card.RewardPrograms").
		Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "invoice %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepo) UpdateStatus(id uuid.UUID, status models.InvoiceStatus) error {
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *invoiceRepo) MarkError(id uuid.UUID, message string) error {
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.InvoiceStatusError,
			"error_message": message,
		}).Error
}

func (r *invoiceRepo) TransitionStatus(id uuid.UUID, from, to models.InvoiceStatus) error {
	result := r.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Newf(apperr.KindInvalidStateTransition,
			"invoice %s is not in status %s", id, from)
	}
	return nil
}

func (r *invoiceRepo) FinalizeWithTransactions(invoice *models.Invoice, txs []models.Transaction, makePoints func([]models.Transaction) []models.Point) (int64, error) {
	var total int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if len(txs) > 0 {
			if err := tx.Create(&txs).Error; err != nil {
				return err
			}
		}
		if makePoints != nil {
			if points := makePoints(txs); len(points) > 0 {
				if err := tx.Create(&points).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&models.Transaction{}).
			Where("invoice_id = ?", invoice.ID).
			Select("COALESCE(SUM(amount_cents), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&models.Invoice{}).
			Where("id = ? AND status = ?", invoice.ID, models.InvoiceStatusProcessing).
			Updates(map[string]interface{}{
				"total_amount_cents": total,
				"status":             models.InvoiceStatusPending,
				"due_date":           invoice.DueDate,
				"closing_date":       invoice.ClosingDate,
				"error_message":      "",
				"processed_at":       now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Someone else finalized or overrode the invoice while we were
			// writing. Returning an error rolls the inserts back.
			return apperr.Newf(apperr.KindInvalidStateTransition,
				"invoice %s left status %s before finalization", invoice.ID, models.InvoiceStatusProcessing)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *invoiceRepo) RecalcTotal(id uuid.UUID) error {
	var total int64
	if err := r.db.Model(&models.Transaction{}).
		Where("invoice_id = ?", id).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).
		Update("total_amount_cents", total).Error
}

func (r *invoiceRepo) ListByUser(userID uuid.UUID, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	query := r.db.Where("user_id = ?", userID).Order("reference_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
