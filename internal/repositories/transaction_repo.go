package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/models"
)

// CategorySpend is an aggregated spend row per category code.
type CategorySpend struct {
	CategoryCode string `json:"category_code"`
	CategoryName string `json:"category_name"`
	TotalCents   int64  `json:"total_cents"`
	Count        int64  `json:"count"`
}

// MerchantSpend is an aggregated spend row per merchant.
type MerchantSpend struct {
	MerchantName string `json:"merchant_name"`
	TotalCents   int64  `json:"total_cents"`
	Count        int64  `json:"count"`
}

// MonthlySpend is one month of the trailing spend series.
type MonthlySpend struct {
	Month      string `json:"month"` // "2026-03"
	TotalCents int64  `json:"total_cents"`
}

// TransactionRepo defines transaction persistence and aggregation operations.
type TransactionRepo interface {
	Create(transaction *models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	ListByInvoice(invoiceID uuid.UUID) ([]models.Transaction, error)
	Recategorize(id uuid.UUID, categoryID *uuid.UUID) error
	MarkRecommended(ids []uuid.UUID) error

	CountByUserSince(userID uuid.UUID, since time.Time) (int64, error)
	DistinctCategoriesSince(userID uuid.UUID, since time.Time) (int64, error)
	TopCategories(userID uuid.UUID, since time.Time, limit int) ([]CategorySpend, error)
	TopMerchants(userID uuid.UUID, since time.Time, limit int) ([]MerchantSpend, error)
	MonthlySeries(userID uuid.UUID, months int) ([]MonthlySpend, error)
	LargestSince(userID uuid.UUID, since time.Time, limit int) ([]models.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(db *gorm.DB) TransactionRepo {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(transaction *models.Transaction) error {
	return r.db.Create(transaction).Error
}

func (r *transactionRepo) GetByID(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.Preload("Category").Where("id = ?", id).First(&transaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "transaction %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) ListByInvoice(invoiceID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.Where("invoice_id = ?", invoiceID).
		Order("transaction_date ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepo) Recategorize(id uuid.UUID, categoryID *uuid.UUID) error {
	return r.db.Model(&models.Transaction{}).Where("id = ?", id).
		Update("category_id", categoryID).Error
}

func (r *transactionRepo) MarkRecommended(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Transaction{}).Where("id IN ?", ids).
		Update("is_recommended", true).Error
}

func (r *transactionRepo) userJoin() *gorm.DB {
	return r.db.Model(&models.Transaction{}).
		Joins("JOIN invoices ON invoices.id = transactions.invoice_id")
}

func (r *transactionRepo) CountByUserSince(userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.userJoin().
		Where("invoices.user_id = ? AND transactions.transaction_date >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *transactionRepo) DistinctCategoriesSince(userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.userJoin().
		Where("invoices.user_id = ? AND transactions.transaction_date >= ?", userID, since).
		Where("transactions.category_id IS NOT NULL").
		Distinct("transactions.category_id").
		Count(&count).Error
	return count, err
}

func (r *transactionRepo) TopCategories(userID uuid.UUID, since time.Time, limit int) ([]CategorySpend, error) {
	var rows []CategorySpend
	err := r.userJoin().
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("invoices.user_id = ? AND transactions.transaction_date >= ?", userID, since).
		Where("transactions.amount_cents > 0").
		Select("categories.code AS category_code, categories.name AS category_name, SUM(transactions.amount_cents) AS total_cents, COUNT(*) AS count").
		Group("categories.code, categories.name").
		Order("total_cents DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *transactionRepo) TopMerchants(userID uuid.UUID, since time.Time, limit int) ([]MerchantSpend, error) {
	var rows []MerchantSpend
	err := r.userJoin().
		Where("invoices.user_id = ? AND transactions.transaction_date >= ?", userID, since).
		Where("transactions.amount_cents > 0").
		Select("transactions.merchant_name AS merchant_name, SUM(transactions.amount_cents) AS total_cents, COUNT(*) AS count").
		Group("transactions.merchant_name").
		Order("total_cents DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *transactionRepo) MonthlySeries(userID uuid.UUID, months int) ([]MonthlySpend, error) {
	since := time.Now().AddDate(0, -months, 0)
	var rows []MonthlySpend
	err := r.userJoin().
		Where("invoices.user_id = ? AND transactions.transaction_date >= ?", userID, since).
		Where("transactions.amount_cents > 0").
		Select("to_char(transactions.transaction_date, 'YYYY-MM') AS month, SUM(transactions.amount_cents) AS total_cents").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *transactionRepo) LargestSince(userID uuid.UUID, since time.Time, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.Preload("Category").Preload("Invoice").
		Joins("JOIN invoices ON invoices.id = transactions.invoice_id").
		Where("invoices.user_id = ? AND transactions.transaction_date >= ?", userID, since).
		Where("transactions.amount_cents > 0").
		Order("transactions.amount_cents DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
