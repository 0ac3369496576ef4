package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/models"
	"github.com/faturai/faturai-backend/internal/repositories"
)

// TransactionHandler handles manual transaction entry and edits
type TransactionHandler struct {
	transactionRepo repositories.TransactionRepo
	invoiceRepo     repositories.InvoiceRepo
	categoryRepo    repositories.CategoryRepo
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactionRepo repositories.TransactionRepo,
	invoiceRepo repositories.InvoiceRepo,
	categoryRepo repositories.CategoryRepo,
) *TransactionHandler {
	return &TransactionHandler{
		transactionRepo: transactionRepo,
		invoiceRepo:     invoiceRepo,
		categoryRepo:    categoryRepo,
	}
}

// CreateTransactionRequest is the body for a manually entered transaction.
type CreateTransactionRequest struct {
	MerchantName    string `json:"merchant_name"`
	TransactionDate string `json:"transaction_date"` // YYYY-MM-DD
	AmountCents     int64  `json:"amount_cents"`
	Description     string `json:"description,omitempty"`
	CategoryCode    string `json:"category_code,omitempty"`
}

// POST /invoices/:id/transactions
//
// Manual entries do not accrue points; only the processing pipeline does.
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	var req CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.MerchantName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "merchant_name is required",
		})
	}
	if req.AmountCents == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount_cents must be non-zero",
		})
	}

	txDate, err := time.Parse("2006-01-02", req.TransactionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "transaction_date must be YYYY-MM-DD",
		})
	}

	invoice, err := h.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return respondError(c, err)
	}
	if invoice.Status == models.InvoiceStatusProcessing {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "invoice is still being processed",
		})
	}

	transaction := &models.Transaction{
		InvoiceID:       invoiceID,
		MerchantName:    strings.TrimSpace(req.MerchantName),
		TransactionDate: txDate,
		AmountCents:     req.AmountCents,
		Description:     strings.TrimSpace(req.Description),
	}

	if req.CategoryCode != "" {
		category, err := h.categoryRepo.GetByCode(strings.ToUpper(req.CategoryCode))
		if err != nil {
			return respondError(c, err)
		}
		if category == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown category code",
			})
		}
		transaction.CategoryID = &category.ID
	}

	if err := h.transactionRepo.Create(transaction); err != nil {
		return respondError(c, err)
	}
	if err := h.invoiceRepo.RecalcTotal(invoiceID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(transaction)
}

// GET /transactions/:id
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid transaction id format",
		})
	}

	transaction, err := h.transactionRepo.GetByID(transactionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transaction)
}

// RecategorizeRequest is the body for a category override. An empty code
// clears the category.
type RecategorizeRequest struct {
	CategoryCode string `json:"category_code"`
}

// PATCH /transactions/:id/category
func (h *TransactionHandler) Recategorize(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid transaction id format",
		})
	}

	var req RecategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	var categoryID *uuid.UUID
	if req.CategoryCode != "" {
		category, err := h.categoryRepo.GetByCode(strings.ToUpper(req.CategoryCode))
		if err != nil {
			return respondError(c, err)
		}
		if category == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown category code",
			})
		}
		categoryID = &category.ID
	}

	if _, err := h.transactionRepo.GetByID(transactionID); err != nil {
		return respondError(c, err)
	}
	if err := h.transactionRepo.Recategorize(transactionID, categoryID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"transaction_id": transactionID,
		"category_code":  req.CategoryCode,
	})
}
