package handlers

import (
	"log"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/core/storage"
	"github.com/faturai/faturai-backend/internal/models"
	"github.com/faturai/faturai-backend/internal/pipeline"
	"github.com/faturai/faturai-backend/internal/repositories"
)

// InvoiceHandler handles invoice upload and lifecycle requests
type InvoiceHandler struct {
	invoiceRepo     repositories.InvoiceRepo
	transactionRepo repositories.TransactionRepo
	cardRepo        repositories.CardRepo
	store           storage.Provider
	processor       *pipeline.Processor
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(
	invoiceRepo repositories.InvoiceRepo,
	transactionRepo repositories.TransactionRepo,
	cardRepo repositories.CardRepo,
	store storage.Provider,
	processor *pipeline.Processor,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceRepo:     invoiceRepo,
		transactionRepo: transactionRepo,
		cardRepo:        cardRepo,
		store:           store,
		processor:       processor,
	}
}

// POST /invoices/upload
func (h *InvoiceHandler) Upload(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.FormValue("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user_id format",
		})
	}
	cardID, err := uuid.Parse(c.FormValue("card_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid card_id format",
		})
	}

	referenceDate, err := parseReferenceDate(c.FormValue("reference_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "reference_date must be YYYY-MM or YYYY-MM-DD",
		})
	}

	card, err := h.cardRepo.GetByID(cardID)
	if err != nil {
		return respondError(c, err)
	}
	if card.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "card does not belong to user",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invoice file is required",
		})
	}

	opts := storage.DefaultSaveOptions()
	if !opts.ExtAllowed(filepath.Ext(fileHeader.Filename)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported file format: only PDF, CSV, JPG and PNG are accepted",
		})
	}
	if fileHeader.Size > opts.MaxSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file size must be less than 10MB",
		})
	}

	stored, err := h.store.SaveMultipart(fileHeader, opts)
	if err != nil {
		log.Printf("❌ Failed to store invoice file: %v", err)
		return respondError(c, err)
	}

	invoice := &models.Invoice{
		UserID:        userID,
		CardID:        cardID,
		ReferenceDate: referenceDate,
		Status:        models.InvoiceStatusProcessing,
		FilePath:      &stored.Key,
	}
	if err := h.invoiceRepo.Create(invoice); err != nil {
		log.Printf("❌ Failed to create invoice: %v", err)
		return respondError(c, err)
	}

	job, err := h.processor.EnqueueProcessing(c.Context(), invoice)
	if err != nil {
		log.Printf("❌ Failed to enqueue invoice %s: %v", invoice.ID, err)
		h.invoiceRepo.MarkError(invoice.ID, "failed to schedule processing")
		return respondError(c, err)
	}

	log.Printf("📄 Invoice %s uploaded (%s, %.2f KB), job %s enqueued",
		invoice.ID, stored.Format, float64(stored.Size)/1024, job.ID)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"invoice_id": invoice.ID,
		"job_id":     job.ID,
		"status":     invoice.Status,
	})
}

// POST /invoices/:id/reprocess
func (h *InvoiceHandler) Reprocess(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	job, err := h.processor.Reprocess(c.Context(), invoiceID)
	if err != nil {
		return respondError(c, err)
	}

	log.Printf("🔁 Invoice %s queued for reprocessing (job %s)", invoiceID, job.ID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"invoice_id": invoiceID,
		"job_id":     job.ID,
		"status":     models.InvoiceStatusProcessing,
	})
}

// GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	invoice, err := h.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return respondError(c, err)
	}

	transactions, err := h.transactionRepo.ListByInvoice(invoiceID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"invoice":      invoice,
		"transactions": transactions,
	})
}

// GET /invoices?user_id=...
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := c.QueryInt("limit", 50)
	invoices, err := h.invoiceRepo.ListByUser(userID, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"count":    len(invoices),
	})
}

// UpdateStatusRequest is the body for manual status overrides.
type UpdateStatusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

// PATCH /invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid invoice id format",
		})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid status value",
		})
	}
	// processing is owned by the pipeline; a manual override cannot enter it.
	if req.Status == models.InvoiceStatusProcessing {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status processing cannot be set manually",
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

	if err := h.invoiceRepo.UpdateStatus(invoiceID, req.Status); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"invoice_id": invoiceID,
		"status":     req.Status,
	})
}

func parseReferenceDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01", value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
