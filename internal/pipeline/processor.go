package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/core/classify"
	"github.com/faturai/faturai-backend/internal/core/extract"
	"github.com/faturai/faturai-backend/internal/core/jobs"
	"github.com/faturai/faturai-backend/internal/core/points"
	"github.com/faturai/faturai-backend/internal/core/storage"
	"github.com/faturai/faturai-backend/internal/models"
	"github.com/faturai/faturai-backend/internal/repositories"
	"github.com/faturai/faturai-backend/internal/shared/logger"
)

// JobTypeProcessInvoice is the queue job type for invoice extraction.
const JobTypeProcessInvoice = "process_invoice"

// Earned points stay redeemable for two years before the nightly sweep
// expires them.
const pointsValidity = 2 // years

// ProcessInvoicePayload is the payload of a process_invoice job.
type ProcessInvoicePayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	FilePath  string    `json:"file_path"`
}

// Enqueuer pushes jobs onto the background queue. *jobs.Queue satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID uuid.UUID, jobType string, payload interface{}, opts jobs.EnqueueOptions) (*jobs.Job, error)
}

// Processor runs the invoice pipeline: read the stored document, extract
// transactions, categorize them, accrue points and finalize the invoice.
type Processor struct {
	invoices   repositories.InvoiceRepo
	categories repositories.CategoryRepo
	store      storage.Provider
	extractor  *extract.Extractor
	classifier *classify.Classifier
	queue      Enqueuer
	queueName  string
}

// NewProcessor creates an invoice pipeline processor.
func NewProcessor(
	invoices repositories.InvoiceRepo,
	categories repositories.CategoryRepo,
	store storage.Provider,
	extractor *extract.Extractor,
	classifier *classify.Classifier,
	queue Enqueuer,
	queueName string,
) *Processor {
	return &Processor{
		invoices:   invoices,
		categories: categories,
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		queue:      queue,
		queueName:  queueName,
	}
}

// EnqueueProcessing schedules asynchronous processing of an invoice.
func (p *Processor) EnqueueProcessing(ctx context.Context, invoice *models.Invoice) (*jobs.Job, error) {
	filePath := ""
	if invoice.FilePath != nil {
		filePath = *invoice.FilePath
	}
	opts := jobs.DefaultEnqueueOptions()
	opts.Queue = p.queueName
	return p.queue.Enqueue(ctx, invoice.UserID, JobTypeProcessInvoice, ProcessInvoicePayload{
		InvoiceID: invoice.ID,
		FilePath:  filePath,
	}, opts)
}

// Reprocess re-runs the pipeline for an invoice that previously failed. Only
// invoices in status error with a stored file are eligible.
func (p *Processor) Reprocess(ctx context.Context, invoiceID uuid.UUID) (*jobs.Job, error) {
	invoice, err := p.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.FilePath == nil || *invoice.FilePath == "" {
		return nil, apperr.Newf(apperr.KindFileNotFound,
			"invoice %s has no stored file to reprocess", invoiceID)
	}
	if err := p.invoices.TransitionStatus(invoiceID, models.InvoiceStatusError, models.InvoiceStatusProcessing); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusProcessing
	return p.EnqueueProcessing(ctx, invoice)
}

// ProcessInvoice runs the full pipeline for one invoice. Errors of kind
// external_service are worth retrying; everything else is terminal.
func (p *Processor) ProcessInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := p.invoices.GetByIDWithCard(invoiceID)
	if err != nil {
		return err
	}

	// A re-delivered job for an already finalized invoice is a no-op.
	if invoice.Status != models.InvoiceStatusProcessing {
		logger.LogWarn("invoice not in processing status, skipping", map[string]interface{}{
			"invoice_id": invoiceID.String(),
			"status":     string(invoice.Status),
		})
		return nil
	}

	if invoice.FilePath == nil || *invoice.FilePath == "" {
		return apperr.Newf(apperr.KindFileNotFound, "invoice %s has no stored file", invoiceID)
	}
	key := *invoice.FilePath

	exists, err := p.store.Exists(ctx, key)
	if err != nil {
		return apperr.Wrap(apperr.KindExternalService, "checking stored file", err)
	}
	if !exists {
		return apperr.Newf(apperr.KindFileNotFound, "stored file %s no longer exists", key)
	}

	data, err := p.store.Read(ctx, key)
	if err != nil {
		return apperr.Wrap(apperr.KindExternalService, "reading stored file", err)
	}

	raw, err := p.extractor.Extract(ctx, extract.RawFile{
		Key:   key,
		Ext:   filepath.Ext(key),
		Bytes: data,
	})
	if err != nil {
		return err
	}

	codeToID, err := p.categoryIndex()
	if err != nil {
		return err
	}

	txs := p.buildTransactions(ctx, invoice, raw, codeToID)
	applyCycleDefaults(invoice)

	total, err := p.invoices.FinalizeWithTransactions(invoice, txs, func(created []models.Transaction) []models.Point {
		return buildPointEntries(invoice, created)
	})
	if apperr.Is(err, apperr.KindInvalidStateTransition) {
		// Another writer finalized or overrode the invoice while this run
		// was in flight; its work was rolled back, so there is nothing to
		// retry or to mark failed.
		logger.LogWarn("invoice finalized elsewhere, discarding result", map[string]interface{}{
			"invoice_id": invoiceID.String(),
		})
		return nil
	}
	if err != nil {
		return err
	}

	logger.LogInfo("invoice processed", map[string]interface{}{
		"invoice_id":         invoiceID.String(),
		"transactions":       len(txs),
		"total_amount_cents": total,
	})
	return nil
}

// MarkFailed records a terminal pipeline failure on the invoice.
func (p *Processor) MarkFailed(invoiceID uuid.UUID, cause error) {
	if err := p.invoices.MarkError(invoiceID, cause.Error()); err != nil {
		logger.LogError("failed to mark invoice as error", err, map[string]interface{}{
			"invoice_id": invoiceID.String(),
		})
	}
}

func (p *Processor) categoryIndex() (map[string]uuid.UUID, error) {
	cats, err := p.categories.List()
	if err != nil {
		return nil, err
	}
	index := make(map[string]uuid.UUID, len(cats))
	for _, c := range cats {
		index[c.Code] = c.ID
	}
	return index, nil
}

func (p *Processor) buildTransactions(ctx context.Context, invoice *models.Invoice, raw []extract.RawTransaction, codeToID map[string]uuid.UUID) []models.Transaction {
	txs := make([]models.Transaction, 0, len(raw))
	for _, rt := range raw {
		code := rt.CategoryCode
		if _, known := codeToID[code]; !known {
			code = ""
		}
		if code == "" && p.classifier != nil {
			if c, ok := p.classifier.Classify(ctx, rt.MerchantName); ok {
				code = c
			}
		}

		tx := models.Transaction{
			InvoiceID:       invoice.ID,
			MerchantName:    rt.MerchantName,
			TransactionDate: rt.Date,
			AmountCents:     rt.AmountCents,
			Description:     rt.Description,
		}
		if id, ok := codeToID[code]; ok {
			catID := id
			tx.CategoryID = &catID
		}
		tx.PointsEarned = points.Calculate(rt.AmountCents, &invoice.Card, code)
		txs = append(txs, tx)
	}
	return txs
}

// applyCycleDefaults fills closing and due dates when the extracted document
// did not carry them: closing on the last day of the reference month, due ten
// days later.
func applyCycleDefaults(invoice *models.Invoice) {
	if invoice.ClosingDate == nil {
		ref := invoice.ReferenceDate
		closing := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).
			AddDate(0, 1, -1)
		invoice.ClosingDate = &closing
	}
	if invoice.DueDate == nil {
		due := invoice.ClosingDate.AddDate(0, 0, 10)
		invoice.DueDate = &due
	}
}

// buildPointEntries creates point accruals on the card's primary reward
// program, one entry per transaction that earned anything.
func buildPointEntries(invoice *models.Invoice, txs []models.Transaction) []models.Point {
	program := primaryProgram(invoice.Card.RewardPrograms)
	if program == nil {
		return nil
	}

	expiresAt := time.Now().AddDate(pointsValidity, 0, 0)
	entries := make([]models.Point, 0, len(txs))
	for i := range txs {
		if txs[i].PointsEarned <= 0 {
			continue
		}
		txID := txs[i].ID
		entries = append(entries, models.Point{
			UserID:          invoice.UserID,
			RewardProgramID: program.RewardProgramID,
			TransactionID:   &txID,
			Amount:          txs[i].PointsEarned,
			ExpiresAt:       &expiresAt,
			Status:          models.PointStatusActive,
			Description:     "acúmulo de fatura: " + txs[i].MerchantName,
		})
	}
	return entries
}

func primaryProgram(links []models.CardRewardProgram) *models.CardRewardProgram {
	for i := range links {
		if links[i].IsPrimary {
			return &links[i]
		}
	}
	if len(links) > 0 {
		return &links[0]
	}
	return nil
}
