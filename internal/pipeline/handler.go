package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/core/jobs"
)

// InvoiceJobHandler consumes process_invoice jobs from the queue.
type InvoiceJobHandler struct {
	processor *Processor
}

// NewInvoiceJobHandler creates the queue handler for invoice processing.
func NewInvoiceJobHandler(processor *Processor) *InvoiceJobHandler {
	return &InvoiceJobHandler{processor: processor}
}

func (h *InvoiceJobHandler) GetType() string {
	return JobTypeProcessInvoice
}

func (h *InvoiceJobHandler) Handle(ctx context.Context, job *jobs.Job) error {
	var payload ProcessInvoicePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid process_invoice payload: %w", err)
	}

	err := h.processor.ProcessInvoice(ctx, payload.InvoiceID)
	if err == nil {
		return nil
	}

	// The queue retries retryable failures; the invoice only goes to error
	// once the failure is terminal or the retry budget is spent.
	if !apperr.Retryable(err) || job.Attempts >= job.MaxRetries {
		h.processor.MarkFailed(payload.InvoiceID, err)
	}
	return err
}
