package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/core/classify"
	"github.com/faturai/faturai-backend/internal/core/extract"
	"github.com/faturai/faturai-backend/internal/core/jobs"
	"github.com/faturai/faturai-backend/internal/core/storage"
	"github.com/faturai/faturai-backend/internal/models"
)

// mockInvoiceRepo is an in-memory InvoiceRepo for pipeline tests.
type mockInvoiceRepo struct {
	invoice *models.Invoice

	markedError    string
	transitioned   bool
	finalizedTxs   []models.Transaction
	finalizedPts   []models.Point
	finalizeCalled bool
	finalizeErr    error
}

func (m *mockInvoiceRepo) Create(invoice *models.Invoice) error { return nil }

func (m *mockInvoiceRepo) GetByID(id uuid.UUID) (*models.Invoice, error) {
	if m.invoice == nil || m.invoice.ID != id {
		return nil, apperr.Newf(apperr.KindNotFound, "invoice %s not found", id)
	}
	return m.invoice, nil
}

func (m *mockInvoiceRepo) GetByIDWithCard(id uuid.UUID) (*models.Invoice, error) {
	return m.GetByID(id)
}

func (m *mockInvoiceRepo) UpdateStatus(id uuid.UUID, status models.InvoiceStatus) error {
	m.invoice.Status = status
	return nil
}

func (m *mockInvoiceRepo) MarkError(id uuid.UUID, message string) error {
	m.invoice.Status = models.InvoiceStatusError
	m.markedError = message
	return nil
}

func (m *mockInvoiceRepo) TransitionStatus(id uuid.UUID, from, to models.InvoiceStatus) error {
	if m.invoice.Status != from {
		return apperr.Newf(apperr.KindInvalidStateTransition, "invoice %s is not in status %s", id, from)
	}
	m.invoice.Status = to
	m.transitioned = true
	return nil
}

func (m *mockInvoiceRepo) FinalizeWithTransactions(invoice *models.Invoice, txs []models.Transaction, makePoints func([]models.Transaction) []models.Point) (int64, error) {
	m.finalizeCalled = true
	if m.finalizeErr != nil {
		return 0, m.finalizeErr
	}
	for i := range txs {
		if txs[i].ID == uuid.Nil {
			txs[i].ID = uuid.New()
		}
	}
	m.finalizedTxs = txs
	if makePoints != nil {
		m.finalizedPts = makePoints(txs)
	}
	var total int64
	for _, tx := range txs {
		total += tx.AmountCents
	}
	invoice.TotalAmountCents = total
	invoice.Status = models.InvoiceStatusPending
	return total, nil
}

func (m *mockInvoiceRepo) RecalcTotal(id uuid.UUID) error { return nil }

func (m *mockInvoiceRepo) ListByUser(userID uuid.UUID, limit int) ([]models.Invoice, error) {
	return nil, nil
}

// mockCategoryRepo serves a fixed catalog.
type mockCategoryRepo struct {
	categories []models.Category
}

func (m *mockCategoryRepo) List() ([]models.Category, error) { return m.categories, nil }

func (m *mockCategoryRepo) GetByCode(code string) (*models.Category, error) {
	for i := range m.categories {
		if m.categories[i].Code == code {
			return &m.categories[i], nil
		}
	}
	return nil, nil
}

func (m *mockCategoryRepo) Codes() ([]string, error) {
	codes := make([]string, 0, len(m.categories))
	for _, c := range m.categories {
		codes = append(codes, c.Code)
	}
	return codes, nil
}

// memStore is an in-memory storage.Provider.
type memStore struct {
	files     map[string][]byte
	existsErr error
}

func newMemStore(key string, data []byte) *memStore {
	files := map[string][]byte{}
	if key != "" {
		files[key] = data
	}
	return &memStore{files: files}
}

func (m *memStore) Save(file io.Reader, filename string, options *storage.SaveOptions) (*storage.StoredFile, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	key := "invoices/" + filename
	m.files[key] = data
	return &storage.StoredFile{Key: key, FileName: filename, Size: int64(len(data))}, nil
}

func (m *memStore) SaveMultipart(fileHeader *multipart.FileHeader, options *storage.SaveOptions) (*storage.StoredFile, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.files[key]
	return ok, nil
}

func (m *memStore) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "http://example.test/" + key, nil
}

func (m *memStore) Delete(key string) error {
	delete(m.files, key)
	return nil
}

func (m *memStore) GetProviderName() string { return "memory" }

// mockEnqueuer records enqueued jobs.
type mockEnqueuer struct {
	jobs []*jobs.Job
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, userID uuid.UUID, jobType string, payload interface{}, opts jobs.EnqueueOptions) (*jobs.Job, error) {
	data, _ := json.Marshal(payload)
	job := &jobs.Job{ID: uuid.New(), UserID: userID, Type: jobType, Payload: data, MaxRetries: opts.MaxRetries}
	m.jobs = append(m.jobs, job)
	return job, nil
}

// stubStrategy returns canned transactions for any supported file.
type stubStrategy struct {
	txs []extract.RawTransaction
	err error
}

func (s *stubStrategy) Name() string           { return "stub" }
func (s *stubStrategy) Supports(e string) bool { return true }
func (s *stubStrategy) Timeout() time.Duration { return time.Second }
func (s *stubStrategy) Extract(ctx context.Context, file extract.RawFile) ([]extract.RawTransaction, error) {
	return s.txs, s.err
}

func testCategories() []models.Category {
	return []models.Category{
		{ID: uuid.New(), Code: "SUPER", Name: "Supermercado"},
		{ID: uuid.New(), Code: "REST", Name: "Restaurantes"},
		{ID: uuid.New(), Code: "COMB", Name: "Combustível"},
	}
}

func testInvoice(status models.InvoiceStatus) *models.Invoice {
	programID := uuid.New()
	filePath := "invoices/fatura.pdf"
	cardID := uuid.New()
	return &models.Invoice{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		CardID:        cardID,
		ReferenceDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:        status,
		FilePath:      &filePath,
		Card: models.Card{
			ID:             cardID,
			ConversionRate: 1.0,
			Tier:           "gold",
			Active:         true,
			RewardPrograms: []models.CardRewardProgram{
				{ID: uuid.New(), RewardProgramID: programID, ConversionRate: 1.0, IsPrimary: true},
			},
		},
	}
}

func newTestProcessor(repo *mockInvoiceRepo, cats *mockCategoryRepo, store *memStore, strat extract.Strategy, enq *mockEnqueuer) *Processor {
	extractor := extract.NewExtractor([]extract.Strategy{strat})
	classifier := classify.NewClassifier(nil, mustCodes(cats))
	return NewProcessor(repo, cats, store, extractor, classifier, enq, "invoices")
}

func mustCodes(cats *mockCategoryRepo) []string {
	codes, _ := cats.Codes()
	return codes
}

func TestProcessInvoice_Success(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusProcessing)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("invoices/fatura.pdf", []byte("%PDF-1.4"))

	strat := &stubStrategy{txs: []extract.RawTransaction{
		{MerchantName: "Supermercado Extra", AmountCents: 20000, CategoryCode: "SUPER", Date: time.Now()},
		{MerchantName: "iFood", AmountCents: 5490, CategoryCode: "REST", Date: time.Now()},
		{MerchantName: "Estabelecimento Desconhecido", AmountCents: 1000, Date: time.Now()},
	}}

	p := newTestProcessor(repo, cats, store, strat, &mockEnqueuer{})
	if err := p.ProcessInvoice(context.Background(), invoice.ID); err != nil {
		t.Fatalf("ProcessInvoice() unexpected error: %v", err)
	}

	if !repo.finalizeCalled {
		t.Fatal("FinalizeWithTransactions was not called")
	}
	if len(repo.finalizedTxs) != 3 {
		t.Fatalf("finalized %d transactions, want 3", len(repo.finalizedTxs))
	}

	// gold tier: SUPER gets 1.5x, REST stays at base rate.
	if got := repo.finalizedTxs[0].PointsEarned; got != 300 {
		t.Errorf("SUPER transaction earned %d points, want 300 (gold bonus)", got)
	}
	if got := repo.finalizedTxs[1].PointsEarned; got != 54 {
		t.Errorf("REST transaction earned %d points, want 54", got)
	}
	if repo.finalizedTxs[0].CategoryID == nil {
		t.Error("categorized transaction has no category id")
	}
	if repo.finalizedTxs[2].CategoryID != nil {
		t.Error("unclassifiable merchant should stay uncategorized")
	}

	if invoice.TotalAmountCents != 26490 {
		t.Errorf("TotalAmountCents = %d, want sum of transactions 26490", invoice.TotalAmountCents)
	}
	if invoice.Status != models.InvoiceStatusPending {
		t.Errorf("Status = %s, want pending", invoice.Status)
	}

	// Point entries: one per earning transaction, on the primary program.
	if len(repo.finalizedPts) != 3 {
		t.Fatalf("created %d point entries, want 3", len(repo.finalizedPts))
	}
	programID := invoice.Card.RewardPrograms[0].RewardProgramID
	for i, pt := range repo.finalizedPts {
		if pt.RewardProgramID != programID {
			t.Errorf("point %d on program %s, want primary %s", i, pt.RewardProgramID, programID)
		}
		if pt.TransactionID == nil || *pt.TransactionID == uuid.Nil {
			t.Errorf("point %d has no transaction back-reference", i)
		}
		if pt.Status != models.PointStatusActive {
			t.Errorf("point %d status = %s, want active", i, pt.Status)
		}
		if pt.ExpiresAt == nil {
			t.Errorf("point %d has no expiry", i)
		}
	}

	// Cycle defaults: closing on the last day of July, due ten days later.
	if invoice.ClosingDate == nil || !invoice.ClosingDate.Equal(time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ClosingDate = %v, want 2026-07-31", invoice.ClosingDate)
	}
	if invoice.DueDate == nil || !invoice.DueDate.Equal(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v, want 2026-08-10", invoice.DueDate)
	}
}

func TestProcessInvoice_SkipsNonProcessing(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusPending)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("invoices/fatura.pdf", []byte("%PDF-1.4"))

	p := newTestProcessor(repo, cats, store, &stubStrategy{}, &mockEnqueuer{})
	if err := p.ProcessInvoice(context.Background(), invoice.ID); err != nil {
		t.Fatalf("ProcessInvoice() on finalized invoice should be a no-op, got %v", err)
	}
	if repo.finalizeCalled {
		t.Error("finalize ran for an invoice that was not in processing")
	}
}

func TestProcessInvoice_LostFinalizeRace(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusProcessing)
	repo := &mockInvoiceRepo{invoice: invoice}
	repo.finalizeErr = apperr.Newf(apperr.KindInvalidStateTransition,
		"invoice %s left status processing before finalization", invoice.ID)
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("invoices/fatura.pdf", []byte("%PDF-1.4"))

	strat := &stubStrategy{txs: []extract.RawTransaction{
		{MerchantName: "Supermercado Extra", AmountCents: 20000, CategoryCode: "SUPER", Date: time.Now()},
	}}

	// A duplicate delivery that loses the finalize guard discards its work
	// without failing the job or touching the invoice.
	p := newTestProcessor(repo, cats, store, strat, &mockEnqueuer{})
	if err := p.ProcessInvoice(context.Background(), invoice.ID); err != nil {
		t.Fatalf("ProcessInvoice() after lost finalize race: error = %v, want nil", err)
	}
	if repo.markedError != "" || invoice.Status == models.InvoiceStatusError {
		t.Error("lost finalize race must not mark the invoice as error")
	}
}

func TestProcessInvoice_MissingFile(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusProcessing)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("other/key.pdf", []byte("x"))

	p := newTestProcessor(repo, cats, store, &stubStrategy{}, &mockEnqueuer{})
	err := p.ProcessInvoice(context.Background(), invoice.ID)
	if !apperr.Is(err, apperr.KindFileNotFound) {
		t.Errorf("ProcessInvoice() error = %v, want file-not-found kind", err)
	}
}

func TestProcessInvoice_ExtractionFailureIsNotRetryable(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusProcessing)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("invoices/fatura.pdf", []byte("%PDF-1.4"))

	strat := &stubStrategy{err: apperr.New(apperr.KindExternalService, "model down")}
	p := newTestProcessor(repo, cats, store, strat, &mockEnqueuer{})

	err := p.ProcessInvoice(context.Background(), invoice.ID)
	if !apperr.Is(err, apperr.KindExtraction) {
		t.Errorf("error kind = %v, want extraction once every strategy failed", apperr.KindOf(err))
	}
	if apperr.Retryable(err) {
		t.Error("exhausted extraction must not be retryable")
	}
}

func TestReprocess(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusError)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("invoices/fatura.pdf", []byte("%PDF-1.4"))
	enq := &mockEnqueuer{}

	p := newTestProcessor(repo, cats, store, &stubStrategy{}, enq)
	job, err := p.Reprocess(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("Reprocess() unexpected error: %v", err)
	}

	if !repo.transitioned || invoice.Status != models.InvoiceStatusProcessing {
		t.Error("Reprocess() did not transition the invoice back to processing")
	}
	if len(enq.jobs) != 1 || job.Type != JobTypeProcessInvoice {
		t.Errorf("Reprocess() enqueued %d jobs of type %q, want one process_invoice", len(enq.jobs), job.Type)
	}
}

func TestReprocess_RejectsNonErrorStatus(t *testing.T) {
	for _, status := range []models.InvoiceStatus{
		models.InvoiceStatusProcessing,
		models.InvoiceStatusPending,
		models.InvoiceStatusPaid,
	} {
		invoice := testInvoice(status)
		repo := &mockInvoiceRepo{invoice: invoice}
		cats := &mockCategoryRepo{categories: testCategories()}
		store := newMemStore("invoices/fatura.pdf", []byte("x"))
		enq := &mockEnqueuer{}

		p := newTestProcessor(repo, cats, store, &stubStrategy{}, enq)
		_, err := p.Reprocess(context.Background(), invoice.ID)
		if !apperr.Is(err, apperr.KindInvalidStateTransition) {
			t.Errorf("Reprocess() on %s invoice: error = %v, want invalid-state-transition", status, err)
		}
		if len(enq.jobs) != 0 {
			t.Errorf("Reprocess() on %s invoice enqueued a job", status)
		}
	}
}

func TestReprocess_RequiresStoredFile(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusError)
	invoice.FilePath = nil
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}

	p := newTestProcessor(repo, cats, newMemStore("", nil), &stubStrategy{}, &mockEnqueuer{})
	if _, err := p.Reprocess(context.Background(), invoice.ID); !apperr.Is(err, apperr.KindFileNotFound) {
		t.Errorf("Reprocess() without file: error = %v, want file-not-found", err)
	}
}

func TestInvoiceJobHandler_TerminalFailureMarksInvoice(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusProcessing)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("other/key.pdf", nil) // file missing: terminal failure

	p := newTestProcessor(repo, cats, store, &stubStrategy{}, &mockEnqueuer{})
	handler := NewInvoiceJobHandler(p)

	payload, _ := json.Marshal(ProcessInvoicePayload{InvoiceID: invoice.ID, FilePath: "other/key.pdf"})
	job := &jobs.Job{ID: uuid.New(), Type: JobTypeProcessInvoice, Payload: payload, Attempts: 1, MaxRetries: 3}

	if err := handler.Handle(context.Background(), job); err == nil {
		t.Fatal("Handle() expected error for missing file")
	}
	if invoice.Status != models.InvoiceStatusError || repo.markedError == "" {
		t.Error("terminal failure did not mark the invoice as error")
	}
}

func TestInvoiceJobHandler_RetryableFailureLeavesInvoiceProcessing(t *testing.T) {
	invoice := testInvoice(models.InvoiceStatusProcessing)
	repo := &mockInvoiceRepo{invoice: invoice}
	cats := &mockCategoryRepo{categories: testCategories()}
	store := newMemStore("invoices/fatura.pdf", nil)
	store.existsErr = errors.New("s3 unreachable")

	p := newTestProcessor(repo, cats, store, &stubStrategy{}, &mockEnqueuer{})
	handler := NewInvoiceJobHandler(p)

	payload, _ := json.Marshal(ProcessInvoicePayload{InvoiceID: invoice.ID, FilePath: "invoices/fatura.pdf"})
	job := &jobs.Job{ID: uuid.New(), Type: JobTypeProcessInvoice, Payload: payload, Attempts: 1, MaxRetries: 3}

	if err := handler.Handle(context.Background(), job); err == nil {
		t.Fatal("Handle() expected error while storage is down")
	}
	if invoice.Status != models.InvoiceStatusProcessing {
		t.Errorf("invoice status = %s, want still processing while retries remain", invoice.Status)
	}

	// Once the retry budget is spent, the same failure becomes terminal.
	job.Attempts = 3
	handler.Handle(context.Background(), job)
	if invoice.Status != models.InvoiceStatusError {
		t.Errorf("invoice status = %s, want error after retry budget is spent", invoice.Status)
	}
}
