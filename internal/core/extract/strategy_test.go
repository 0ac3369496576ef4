package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faturai/faturai-backend/internal/core/apperr"
)

// fakeStrategy records whether it ran and returns a canned result.
type fakeStrategy struct {
	name   string
	exts   map[string]bool
	txs    []RawTransaction
	err    error
	called bool
}

func (s *fakeStrategy) Name() string           { return s.name }
func (s *fakeStrategy) Supports(e string) bool { return s.exts[e] }
func (s *fakeStrategy) Timeout() time.Duration { return time.Second }

func (s *fakeStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	s.called = true
	return s.txs, s.err
}

var pdfOnly = map[string]bool{"pdf": true}

// stallingStrategy never returns on its own; it blocks until the per-attempt
// deadline cancels its context.
type stallingStrategy struct {
	called bool
}

func (s *stallingStrategy) Name() string           { return "stalling" }
func (s *stallingStrategy) Supports(e string) bool { return pdfOnly[e] }
func (s *stallingStrategy) Timeout() time.Duration { return 10 * time.Millisecond }

func (s *stallingStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	s.called = true
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExtractor_FallbackOrder(t *testing.T) {
	first := &fakeStrategy{name: "first", exts: pdfOnly, err: errors.New("model down")}
	second := &fakeStrategy{name: "second", exts: pdfOnly, txs: []RawTransaction{{MerchantName: "iFood", AmountCents: 5490}}}
	third := &fakeStrategy{name: "third", exts: pdfOnly, txs: []RawTransaction{{MerchantName: "never", AmountCents: 1}}}

	e := NewExtractor([]Strategy{first, second, third})
	txs, err := e.Extract(context.Background(), RawFile{Key: "x.pdf", Ext: ".pdf"})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if !first.called || !second.called {
		t.Error("expected first and second strategies to run")
	}
	if third.called {
		t.Error("third strategy ran after second already succeeded")
	}
	if len(txs) != 1 || txs[0].MerchantName != "iFood" {
		t.Errorf("Extract() = %+v, want the second strategy's result", txs)
	}
}

func TestExtractor_TimeoutFallsThroughToNext(t *testing.T) {
	slow := &stallingStrategy{}
	next := &fakeStrategy{name: "next", exts: pdfOnly, txs: []RawTransaction{{MerchantName: "Uber", AmountCents: 2000}}}

	e := NewExtractor([]Strategy{slow, next})
	txs, err := e.Extract(context.Background(), RawFile{Key: "a.pdf", Ext: "pdf"})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if !slow.called {
		t.Error("stalled strategy never ran")
	}
	if !next.called {
		t.Error("chain did not fall through after the first strategy timed out")
	}
	if len(txs) != 1 || txs[0].MerchantName != "Uber" {
		t.Errorf("Extract() = %+v, want the fallback strategy's result", txs)
	}
}

func TestExtractor_TimeoutOnLastStrategyIsExtractionFailure(t *testing.T) {
	slow := &stallingStrategy{}

	e := NewExtractor([]Strategy{slow})
	_, err := e.Extract(context.Background(), RawFile{Key: "a.pdf", Ext: "pdf"})
	if !apperr.Is(err, apperr.KindExtraction) {
		t.Errorf("Extract() error = %v, want extraction kind after the only strategy timed out", err)
	}
}

func TestExtractor_SkipsUnsupportingStrategies(t *testing.T) {
	images := &fakeStrategy{name: "images", exts: map[string]bool{"png": true}}
	docs := &fakeStrategy{name: "docs", exts: pdfOnly, txs: []RawTransaction{{MerchantName: "Uber", AmountCents: 2000}}}

	e := NewExtractor([]Strategy{images, docs})
	if _, err := e.Extract(context.Background(), RawFile{Key: "a.pdf", Ext: "pdf"}); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if images.called {
		t.Error("image strategy ran for a pdf file")
	}
}

func TestExtractor_AllStrategiesFail(t *testing.T) {
	a := &fakeStrategy{name: "a", exts: pdfOnly, err: errors.New("boom")}
	b := &fakeStrategy{name: "b", exts: pdfOnly, err: errors.New("also boom")}

	e := NewExtractor([]Strategy{a, b})
	_, err := e.Extract(context.Background(), RawFile{Key: "a.pdf", Ext: "pdf"})
	if !apperr.Is(err, apperr.KindExtraction) {
		t.Errorf("Extract() error = %v, want extraction kind", err)
	}
}

func TestExtractor_UnsupportedExtension(t *testing.T) {
	e := NewExtractor([]Strategy{&fakeStrategy{name: "any", exts: pdfOnly}})
	_, err := e.Extract(context.Background(), RawFile{Key: "notes.docx", Ext: ".docx"})
	if !apperr.Is(err, apperr.KindUnsupportedFormat) {
		t.Errorf("Extract() error = %v, want unsupported-format kind", err)
	}
}

func TestExtractor_NoApplicableStrategy(t *testing.T) {
	e := NewExtractor(nil)
	_, err := e.Extract(context.Background(), RawFile{Key: "a.pdf", Ext: "pdf"})
	if !apperr.Is(err, apperr.KindExtraction) {
		t.Errorf("Extract() error = %v, want extraction kind", err)
	}
}

func TestExtractor_CSVBypassesStrategies(t *testing.T) {
	s := &fakeStrategy{name: "model", exts: map[string]bool{"csv": true}}
	e := NewExtractor([]Strategy{s})

	data := []byte("merchant,date,amount\niFood,2026-07-10,54.90\n")
	txs, err := e.Extract(context.Background(), RawFile{Key: "f.csv", Ext: "csv", Bytes: data})
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if s.called {
		t.Error("strategy chain ran for a CSV file")
	}
	if len(txs) != 1 {
		t.Errorf("Extract() returned %d rows, want 1", len(txs))
	}
}

func TestMockStrategy_Deterministic(t *testing.T) {
	mock := NewMockStrategy()
	file := RawFile{Key: "invoices/abc.pdf", Ext: "pdf"}

	a, err := mock.Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	b, _ := mock.Extract(context.Background(), file)

	if len(a) < 5 || len(a) > 10 {
		t.Errorf("mock produced %d transactions, want 5-10", len(a))
	}
	if len(a) != len(b) {
		t.Fatalf("mock is not deterministic: %d vs %d transactions", len(a), len(b))
	}
	for i := range a {
		if a[i].MerchantName != b[i].MerchantName || a[i].AmountCents != b[i].AmountCents {
			t.Errorf("mock row %d differs between runs", i)
		}
		if a[i].AmountCents <= 0 {
			t.Errorf("mock row %d has non-positive amount %d", i, a[i].AmountCents)
		}
		if a[i].CategoryCode == "" {
			t.Errorf("mock row %d has no category", i)
		}
	}
}
