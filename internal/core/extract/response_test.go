package extract

import (
	"testing"
	"time"

	"github.com/faturai/faturai-backend/internal/core/apperr"
)

func TestParseModelResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "plain JSON array",
			raw:  `[{"merchant_name": "iFood", "date": "2026-07-15", "amount": 54.90, "description": "", "category": "REST"}]`,
			want: 1,
		},
		{
			name: "fenced code block with language tag",
			raw: "```json\n" +
				`[{"merchant_name": "Uber", "date": "2026-07-10", "amount": 23.50, "category": "TRANS"}]` +
				"\n```",
			want: 1,
		},
		{
			name: "array wrapped in prose",
			raw: "Here are the transactions I found:\n" +
				`[{"merchant_name": "Netflix", "date": "2026-07-01", "amount": 39.90, "category": "ASSIN"}]` +
				"\nLet me know if you need anything else.",
			want: 1,
		},
		{
			name: "entries with empty merchant are skipped",
			raw: `[
				{"merchant_name": "", "date": "2026-07-01", "amount": 10.00},
				{"merchant_name": "   ", "date": "2026-07-02", "amount": 20.00},
				{"merchant_name": "Posto Shell", "date": "2026-07-03", "amount": 150.00, "category": "COMB"}
			]`,
			want: 1,
		},
		{
			name:    "no JSON array at all",
			raw:     "I could not read this document, sorry.",
			wantErr: true,
		},
		{
			name:    "array of garbage",
			raw:     `["not", "objects"]`,
			wantErr: true,
		},
		{
			name:    "only empty merchants",
			raw:     `[{"merchant_name": "", "amount": 10.00}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := parseModelResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseModelResponse() expected error, got %d transactions", len(txs))
				}
				if !apperr.Is(err, apperr.KindExtraction) {
					t.Errorf("parseModelResponse() error kind = %v, want extraction", apperr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("parseModelResponse() unexpected error: %v", err)
			}
			if len(txs) != tt.want {
				t.Errorf("parseModelResponse() returned %d transactions, want %d", len(txs), tt.want)
			}
		})
	}
}

func TestParseModelResponse_Fields(t *testing.T) {
	raw := `[{"merchant_name": "  Supermercado Extra  ", "date": "15/07/2026", "amount": 231.47, "description": " compras do mês ", "category": "super"}]`

	txs, err := parseModelResponse(raw)
	if err != nil {
		t.Fatalf("parseModelResponse() unexpected error: %v", err)
	}
	tx := txs[0]

	if tx.MerchantName != "Supermercado Extra" {
		t.Errorf("MerchantName = %q, want trimmed name", tx.MerchantName)
	}
	if tx.AmountCents != 23147 {
		t.Errorf("AmountCents = %d, want 23147", tx.AmountCents)
	}
	if tx.Description != "compras do mês" {
		t.Errorf("Description = %q, want trimmed description", tx.Description)
	}
	if tx.CategoryCode != "SUPER" {
		t.Errorf("CategoryCode = %q, want SUPER", tx.CategoryCode)
	}
	want := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	if !tx.Date.Equal(want) {
		t.Errorf("Date = %v, want %v (dd/mm/yyyy layout)", tx.Date, want)
	}
}

func TestToCents(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{54.90, 5490},
		{0.1, 10},
		{19.99, 1999},
		{1234.56, 123456},
		// 29.35 is not exactly representable; rounding must not truncate it
		// down to 2934.
		{29.35, 2935},
	}

	for _, tt := range tests {
		if got := toCents(tt.amount); got != tt.want {
			t.Errorf("toCents(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestParseDate_FallbackIsToday(t *testing.T) {
	got := parseDate("not a date")
	if time.Since(got) > 48*time.Hour || time.Until(got) > time.Hour {
		t.Errorf("parseDate fallback = %v, want roughly today", got)
	}
}
