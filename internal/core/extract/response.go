package extract

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/faturai/faturai-backend/internal/core/apperr"
)

// modelTransaction is the JSON contract the extraction prompt demands from
// the model.
type modelTransaction struct {
	MerchantName string  `json:"merchant_name"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
}

// parseModelResponse turns raw model output into transactions. Models ignore
// formatting instructions often enough that this has to be defensive: the
// JSON array may be wrapped in a fenced code block, surrounded by prose, or
// both.
func parseModelResponse(raw string) ([]RawTransaction, error) {
	clean := extractJSONArray(raw)
	if clean == "" {
		return nil, apperr.New(apperr.KindExtraction, "no JSON array found in model response")
	}

	var items []modelTransaction
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, apperr.Wrap(apperr.KindExtraction, "model response is not a valid transaction array", err)
	}

	txs := make([]RawTransaction, 0, len(items))
	for _, item := range items {
		merchant := strings.TrimSpace(item.MerchantName)
		if merchant == "" {
			continue
		}
		txs = append(txs, RawTransaction{
			MerchantName: merchant,
			Date:         parseDate(item.Date),
			AmountCents:  toCents(item.Amount),
			Description:  strings.TrimSpace(item.Description),
			CategoryCode: strings.ToUpper(strings.TrimSpace(item.Category)),
		})
	}

	if len(txs) == 0 {
		return nil, apperr.New(apperr.KindExtraction, "model response contained no usable transactions")
	}
	return txs, nil
}

// extractJSONArray cleans up markdown fences and extra prose around the JSON
// array. First a fenced block is tried, then the first '[' to the last ']'.
func extractJSONArray(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		// Drop the language tag line (```json).
		if nl := strings.Index(s, "\n"); nl != -1 {
			firstLine := strings.TrimSpace(s[:nl])
			if firstLine == "json" || firstLine == "" {
				s = s[nl+1:]
			}
		}
		if end := strings.LastIndex(s, "```"); end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

// toCents converts a decimal currency amount to integer cents.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006", // Brazilian dd/mm/yyyy
	time.RFC3339,
}

// parseDate tries the layouts the model (or a CSV) is likely to emit. An
// unparseable date falls back to today rather than dropping the transaction.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().Truncate(24 * time.Hour)
}
