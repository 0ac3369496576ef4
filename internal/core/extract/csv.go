package extract

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/faturai/faturai-backend/internal/core/apperr"

	"github.com/rs/zerolog/log"
)

// parseCSV reads transactions from a CSV export. Expected columns:
// merchant, date, amount[, description]. The header row is skipped and rows
// with fewer than 3 columns are dropped silently; one bad row never fails
// the batch.
func parseCSV(data []byte) ([]RawTransaction, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // rows may have trailing optional columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExtraction, "failed to read CSV", err)
	}
	if len(records) <= 1 {
		return nil, apperr.New(apperr.KindExtraction, "CSV has no data rows")
	}

	txs := make([]RawTransaction, 0, len(records)-1)
	for i, row := range records[1:] { // skip header
		if len(row) < 3 {
			log.Warn().Int("row", i+2).Msg("skipping CSV row with fewer than 3 columns")
			continue
		}

		merchant := strings.TrimSpace(row[0])
		amount, err := parseCSVAmount(row[2])
		if err != nil {
			log.Warn().Int("row", i+2).Str("amount", row[2]).Msg("skipping CSV row with unparseable amount")
			continue
		}

		tx := RawTransaction{
			MerchantName: merchant,
			Date:         parseDate(row[1]),
			AmountCents:  amount,
		}
		if len(row) > 3 {
			tx.Description = strings.TrimSpace(row[3])
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return nil, apperr.New(apperr.KindExtraction, "CSV contained no usable rows")
	}
	return txs, nil
}

// parseCSVAmount parses a decimal currency value into cents. Accepts both
// "1234.56" and the Brazilian "1.234,56".
func parseCSVAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return toCents(f), nil
}
