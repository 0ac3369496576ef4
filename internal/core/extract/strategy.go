package extract

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/faturai/faturai-backend/internal/core/apperr"
)

// Strategy is one concrete technique for turning a document or image into
// transaction candidates. Strategies are tried in priority order; each one
// failing hands over to the next.
type Strategy interface {
	Name() string
	Supports(ext string) bool
	Timeout() time.Duration
	Extract(ctx context.Context, file RawFile) ([]RawTransaction, error)
}

// Extractor turns a raw invoice file into candidate transactions. CSV files
// are parsed locally; documents and images run through the strategy chain.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an extractor with the given ordered strategy chain.
func NewExtractor(strategies []Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract produces candidate transactions from the file. It fails with an
// unsupported-format error for unknown extensions and with an extraction
// error only after every applicable strategy has failed.
func (e *Extractor) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	ext := strings.ToLower(strings.TrimPrefix(file.Ext, "."))
	if !SupportedExts[ext] {
		return nil, apperr.Newf(apperr.KindUnsupportedFormat, "unsupported file extension: %s", ext)
	}
	file.Ext = ext

	if ext == "csv" {
		return parseCSV(file.Bytes)
	}

	var lastErr error
	attempted := 0
	for _, strategy := range e.strategies {
		if !strategy.Supports(ext) {
			continue
		}
		attempted++

		callCtx, cancel := context.WithTimeout(ctx, strategy.Timeout())
		txs, err := strategy.Extract(callCtx, file)
		cancel()

		if err == nil {
			log.Info().
				Str("strategy", strategy.Name()).
				Int("transactions", len(txs)).
				Msg("extraction strategy succeeded")
			return txs, nil
		}

		log.Warn().
			Str("strategy", strategy.Name()).
			Err(err).
			Msg("extraction strategy failed, trying next")
		lastErr = err
	}

	if attempted == 0 {
		return nil, apperr.Newf(apperr.KindExtraction, "no extraction strategy available for .%s files", ext)
	}
	return nil, apperr.Wrap(apperr.KindExtraction, "all extraction strategies failed", lastErr)
}
