package extract

import (
	"context"
	"time"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/core/llm"
	"github.com/faturai/faturai-backend/internal/core/storage"
)

// DocumentInlineStrategy sends the whole file inline to a document-
// understanding model. Primary strategy for PDFs and images.
type DocumentInlineStrategy struct {
	provider llm.DocumentProvider
	prompt   string
}

func NewDocumentInlineStrategy(provider llm.DocumentProvider, categoryCodes []string) *DocumentInlineStrategy {
	return &DocumentInlineStrategy{
		provider: provider,
		prompt:   buildExtractionPrompt(categoryCodes),
	}
}

func (s *DocumentInlineStrategy) Name() string { return "document-inline" }

func (s *DocumentInlineStrategy) Supports(ext string) bool {
	return ext == "pdf" || imageExts[ext]
}

func (s *DocumentInlineStrategy) Timeout() time.Duration { return 60 * time.Second }

func (s *DocumentInlineStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	raw, err := s.provider.GenerateFromDocument(ctx, s.prompt, file.Bytes, llm.MimeTypeForExt(file.Ext))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "document model call failed", err)
	}
	return parseModelResponse(raw)
}

// PresignedURLStrategy uploads nothing: it hands the model a short-lived
// presigned URL to the stored file. Used when the inline payload was
// rejected or timed out (large statements).
type PresignedURLStrategy struct {
	provider llm.DocumentProvider
	store    storage.Provider
	prompt   string
	expiry   time.Duration
}

func NewPresignedURLStrategy(provider llm.DocumentProvider, store storage.Provider, categoryCodes []string) *PresignedURLStrategy {
	return &PresignedURLStrategy{
		provider: provider,
		store:    store,
		prompt:   buildExtractionPrompt(categoryCodes),
		expiry:   5 * time.Minute,
	}
}

func (s *PresignedURLStrategy) Name() string { return "presigned-url" }

func (s *PresignedURLStrategy) Supports(ext string) bool {
	return ext == "pdf" || imageExts[ext]
}

func (s *PresignedURLStrategy) Timeout() time.Duration { return 45 * time.Second }

func (s *PresignedURLStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	url, err := s.store.PresignURL(ctx, file.Key, s.expiry)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "failed to presign file URL", err)
	}

	raw, err := s.provider.GenerateFromDocumentURL(ctx, s.prompt, url, llm.MimeTypeForExt(file.Ext))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "document model call by URL failed", err)
	}
	return parseModelResponse(raw)
}
