package extract

import (
	"context"
	"time"

	"github.com/faturai/faturai-backend/internal/core/apperr"
	"github.com/faturai/faturai-backend/internal/core/llm"
)

// ImageInlineStrategy sends the image inline (base64 data URL) to a vision
// model. Final fallback of the chain; the rasterize strategy also delegates
// to it for rendered PDF pages.
type ImageInlineStrategy struct {
	provider llm.VisionProvider
	prompt   string
}

func NewImageInlineStrategy(provider llm.VisionProvider, categoryCodes []string) *ImageInlineStrategy {
	return &ImageInlineStrategy{
		provider: provider,
		prompt:   buildExtractionPrompt(categoryCodes),
	}
}

func (s *ImageInlineStrategy) Name() string { return "image-inline" }

func (s *ImageInlineStrategy) Supports(ext string) bool { return imageExts[ext] }

func (s *ImageInlineStrategy) Timeout() time.Duration { return 60 * time.Second }

func (s *ImageInlineStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	raw, err := s.provider.GenerateFromImage(ctx, s.prompt, file.Bytes, llm.MimeTypeForExt(file.Ext))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExternalService, "vision model call failed", err)
	}
	return parseModelResponse(raw)
}
