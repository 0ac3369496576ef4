package llm

import "context"

// Provider is a text-generation backend used for classification and
// recommendation calls.
type Provider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// VisionProvider additionally understands images, either inlined or fetched
// from a URL.
type VisionProvider interface {
	Provider
	GenerateFromImage(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error)
	GenerateFromImageURL(ctx context.Context, prompt, imageURL string) (string, error)
}

// DocumentProvider understands whole documents (PDFs included), either
// inlined or referenced by URI.
type DocumentProvider interface {
	GenerateFromDocument(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
	GenerateFromDocumentURL(ctx context.Context, prompt, uri, mimeType string) (string, error)
	GetProviderName() string
}

// MimeTypeForExt maps an invoice file extension to its MIME type.
func MimeTypeForExt(ext string) string {
	switch ext {
	case ".pdf", "pdf":
		return "application/pdf"
	case ".jpg", "jpg", ".jpeg", "jpeg":
		return "image/jpeg"
	case ".png", "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
