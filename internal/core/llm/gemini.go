package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider and DocumentProvider on the Gemini API.
// Gemini accepts whole PDFs inline, which makes it the primary document
// extraction backend.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(apiKey string, model string) (*GeminiProvider, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) GetProviderName() string {
	return "Google Gemini"
}

func (p *GeminiProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	userText := userMessage
	if systemPrompt != "" {
		userText = systemPrompt + "\n\n" + userMessage
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: userText}},
		},
	}

	return p.generate(ctx, contents)
}

// GenerateFromDocument sends the document bytes inline.
func (p *GeminiProvider) GenerateFromDocument(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	return p.generate(ctx, contents)
}

// GenerateFromDocumentURL references the document by URI instead of inlining
// it, which sidesteps inline payload size limits.
func (p *GeminiProvider) GenerateFromDocumentURL(ctx context.Context, prompt, uri, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					FileData: &genai.FileData{
						FileURI:  uri,
						MIMEType: mimeType,
					},
				},
			},
		},
	}

	return p.generate(ctx, contents)
}

func (p *GeminiProvider) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}
