// Package bootstrap wires configuration into the concrete storage, model and
// extraction stack shared by the api and worker binaries.
package bootstrap

import (
	"log"

	"github.com/faturai/faturai-backend/internal/core/classify"
	"github.com/faturai/faturai-backend/internal/core/extract"
	"github.com/faturai/faturai-backend/internal/core/llm"
	"github.com/faturai/faturai-backend/internal/core/storage"
	"github.com/faturai/faturai-backend/internal/shared/config"
)

// NewStorageProvider builds the blob store selected by STORAGE_PROVIDER.
func NewStorageProvider(cfg *config.Config) (storage.Provider, error) {
	if cfg.StorageProvider == "s3" {
		provider, err := storage.NewS3Provider(cfg.S3AccessKeyID, cfg.S3SecretKey, cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		log.Printf("📦 Using S3 storage (bucket: %s)", cfg.S3Bucket)
		return provider, nil
	}
	log.Printf("📦 Using local storage (dir: %s)", cfg.UploadDir)
	return storage.NewLocalProvider(cfg.UploadDir, cfg.UploadBaseURL), nil
}

// ExtractionStack holds the model-backed pieces of the pipeline.
type ExtractionStack struct {
	Extractor  *extract.Extractor
	Classifier *classify.Classifier
}

// NewExtractionStack builds the extraction strategy chain and the merchant
// classifier from the configured model providers. With no provider configured
// the chain degrades to the deterministic mock, so local development works
// without credentials.
func NewExtractionStack(cfg *config.Config, store storage.Provider, categoryCodes []string) (*ExtractionStack, error) {
	var gemini *llm.GeminiProvider
	var openai *llm.OpenAIProvider

	if cfg.HasGemini() {
		p, err := llm.NewGeminiProvider(cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		gemini = p
		log.Printf("🤖 Gemini provider enabled (model: %s)", cfg.GeminiModel)
	}
	if cfg.HasOpenAI() {
		openai = llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, 0.2, 2000)
		log.Printf("🤖 OpenAI provider enabled (model: %s)", cfg.OpenAIModel)
	}

	var strategies []extract.Strategy
	if gemini != nil {
		strategies = append(strategies,
			extract.NewDocumentInlineStrategy(gemini, categoryCodes),
			extract.NewPresignedURLStrategy(gemini, store, categoryCodes),
		)
	}
	if openai != nil {
		image := extract.NewImageInlineStrategy(openai, categoryCodes)
		strategies = append(strategies,
			extract.NewRasterizeStrategy(image, cfg.PdftoppmPath),
			image,
		)
	}
	if len(strategies) == 0 {
		log.Printf("⚠️ No AI provider configured, extraction will use mock data")
		strategies = append(strategies, extract.NewMockStrategy())
	}

	var chatProvider llm.Provider
	switch {
	case openai != nil:
		chatProvider = openai
	case gemini != nil:
		chatProvider = gemini
	}

	return &ExtractionStack{
		Extractor:  extract.NewExtractor(strategies),
		Classifier: classify.NewClassifier(chatProvider, categoryCodes),
	}, nil
}

// ChatProvider returns the provider used for text-only prompts, or nil when
// no model is configured.
func ChatProvider(cfg *config.Config) (llm.Provider, error) {
	if cfg.HasOpenAI() {
		return llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, 0.2, 2000), nil
	}
	if cfg.HasGemini() {
		return llm.NewGeminiProvider(cfg.GeminiKey, cfg.GeminiModel)
	}
	return nil, nil
}
