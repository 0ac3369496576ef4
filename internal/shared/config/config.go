package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// File storage
	StorageProvider string // "local" or "s3"
	UploadDir       string
	UploadBaseURL   string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Region        string
	S3Bucket        string

	// AI providers
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string

	// Worker
	QueueName         string
	WorkerConcurrency int

	// External tooling
	PdftoppmPath string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            os.Getenv("PORT"),
		Env:             os.Getenv("ENV"),
		StorageProvider: os.Getenv("STORAGE_PROVIDER"),
		UploadDir:       os.Getenv("UPLOAD_DIR"),
		UploadBaseURL:   os.Getenv("UPLOAD_BASE_URL"),
		S3AccessKeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Region:        os.Getenv("S3_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     os.Getenv("OPENAI_MODEL"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		QueueName:       os.Getenv("INVOICE_QUEUE"),
		PdftoppmPath:    os.Getenv("PDFTOPPM_PATH"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.StorageProvider == "" {
		cfg.StorageProvider = "local"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.UploadBaseURL == "" {
		cfg.UploadBaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.QueueName == "" {
		cfg.QueueName = "invoices"
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}

	cfg.WorkerConcurrency = 3
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WorkerConcurrency = n
		}
	}

	return cfg
}

// HasOpenAI reports whether an OpenAI key is configured.
func (c *Config) HasOpenAI() bool { return c.OpenAIKey != "" }

// HasGemini reports whether a Gemini key is configured.
func (c *Config) HasGemini() bool { return c.GeminiKey != "" }
