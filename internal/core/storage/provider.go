package storage

import (
	"context"
	"io"
	"mime/multipart"
	"strings"
	"time"
)

// StoredFile describes a persisted invoice document.
type StoredFile struct {
	Key      string `json:"key"`       // Provider-specific object key
	URL      string `json:"url"`       // Public URL (may require presigning on S3)
	FileName string `json:"file_name"` // Original filename
	Size     int64  `json:"size"`      // File size in bytes
	Format   string `json:"format"`    // File extension without the dot
}

// SaveOptions configures a save operation.
type SaveOptions struct {
	Folder      string   // Folder/prefix to store under
	AllowedExts []string // Allowed file extensions (lowercase, with dot)
	MaxSize     int64    // Max file size in bytes
}

// Provider is a blob store for raw invoice documents. The pipeline only ever
// reads; files are written once at upload time.
type Provider interface {
	// Save persists the file and returns its descriptor.
	Save(file io.Reader, filename string, options *SaveOptions) (*StoredFile, error)

	// SaveMultipart persists a multipart upload.
	SaveMultipart(fileHeader *multipart.FileHeader, options *SaveOptions) (*StoredFile, error)

	// Read returns the full file contents.
	Read(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether the file is still present.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignURL returns a short-lived URL granting read access to the file.
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete removes a file by key.
	Delete(key string) error

	// GetProviderName returns the provider name.
	GetProviderName() string
}

// DefaultSaveOptions returns the upload policy for invoice documents.
func DefaultSaveOptions() *SaveOptions {
	return &SaveOptions{
		Folder:      "invoices",
		AllowedExts: []string{".pdf", ".csv", ".jpg", ".jpeg", ".png"},
		MaxSize:     10 * 1024 * 1024, // 10MB
	}
}

// ExtAllowed reports whether ext (with dot, any case) is in the policy.
func (o *SaveOptions) ExtAllowed(ext string) bool {
	if len(o.AllowedExts) == 0 {
		return true
	}
	for _, allowed := range o.AllowedExts {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
