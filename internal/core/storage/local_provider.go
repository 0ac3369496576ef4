package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalProvider stores invoice documents on the local filesystem.
type LocalProvider struct {
	basePath   string // Base directory for uploads
	baseURL    string // Base URL to access files
	publicPath string // Public path for URL generation
}

// NewLocalProvider creates a new local file storage provider.
func NewLocalProvider(basePath, baseURL string) *LocalProvider {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		panic(fmt.Sprintf("Failed to create upload directory: %v", err))
	}

	return &LocalProvider{
		basePath:   basePath,
		baseURL:    baseURL,
		publicPath: "/uploads/",
	}
}

// Save stores a file under basePath/<folder>/<unique name>.
func (p *LocalProvider) Save(file io.Reader, filename string, options *SaveOptions) (*StoredFile, error) {
	if options == nil {
		options = DefaultSaveOptions()
	}

	ext := filepath.Ext(filename)
	if !options.ExtAllowed(ext) {
		return nil, fmt.Errorf("file extension not allowed: %s", ext)
	}

	nameWithoutExt := strings.TrimSuffix(filename, ext)
	uniqueID := uuid.New().String()[:8]
	finalFilename := fmt.Sprintf("%s_%d_%s%s", nameWithoutExt, time.Now().Unix(), uniqueID, ext)

	folderPath := filepath.Join(p.basePath, options.Folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	filePath := filepath.Join(folderPath, finalFilename)
	out, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if options.MaxSize > 0 && size > options.MaxSize {
		os.Remove(filePath)
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	key := options.Folder + "/" + finalFilename
	return &StoredFile{
		Key:      key,
		URL:      p.baseURL + p.publicPath + key,
		FileName: filename,
		Size:     size,
		Format:   strings.TrimPrefix(ext, "."),
	}, nil
}

// SaveMultipart stores a multipart upload.
func (p *LocalProvider) SaveMultipart(fileHeader *multipart.FileHeader, options *SaveOptions) (*StoredFile, error) {
	if options == nil {
		options = DefaultSaveOptions()
	}

	if options.MaxSize > 0 && fileHeader.Size > options.MaxSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return p.Save(file, fileHeader.Filename, options)
}

// Read returns the file contents.
func (p *LocalProvider) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(p.basePath, key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether the file exists on disk.
func (p *LocalProvider) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(p.basePath, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// PresignURL returns the public URL. Local files are served directly by the
// API, so no signing is involved.
func (p *LocalProvider) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return p.baseURL + p.publicPath + key, nil
}

// Delete removes a file.
func (p *LocalProvider) Delete(key string) error {
	filePath := filepath.Join(p.basePath, key)
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetProviderName returns the provider name.
func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}
