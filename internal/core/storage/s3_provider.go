package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Provider stores invoice documents in an S3 bucket. Documents stay
// private; extraction strategies that need a URL get a presigned one.
type S3Provider struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	region     string
}

// NewS3Provider creates a new AWS S3 provider.
func NewS3Provider(accessKeyID, secretAccessKey, region, bucketName string) (*S3Provider, error) {
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &S3Provider{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		region:     region,
	}, nil
}

// Save uploads a file to S3 under <folder>/<unique name>.
func (p *S3Provider) Save(file io.Reader, filename string, options *SaveOptions) (*StoredFile, error) {
	if options == nil {
		options = DefaultSaveOptions()
	}

	ext := filepath.Ext(filename)
	if !options.ExtAllowed(ext) {
		return nil, fmt.Errorf("file extension not allowed: %s", ext)
	}

	nameWithoutExt := strings.TrimSuffix(filename, ext)
	uniqueID := uuid.New().String()[:8]
	key := filepath.Join(options.Folder,
		fmt.Sprintf("%s_%d_%s%s", nameWithoutExt, time.Now().Unix(), uniqueID, ext))
	key = strings.ReplaceAll(key, "\\", "/")

	_, err := p.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(p.bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(detectContentType(ext)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &StoredFile{
		Key:      key,
		URL:      fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucketName, p.region, key),
		FileName: filename,
		Format:   strings.TrimPrefix(ext, "."),
	}, nil
}

// SaveMultipart uploads a multipart file to S3.
func (p *S3Provider) SaveMultipart(fileHeader *multipart.FileHeader, options *SaveOptions) (*StoredFile, error) {
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

	result, err := p.Save(file, fileHeader.Filename, options)
	if err != nil {
		return nil, err
	}
	result.Size = fileHeader.Size
	return result, nil
}

// Read downloads the full object.
func (p *S3Provider) Read(ctx context.Context, key string) ([]byte, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// Exists reports whether the object is still in the bucket.
func (p *S3Provider) Exists(ctx context.Context, key string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object %s: %w", key, err)
	}
	return true, nil
}

// PresignURL returns a short-lived GET URL for the object.
func (p *S3Provider) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes an object from the bucket.
func (p *S3Provider) Delete(key string) error {
	_, err := p.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// GetProviderName returns the provider name.
func (p *S3Provider) GetProviderName() string {
	return "AWS S3"
}

// detectContentType maps a file extension to a MIME type.
func detectContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
