package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // Public URL prefix for stored documents
}

// DocumentStore stores verification documents and message attachments in
// S3-compatible object storage and hands back public URLs.
type DocumentStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewDocumentStore creates a new S3-backed document store
func NewDocumentStore(cfg S3Config) (*DocumentStore, error) {
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return &DocumentStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// UploadInput represents input for storing a document
type UploadInput struct {
	Reader      io.Reader
	ContentType string
	Size        int64
	Filename    string // Optional: original filename for extension extraction
}

// UploadOutput represents the stored document
type UploadOutput struct {
	Key        string // Object key in S3
	URL        string // Public URL to access the document
	Size       int64
	UploadedAt time.Time
}

// Upload stores a document and returns its public URL
func (s *DocumentStore) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	ext := path.Ext(in.Filename)
	if ext == "" {
		ext = extensionForContentType(in.ContentType)
	}
	key := fmt.Sprintf("%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          in.Reader,
		ContentType:   aws.String(in.ContentType),
		ContentLength: aws.Int64(in.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to s3: %w", err)
	}

	return &UploadOutput{
		Key:        key,
		URL:        fmt.Sprintf("%s/%s", s.publicURL, key),
		Size:       in.Size,
		UploadedAt: time.Now(),
	}, nil
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting from s3: %w", err)
	}
	return nil
}

// extensionForContentType returns a file extension for the document types
// the verification flow accepts
func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
