package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "github.com/itrun-git/itrun-back/internal/config"
)

// Entity types accepted by GenerateFileKey
const (
	EntityWorkspaces  = "workspaces"
	EntityBoards      = "boards"
	EntityCovers      = "covers"
	EntityAttachments = "attachments"
)

// DownloadURLTTL is how long a presigned download link stays valid
const DownloadURLTTL = 15 * time.Minute

var validEntityTypes = map[string]bool{
	EntityWorkspaces:  true,
	EntityBoards:      true,
	EntityCovers:      true,
	EntityAttachments: true,
}

// S3ClientInterface defines the interface for S3 operations
type S3ClientInterface interface {
	GenerateFileKey(entityType string, ownerID uuid.UUID, fileName string) (string, error)
	UploadFile(ctx context.Context, key string, file io.Reader, size int64, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key, fileName string) (string, error)
	GetFileURL(key string) string
}

// CallRecorder receives one observation per storage call
type CallRecorder interface {
	RecordExternalAPICall(endpoint, method string, statusCode int, duration time.Duration, err error)
}

// S3Client wraps AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string // set for MinIO and other S3 compatible stores
	recorder      CallRecorder
}

// NewS3Client creates a new S3 client. recorder may be nil.
func NewS3Client(cfg *appConfig.S3Config, recorder CallRecorder) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom endpoint")
		}
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	// Falls back to the default credential chain when no keys are configured
	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		recorder:      recorder,
	}, nil
}

// GenerateFileKey generates a unique object key
// Format: {entityType}/{ownerId}/{year}/{month}/{uuid}{.ext}
func (c *S3Client) GenerateFileKey(entityType string, ownerID uuid.UUID, fileName string) (string, error) {
	return generateFileKey(time.Now(), entityType, ownerID, fileName)
}

func generateFileKey(now time.Time, entityType string, ownerID uuid.UUID, fileName string) (string, error) {
	if !validEntityTypes[entityType] {
		return "", fmt.Errorf("invalid entity type: %q", entityType)
	}
	if ownerID == uuid.Nil {
		return "", fmt.Errorf("owner id is required")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/%s/%s/%s%s",
		entityType, ownerID, now.Format("2006"), now.Format("01"), uuid.New(), ext), nil
}

// UploadFile stores file under key
func (c *S3Client) UploadFile(ctx context.Context, key string, file io.Reader, size int64, contentType string) error {
	start := time.Now()
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	c.record("PutObject", "PUT", start, err)
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

// DeleteFile deletes an object. Deleting a missing key succeeds.
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	c.record("DeleteObject", "DELETE", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// PresignDownload returns a GET link valid for DownloadURLTTL that makes
// the browser save the object as fileName
func (c *S3Client) PresignDownload(ctx context.Context, key, fileName string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if fileName != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", fileName))
	}
	req, err := c.presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = DownloadURLTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

// GetFileURL returns the public URL for a key
func (c *S3Client) GetFileURL(key string) string {
	if key == "" {
		return ""
	}
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

func (c *S3Client) record(operation, method string, start time.Time, err error) {
	if c.recorder == nil {
		return
	}
	status := 200
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	} else if err != nil {
		status = 0
	}
	c.recorder.RecordExternalAPICall(operation, method, status, time.Since(start), err)
}

var _ S3ClientInterface = (*S3Client)(nil)
