package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockS3Client implements S3ClientInterface in memory for tests
type MockS3Client struct {
	Bucket string
	Region string

	// Optional function overrides for custom test behavior
	UploadFileFunc      func(ctx context.Context, key string, file io.Reader, size int64, contentType string) error
	DeleteFileFunc      func(ctx context.Context, key string) error
	PresignDownloadFunc func(ctx context.Context, key, fileName string) (string, error)

	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket:  "test-bucket",
		Region:  "eu-central-1",
		Objects: map[string][]byte{},
	}
}

func (m *MockS3Client) GenerateFileKey(entityType string, ownerID uuid.UUID, fileName string) (string, error) {
	return generateFileKey(time.Now(), entityType, ownerID, fileName)
}

func (m *MockS3Client) UploadFile(ctx context.Context, key string, file io.Reader, size int64, contentType string) error {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, key, file, size, contentType)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.Objects[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	m.mu.Lock()
	delete(m.Objects, key)
	m.Deleted = append(m.Deleted, key)
	m.mu.Unlock()
	return nil
}

func (m *MockS3Client) PresignDownload(ctx context.Context, key, fileName string) (string, error) {
	if m.PresignDownloadFunc != nil {
		return m.PresignDownloadFunc(ctx, key, fileName)
	}
	return fmt.Sprintf("%s?X-Amz-Expires=%d&response-content-disposition=%s",
		m.GetFileURL(key), int(DownloadURLTTL.Seconds()), url.QueryEscape("attachment; filename="+fileName)), nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.Bucket, m.Region, key)
}

// HasObject reports whether key is currently stored
func (m *MockS3Client) HasObject(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[key]
	return ok
}

// DeletedKeys returns a copy of every key passed to DeleteFile
func (m *MockS3Client) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// Ensure MockS3Client implements S3ClientInterface
var _ S3ClientInterface = (*MockS3Client)(nil)
