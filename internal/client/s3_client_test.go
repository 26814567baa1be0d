package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itrun-git/itrun-back/internal/config"
)

type recordedCall struct {
	endpoint string
	method   string
	status   int
	err      error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordExternalAPICall(endpoint, method string, statusCode int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{endpoint, method, statusCode, err})
}

func testConfig() *config.S3Config {
	return &config.S3Config{
		Bucket:    "test-bucket",
		Region:    "eu-central-1",
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
	}
}

func TestNewS3Client_Validation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.S3Config
		errContains string
	}{
		{"missing bucket", config.S3Config{Region: "eu-central-1"}, "bucket is required"},
		{"missing region", config.S3Config{Bucket: "b"}, "region is required"},
		{"endpoint without keys", config.S3Config{Bucket: "b", Region: "r", Endpoint: "http://minio:9000"}, "access key and secret key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Client(&tt.cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestGenerateFileKey(t *testing.T) {
	client, err := NewS3Client(testConfig(), nil)
	require.NoError(t, err)
	owner := uuid.New()

	tests := []struct {
		name       string
		entityType string
		ownerID    uuid.UUID
		fileName   string
		wantExt    string
		wantErr    bool
	}{
		{"workspace image", EntityWorkspaces, owner, "logo.PNG", ".png", false},
		{"board image", EntityBoards, owner, "bg.jpg", ".jpg", false},
		{"card cover", EntityCovers, owner, "cover.webp", ".webp", false},
		{"attachment without extension", EntityAttachments, owner, "Makefile", "", false},
		{"invalid entity type", "projects", owner, "a.jpg", "", true},
		{"empty entity type", "", owner, "a.jpg", "", true},
		{"nil owner", EntityBoards, uuid.Nil, "a.jpg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := client.GenerateFileKey(tt.entityType, tt.ownerID, tt.fileName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			parts := strings.Split(key, "/")
			require.Len(t, parts, 5)
			assert.Equal(t, tt.entityType, parts[0])
			assert.Equal(t, tt.ownerID.String(), parts[1])
			assert.Len(t, parts[2], 4)
			assert.Len(t, parts[3], 2)
			_, err = uuid.Parse(strings.TrimSuffix(parts[4], tt.wantExt))
			assert.NoError(t, err)
			assert.True(t, strings.HasSuffix(parts[4], tt.wantExt))
		})
	}
}

func TestGenerateFileKey_Uniqueness(t *testing.T) {
	owner := uuid.New()
	keys := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := generateFileKey(time.Now(), EntityAttachments, owner, "a.pdf")
		require.NoError(t, err)
		assert.False(t, keys[key], "Generated key should be unique")
		keys[key] = true
	}
}

func TestPresignDownload(t *testing.T) {
	client, err := NewS3Client(testConfig(), nil)
	require.NoError(t, err)

	raw, err := client.PresignDownload(context.Background(), "attachments/x/2026/10/y.pdf", "report.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Contains(t, q.Get("response-content-disposition"), `filename="report.pdf"`)
	assert.Contains(t, u.Path, "attachments/x/2026/10/y.pdf")
}

func TestGetFileURL(t *testing.T) {
	aws, err := NewS3Client(testConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://test-bucket.s3.eu-central-1.amazonaws.com/boards/k.png", aws.GetFileURL("boards/k.png"))
	assert.Empty(t, aws.GetFileURL(""))

	cfg := testConfig()
	cfg.Endpoint = "http://localhost:9000/"
	minio, err := NewS3Client(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/test-bucket/boards/k.png", minio.GetFileURL("boards/k.png"))
}

func TestUploadAndDelete_AgainstFakeEndpoint(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch {
		case strings.Contains(r.URL.Path, "forbidden"):
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Endpoint = srv.URL
	rec := &fakeRecorder{}
	client, err := NewS3Client(cfg, rec)
	require.NoError(t, err)

	ctx := context.Background()
	body := []byte("hello")
	require.NoError(t, client.UploadFile(ctx, "covers/a/2026/10/b.png", bytes.NewReader(body), int64(len(body)), "image/png"))
	require.NoError(t, client.DeleteFile(ctx, "covers/a/2026/10/b.png"))
	err = client.DeleteFile(ctx, "covers/forbidden.png")
	require.Error(t, err)

	mu.Lock()
	assert.Contains(t, seen, "PUT /test-bucket/covers/a/2026/10/b.png")
	assert.Contains(t, seen, "DELETE /test-bucket/covers/a/2026/10/b.png")
	mu.Unlock()

	require.Len(t, rec.calls, 3)
	assert.Equal(t, recordedCall{"PutObject", "PUT", 200, nil}, rec.calls[0])
	assert.Equal(t, "DeleteObject", rec.calls[1].endpoint)
	assert.Equal(t, 403, rec.calls[2].status)
	assert.Error(t, rec.calls[2].err)
}

func TestMockS3Client(t *testing.T) {
	m := NewMockS3Client()
	ctx := context.Background()
	key, err := m.GenerateFileKey(EntityAttachments, uuid.New(), "notes.txt")
	require.NoError(t, err)

	require.NoError(t, m.UploadFile(ctx, key, strings.NewReader("abc"), 3, "text/plain"))
	assert.True(t, m.HasObject(key))

	link, err := m.PresignDownload(ctx, key, "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, link, "X-Amz-Expires=900")

	require.NoError(t, m.DeleteFile(ctx, key))
	assert.False(t, m.HasObject(key))
	assert.Equal(t, []string{key}, m.DeletedKeys())
}
