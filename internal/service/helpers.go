package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/lock"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

// S3Client is the object storage the services depend on
type S3Client interface {
	GenerateFileKey(entityType string, ownerID uuid.UUID, fileName string) (string, error)
	UploadFile(ctx context.Context, key string, file io.Reader, size int64, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key, fileName string) (string, error)
	GetFileURL(key string) string
}

// FileUpload is one file received from a multipart request
type FileUpload struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

// fileJanitor deletes objects left behind by removed rows. Failures are
// queued for the cleanup job and never reach the caller.
type fileJanitor struct {
	s3      S3Client
	pending repository.FileDeletionRepository
	logger  *zap.Logger
}

func (j *fileJanitor) deleteFiles(ctx context.Context, reason string, keys ...string) {
	var failed []string
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := j.s3.DeleteFile(ctx, key); err != nil {
			j.logger.Warn("Failed to delete file from S3, queued for retry",
				zap.String("file_key", key),
				zap.String("reason", reason),
				zap.Error(err))
			failed = append(failed, key)
		}
	}
	if len(failed) == 0 {
		return
	}
	// outlives request cancellation
	if err := j.pending.Enqueue(context.WithoutCancel(ctx), failed, reason); err != nil {
		j.logger.Error("Failed to queue file deletions",
			zap.Strings("file_keys", failed),
			zap.String("reason", reason),
			zap.Error(err))
	}
}

// upload stores f under a fresh key and returns the key
func uploadFile(ctx context.Context, s3 S3Client, entityType string, ownerID uuid.UUID, f *FileUpload) (string, error) {
	key, err := s3.GenerateFileKey(entityType, ownerID, f.FileName)
	if err != nil {
		return "", response.NewInternalError("Failed to generate file key", err)
	}
	if err := s3.UploadFile(ctx, key, f.Reader, f.Size, contentTypeOf(f)); err != nil {
		return "", response.NewInternalError("Failed to upload file", err)
	}
	return key, nil
}

// repoError maps a repository failure to an AppError
func repoError(err error, notFound, action string) error {
	var appErr *response.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NewNotFoundError(notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return response.NewAppError(response.ErrCodeAlreadyExists, "Already exists", "")
	default:
		return response.NewInternalError("Failed to "+action, err)
	}
}

// orderingError maps an engine failure to an AppError
func orderingError(err error, notFound string) error {
	var appErr *response.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ordering.ErrInvalidPosition):
		return response.NewAppError(response.ErrCodeInvalidPosition, "Position out of range", err.Error())
	case errors.Is(err, ordering.ErrItemNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return response.NewNotFoundError(notFound)
	case errors.Is(err, ordering.ErrSameParent):
		return response.NewBadRequestError("Source and target must differ")
	case errors.Is(err, lock.ErrBusy):
		return response.NewAppError(response.ErrCodeConflict, "Another change to this list is in progress, retry", "")
	default:
		return response.NewInternalError("Failed to update positions", err)
	}
}

// removeDuplicateUUIDs removes duplicate UUIDs keeping the first occurrence
func removeDuplicateUUIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
