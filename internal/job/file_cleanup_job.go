package job

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/repository"
)

const (
	// MaxDeletionAttempts after which a queued key is left for manual inspection
	MaxDeletionAttempts = 10
	cleanupBatchSize    = 200
	cleanupConcurrency  = 4
)

// FileCleanupJob retries object storage deletions that failed inline
type FileCleanupJob struct {
	deletionRepo repository.FileDeletionRepository
	s3Client     client.S3ClientInterface
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewFileCleanupJob creates a new FileCleanupJob instance
func NewFileCleanupJob(
	deletionRepo repository.FileDeletionRepository,
	s3Client client.S3ClientInterface,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FileCleanupJob {
	return &FileCleanupJob{
		deletionRepo: deletionRepo,
		s3Client:     s3Client,
		metrics:      m,
		logger:       logger,
	}
}

func (j *FileCleanupJob) Name() string { return "file_cleanup" }

// Run deletes one batch of queued keys. Successful rows are removed,
// failures bump the attempt counter.
func (j *FileCleanupJob) Run(ctx context.Context) error {
	pending, err := j.deletionRepo.ListPending(ctx, MaxDeletionAttempts, cleanupBatchSize)
	if err != nil {
		return fmt.Errorf("list pending file deletions: %w", err)
	}
	if len(pending) == 0 {
		j.logger.Debug("No pending file deletions")
		return nil
	}

	j.logger.Info("Found pending file deletions", zap.Int("count", len(pending)))

	var deleted, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cleanupConcurrency)

	for _, row := range pending {
		row := row
		g.Go(func() error {
			delErr := j.s3Client.DeleteFile(gctx, row.FileKey)
			j.recordDeletion(delErr)

			if delErr != nil {
				failed.Add(1)
				j.logger.Warn("Failed to delete file from storage",
					zap.String("deletion_id", row.ID.String()),
					zap.String("file_key", row.FileKey),
					zap.Int("attempts", row.Attempts+1),
					zap.Error(delErr),
				)
				if err := j.deletionRepo.MarkFailed(gctx, row.ID, delErr.Error()); err != nil {
					return fmt.Errorf("mark deletion %s failed: %w", row.ID, err)
				}
				return nil
			}

			deleted.Add(1)
			if err := j.deletionRepo.Delete(gctx, row.ID); err != nil {
				return fmt.Errorf("remove deletion %s: %w", row.ID, err)
			}
			return nil
		})
	}

	err = g.Wait()

	j.logger.Info("File cleanup completed",
		zap.Int("total", len(pending)),
		zap.Int64("deleted", deleted.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return err
}

func (j *FileCleanupJob) recordDeletion(err error) {
	if j.metrics != nil {
		j.metrics.RecordFileDeletion(err)
	}
}
