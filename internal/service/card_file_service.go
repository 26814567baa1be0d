package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

// CardFileService defines the interface for card attachments and covers
type CardFileService interface {
	UploadAttachment(ctx context.Context, userID uuid.UUID, path authz.Path, file *FileUpload) (*dto.AttachmentResponse, error)
	ListAttachments(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.AttachmentResponse, error)
	CountAttachments(ctx context.Context, userID uuid.UUID, path authz.Path) (*dto.CountResponse, error)
	DeleteAttachment(ctx context.Context, userID uuid.UUID, path authz.Path, attachmentID uuid.UUID) error
	DownloadURL(ctx context.Context, userID uuid.UUID, path authz.Path, attachmentID uuid.UUID) (*dto.DownloadURLResponse, error)
	UploadCover(ctx context.Context, userID uuid.UUID, path authz.Path, file *FileUpload) (*dto.CardResponse, error)
	DeleteCover(ctx context.Context, userID uuid.UUID, path authz.Path) error
}

// cardFileServiceImpl is the implementation of CardFileService
type cardFileServiceImpl struct {
	gate           *authz.Gate
	attachmentRepo repository.AttachmentRepository
	cardRepo       repository.CardRepository
	s3Client       S3Client
	files          *fileJanitor
	maxFileSize    int64
	logger         *zap.Logger
}

// NewCardFileService creates a new instance of CardFileService.
// maxFileSize <= 0 disables the size check.
func NewCardFileService(
	gate *authz.Gate,
	attachmentRepo repository.AttachmentRepository,
	cardRepo repository.CardRepository,
	fileDeletionRepo repository.FileDeletionRepository,
	s3Client S3Client,
	maxFileSize int64,
	logger *zap.Logger,
) CardFileService {
	return &cardFileServiceImpl{
		gate:           gate,
		attachmentRepo: attachmentRepo,
		cardRepo:       cardRepo,
		s3Client:       s3Client,
		files:          &fileJanitor{s3: s3Client, pending: fileDeletionRepo, logger: logger},
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}

// UploadAttachment stores the file and records it on the card
func (s *cardFileServiceImpl) UploadAttachment(ctx context.Context, userID uuid.UUID, path authz.Path, file *FileUpload) (*dto.AttachmentResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	if err := s.checkSize(file); err != nil {
		return nil, err
	}

	key, err := uploadFile(ctx, s.s3Client, client.EntityAttachments, res.Card.ID, file)
	if err != nil {
		return nil, err
	}
	attachment := &domain.Attachment{
		CardID:      res.Card.ID,
		FileName:    filepath.Base(file.FileName),
		FileKey:     key,
		FileSize:    file.Size,
		ContentType: contentTypeOf(file),
		UploadedBy:  userID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		s.files.deleteFiles(ctx, "attachment_rollback", key)
		return nil, response.NewInternalError("Failed to save attachment", err)
	}

	s.logger.Info("Attachment uploaded",
		zap.String("attachment_id", attachment.ID.String()),
		zap.String("card_id", res.Card.ID.String()),
		zap.Int64("size", file.Size))
	return toAttachmentResponse(attachment), nil
}

func (s *cardFileServiceImpl) ListAttachments(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.AttachmentResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.ListByCard(ctx, res.Card.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list attachments", err)
	}
	out := make([]dto.AttachmentResponse, len(attachments))
	for i, a := range attachments {
		out[i] = *toAttachmentResponse(a)
	}
	return out, nil
}

func (s *cardFileServiceImpl) CountAttachments(ctx context.Context, userID uuid.UUID, path authz.Path) (*dto.CountResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	n, err := s.attachmentRepo.CountByCard(ctx, res.Card.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count attachments", err)
	}
	return &dto.CountResponse{Count: n}, nil
}

// DeleteAttachment removes the row, then the stored object best-effort.
// The uploader or a board admin may delete.
func (s *cardFileServiceImpl) DeleteAttachment(ctx context.Context, userID uuid.UUID, path authz.Path, attachmentID uuid.UUID) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return err
	}
	attachment, err := s.attachment(ctx, res.Card.ID, attachmentID)
	if err != nil {
		return err
	}
	if attachment.UploadedBy != userID && !res.Membership.IsAdmin() {
		return response.NewForbiddenError("Only the uploader or a board admin can delete this attachment")
	}
	if err := s.attachmentRepo.Delete(ctx, attachment.ID); err != nil {
		return repoError(err, "Attachment not found", "delete attachment")
	}
	s.files.deleteFiles(ctx, "attachment_deleted", attachment.FileKey)
	return nil
}

// DownloadURL returns a short-lived presigned URL for the attachment
func (s *cardFileServiceImpl) DownloadURL(ctx context.Context, userID uuid.UUID, path authz.Path, attachmentID uuid.UUID) (*dto.DownloadURLResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	attachment, err := s.attachment(ctx, res.Card.ID, attachmentID)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(client.DownloadURLTTL)
	url, err := s.s3Client.PresignDownload(ctx, attachment.FileKey, attachment.FileName)
	if err != nil {
		return nil, response.NewInternalError("Failed to create download URL", err)
	}
	return &dto.DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// UploadCover replaces the card cover. The previous object is deleted best-effort.
func (s *cardFileServiceImpl) UploadCover(ctx context.Context, userID uuid.UUID, path authz.Path, file *FileUpload) (*dto.CardResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	if err := s.checkSize(file); err != nil {
		return nil, err
	}
	key, err := uploadFile(ctx, s.s3Client, client.EntityCovers, res.Card.ID, file)
	if err != nil {
		return nil, err
	}
	if err := s.cardRepo.Update(ctx, res.Card.ID, map[string]interface{}{"cover_key": key}); err != nil {
		s.files.deleteFiles(ctx, "cover_rollback", key)
		return nil, repoError(err, "Card not found", "set cover")
	}
	s.files.deleteFiles(ctx, "cover_replaced", res.Card.CoverKey)

	card, err := s.cardRepo.FindByID(ctx, res.Card.ID)
	if err != nil {
		return nil, repoError(err, "Card not found", "load card")
	}
	deco, err := loadCardDecorations(ctx, s.cardRepo, []*domain.Card{card})
	if err != nil {
		return nil, err
	}
	return toCardResponse(card, deco, s.s3Client.GetFileURL), nil
}

func (s *cardFileServiceImpl) DeleteCover(ctx context.Context, userID uuid.UUID, path authz.Path) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return err
	}
	if res.Card.CoverKey == "" {
		return response.NewNotFoundError("Card has no cover")
	}
	if err := s.cardRepo.Update(ctx, res.Card.ID, map[string]interface{}{"cover_key": ""}); err != nil {
		return repoError(err, "Card not found", "remove cover")
	}
	s.files.deleteFiles(ctx, "cover_deleted", res.Card.CoverKey)
	return nil
}

// attachment loads an attachment and checks that it belongs to cardID
func (s *cardFileServiceImpl) attachment(ctx context.Context, cardID, attachmentID uuid.UUID) (*domain.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, repoError(err, "Attachment not found", "load attachment")
	}
	if attachment.CardID != cardID {
		return nil, response.NewNotFoundError("Attachment not found")
	}
	return attachment, nil
}

func (s *cardFileServiceImpl) checkSize(file *FileUpload) error {
	if file == nil || file.Size <= 0 {
		return response.NewValidationError("File is required", "empty upload")
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return response.NewValidationError("File too large", fmt.Sprintf("max %d bytes", s.maxFileSize))
	}
	return nil
}

func contentTypeOf(f *FileUpload) string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}
