package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

// CommentService defines the interface for card comments
type CommentService interface {
	AddComment(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID uuid.UUID, path authz.Path, commentID uuid.UUID) error
}

type commentServiceImpl struct {
	gate        *authz.Gate
	commentRepo repository.CommentRepository
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(gate *authz.Gate, commentRepo repository.CommentRepository) CommentService {
	return &commentServiceImpl{gate: gate, commentRepo: commentRepo}
}

func (s *commentServiceImpl) AddComment(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	comment := &domain.Comment{CardID: res.Card.ID, AuthorID: userID, Text: strings.TrimSpace(req.Text)}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, response.NewInternalError("Failed to add comment", err)
	}
	return toCommentResponse(comment), nil
}

// ListComments lists the card's comments oldest first
func (s *commentServiceImpl) ListComments(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.CommentResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByCard(ctx, res.Card.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list comments", err)
	}
	out := make([]dto.CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = *toCommentResponse(c)
	}
	return out, nil
}

// DeleteComment removes a comment. Board admins only.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID uuid.UUID, path authz.Path, commentID uuid.UUID) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.Admin)
	if err != nil {
		return err
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return repoError(err, "Comment not found", "load comment")
	}
	if comment.CardID != res.Card.ID {
		return response.NewNotFoundError("Comment not found")
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return repoError(err, "Comment not found", "delete comment")
	}
	return nil
}
