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

// LabelService defines the interface for board label business logic
type LabelService interface {
	CreateLabel(ctx context.Context, userID, boardID uuid.UUID, req *dto.CreateLabelRequest) (*dto.LabelResponse, error)
	ListLabels(ctx context.Context, userID, boardID uuid.UUID) ([]dto.LabelResponse, error)
	GetLabel(ctx context.Context, userID, boardID, labelID uuid.UUID) (*dto.LabelResponse, error)
	UpdateLabel(ctx context.Context, userID, boardID, labelID uuid.UUID, req *dto.UpdateLabelRequest) (*dto.LabelResponse, error)
	DeleteLabel(ctx context.Context, userID, boardID, labelID uuid.UUID) error
}

type labelServiceImpl struct {
	gate      *authz.Gate
	labelRepo repository.LabelRepository
}

// NewLabelService creates a new instance of LabelService
func NewLabelService(gate *authz.Gate, labelRepo repository.LabelRepository) LabelService {
	return &labelServiceImpl{gate: gate, labelRepo: labelRepo}
}

func (s *labelServiceImpl) CreateLabel(ctx context.Context, userID, boardID uuid.UUID, req *dto.CreateLabelRequest) (*dto.LabelResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	label := &domain.Label{BoardID: boardID, Name: strings.TrimSpace(req.Name), Color: strings.ToLower(req.Color)}
	if err := s.labelRepo.Create(ctx, label); err != nil {
		return nil, response.NewInternalError("Failed to create label", err)
	}
	return toLabelResponse(label), nil
}

func (s *labelServiceImpl) ListLabels(ctx context.Context, userID, boardID uuid.UUID) ([]dto.LabelResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	labels, err := s.labelRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list labels", err)
	}
	return toLabelResponses(labels), nil
}

func (s *labelServiceImpl) GetLabel(ctx context.Context, userID, boardID, labelID uuid.UUID) (*dto.LabelResponse, error) {
	label, err := s.authorize(ctx, userID, boardID, labelID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return toLabelResponse(label), nil
}

func (s *labelServiceImpl) UpdateLabel(ctx context.Context, userID, boardID, labelID uuid.UUID, req *dto.UpdateLabelRequest) (*dto.LabelResponse, error) {
	label, err := s.authorize(ctx, userID, boardID, labelID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		updates["color"] = strings.ToLower(*req.Color)
	}
	if len(updates) == 0 {
		return toLabelResponse(label), nil
	}
	if err := s.labelRepo.Update(ctx, labelID, updates); err != nil {
		return nil, repoError(err, "Label not found", "update label")
	}
	label, err = s.labelRepo.FindByID(ctx, labelID)
	if err != nil {
		return nil, repoError(err, "Label not found", "load label")
	}
	return toLabelResponse(label), nil
}

// DeleteLabel removes the label and detaches it from every card. Board admins only.
func (s *labelServiceImpl) DeleteLabel(ctx context.Context, userID, boardID, labelID uuid.UUID) error {
	if _, err := s.authorize(ctx, userID, boardID, labelID, authz.Admin); err != nil {
		return err
	}
	if err := s.labelRepo.Delete(ctx, labelID); err != nil {
		return repoError(err, "Label not found", "delete label")
	}
	return nil
}

// authorize checks the caller on the board and that the label belongs to it
func (s *labelServiceImpl) authorize(ctx context.Context, userID, boardID, labelID uuid.UUID, req authz.Requirement) (*domain.Label, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, req); err != nil {
		return nil, err
	}
	label, err := s.labelRepo.FindByID(ctx, labelID)
	if err != nil {
		return nil, repoError(err, "Label not found", "load label")
	}
	if label.BoardID != boardID {
		return nil, response.NewNotFoundError("Label not found")
	}
	return label, nil
}
