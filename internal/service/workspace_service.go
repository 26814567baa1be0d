package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

// WorkspaceService defines the interface for workspace business logic
type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, userID uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error)
	GetWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*dto.WorkspaceResponse, error)
	ListOwnWorkspaces(ctx context.Context, userID uuid.UUID) ([]*dto.WorkspaceResponse, error)
	ListGuestWorkspaces(ctx context.Context, userID uuid.UUID) ([]*dto.WorkspaceResponse, error)
	ListMembers(ctx context.Context, userID, workspaceID uuid.UUID) ([]dto.MemberResponse, error)
	UpdateName(ctx context.Context, userID, workspaceID uuid.UUID, name string) (*dto.WorkspaceResponse, error)
	UpdateVisibility(ctx context.Context, userID, workspaceID uuid.UUID, visibility string) (*dto.WorkspaceResponse, error)
	UpdateImage(ctx context.Context, userID, workspaceID uuid.UUID, file *FileUpload) (*dto.WorkspaceResponse, error)
	DeleteWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) error
	GenerateInviteLink(ctx context.Context, userID, workspaceID uuid.UUID) (*dto.InviteLinkResponse, error)
	JoinWithToken(ctx context.Context, userID uuid.UUID, token string) (*dto.JoinWorkspaceResponse, error)
	UpdateMemberRole(ctx context.Context, userID, workspaceID, targetID uuid.UUID, role string) (*dto.MemberResponse, error)
	RemoveMember(ctx context.Context, userID, workspaceID, targetID uuid.UUID) error
	Leave(ctx context.Context, userID, workspaceID uuid.UUID) (*dto.LeaveResponse, error)
}

// workspaceServiceImpl is the implementation of WorkspaceService
type workspaceServiceImpl struct {
	gate          *authz.Gate
	workspaceRepo repository.WorkspaceRepository
	s3Client      S3Client
	files         *fileJanitor
	invites       *InviteTokens
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewWorkspaceService creates a new instance of WorkspaceService
func NewWorkspaceService(
	gate *authz.Gate,
	workspaceRepo repository.WorkspaceRepository,
	fileDeletionRepo repository.FileDeletionRepository,
	s3Client S3Client,
	invites *InviteTokens,
	m *metrics.Metrics,
	logger *zap.Logger,
) WorkspaceService {
	return &workspaceServiceImpl{
		gate:          gate,
		workspaceRepo: workspaceRepo,
		s3Client:      s3Client,
		files:         &fileJanitor{s3: s3Client, pending: fileDeletionRepo, logger: logger},
		invites:       invites,
		metrics:       m,
		logger:        logger,
	}
}

// CreateWorkspace creates a workspace with the caller as its first admin
func (s *workspaceServiceImpl) CreateWorkspace(ctx context.Context, userID uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error) {
	name := strings.TrimSpace(req.Name)
	visibility := domain.VisibilityPrivate
	if req.Visibility != "" {
		visibility = domain.Visibility(req.Visibility)
		if !visibility.IsValid() {
			return nil, response.NewValidationError("Invalid visibility", req.Visibility)
		}
	}

	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	ws := &domain.Workspace{Name: name, Visibility: visibility, CreatedBy: userID}
	owner := &domain.WorkspaceMember{UserID: userID, Role: domain.RoleAdmin, JoinedAt: time.Now()}
	if err := s.workspaceRepo.Create(ctx, ws, owner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Workspace name already taken", "")
		}
		return nil, response.NewInternalError("Failed to create workspace", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementWorkspaceCreated()
	}
	s.logger.Info("Workspace created",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("user_id", userID.String()))

	return toWorkspaceResponse(ws, s.s3Client.GetFileURL), nil
}

func (s *workspaceServiceImpl) GetWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*dto.WorkspaceResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(res.Workspace, s.s3Client.GetFileURL), nil
}

// ListOwnWorkspaces lists workspaces where the caller is admin
func (s *workspaceServiceImpl) ListOwnWorkspaces(ctx context.Context, userID uuid.UUID) ([]*dto.WorkspaceResponse, error) {
	return s.listByRole(ctx, userID, domain.RoleAdmin)
}

// ListGuestWorkspaces lists workspaces where the caller is a plain member
func (s *workspaceServiceImpl) ListGuestWorkspaces(ctx context.Context, userID uuid.UUID) ([]*dto.WorkspaceResponse, error) {
	return s.listByRole(ctx, userID, domain.RoleMember)
}

func (s *workspaceServiceImpl) listByRole(ctx context.Context, userID uuid.UUID, role domain.Role) ([]*dto.WorkspaceResponse, error) {
	workspaces, err := s.workspaceRepo.ListByMemberRole(ctx, userID, role)
	if err != nil {
		return nil, response.NewInternalError("Failed to list workspaces", err)
	}
	out := make([]*dto.WorkspaceResponse, len(workspaces))
	for i, ws := range workspaces {
		out[i] = toWorkspaceResponse(ws, s.s3Client.GetFileURL)
	}
	return out, nil
}

func (s *workspaceServiceImpl) ListMembers(ctx context.Context, userID, workspaceID uuid.UUID) ([]dto.MemberResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	members, err := s.workspaceRepo.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list members", err)
	}
	return toWorkspaceMemberResponses(members), nil
}

func (s *workspaceServiceImpl) UpdateName(ctx context.Context, userID, workspaceID uuid.UUID, name string) (*dto.WorkspaceResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := s.ensureNameFree(ctx, name, workspaceID); err != nil {
		return nil, err
	}
	return s.update(ctx, workspaceID, map[string]interface{}{"name": name})
}

func (s *workspaceServiceImpl) UpdateVisibility(ctx context.Context, userID, workspaceID uuid.UUID, visibility string) (*dto.WorkspaceResponse, error) {
	v := domain.Visibility(visibility)
	if !v.IsValid() {
		return nil, response.NewValidationError("Invalid visibility", visibility)
	}
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return nil, err
	}
	return s.update(ctx, workspaceID, map[string]interface{}{"visibility": v})
}

// UpdateImage uploads a new image and deletes the previous one best-effort
func (s *workspaceServiceImpl) UpdateImage(ctx context.Context, userID, workspaceID uuid.UUID, file *FileUpload) (*dto.WorkspaceResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin)
	if err != nil {
		return nil, err
	}
	key, err := uploadFile(ctx, s.s3Client, client.EntityWorkspaces, workspaceID, file)
	if err != nil {
		return nil, err
	}
	out, err := s.update(ctx, workspaceID, map[string]interface{}{"image_key": key})
	if err != nil {
		s.files.deleteFiles(ctx, "workspace_image_rollback", key)
		return nil, err
	}
	s.files.deleteFiles(ctx, "workspace_image_replaced", res.Workspace.ImageKey)
	return out, nil
}

// DeleteWorkspace removes the workspace and everything below it
func (s *workspaceServiceImpl) DeleteWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return err
	}
	return s.delete(ctx, workspaceID, "workspace_deleted")
}

func (s *workspaceServiceImpl) delete(ctx context.Context, workspaceID uuid.UUID, reason string) error {
	keys, err := s.workspaceRepo.Delete(ctx, workspaceID)
	if err != nil {
		return repoError(err, "Workspace not found", "delete workspace")
	}
	s.files.deleteFiles(ctx, reason, keys...)
	s.logger.Info("Workspace deleted",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("files", len(keys)))
	return nil
}

// GenerateInviteLink issues a signed join link for the workspace
func (s *workspaceServiceImpl) GenerateInviteLink(ctx context.Context, userID, workspaceID uuid.UUID) (*dto.InviteLinkResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.invites.Issue(workspaceID)
	if err != nil {
		return nil, response.NewInternalError("Failed to create invite link", err)
	}
	return &dto.InviteLinkResponse{
		Link:      s.invites.Link(token),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// JoinWithToken adds the caller as a member of the workspace named in token
func (s *workspaceServiceImpl) JoinWithToken(ctx context.Context, userID uuid.UUID, token string) (*dto.JoinWorkspaceResponse, error) {
	workspaceID, err := s.invites.Parse(token)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Invalid or expired invite", "")
	}
	if _, err := s.workspaceRepo.FindByID(ctx, workspaceID); err != nil {
		return nil, repoError(err, "Workspace not found", "load workspace")
	}

	out := &dto.JoinWorkspaceResponse{WorkspaceID: workspaceID}
	_, err = s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	switch {
	case err == nil:
		out.AlreadyMember = true
		return out, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, response.NewInternalError("Failed to check membership", err)
	}

	err = s.workspaceRepo.AddMember(ctx, &domain.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        domain.RoleMember,
		JoinedAt:    time.Now(),
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		out.AlreadyMember = true
		return out, nil
	}
	if err != nil {
		return nil, response.NewInternalError("Failed to join workspace", err)
	}
	return out, nil
}

// UpdateMemberRole promotes a member. Demotion is rejected.
func (s *workspaceServiceImpl) UpdateMemberRole(ctx context.Context, userID, workspaceID, targetID uuid.UUID, role string) (*dto.MemberResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return nil, err
	}
	target, err := s.workspaceRepo.FindMember(ctx, workspaceID, targetID)
	if err != nil {
		return nil, repoError(err, "Member not found", "load member")
	}
	newRole, noop, err := checkRoleChange(target.Role, role)
	if err != nil {
		return nil, err
	}
	if !noop {
		if err := s.workspaceRepo.UpdateMemberRole(ctx, workspaceID, targetID, newRole); err != nil {
			return nil, repoError(err, "Member not found", "update member role")
		}
	}
	return &dto.MemberResponse{UserID: target.UserID, Role: string(newRole), JoinedAt: target.JoinedAt}, nil
}

// RemoveMember removes another plain member together with their board and card memberships
func (s *workspaceServiceImpl) RemoveMember(ctx context.Context, userID, workspaceID, targetID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return err
	}
	if userID == targetID {
		return response.NewBadRequestError("Use leave to remove yourself")
	}
	target, err := s.workspaceRepo.FindMember(ctx, workspaceID, targetID)
	if err != nil {
		return repoError(err, "Member not found", "load member")
	}
	if err := checkRemoval(userID, targetID, target.Role); err != nil {
		return err
	}
	abandoned, err := s.boardsLeftBehind(ctx, workspaceID, targetID)
	if err != nil {
		return err
	}
	keys, err := s.workspaceRepo.RemoveMember(ctx, workspaceID, targetID, abandoned)
	if err != nil {
		return repoError(err, "Member not found", "remove member")
	}
	s.files.deleteFiles(ctx, "board_abandoned", keys...)
	return nil
}

// Leave removes the caller from the workspace. The sole member leaving
// deletes the workspace.
func (s *workspaceServiceImpl) Leave(ctx context.Context, userID, workspaceID uuid.UUID) (*dto.LeaveResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	admins, err := s.workspaceRepo.CountAdmins(ctx, workspaceID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count admins", err)
	}
	members, err := s.workspaceRepo.CountMembers(ctx, workspaceID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count members", err)
	}

	outcome, err := checkLeave(res.Membership.Role, admins, members)
	if err != nil {
		return nil, err
	}
	if outcome == leaveDeleteContainer {
		if err := s.delete(ctx, workspaceID, "workspace_abandoned"); err != nil {
			return nil, err
		}
		return &dto.LeaveResponse{Deleted: true}, nil
	}
	abandoned, err := s.boardsLeftBehind(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	keys, err := s.workspaceRepo.RemoveMember(ctx, workspaceID, userID, abandoned)
	if err != nil {
		return nil, repoError(err, "Member not found", "leave workspace")
	}
	s.files.deleteFiles(ctx, "board_abandoned", keys...)
	return &dto.LeaveResponse{}, nil
}

// boardsLeftBehind applies the board leave rules to every board userID
// belongs to in the workspace. It returns the boards userID is the last
// member of, and fails if userID is the last admin of a board that keeps
// other members.
func (s *workspaceServiceImpl) boardsLeftBehind(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error) {
	standings, err := s.workspaceRepo.BoardStandings(ctx, workspaceID, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to load board memberships", err)
	}
	var abandoned []uuid.UUID
	for _, st := range standings {
		outcome, err := checkLeave(st.Role, st.Admins, st.Members)
		if err != nil {
			return nil, response.NewBadRequestError(fmt.Sprintf("Board %q needs another admin first", st.BoardName))
		}
		if outcome == leaveDeleteContainer {
			abandoned = append(abandoned, st.BoardID)
		}
	}
	return abandoned, nil
}

func (s *workspaceServiceImpl) ensureNameFree(ctx context.Context, name string, excludeID uuid.UUID) error {
	taken, err := s.workspaceRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return response.NewInternalError("Failed to check workspace name", err)
	}
	if taken {
		return response.NewAppError(response.ErrCodeAlreadyExists, "Workspace name already taken", "")
	}
	return nil
}

func (s *workspaceServiceImpl) update(ctx context.Context, workspaceID uuid.UUID, updates map[string]interface{}) (*dto.WorkspaceResponse, error) {
	if err := s.workspaceRepo.Update(ctx, workspaceID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Workspace name already taken", "")
		}
		return nil, repoError(err, "Workspace not found", "update workspace")
	}
	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, repoError(err, "Workspace not found", "load workspace")
	}
	return toWorkspaceResponse(ws, s.s3Client.GetFileURL), nil
}
