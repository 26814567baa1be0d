package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// CreateWorkspace godoc
// @Summary      Create a workspace
// @Description  Creates a workspace and makes the caller its admin
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateWorkspaceRequest true "Workspace"
// @Success      201 {object} response.SuccessResponse{data=dto.WorkspaceResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Name already taken"
// @Security     BearerAuth
// @Router       /workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ws, err := h.workspaceService.CreateWorkspace(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, ws)
}

// ListOwnWorkspaces godoc
// @Summary      List workspaces the caller administers
// @Tags         workspaces
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.WorkspaceResponse}
// @Security     BearerAuth
// @Router       /workspaces/own [get]
func (h *WorkspaceHandler) ListOwnWorkspaces(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.workspaceService.ListOwnWorkspaces(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, list)
}

// ListGuestWorkspaces godoc
// @Summary      List workspaces the caller joined as a member
// @Tags         workspaces
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.WorkspaceResponse}
// @Security     BearerAuth
// @Router       /workspaces/guest [get]
func (h *WorkspaceHandler) ListGuestWorkspaces(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.workspaceService.ListGuestWorkspaces(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, list)
}

// GetWorkspace godoc
// @Summary      Get a workspace
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.WorkspaceResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId} [get]
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	ws, err := h.workspaceService.GetWorkspace(c.Request.Context(), userID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, ws)
}

// UpdateName godoc
// @Summary      Rename a workspace
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        request body dto.UpdateWorkspaceNameRequest true "New name"
// @Success      200 {object} response.SuccessResponse{data=dto.WorkspaceResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/name [patch]
func (h *WorkspaceHandler) UpdateName(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	var req dto.UpdateWorkspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	ws, err := h.workspaceService.UpdateName(c.Request.Context(), userID, wsID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, ws)
}

// UpdateVisibility godoc
// @Summary      Change workspace visibility
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        request body dto.UpdateWorkspaceVisibilityRequest true "Visibility"
// @Success      200 {object} response.SuccessResponse{data=dto.WorkspaceResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/visibility [patch]
func (h *WorkspaceHandler) UpdateVisibility(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	var req dto.UpdateWorkspaceVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	ws, err := h.workspaceService.UpdateVisibility(c.Request.Context(), userID, wsID, req.Visibility)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, ws)
}

// UpdateImage godoc
// @Summary      Replace the workspace image
// @Tags         workspaces
// @Accept       multipart/form-data
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        file formData file true "Image"
// @Success      200 {object} response.SuccessResponse{data=dto.WorkspaceResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/image [put]
func (h *WorkspaceHandler) UpdateImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file", true)
	if !ok {
		return
	}
	defer closeFile()

	ws, err := h.workspaceService.UpdateImage(c.Request.Context(), userID, wsID, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, ws)
}

// DeleteWorkspace godoc
// @Summary      Delete a workspace
// @Description  Removes the workspace with every board, column and card below it
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId} [delete]
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	if err := h.workspaceService.DeleteWorkspace(c.Request.Context(), userID, wsID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Workspace deleted"})
}

// GenerateInviteLink godoc
// @Summary      Generate an invite link
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.InviteLinkResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/invite-link [get]
func (h *WorkspaceHandler) GenerateInviteLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	link, err := h.workspaceService.GenerateInviteLink(c.Request.Context(), userID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, link)
}

// JoinWorkspace godoc
// @Summary      Join a workspace with an invite token
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        request body dto.JoinWorkspaceRequest true "Invite token"
// @Success      200 {object} response.SuccessResponse{data=dto.JoinWorkspaceResponse}
// @Failure      401 {object} response.ErrorResponse "Invalid or expired token"
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/join [post]
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	result, err := h.workspaceService.JoinWithToken(c.Request.Context(), userID, req.Token)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// ListMembers godoc
// @Summary      List workspace members
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.MemberResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/members [get]
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	members, err := h.workspaceService.ListMembers(c.Request.Context(), userID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, members)
}

// UpdateMemberRole godoc
// @Summary      Promote a workspace member
// @Description  Only promotion to admin is allowed; demotion answers 400
// @Tags         workspaces
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Param        request body dto.UpdateMemberRoleRequest true "Role"
// @Success      200 {object} response.SuccessResponse{data=dto.MemberResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/members/{userId}/role [patch]
func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	member, err := h.workspaceService.UpdateMemberRole(c.Request.Context(), userID, wsID, targetID, req.Role)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, member)
}

// RemoveMember godoc
// @Summary      Remove a workspace member
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Self removal"
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/members/{userId} [delete]
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	if err := h.workspaceService.RemoveMember(c.Request.Context(), userID, wsID, targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Member removed"})
}

// Leave godoc
// @Summary      Leave a workspace
// @Description  The last admin cannot leave while other members remain. A sole member leaving deletes the workspace.
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.LeaveResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/leave [delete]
func (h *WorkspaceHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "workspaceId", "workspace")
	if !ok {
		return
	}
	result, err := h.workspaceService.Leave(c.Request.Context(), userID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}
