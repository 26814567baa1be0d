package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

type LabelHandler struct {
	labelService service.LabelService
}

func NewLabelHandler(labelService service.LabelService) *LabelHandler {
	return &LabelHandler{
		labelService: labelService,
	}
}

// CreateLabel godoc
// @Summary      Create a board label
// @Tags         labels
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.CreateLabelRequest true "Label"
// @Success      201 {object} response.SuccessResponse{data=dto.LabelResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/labels [post]
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	var req dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	label, err := h.labelService.CreateLabel(c.Request.Context(), userID, boardID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, label)
}

// ListLabels godoc
// @Summary      List board labels
// @Tags         labels
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.LabelResponse}
// @Security     BearerAuth
// @Router       /boards/{boardId}/labels [get]
func (h *LabelHandler) ListLabels(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	labels, err := h.labelService.ListLabels(c.Request.Context(), userID, boardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, labels)
}

// GetLabel godoc
// @Summary      Get a board label
// @Tags         labels
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        labelId path string true "Label ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.LabelResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/labels/{labelId} [get]
func (h *LabelHandler) GetLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	labelID, ok := uuidParam(c, "labelId", "label")
	if !ok {
		return
	}
	label, err := h.labelService.GetLabel(c.Request.Context(), userID, boardID, labelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, label)
}

// UpdateLabel godoc
// @Summary      Update a board label
// @Tags         labels
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        labelId path string true "Label ID (UUID)"
// @Param        request body dto.UpdateLabelRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.LabelResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/labels/{labelId} [patch]
func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	labelID, ok := uuidParam(c, "labelId", "label")
	if !ok {
		return
	}
	var req dto.UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	label, err := h.labelService.UpdateLabel(c.Request.Context(), userID, boardID, labelID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, label)
}

// DeleteLabel godoc
// @Summary      Delete a board label
// @Description  Also detaches it from every card
// @Tags         labels
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        labelId path string true "Label ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{boardId}/labels/{labelId} [delete]
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId", "board")
	if !ok {
		return
	}
	labelID, ok := uuidParam(c, "labelId", "label")
	if !ok {
		return
	}
	if err := h.labelService.DeleteLabel(c.Request.Context(), userID, boardID, labelID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Label deleted"})
}
