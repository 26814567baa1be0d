package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

type ColumnHandler struct {
	columnService service.ColumnService
}

func NewColumnHandler(columnService service.ColumnService) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
	}
}

// CreateColumn godoc
// @Summary      Create a column
// @Description  Appends the column at the end of the board
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.CreateColumnRequest true "Column"
// @Success      201 {object} response.SuccessResponse{data=dto.ColumnResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Board busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns [post]
func (h *ColumnHandler) CreateColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := boardPath(c)
	if !ok {
		return
	}
	var req dto.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	col, err := h.columnService.CreateColumn(c.Request.Context(), userID, path, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, col)
}

// ListColumns godoc
// @Summary      List columns in order
// @Tags         columns
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ColumnResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns [get]
func (h *ColumnHandler) ListColumns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := boardPath(c)
	if !ok {
		return
	}
	cols, err := h.columnService.ListColumns(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, cols)
}

// RenameColumn godoc
// @Summary      Rename a column
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        request body dto.UpdateColumnRequest true "Column"
// @Success      200 {object} response.SuccessResponse{data=dto.ColumnResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId} [patch]
func (h *ColumnHandler) RenameColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	var req dto.UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	col, err := h.columnService.RenameColumn(c.Request.Context(), userID, path, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, col)
}

// DeleteColumn godoc
// @Summary      Delete a column
// @Description  Removes the column with its cards and closes the gap in the board order
// @Tags         columns
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Board busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId} [delete]
func (h *ColumnHandler) DeleteColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	if err := h.columnService.DeleteColumn(c.Request.Context(), userID, path); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Column deleted"})
}

// MoveColumn godoc
// @Summary      Move a column
// @Description  Moves the column to newPosition and returns the board's columns in their new order
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        request body dto.MoveColumnRequest true "Target position"
// @Success      200 {object} response.SuccessResponse{data=[]dto.ColumnResponse}
// @Failure      400 {object} response.ErrorResponse "INVALID_POSITION"
// @Failure      409 {object} response.ErrorResponse "Board busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/move [post]
func (h *ColumnHandler) MoveColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	var req dto.MoveColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	cols, err := h.columnService.MoveColumn(c.Request.Context(), userID, path, *req.NewPosition)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, cols)
}

// CopyColumn godoc
// @Summary      Copy a column with its cards
// @Description  Appends the copy to targetBoardId, or to the same board when omitted
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        request body dto.CopyColumnRequest false "Target board"
// @Success      201 {object} response.SuccessResponse{data=dto.ColumnResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/copy [post]
func (h *ColumnHandler) CopyColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	var req dto.CopyColumnRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
			return
		}
	}
	col, err := h.columnService.CopyColumn(c.Request.Context(), userID, path, req.TargetBoardID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, col)
}

// MoveAllCards godoc
// @Summary      Move every card to another column
// @Description  Cards keep their relative order and are appended after the target's cards
// @Tags         columns
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Source column ID (UUID)"
// @Param        targetColumnId path string true "Target column ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MoveAllCardsResponse}
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse "Column busy"
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/move-all/{targetColumnId} [patch]
func (h *ColumnHandler) MoveAllCards(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := columnPath(c)
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "targetColumnId", "target column")
	if !ok {
		return
	}
	result, err := h.columnService.MoveAllCards(c.Request.Context(), userID, path, targetID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}
