package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// AddComment godoc
// @Summary      Comment on a card
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        request body dto.CreateCommentRequest true "Comment"
// @Success      201 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/comments [post]
func (h *CommentHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}
	comment, err := h.commentService.AddComment(c.Request.Context(), userID, path, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary      List comments of a card
// @Tags         comments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.CommentResponse}
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	comments, err := h.commentService.ListComments(c.Request.Context(), userID, path)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, comments)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Param        workspaceId path string true "Workspace ID (UUID)"
// @Param        boardId path string true "Board ID (UUID)"
// @Param        columnId path string true "Column ID (UUID)"
// @Param        cardId path string true "Card ID (UUID)"
// @Param        commentId path string true "Comment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /workspaces/{workspaceId}/boards/{boardId}/columns/{columnId}/cards/{cardId}/comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	path, ok := cardPath(c)
	if !ok {
		return
	}
	commentID, ok := uuidParam(c, "commentId", "comment")
	if !ok {
		return
	}
	if err := h.commentService.DeleteComment(c.Request.Context(), userID, path, commentID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: "Comment deleted"})
}
